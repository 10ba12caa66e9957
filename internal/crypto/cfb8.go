// Package crypto implements the symmetric stream cipher applied to the
// framed byte stream once a shared secret is established during login:
// AES-128 in CFB mode with an 8-bit feedback register. Go's crypto/cipher
// only ships full-block (128-bit) CFB, so the byte-wide shift register is
// written out here. Key establishment is not this package's problem — it
// only consumes the 16-byte secret the asymmetric handshake produced.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// SecretSize is the required shared secret length. The protocol uses the
// secret as both AES key and initial feedback register.
const SecretSize = 16

// CFB8 is one direction's running cipher state. The two directions of a
// connection are not synchronized with each other, so each gets its own
// CFB8 seeded from the same secret. Not safe for concurrent use; each
// stream is owned by the goroutine driving that direction.
type CFB8 struct {
	block   cipher.Block
	reg     [aes.BlockSize]byte // shift register, seeded with the IV
	scratch [aes.BlockSize]byte
	decrypt bool
}

// NewCFB8 builds one cipher state. For the decrypt direction the feedback
// byte is the ciphertext that came off the wire; for encrypt it is the
// ciphertext we just produced.
func NewCFB8(secret []byte, decrypt bool) (*CFB8, error) {
	if len(secret) != SecretSize {
		return nil, fmt.Errorf("shared secret must be %d bytes, got %d", SecretSize, len(secret))
	}
	block, err := aes.NewCipher(secret)
	if err != nil {
		return nil, err
	}
	c := &CFB8{block: block, decrypt: decrypt}
	copy(c.reg[:], secret)
	return c, nil
}

// NewPair returns the encrypt-direction and decrypt-direction states for
// one connection, both seeded from the same secret.
func NewPair(secret []byte) (enc, dec *CFB8, err error) {
	enc, err = NewCFB8(secret, false)
	if err != nil {
		return nil, nil, err
	}
	dec, err = NewCFB8(secret, true)
	if err != nil {
		return nil, nil, err
	}
	return enc, dec, nil
}

// XORKeyStream transforms src into dst in place-compatible fashion: dst
// and src may be the same slice. Each byte encrypts the register, XORs
// with the top keystream byte, then shifts one feedback byte in.
func (c *CFB8) XORKeyStream(dst, src []byte) {
	for i := range src {
		c.block.Encrypt(c.scratch[:], c.reg[:])
		v := src[i] ^ c.scratch[0]
		feedback := v
		if c.decrypt {
			feedback = src[i]
		}
		copy(c.reg[:], c.reg[1:])
		c.reg[aes.BlockSize-1] = feedback
		dst[i] = v
	}
}
