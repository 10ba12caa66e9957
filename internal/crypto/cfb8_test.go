package crypto

import (
	"bytes"
	"math/rand"
	"testing"
)

func testSecret() []byte {
	s := make([]byte, SecretSize)
	for i := range s {
		s[i] = byte(i * 7)
	}
	return s
}

// TestEncryptDecryptSymmetry verifies that a fresh matching pair of
// cipher states is a perfect inverse, for sizes from empty through
// several blocks plus a partial block.
func TestEncryptDecryptSymmetry(t *testing.T) {
	sizes := []int{0, 1, 15, 16, 17, 32, 33, 100}

	for _, n := range sizes {
		enc, dec, err := NewPair(testSecret())
		if err != nil {
			t.Fatalf("NewPair: %v", err)
		}

		src := make([]byte, n)
		rng := rand.New(rand.NewSource(int64(n)))
		rng.Read(src)

		ct := make([]byte, n)
		enc.XORKeyStream(ct, src)
		if n > 0 && bytes.Equal(ct, src) {
			t.Errorf("size %d: ciphertext equals plaintext", n)
		}

		pt := make([]byte, n)
		dec.XORKeyStream(pt, ct)
		if !bytes.Equal(pt, src) {
			t.Errorf("size %d: decrypt(encrypt(x)) != x", n)
		}
	}
}

// TestSymmetryAcrossChunks verifies the register carries across calls:
// decrypting in different chunk sizes than encryption still inverts.
func TestSymmetryAcrossChunks(t *testing.T) {
	enc, dec, err := NewPair(testSecret())
	if err != nil {
		t.Fatal(err)
	}

	src := []byte("frame one, frame two, and part of a third frame")
	ct := make([]byte, len(src))
	// Encrypt in awkward chunk sizes.
	for i := 0; i < len(src); {
		end := i + 7
		if end > len(src) {
			end = len(src)
		}
		enc.XORKeyStream(ct[i:end], src[i:end])
		i = end
	}

	pt := make([]byte, len(ct))
	dec.XORKeyStream(pt, ct)
	if !bytes.Equal(pt, src) {
		t.Error("chunked encrypt / whole decrypt mismatch")
	}
}

// TestInPlace verifies dst and src may alias.
func TestInPlace(t *testing.T) {
	enc, dec, err := NewPair(testSecret())
	if err != nil {
		t.Fatal(err)
	}
	buf := []byte("in-place transform")
	want := append([]byte(nil), buf...)

	enc.XORKeyStream(buf, buf)
	dec.XORKeyStream(buf, buf)
	if !bytes.Equal(buf, want) {
		t.Error("in-place round trip mismatch")
	}
}

// TestDirectionsIndependent verifies the two directions of one pair do
// not share a register: traffic on one must not desync the other.
func TestDirectionsIndependent(t *testing.T) {
	encA, decA, _ := NewPair(testSecret())
	encB, decB, _ := NewPair(testSecret())

	// Push traffic through A's encrypt side only.
	junk := make([]byte, 40)
	encA.XORKeyStream(junk, junk)

	// A's decrypt side must still match a fresh encrypt stream.
	src := []byte("independent registers")
	ct := make([]byte, len(src))
	encB.XORKeyStream(ct, src)

	pt := make([]byte, len(ct))
	decA.XORKeyStream(pt, ct)
	if !bytes.Equal(pt, src) {
		t.Error("decrypt register was advanced by encrypt traffic")
	}
	_ = decB
}

func TestSecretSizeValidation(t *testing.T) {
	for _, n := range []int{0, 8, 15, 17, 32} {
		if _, _, err := NewPair(make([]byte, n)); err == nil {
			t.Errorf("secret of %d bytes accepted", n)
		}
	}
}
