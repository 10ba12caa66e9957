package packet

import (
	"bytes"

	"github.com/google/uuid"

	"github.com/mcwire/mcwire/internal/wire"
)

// ServerboundHello starts login with the profile the client claims.
type ServerboundHello struct {
	Name      string // max 16 chars
	ProfileID uuid.UUID
}

func (p *ServerboundHello) ID() int32 { return 0x00 }

func (p *ServerboundHello) Encode(b *bytes.Buffer) error {
	wire.WriteString(b, p.Name)
	wire.WriteUUID(b, p.ProfileID)
	return nil
}

func (p *ServerboundHello) Decode(c *wire.Cursor) error {
	var err error
	if p.Name, err = wire.ReadStringLimited(c, 16); err != nil {
		return err
	}
	p.ProfileID, err = wire.ReadUUID(c)
	return err
}

// ClientboundLoginDisconnect rejects the login with a JSON text reason.
type ClientboundLoginDisconnect struct {
	Reason string
}

func (p *ClientboundLoginDisconnect) ID() int32 { return 0x00 }

func (p *ClientboundLoginDisconnect) Encode(b *bytes.Buffer) error {
	wire.WriteString(b, p.Reason)
	return nil
}

func (p *ClientboundLoginDisconnect) Decode(c *wire.Cursor) error {
	var err error
	p.Reason, err = wire.ReadString(c)
	return err
}

// ClientboundHello is the encryption request: the server's public key and
// a challenge the client must return encrypted under it. The asymmetric
// exchange that turns this into a shared secret happens outside this
// layer; only the resulting secret comes back in through the connection's
// EnableEncryption.
type ClientboundHello struct {
	ServerID           string // max 20 chars
	PublicKey          []byte // DER-encoded RSA public key
	Challenge          []byte
	ShouldAuthenticate bool
}

func (p *ClientboundHello) ID() int32 { return 0x01 }

func (p *ClientboundHello) Encode(b *bytes.Buffer) error {
	wire.WriteString(b, p.ServerID)
	wire.WriteByteSlice(b, p.PublicKey)
	wire.WriteByteSlice(b, p.Challenge)
	wire.WriteBool(b, p.ShouldAuthenticate)
	return nil
}

func (p *ClientboundHello) Decode(c *wire.Cursor) error {
	var err error
	if p.ServerID, err = wire.ReadStringLimited(c, 20); err != nil {
		return err
	}
	if p.PublicKey, err = wire.ReadByteSlice(c); err != nil {
		return err
	}
	if p.Challenge, err = wire.ReadByteSlice(c); err != nil {
		return err
	}
	p.ShouldAuthenticate, err = wire.ReadBool(c)
	return err
}

// ServerboundKey answers the encryption request: the shared secret and
// the challenge, both encrypted under the server's public key.
type ServerboundKey struct {
	KeyBytes           []byte
	EncryptedChallenge []byte
}

func (p *ServerboundKey) ID() int32 { return 0x01 }

func (p *ServerboundKey) Encode(b *bytes.Buffer) error {
	wire.WriteByteSlice(b, p.KeyBytes)
	wire.WriteByteSlice(b, p.EncryptedChallenge)
	return nil
}

func (p *ServerboundKey) Decode(c *wire.Cursor) error {
	var err error
	if p.KeyBytes, err = wire.ReadByteSlice(c); err != nil {
		return err
	}
	p.EncryptedChallenge, err = wire.ReadByteSlice(c)
	return err
}

// ProfileProperty is one signed attribute of a game profile (skin,
// cape). The signature is optional on the wire.
type ProfileProperty struct {
	Name      string
	Value     string
	Signature *string
}

func readProfileProperty(c *wire.Cursor) (ProfileProperty, error) {
	var p ProfileProperty
	var err error
	if p.Name, err = wire.ReadStringLimited(c, 64); err != nil {
		return p, err
	}
	if p.Value, err = wire.ReadString(c); err != nil {
		return p, err
	}
	p.Signature, err = wire.ReadOption(c, wire.ReadString)
	return p, err
}

func writeProfileProperty(b *bytes.Buffer, p ProfileProperty) {
	wire.WriteString(b, p.Name)
	wire.WriteString(b, p.Value)
	wire.WriteOption(b, p.Signature, wire.WriteString)
}

// ClientboundLoginFinished (login success) carries the authoritative
// profile the server settled on.
type ClientboundLoginFinished struct {
	ProfileID  uuid.UUID
	Username   string
	Properties []ProfileProperty
}

func (p *ClientboundLoginFinished) ID() int32 { return 0x02 }

func (p *ClientboundLoginFinished) Encode(b *bytes.Buffer) error {
	wire.WriteUUID(b, p.ProfileID)
	wire.WriteString(b, p.Username)
	wire.WriteList(b, p.Properties, writeProfileProperty)
	return nil
}

func (p *ClientboundLoginFinished) Decode(c *wire.Cursor) error {
	var err error
	if p.ProfileID, err = wire.ReadUUID(c); err != nil {
		return err
	}
	if p.Username, err = wire.ReadStringLimited(c, 16); err != nil {
		return err
	}
	p.Properties, err = wire.ReadListLimited(c, 16, readProfileProperty)
	return err
}

// ClientboundLoginCompression tells the client the threshold at or above
// which frames are compressed from the next frame on. A negative
// threshold disables compression.
type ClientboundLoginCompression struct {
	Threshold int32
}

func (p *ClientboundLoginCompression) ID() int32 { return 0x03 }

func (p *ClientboundLoginCompression) Encode(b *bytes.Buffer) error {
	wire.WriteVarInt(b, p.Threshold)
	return nil
}

func (p *ClientboundLoginCompression) Decode(c *wire.Cursor) error {
	var err error
	p.Threshold, err = wire.ReadVarInt(c)
	return err
}

// ServerboundLoginAcknowledged confirms login is over; delivering it
// moves the connection into Configuration.
type ServerboundLoginAcknowledged struct{}

func (p *ServerboundLoginAcknowledged) ID() int32                  { return 0x03 }
func (p *ServerboundLoginAcknowledged) Encode(*bytes.Buffer) error { return nil }
func (p *ServerboundLoginAcknowledged) Decode(*wire.Cursor) error  { return nil }
func (p *ServerboundLoginAcknowledged) NextState() State           { return Configuration }
