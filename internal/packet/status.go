package packet

import (
	"bytes"

	"github.com/mcwire/mcwire/internal/wire"
)

// ServerboundStatusRequest asks for the server-list description. Empty body.
type ServerboundStatusRequest struct{}

func (p *ServerboundStatusRequest) ID() int32                   { return 0x00 }
func (p *ServerboundStatusRequest) Encode(*bytes.Buffer) error  { return nil }
func (p *ServerboundStatusRequest) Decode(*wire.Cursor) error   { return nil }

// ClientboundStatusResponse carries the server-list description as a
// JSON document.
type ClientboundStatusResponse struct {
	Status string
}

func (p *ClientboundStatusResponse) ID() int32 { return 0x00 }

func (p *ClientboundStatusResponse) Encode(b *bytes.Buffer) error {
	wire.WriteString(b, p.Status)
	return nil
}

func (p *ClientboundStatusResponse) Decode(c *wire.Cursor) error {
	var err error
	p.Status, err = wire.ReadString(c)
	return err
}

// ServerboundPingRequest carries an opaque timestamp the server echoes
// back, used to measure round-trip time.
type ServerboundPingRequest struct {
	Time int64
}

func (p *ServerboundPingRequest) ID() int32 { return 0x01 }

func (p *ServerboundPingRequest) Encode(b *bytes.Buffer) error {
	wire.WriteInt64(b, p.Time)
	return nil
}

func (p *ServerboundPingRequest) Decode(c *wire.Cursor) error {
	var err error
	p.Time, err = wire.ReadInt64(c)
	return err
}

// ClientboundPongResponse echoes the ping timestamp.
type ClientboundPongResponse struct {
	Time int64
}

func (p *ClientboundPongResponse) ID() int32 { return 0x01 }

func (p *ClientboundPongResponse) Encode(b *bytes.Buffer) error {
	wire.WriteInt64(b, p.Time)
	return nil
}

func (p *ClientboundPongResponse) Decode(c *wire.Cursor) error {
	var err error
	p.Time, err = wire.ReadInt64(c)
	return err
}
