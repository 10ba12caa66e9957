package packet

import (
	"bytes"

	"github.com/mcwire/mcwire/internal/nbt"
	"github.com/mcwire/mcwire/internal/wire"
)

// Play-state ids change between protocol revisions far more than the
// other states; the ones here are for ProtocolVersion.

// ClientboundPlayDisconnect closes the connection; unlike the login and
// configuration variants, the reason is a text component as a tag tree.
type ClientboundPlayDisconnect struct {
	Reason nbt.Compound
}

func (p *ClientboundPlayDisconnect) ID() int32 { return 0x1d }

func (p *ClientboundPlayDisconnect) Encode(b *bytes.Buffer) error {
	return nbt.WriteNetwork(b, p.Reason)
}

func (p *ClientboundPlayDisconnect) Decode(c *wire.Cursor) error {
	var err error
	p.Reason, err = nbt.ReadNetwork(c)
	return err
}

// ClientboundPlayKeepAlive is the server's liveness probe.
type ClientboundPlayKeepAlive struct{ keepAlive }

func (p *ClientboundPlayKeepAlive) ID() int32                   { return 0x27 }
func (p *ClientboundPlayKeepAlive) Encode(b *bytes.Buffer) error { return p.encode(b) }
func (p *ClientboundPlayKeepAlive) Decode(c *wire.Cursor) error  { return p.decode(c) }

// ServerboundPlayKeepAlive echoes the probe.
type ServerboundPlayKeepAlive struct{ keepAlive }

func (p *ServerboundPlayKeepAlive) ID() int32                   { return 0x1a }
func (p *ServerboundPlayKeepAlive) Encode(b *bytes.Buffer) error { return p.encode(b) }
func (p *ServerboundPlayKeepAlive) Decode(c *wire.Cursor) error  { return p.decode(c) }

// ClientboundPing is the synchronous ping used to fence packet
// processing; the client must answer with a Pong carrying the same id.
type ClientboundPing struct {
	PingID int32
}

func (p *ClientboundPing) ID() int32 { return 0x36 }

func (p *ClientboundPing) Encode(b *bytes.Buffer) error {
	wire.WriteInt32(b, p.PingID)
	return nil
}

func (p *ClientboundPing) Decode(c *wire.Cursor) error {
	var err error
	p.PingID, err = wire.ReadInt32(c)
	return err
}

// ServerboundPong answers ClientboundPing.
type ServerboundPong struct {
	PingID int32
}

func (p *ServerboundPong) ID() int32 { return 0x28 }

func (p *ServerboundPong) Encode(b *bytes.Buffer) error {
	wire.WriteInt32(b, p.PingID)
	return nil
}

func (p *ServerboundPong) Decode(c *wire.Cursor) error {
	var err error
	p.PingID, err = wire.ReadInt32(c)
	return err
}

// ClientboundSystemChat is a non-player chat message: a text component
// tag tree plus an overlay flag (action bar vs chat window).
type ClientboundSystemChat struct {
	Content nbt.Compound
	Overlay bool
}

func (p *ClientboundSystemChat) ID() int32 { return 0x6c }

func (p *ClientboundSystemChat) Encode(b *bytes.Buffer) error {
	if err := nbt.WriteNetwork(b, p.Content); err != nil {
		return err
	}
	wire.WriteBool(b, p.Overlay)
	return nil
}

func (p *ClientboundSystemChat) Decode(c *wire.Cursor) error {
	var err error
	if p.Content, err = nbt.ReadNetwork(c); err != nil {
		return err
	}
	p.Overlay, err = wire.ReadBool(c)
	return err
}

// ClientboundStartConfiguration pulls the client back into the
// Configuration state — the one designed backwards edge in the
// lifecycle, used for reconfiguration without a reconnect. The client
// confirms with ServerboundConfigurationAcknowledged.
type ClientboundStartConfiguration struct{}

func (p *ClientboundStartConfiguration) ID() int32                  { return 0x70 }
func (p *ClientboundStartConfiguration) Encode(*bytes.Buffer) error { return nil }
func (p *ClientboundStartConfiguration) Decode(*wire.Cursor) error  { return nil }

// ServerboundConfigurationAcknowledged confirms re-entry; delivering it
// moves the connection back to Configuration.
type ServerboundConfigurationAcknowledged struct{}

func (p *ServerboundConfigurationAcknowledged) ID() int32                  { return 0x0e }
func (p *ServerboundConfigurationAcknowledged) Encode(*bytes.Buffer) error { return nil }
func (p *ServerboundConfigurationAcknowledged) Decode(*wire.Cursor) error  { return nil }
func (p *ServerboundConfigurationAcknowledged) NextState() State           { return Configuration }
