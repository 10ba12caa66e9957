package packet

import (
	"bytes"

	"github.com/mcwire/mcwire/internal/wire"
)

// Intent is the connection purpose declared in the handshake.
type Intent int32

const (
	IntentStatus   Intent = 1
	IntentLogin    Intent = 2
	IntentTransfer Intent = 3
)

func readIntent(c *wire.Cursor) (Intent, error) {
	v, err := wire.ReadVarInt(c)
	if err != nil {
		return 0, err
	}
	if v < int32(IntentStatus) || v > int32(IntentTransfer) {
		return 0, &wire.DiscriminantError{What: "intent", Value: v}
	}
	return Intent(v), nil
}

// ServerboundIntention opens every connection: it names the protocol
// revision the client speaks and which branch of the lifecycle it wants.
// Delivering it moves the connection out of Handshake.
type ServerboundIntention struct {
	ProtocolVersion int32
	HostName        string // the address the client dialed, max 255 chars
	Port            uint16
	Intent          Intent
}

func (p *ServerboundIntention) ID() int32 { return 0x00 }

func (p *ServerboundIntention) Encode(b *bytes.Buffer) error {
	wire.WriteVarInt(b, p.ProtocolVersion)
	wire.WriteString(b, p.HostName)
	wire.WriteUint16(b, p.Port)
	wire.WriteVarInt(b, int32(p.Intent))
	return nil
}

func (p *ServerboundIntention) Decode(c *wire.Cursor) error {
	var err error
	if p.ProtocolVersion, err = wire.ReadVarInt(c); err != nil {
		return err
	}
	if p.HostName, err = wire.ReadStringLimited(c, 255); err != nil {
		return err
	}
	if p.Port, err = wire.ReadUint16(c); err != nil {
		return err
	}
	p.Intent, err = readIntent(c)
	return err
}

// NextState branches on the declared intent; a transfer login still lands
// in Login.
func (p *ServerboundIntention) NextState() State {
	if p.Intent == IntentStatus {
		return Status
	}
	return Login
}
