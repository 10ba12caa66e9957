// Package packet defines the packet schemas for every connection state
// and the static lookup tables that gate which ids are legal when. Each
// schema is a fixed field list encoded and decoded with the primitive
// codec in internal/wire; nothing here interprets what a packet means.
package packet

import (
	"bytes"
	"fmt"

	"github.com/mcwire/mcwire/internal/util"
	"github.com/mcwire/mcwire/internal/wire"
)

// Packet is one wire packet schema. Decode reads the body (everything
// after the id) from a cursor over the frame; Encode appends the body to
// a buffer. Implementations are plain structs — a decoded packet is a
// single-owner value handed off by move, never shared mutably.
type Packet interface {
	ID() int32
	Encode(b *bytes.Buffer) error
	Decode(c *wire.Cursor) error
}

// Transitioner is implemented by the packets that advance the connection
// state as a side effect of being delivered (decoded inbound or enqueued
// outbound). The connection applies NextState atomically with delivery,
// so the next packet is always looked up in the new state's tables.
type Transitioner interface {
	Packet
	NextState() State
}

// UnknownPacketError reports an id with no schema in the table for the
// current state and direction. It names all three because this is the
// first symptom of a protocol-version mismatch.
type UnknownPacketError struct {
	State     State
	Direction Direction
	ID        int32
}

func (e *UnknownPacketError) Error() string {
	return fmt.Sprintf("unknown packet id 0x%02x in %s %s", e.ID, e.Direction, e.State)
}

// ---------------------------------------------------------------------------
// Registry
// ---------------------------------------------------------------------------

type registryKey struct {
	state State
	dir   Direction
	id    int32
}

// registry maps (state, direction, id) to a constructor for the matching
// schema. It is populated once by the register calls below and never
// mutated afterwards — the closed, exhaustive table the protocol needs.
var registry = map[registryKey]func() Packet{}

func register(s State, d Direction, f func() Packet) {
	k := registryKey{state: s, dir: d, id: f().ID()}
	if _, dup := registry[k]; dup {
		panic(fmt.Sprintf("duplicate packet registration: %s %s 0x%02x", d, s, k.id))
	}
	registry[k] = f
}

func init() {
	// Handshake
	register(Handshake, Serverbound, func() Packet { return &ServerboundIntention{} })

	// Status
	register(Status, Serverbound, func() Packet { return &ServerboundStatusRequest{} })
	register(Status, Serverbound, func() Packet { return &ServerboundPingRequest{} })
	register(Status, Clientbound, func() Packet { return &ClientboundStatusResponse{} })
	register(Status, Clientbound, func() Packet { return &ClientboundPongResponse{} })

	// Login
	register(Login, Serverbound, func() Packet { return &ServerboundHello{} })
	register(Login, Serverbound, func() Packet { return &ServerboundKey{} })
	register(Login, Serverbound, func() Packet { return &ServerboundLoginAcknowledged{} })
	register(Login, Clientbound, func() Packet { return &ClientboundLoginDisconnect{} })
	register(Login, Clientbound, func() Packet { return &ClientboundHello{} })
	register(Login, Clientbound, func() Packet { return &ClientboundLoginFinished{} })
	register(Login, Clientbound, func() Packet { return &ClientboundLoginCompression{} })

	// Configuration
	register(Configuration, Serverbound, func() Packet { return &ServerboundClientInformation{} })
	register(Configuration, Serverbound, func() Packet { return &ServerboundConfigCustomPayload{} })
	register(Configuration, Serverbound, func() Packet { return &ServerboundFinishConfiguration{} })
	register(Configuration, Serverbound, func() Packet { return &ServerboundConfigKeepAlive{} })
	register(Configuration, Clientbound, func() Packet { return &ClientboundConfigCustomPayload{} })
	register(Configuration, Clientbound, func() Packet { return &ClientboundConfigDisconnect{} })
	register(Configuration, Clientbound, func() Packet { return &ClientboundFinishConfiguration{} })
	register(Configuration, Clientbound, func() Packet { return &ClientboundConfigKeepAlive{} })
	register(Configuration, Clientbound, func() Packet { return &ClientboundRegistryData{} })

	// Play
	register(Play, Serverbound, func() Packet { return &ServerboundConfigurationAcknowledged{} })
	register(Play, Serverbound, func() Packet { return &ServerboundPlayKeepAlive{} })
	register(Play, Serverbound, func() Packet { return &ServerboundPong{} })
	register(Play, Clientbound, func() Packet { return &ClientboundPlayDisconnect{} })
	register(Play, Clientbound, func() Packet { return &ClientboundPlayKeepAlive{} })
	register(Play, Clientbound, func() Packet { return &ClientboundPing{} })
	register(Play, Clientbound, func() Packet { return &ClientboundSystemChat{} })
	register(Play, Clientbound, func() Packet { return &ClientboundStartConfiguration{} })
}

// Lookup returns a fresh packet value for (state, direction, id).
func Lookup(s State, d Direction, id int32) (Packet, error) {
	f, ok := registry[registryKey{state: s, dir: d, id: id}]
	if !ok {
		return nil, &UnknownPacketError{State: s, Direction: d, ID: id}
	}
	return f(), nil
}

// ---------------------------------------------------------------------------
// Frame payload <-> packet value
// ---------------------------------------------------------------------------

// Marshal serializes p into a frame payload: VarInt id, then body.
func Marshal(p Packet) ([]byte, error) {
	var b bytes.Buffer
	wire.WriteVarInt(&b, p.ID())
	if err := p.Encode(&b); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// Unmarshal decodes a frame payload against the table for (state, dir).
// Decode is all-or-nothing: on error the partially-read payload is
// discarded with the connection. Trailing bytes after the body are the
// mark of a lenient or newer peer — logged, not fatal.
func Unmarshal(s State, d Direction, payload []byte) (Packet, error) {
	c := wire.NewCursor(payload)
	id, err := wire.ReadVarInt(c)
	if err != nil {
		return nil, err
	}
	p, err := Lookup(s, d, id)
	if err != nil {
		return nil, err
	}
	if err := p.Decode(c); err != nil {
		return nil, fmt.Errorf("decode %s %s 0x%02x: %w", d, s, id, err)
	}
	if n := c.Remaining(); n > 0 {
		util.Warnf("%d trailing bytes after %s %s 0x%02x", n, d, s, id)
	}
	return p, nil
}
