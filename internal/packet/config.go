package packet

import (
	"bytes"

	"github.com/mcwire/mcwire/internal/nbt"
	"github.com/mcwire/mcwire/internal/wire"
)

// ChatVisibility is the client's chat filter setting.
type ChatVisibility int32

const (
	ChatFull ChatVisibility = iota
	ChatSystemOnly
	ChatHidden
)

func readChatVisibility(c *wire.Cursor) (ChatVisibility, error) {
	v, err := wire.ReadVarInt(c)
	if err != nil {
		return 0, err
	}
	if v < int32(ChatFull) || v > int32(ChatHidden) {
		return 0, &wire.DiscriminantError{What: "chat visibility", Value: v}
	}
	return ChatVisibility(v), nil
}

// Arm selects the main hand of the player model.
type Arm int32

const (
	ArmLeft Arm = iota
	ArmRight
)

func readArm(c *wire.Cursor) (Arm, error) {
	v, err := wire.ReadVarInt(c)
	if err != nil {
		return 0, err
	}
	if v != int32(ArmLeft) && v != int32(ArmRight) {
		return 0, &wire.DiscriminantError{What: "main hand", Value: v}
	}
	return Arm(v), nil
}

// ServerboundClientInformation reports the client's settings; sent once
// on entering Configuration and again whenever they change.
type ServerboundClientInformation struct {
	Locale             string // max 16 chars, e.g. "en_us"
	ViewDistance       int8
	ChatVisibility     ChatVisibility
	ChatColors         bool
	ModelCustomization uint8 // skin layer bitmask
	MainHand           Arm
	TextFiltering      bool
	AllowListing       bool
}

func (p *ServerboundClientInformation) ID() int32 { return 0x00 }

func (p *ServerboundClientInformation) Encode(b *bytes.Buffer) error {
	wire.WriteString(b, p.Locale)
	wire.WriteInt8(b, p.ViewDistance)
	wire.WriteVarInt(b, int32(p.ChatVisibility))
	wire.WriteBool(b, p.ChatColors)
	wire.WriteUint8(b, p.ModelCustomization)
	wire.WriteVarInt(b, int32(p.MainHand))
	wire.WriteBool(b, p.TextFiltering)
	wire.WriteBool(b, p.AllowListing)
	return nil
}

func (p *ServerboundClientInformation) Decode(c *wire.Cursor) error {
	var err error
	if p.Locale, err = wire.ReadStringLimited(c, 16); err != nil {
		return err
	}
	if p.ViewDistance, err = wire.ReadInt8(c); err != nil {
		return err
	}
	if p.ChatVisibility, err = readChatVisibility(c); err != nil {
		return err
	}
	if p.ChatColors, err = wire.ReadBool(c); err != nil {
		return err
	}
	if p.ModelCustomization, err = wire.ReadUint8(c); err != nil {
		return err
	}
	if p.MainHand, err = readArm(c); err != nil {
		return err
	}
	if p.TextFiltering, err = wire.ReadBool(c); err != nil {
		return err
	}
	p.AllowListing, err = wire.ReadBool(c)
	return err
}

// customPayload is the shared shape of the plugin-channel packets: a
// channel identifier and an opaque body that runs to the end of the
// frame.
type customPayload struct {
	Identifier string
	Data       []byte
}

func (p *customPayload) encode(b *bytes.Buffer) error {
	wire.WriteString(b, p.Identifier)
	b.Write(p.Data)
	return nil
}

func (p *customPayload) decode(c *wire.Cursor) error {
	var err error
	if p.Identifier, err = wire.ReadString(c); err != nil {
		return err
	}
	p.Data = append([]byte(nil), c.Rest()...)
	return nil
}

// ServerboundConfigCustomPayload carries a plugin-channel message.
type ServerboundConfigCustomPayload struct{ customPayload }

func (p *ServerboundConfigCustomPayload) ID() int32                   { return 0x02 }
func (p *ServerboundConfigCustomPayload) Encode(b *bytes.Buffer) error { return p.encode(b) }
func (p *ServerboundConfigCustomPayload) Decode(c *wire.Cursor) error  { return p.decode(c) }

// ClientboundConfigCustomPayload carries a plugin-channel message.
type ClientboundConfigCustomPayload struct{ customPayload }

func (p *ClientboundConfigCustomPayload) ID() int32                   { return 0x01 }
func (p *ClientboundConfigCustomPayload) Encode(b *bytes.Buffer) error { return p.encode(b) }
func (p *ClientboundConfigCustomPayload) Decode(c *wire.Cursor) error  { return p.decode(c) }

// ClientboundConfigDisconnect closes the connection with a JSON reason.
type ClientboundConfigDisconnect struct {
	Reason string
}

func (p *ClientboundConfigDisconnect) ID() int32 { return 0x02 }

func (p *ClientboundConfigDisconnect) Encode(b *bytes.Buffer) error {
	wire.WriteString(b, p.Reason)
	return nil
}

func (p *ClientboundConfigDisconnect) Decode(c *wire.Cursor) error {
	var err error
	p.Reason, err = wire.ReadString(c)
	return err
}

// ClientboundFinishConfiguration announces the server is done
// configuring; the client answers with the serverbound twin.
type ClientboundFinishConfiguration struct{}

func (p *ClientboundFinishConfiguration) ID() int32                  { return 0x03 }
func (p *ClientboundFinishConfiguration) Encode(*bytes.Buffer) error { return nil }
func (p *ClientboundFinishConfiguration) Decode(*wire.Cursor) error  { return nil }

// ServerboundFinishConfiguration acknowledges the end of Configuration;
// delivering it moves the connection into Play.
type ServerboundFinishConfiguration struct{}

func (p *ServerboundFinishConfiguration) ID() int32                  { return 0x03 }
func (p *ServerboundFinishConfiguration) Encode(*bytes.Buffer) error { return nil }
func (p *ServerboundFinishConfiguration) Decode(*wire.Cursor) error  { return nil }
func (p *ServerboundFinishConfiguration) NextState() State           { return Play }

// keepAlive is the shared shape of the liveness probes: an opaque id the
// peer must echo back.
type keepAlive struct {
	KeepAliveID int64
}

func (p *keepAlive) encode(b *bytes.Buffer) error {
	wire.WriteInt64(b, p.KeepAliveID)
	return nil
}

func (p *keepAlive) decode(c *wire.Cursor) error {
	var err error
	p.KeepAliveID, err = wire.ReadInt64(c)
	return err
}

// ClientboundConfigKeepAlive is the server's liveness probe.
type ClientboundConfigKeepAlive struct{ keepAlive }

func (p *ClientboundConfigKeepAlive) ID() int32                   { return 0x04 }
func (p *ClientboundConfigKeepAlive) Encode(b *bytes.Buffer) error { return p.encode(b) }
func (p *ClientboundConfigKeepAlive) Decode(c *wire.Cursor) error  { return p.decode(c) }

// ServerboundConfigKeepAlive echoes the probe.
type ServerboundConfigKeepAlive struct{ keepAlive }

func (p *ServerboundConfigKeepAlive) ID() int32                   { return 0x04 }
func (p *ServerboundConfigKeepAlive) Encode(b *bytes.Buffer) error { return p.encode(b) }
func (p *ServerboundConfigKeepAlive) Decode(c *wire.Cursor) error  { return p.decode(c) }

// RegistryEntry is one keyed entry of a data-driven registry; the payload
// tag tree is optional on the wire.
type RegistryEntry struct {
	Key  string // resource location
	Data nbt.Compound
}

func readRegistryEntry(c *wire.Cursor) (RegistryEntry, error) {
	var e RegistryEntry
	var err error
	if e.Key, err = wire.ReadString(c); err != nil {
		return e, err
	}
	present, err := wire.ReadBool(c)
	if err != nil {
		return e, err
	}
	if present {
		e.Data, err = nbt.ReadNetwork(c)
	}
	return e, err
}

func writeRegistryEntry(b *bytes.Buffer, e RegistryEntry) {
	wire.WriteString(b, e.Key)
	wire.WriteBool(b, e.Data != nil)
	if e.Data != nil {
		// Sorted-key compound encoding cannot fail.
		_ = nbt.WriteNetwork(b, e.Data)
	}
}

// ClientboundRegistryData streams one data-driven registry (biomes,
// dimension types, ...) during Configuration.
type ClientboundRegistryData struct {
	Registry string // resource location of the registry itself
	Entries  []RegistryEntry
}

func (p *ClientboundRegistryData) ID() int32 { return 0x07 }

func (p *ClientboundRegistryData) Encode(b *bytes.Buffer) error {
	wire.WriteString(b, p.Registry)
	wire.WriteList(b, p.Entries, writeRegistryEntry)
	return nil
}

func (p *ClientboundRegistryData) Decode(c *wire.Cursor) error {
	var err error
	if p.Registry, err = wire.ReadString(c); err != nil {
		return err
	}
	p.Entries, err = wire.ReadList(c, readRegistryEntry)
	return err
}
