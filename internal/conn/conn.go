// Package conn owns one protocol connection: the framed, optionally
// compressed and encrypted byte stream on one side, typed packet values
// on the other, and the state machine that decides which packet shapes
// are legal in between. Any decode error is fatal to the connection and
// only the connection — the caller's correct response is Close, maybe
// after logging the typed detail.
package conn

import (
	"net"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/mcwire/mcwire/internal/crypto"
	"github.com/mcwire/mcwire/internal/frame"
	"github.com/mcwire/mcwire/internal/packet"
	"github.com/mcwire/mcwire/internal/util"
)

// Conn is one live protocol connection. The read path and the write path
// are independent and may run concurrently with each other, but each is
// strictly sequential: one frame is processed fully before the next,
// because packet order drives state transitions.
type Conn struct {
	raw net.Conn
	in  *cipherReader
	out *cipherWriter
	fr  *frame.Reader
	fw  *frame.Writer

	readDir  packet.Direction
	writeDir packet.Direction

	writeMu sync.Mutex // serializes frame writes and outbound transitions

	stateMu sync.RWMutex
	state   packet.State

	encrypted bool
}

// NewClient wraps an established transport as the client end: reads are
// clientbound packets, writes are serverbound, state starts at Handshake.
func NewClient(raw net.Conn) *Conn {
	in := &cipherReader{src: raw}
	out := &cipherWriter{dst: raw}
	return &Conn{
		raw:      raw,
		in:       in,
		out:      out,
		fr:       frame.NewReader(in),
		fw:       frame.NewWriter(out),
		readDir:  packet.Clientbound,
		writeDir: packet.Serverbound,
		state:    packet.Handshake,
	}
}

// State returns the current lifecycle state. Safe to call from any
// goroutine; only packet delivery mutates it.
func (c *Conn) State() packet.State {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.state
}

func (c *Conn) setState(s packet.State) {
	c.stateMu.Lock()
	old := c.state
	c.state = s
	c.stateMu.Unlock()
	if old != s {
		util.Debugf("state %s -> %s", old, s)
	}
}

// ReadPacket blocks for the next inbound frame, decodes it against the
// current state's table, and applies any state transition atomically
// with returning the packet. Errors are never retryable.
func (c *Conn) ReadPacket() (packet.Packet, error) {
	payload, err := c.fr.Read()
	if err != nil {
		return nil, err
	}
	util.Stats.AddBytesRead(len(payload))

	p, err := packet.Unmarshal(c.State(), c.readDir, payload)
	if err != nil {
		return nil, err
	}
	if t, ok := p.(packet.Transitioner); ok {
		c.setState(t.NextState())
	}
	util.Stats.AddPacketRead()
	return p, nil
}

// WritePacket serializes and frames p. The state transition of an
// outbound transition packet applies before the write lock is released,
// so the very next packet on either path sees the new state.
func (c *Conn) WritePacket(p packet.Packet) error {
	payload, err := packet.Marshal(p)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.fw.Write(payload); err != nil {
		return err
	}
	if t, ok := p.(packet.Transitioner); ok {
		c.setState(t.NextState())
	}
	util.Stats.AddPacketWritten()
	util.Stats.AddBytesSent(len(payload))
	return nil
}

// EnableEncryption installs the shared secret produced by the external
// key exchange. Both directions get independent cipher states. May be
// called at most once per connection.
func (c *Conn) EnableEncryption(secret []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.encrypted {
		return errors.New("encryption already enabled")
	}
	enc, dec, err := crypto.NewPair(secret)
	if err != nil {
		return err
	}
	c.out.enable(enc)
	c.in.enable(dec)
	c.encrypted = true
	return nil
}

// SetCompressionThreshold turns on compressed framing in both directions
// from the next frame on. A negative threshold is a no-op (the server's
// way of saying compression stays off).
func (c *Conn) SetCompressionThreshold(threshold int) {
	if threshold < 0 {
		return
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.fr.EnableCompression()
	c.fw.SetThreshold(threshold)
}

// SetDeadline bounds both directions' blocking I/O.
func (c *Conn) SetDeadline(t time.Time) error {
	return c.raw.SetDeadline(t)
}

// RemoteAddr returns the peer's address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.raw.RemoteAddr()
}

// Close tears the connection down. In-flight reads and writes unblock
// with errors; buffered frames are discarded. Secret material dies with
// the cipher states when the Conn is collected.
func (c *Conn) Close() error {
	return c.raw.Close()
}
