// Package wire implements the primitive value codec shared by every packet
// schema: fixed-width big-endian numbers, VarInt/VarLong, length-prefixed
// strings and collections, optionals, and UUIDs. Every variable-length read
// checks its declared size against a cap before allocating, so hostile
// lengths fail cheaply instead of exhausting memory.
package wire

// Cursor is a read position over one decoded frame held fully in memory.
// It never copies the backing slice; reads hand out sub-slices and advance
// the position. A failed read leaves the cursor unusable for the caller —
// decode is all-or-nothing, there is no resumable partial state.
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor wraps buf with a cursor positioned at its start.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Position returns the number of bytes consumed so far.
func (c *Cursor) Position() int { return c.pos }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.buf) - c.pos }

// Read returns the next n bytes as a sub-slice of the backing buffer and
// advances the position. The bounds check happens before anything else, so
// the position can never pass the end. Callers that keep the bytes past
// the life of the frame must copy them.
func (c *Cursor) Read(n int) ([]byte, error) {
	if n < 0 || n > c.Remaining() {
		return nil, &TruncatedError{Attempted: n, Available: c.Remaining()}
	}
	out := c.buf[c.pos : c.pos+n]
	c.pos += n
	return out, nil
}

// ReadByte consumes and returns a single byte.
func (c *Cursor) ReadByte() (byte, error) {
	if c.Remaining() < 1 {
		return 0, &TruncatedError{Attempted: 1, Available: 0}
	}
	b := c.buf[c.pos]
	c.pos++
	return b, nil
}

// Rest consumes and returns everything left in the buffer. Used for
// trailing unsized byte arrays whose length is implied by the frame.
func (c *Cursor) Rest() []byte {
	out := c.buf[c.pos:]
	c.pos = len(c.buf)
	return out
}
