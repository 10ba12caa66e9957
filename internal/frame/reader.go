// Package frame delimits packets on the byte stream: a VarInt length
// prefix around every frame, and transparent zlib compression above a
// server-set threshold once the login phase turns it on. Any disagreement
// between declared and actual lengths is fatal to the connection — after
// a framing error the stream position cannot be trusted, so there is no
// resynchronization, only teardown.
package frame

import (
	"bufio"
	"bytes"
	"compress/zlib"
	"io"

	"github.com/pkg/errors"

	"github.com/mcwire/mcwire/internal/wire"
)

const (
	// MaxFrameSize is the largest frame payload the protocol allows:
	// the length prefix is capped at three VarInt bytes on the wire.
	MaxFrameSize = 1<<21 - 1

	// MaxDecompressedSize rejects decompression bombs: a frame may not
	// inflate past this regardless of what its marker declares.
	MaxDecompressedSize = 8 << 20
)

// Reader pulls one frame at a time off a byte stream. Reads are strictly
// sequential — one frame is consumed fully before the next begins — and
// the only blocking point is waiting for the bytes of a declared frame.
type Reader struct {
	src         *bufio.Reader
	compression bool
}

// NewReader wraps src. The stream handed in must already be past any
// transport-level transforms (decryption sits below this layer).
func NewReader(src io.Reader) *Reader {
	return &Reader{src: bufio.NewReader(src)}
}

// EnableCompression switches the reader into compressed-frame mode, where
// every frame body starts with an uncompressed-length marker.
func (r *Reader) EnableCompression() {
	r.compression = true
}

// Read returns the next frame's payload (packet id + body), decompressed
// when needed. io.EOF comes back untouched only when the stream ends
// cleanly between frames; truncation inside a frame is a TruncatedError.
func (r *Reader) Read() ([]byte, error) {
	length, err := readVarInt(r.src)
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, errors.Wrap(err, "read frame length")
	}
	if length <= 0 || length > MaxFrameSize {
		return nil, &wire.SizeLimitError{What: "frame", Declared: int(length), Max: MaxFrameSize}
	}

	body := make([]byte, length)
	if n, err := io.ReadFull(r.src, body); err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return nil, &wire.TruncatedError{Attempted: int(length), Available: n}
		}
		return nil, errors.Wrap(err, "read frame body")
	}

	if !r.compression {
		return body, nil
	}
	return inflate(body)
}

// inflate handles the compressed-frame form: a VarInt uncompressed-length
// marker, zero meaning the rest is raw, anything else meaning the rest is
// a zlib stream that must inflate to exactly that many bytes.
func inflate(body []byte) ([]byte, error) {
	c := wire.NewCursor(body)
	declared, err := wire.ReadVarInt(c)
	if err != nil {
		return nil, errors.Wrap(err, "read decompressed-length marker")
	}
	data := c.Rest()
	if declared == 0 {
		return data, nil
	}
	if declared < 0 || declared > MaxDecompressedSize {
		return nil, &wire.SizeLimitError{What: "decompressed frame", Declared: int(declared), Max: MaxDecompressedSize}
	}

	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "open zlib stream")
	}
	defer zr.Close()

	out := make([]byte, declared)
	if n, err := io.ReadFull(zr, out); err != nil {
		return nil, &wire.TruncatedError{Attempted: int(declared), Available: n}
	}
	// The marker lied small if the stream keeps going.
	var extra [1]byte
	if n, _ := zr.Read(extra[:]); n != 0 {
		return nil, errors.Errorf("frame inflates past its declared %d bytes", declared)
	}
	return out, nil
}

// readVarInt decodes the frame length prefix byte-by-byte off the stream,
// with the same 5-byte cap as the in-frame codec.
func readVarInt(src io.ByteReader) (int32, error) {
	var out uint32
	for i := 0; i < 5; i++ {
		b, err := src.ReadByte()
		if err != nil {
			if i > 0 && err == io.EOF {
				return 0, io.ErrUnexpectedEOF
			}
			return 0, err
		}
		out |= uint32(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			return int32(out), nil
		}
	}
	return 0, wire.ErrMalformedVarInt
}
