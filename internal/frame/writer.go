package frame

import (
	"bytes"
	"compress/zlib"
	"io"

	"github.com/pkg/errors"

	"github.com/mcwire/mcwire/internal/wire"
)

// Writer emits one frame per payload, assembling the whole frame in
// memory first so the socket sees a single write (encryption below this
// layer then transforms the exact same bytes).
type Writer struct {
	dst       io.Writer
	threshold int // payloads at or above this are compressed; < 0 disables
}

// NewWriter wraps dst with compression disabled.
func NewWriter(dst io.Writer) *Writer {
	return &Writer{dst: dst, threshold: -1}
}

// SetThreshold enables compressed-frame mode. Packets whose serialized
// size is at or above threshold are deflated; smaller ones are sent raw
// behind a zero marker. A negative threshold disables compression.
func (w *Writer) SetThreshold(threshold int) {
	w.threshold = threshold
}

// Write frames payload (packet id + body) and writes it out.
func (w *Writer) Write(payload []byte) error {
	var body bytes.Buffer

	switch {
	case w.threshold < 0:
		body.Write(payload)

	case len(payload) < w.threshold:
		// Below threshold: zero marker, raw payload.
		wire.WriteVarInt(&body, 0)
		body.Write(payload)

	default:
		wire.WriteVarInt(&body, int32(len(payload)))
		zw := zlib.NewWriter(&body)
		if _, err := zw.Write(payload); err != nil {
			return errors.Wrap(err, "deflate frame")
		}
		if err := zw.Close(); err != nil {
			return errors.Wrap(err, "deflate frame")
		}
	}

	if body.Len() > MaxFrameSize {
		return &wire.SizeLimitError{What: "frame", Declared: body.Len(), Max: MaxFrameSize}
	}

	var out bytes.Buffer
	out.Grow(wire.VarIntSize(int32(body.Len())) + body.Len())
	wire.WriteVarInt(&out, int32(body.Len()))
	out.Write(body.Bytes())

	if _, err := w.dst.Write(out.Bytes()); err != nil {
		return errors.Wrap(err, "write frame")
	}
	return nil
}
