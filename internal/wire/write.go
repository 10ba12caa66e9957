package wire

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/google/uuid"
)

// Writers mirror the readers but sink into a bytes.Buffer, which cannot
// fail; packets are always serialized fully in memory before framing.
// There is deliberately no size-limit enforcement on the write path: if we
// encode something over a peer's limit we already know it accepts it.

// ---------------------------------------------------------------------------
// Fixed-width values (big-endian)
// ---------------------------------------------------------------------------

func WriteUint8(b *bytes.Buffer, v uint8) {
	b.WriteByte(v)
}

func WriteInt8(b *bytes.Buffer, v int8) {
	b.WriteByte(byte(v))
}

func WriteUint16(b *bytes.Buffer, v uint16) {
	var s [2]byte
	binary.BigEndian.PutUint16(s[:], v)
	b.Write(s[:])
}

func WriteInt16(b *bytes.Buffer, v int16) {
	WriteUint16(b, uint16(v))
}

func WriteInt32(b *bytes.Buffer, v int32) {
	var s [4]byte
	binary.BigEndian.PutUint32(s[:], uint32(v))
	b.Write(s[:])
}

func WriteInt64(b *bytes.Buffer, v int64) {
	var s [8]byte
	binary.BigEndian.PutUint64(s[:], uint64(v))
	b.Write(s[:])
}

func WriteFloat32(b *bytes.Buffer, v float32) {
	WriteInt32(b, int32(math.Float32bits(v)))
}

func WriteFloat64(b *bytes.Buffer, v float64) {
	WriteInt64(b, int64(math.Float64bits(v)))
}

func WriteBool(b *bytes.Buffer, v bool) {
	if v {
		b.WriteByte(1)
	} else {
		b.WriteByte(0)
	}
}

// ---------------------------------------------------------------------------
// Variable-length integers
// ---------------------------------------------------------------------------

func WriteVarInt(b *bytes.Buffer, v int32) {
	u := uint32(v)
	for {
		part := byte(u & 0x7f)
		u >>= 7
		if u != 0 {
			part |= 0x80
		}
		b.WriteByte(part)
		if u == 0 {
			return
		}
	}
}

func WriteVarLong(b *bytes.Buffer, v int64) {
	u := uint64(v)
	for {
		part := byte(u & 0x7f)
		u >>= 7
		if u != 0 {
			part |= 0x80
		}
		b.WriteByte(part)
		if u == 0 {
			return
		}
	}
}

// VarIntSize returns the number of bytes WriteVarInt will emit for v.
func VarIntSize(v int32) int {
	u := uint32(v)
	n := 1
	for u >= 0x80 {
		u >>= 7
		n++
	}
	return n
}

// ---------------------------------------------------------------------------
// Strings, byte slices, UUIDs
// ---------------------------------------------------------------------------

func WriteString(b *bytes.Buffer, s string) {
	WriteVarInt(b, int32(len(s)))
	b.WriteString(s)
}

func WriteByteSlice(b *bytes.Buffer, v []byte) {
	WriteVarInt(b, int32(len(v)))
	b.Write(v)
}

func WriteUUID(b *bytes.Buffer, id uuid.UUID) {
	b.Write(id[:])
}

// ---------------------------------------------------------------------------
// Combinators
// ---------------------------------------------------------------------------

func WriteList[T any](b *bytes.Buffer, items []T, elem func(*bytes.Buffer, T)) {
	WriteVarInt(b, int32(len(items)))
	for _, v := range items {
		elem(b, v)
	}
}

func WriteFixed[T any](b *bytes.Buffer, items []T, elem func(*bytes.Buffer, T)) {
	for _, v := range items {
		elem(b, v)
	}
}

func WriteMap[K comparable, V any](b *bytes.Buffer, m map[K]V, key func(*bytes.Buffer, K), val func(*bytes.Buffer, V)) {
	WriteVarInt(b, int32(len(m)))
	for k, v := range m {
		key(b, k)
		val(b, v)
	}
}

func WriteOption[T any](b *bytes.Buffer, v *T, elem func(*bytes.Buffer, T)) {
	WriteBool(b, v != nil)
	if v != nil {
		elem(b, *v)
	}
}
