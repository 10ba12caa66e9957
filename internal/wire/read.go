package wire

import (
	"encoding/binary"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/mcwire/mcwire/internal/util"
)

// DefaultMaxStringLength is the character cap applied to strings read
// without an explicit limit, matching the vanilla protocol default.
const DefaultMaxStringLength = 32767

// ---------------------------------------------------------------------------
// Fixed-width values (big-endian)
// ---------------------------------------------------------------------------

func ReadUint8(c *Cursor) (uint8, error) {
	return c.ReadByte()
}

func ReadInt8(c *Cursor) (int8, error) {
	b, err := c.ReadByte()
	return int8(b), err
}

func ReadUint16(c *Cursor) (uint16, error) {
	raw, err := c.Read(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(raw), nil
}

func ReadInt16(c *Cursor) (int16, error) {
	v, err := ReadUint16(c)
	return int16(v), err
}

func ReadInt32(c *Cursor) (int32, error) {
	raw, err := c.Read(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(raw)), nil
}

func ReadInt64(c *Cursor) (int64, error) {
	raw, err := c.Read(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(raw)), nil
}

func ReadFloat32(c *Cursor) (float32, error) {
	raw, err := c.Read(4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.BigEndian.Uint32(raw)), nil
}

func ReadFloat64(c *Cursor) (float64, error) {
	raw, err := c.Read(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(raw)), nil
}

// ReadBool consumes one byte: 0 is false, anything else is true. A value
// other than 0 or 1 is a protocol deviation from a lenient peer — logged,
// not fatal.
func ReadBool(c *Cursor) (bool, error) {
	b, err := c.ReadByte()
	if err != nil {
		return false, err
	}
	if b > 1 {
		util.Warnf("boolean byte outside {0,1}: %#02x", b)
	}
	return b != 0, nil
}

// ---------------------------------------------------------------------------
// Variable-length integers
// ---------------------------------------------------------------------------

// ReadVarInt decodes a 32-bit integer from little-endian 7-bit groups with
// a continuation bit. At most 5 bytes are consumed; if the 5th byte still
// has its continuation bit set the input is corrupt and no further bytes
// are touched.
func ReadVarInt(c *Cursor) (int32, error) {
	var out uint32
	for i := 0; i < 5; i++ {
		b, err := c.ReadByte()
		if err != nil {
			return 0, err
		}
		out |= uint32(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			return int32(out), nil
		}
	}
	return 0, ErrMalformedVarInt
}

// ReadVarLong decodes a 64-bit integer with the same scheme, capped at 10
// bytes.
func ReadVarLong(c *Cursor) (int64, error) {
	var out uint64
	for i := 0; i < 10; i++ {
		b, err := c.ReadByte()
		if err != nil {
			return 0, err
		}
		out |= uint64(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			return int64(out), nil
		}
	}
	return 0, ErrMalformedVarLong
}

// ---------------------------------------------------------------------------
// Strings and byte slices
// ---------------------------------------------------------------------------

// ReadString reads a string with the default character cap.
func ReadString(c *Cursor) (string, error) {
	return ReadStringLimited(c, DefaultMaxStringLength)
}

// ReadStringLimited reads a VarInt byte count followed by that many UTF-8
// bytes. maxChars is a character cap; the byte count is allowed up to
// maxChars*4 because Mojang's own reader multiplies by four — kept as-is
// for wire compatibility even though 4 bytes per char over-counts.
func ReadStringLimited(c *Cursor, maxChars int) (string, error) {
	length, err := ReadVarInt(c)
	if err != nil {
		return "", err
	}
	if int(length) < 0 || int(length) > maxChars*4 {
		return "", &SizeLimitError{What: "string", Declared: int(length), Max: maxChars * 4}
	}
	raw, err := c.Read(int(length))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(raw) {
		return "", &InvalidUTF8Error{
			Bytes: append([]byte(nil), raw...),
			Lossy: strings.ToValidUTF8(string(raw), "�"),
		}
	}
	s := string(raw)
	if n := utf8.RuneCountInString(s); n > int(length) {
		return "", &SizeLimitError{What: "string", Declared: n, Max: int(length)}
	}
	return s, nil
}

// ReadByteSlice reads a VarInt length followed by that many raw bytes.
// The result is a copy, detached from the frame buffer.
func ReadByteSlice(c *Cursor) ([]byte, error) {
	length, err := ReadVarInt(c)
	if err != nil {
		return nil, err
	}
	if int(length) < 0 || int(length) > c.Remaining() {
		return nil, &TruncatedError{Attempted: int(length), Available: c.Remaining()}
	}
	raw, err := c.Read(int(length))
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), raw...), nil
}

// ReadUUID reads 16 big-endian bytes.
func ReadUUID(c *Cursor) (uuid.UUID, error) {
	raw, err := c.Read(16)
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.FromBytes(raw)
}

// ---------------------------------------------------------------------------
// Combinators
// ---------------------------------------------------------------------------

// ReadList reads a VarInt element count followed by that many elements.
// The count is bounded by the bytes remaining in the frame: every element
// costs at least one byte, so a larger count can never be satisfied and is
// rejected before allocation.
func ReadList[T any](c *Cursor, elem func(*Cursor) (T, error)) ([]T, error) {
	return ReadListLimited(c, c.Remaining(), elem)
}

// ReadListLimited is ReadList with an explicit element cap. A declared
// count above the cap fails with a size-limit error before any element is
// decoded.
func ReadListLimited[T any](c *Cursor, maxElems int, elem func(*Cursor) (T, error)) ([]T, error) {
	length, err := ReadVarInt(c)
	if err != nil {
		return nil, err
	}
	if int(length) < 0 || int(length) > maxElems {
		return nil, &SizeLimitError{What: "sequence", Declared: int(length), Max: maxElems}
	}
	out := make([]T, 0, length)
	for i := int32(0); i < length; i++ {
		v, err := elem(c)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ReadFixed reads exactly n elements with no length prefix.
func ReadFixed[T any](c *Cursor, n int, elem func(*Cursor) (T, error)) ([]T, error) {
	out := make([]T, 0, n)
	for i := 0; i < n; i++ {
		v, err := elem(c)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ReadMap reads a VarInt pair count followed by that many key/value pairs.
// The count is bounded by the bytes remaining, same as ReadList.
func ReadMap[K comparable, V any](c *Cursor, key func(*Cursor) (K, error), val func(*Cursor) (V, error)) (map[K]V, error) {
	length, err := ReadVarInt(c)
	if err != nil {
		return nil, err
	}
	if int(length) < 0 || int(length) > c.Remaining() {
		return nil, &SizeLimitError{What: "mapping", Declared: int(length), Max: c.Remaining()}
	}
	out := make(map[K]V, length)
	for i := int32(0); i < length; i++ {
		k, err := key(c)
		if err != nil {
			return nil, err
		}
		v, err := val(c)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

// ReadOption reads a presence byte and, when set, the value. Absent values
// decode to nil.
func ReadOption[T any](c *Cursor, elem func(*Cursor) (T, error)) (*T, error) {
	present, err := ReadBool(c)
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	v, err := elem(c)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
