package nbt

import (
	"fmt"
	"unicode/utf8"

	"github.com/mcwire/mcwire/internal/wire"
)

// ReadNetwork decodes a network-form tag tree from the cursor: a single
// type byte, then for a compound root its payload with no name. A lone
// TagEnd byte is the wire encoding for "no data" and decodes to nil.
// All failures come back as *wire.TagError so callers can tell nested
// format problems from flat codec problems.
func ReadNetwork(c *wire.Cursor) (Compound, error) {
	id, err := c.ReadByte()
	if err != nil {
		return nil, &wire.TagError{Err: err}
	}
	switch id {
	case TagEnd:
		return nil, nil
	case TagCompound:
		v, err := readCompound(c, 1)
		if err != nil {
			return nil, &wire.TagError{Err: err}
		}
		return v, nil
	default:
		return nil, &wire.TagError{Err: fmt.Errorf("root tag is %s, want Compound", typeName(id))}
	}
}

func readCompound(c *wire.Cursor, depth int) (Compound, error) {
	if depth > MaxDepth {
		return nil, ErrDepthExceeded
	}
	out := Compound{}
	for {
		id, err := c.ReadByte()
		if err != nil {
			return nil, err
		}
		if id == TagEnd {
			return out, nil
		}
		name, err := readString(c)
		if err != nil {
			return nil, err
		}
		v, err := readPayload(c, id, depth)
		if err != nil {
			return nil, fmt.Errorf("tag %q: %w", name, err)
		}
		out[name] = v
	}
}

func readPayload(c *wire.Cursor, id byte, depth int) (Value, error) {
	switch id {
	case TagByte:
		return wire.ReadInt8(c)
	case TagShort:
		return wire.ReadInt16(c)
	case TagInt:
		return wire.ReadInt32(c)
	case TagLong:
		return wire.ReadInt64(c)
	case TagFloat:
		return wire.ReadFloat32(c)
	case TagDouble:
		return wire.ReadFloat64(c)
	case TagByteArray:
		n, err := readCount(c, 1)
		if err != nil {
			return nil, err
		}
		raw, err := c.Read(n)
		if err != nil {
			return nil, err
		}
		return append([]byte(nil), raw...), nil
	case TagString:
		return readString(c)
	case TagList:
		return readList(c, depth+1)
	case TagCompound:
		return readCompound(c, depth+1)
	case TagIntArray:
		n, err := readCount(c, 4)
		if err != nil {
			return nil, err
		}
		out := make([]int32, n)
		for i := range out {
			out[i], err = wire.ReadInt32(c)
			if err != nil {
				return nil, err
			}
		}
		return out, nil
	case TagLongArray:
		n, err := readCount(c, 8)
		if err != nil {
			return nil, err
		}
		out := make([]int64, n)
		for i := range out {
			out[i], err = wire.ReadInt64(c)
			if err != nil {
				return nil, err
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("unknown tag type %d", id)
}

func readList(c *wire.Cursor, depth int) (List, error) {
	if depth > MaxDepth {
		return List{}, ErrDepthExceeded
	}
	elem, err := c.ReadByte()
	if err != nil {
		return List{}, err
	}
	// Element size floor of 1 byte; TagEnd elements carry nothing, so a
	// nonzero count with TagEnd elements is corrupt.
	n, err := readCount(c, 1)
	if err != nil {
		return List{}, err
	}
	if elem == TagEnd && n > 0 {
		return List{}, fmt.Errorf("list of %d End tags", n)
	}
	items := make([]Value, 0, n)
	for i := 0; i < n; i++ {
		v, err := readPayload(c, elem, depth)
		if err != nil {
			return List{}, err
		}
		items = append(items, v)
	}
	return List{Elem: elem, Items: items}, nil
}

// readCount reads an int32 count and bounds it by the bytes remaining,
// given a minimum encoded size per element. Checked before allocation.
func readCount(c *wire.Cursor, elemSize int) (int, error) {
	n, err := wire.ReadInt32(c)
	if err != nil {
		return 0, err
	}
	if n < 0 || int(n)*elemSize > c.Remaining() {
		return 0, &wire.SizeLimitError{What: "tag array", Declared: int(n), Max: c.Remaining() / elemSize}
	}
	return int(n), nil
}

// readString reads the tag string form: an unsigned 16-bit big-endian
// byte length followed by UTF-8 bytes.
func readString(c *wire.Cursor) (string, error) {
	n, err := wire.ReadUint16(c)
	if err != nil {
		return "", err
	}
	raw, err := c.Read(int(n))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("tag string is not valid UTF-8: %v", raw)
	}
	return string(raw), nil
}
