package nbt

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/mcwire/mcwire/internal/wire"
)

// WriteNetwork encodes c in network form: a nameless compound root, or a
// single TagEnd byte when c is nil. Compound keys are emitted in sorted
// order so the same value always encodes to the same bytes.
func WriteNetwork(b *bytes.Buffer, c Compound) error {
	if c == nil {
		b.WriteByte(TagEnd)
		return nil
	}
	b.WriteByte(TagCompound)
	return writeCompound(b, c)
}

func writeCompound(b *bytes.Buffer, c Compound) error {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		id, err := tagType(c[k])
		if err != nil {
			return fmt.Errorf("tag %q: %w", k, err)
		}
		b.WriteByte(id)
		writeString(b, k)
		if err := writePayload(b, c[k]); err != nil {
			return fmt.Errorf("tag %q: %w", k, err)
		}
	}
	b.WriteByte(TagEnd)
	return nil
}

func writePayload(b *bytes.Buffer, v Value) error {
	switch t := v.(type) {
	case int8:
		wire.WriteInt8(b, t)
	case int16:
		wire.WriteInt16(b, t)
	case int32:
		wire.WriteInt32(b, t)
	case int64:
		wire.WriteInt64(b, t)
	case float32:
		wire.WriteFloat32(b, t)
	case float64:
		wire.WriteFloat64(b, t)
	case []byte:
		wire.WriteInt32(b, int32(len(t)))
		b.Write(t)
	case string:
		writeString(b, t)
	case List:
		b.WriteByte(t.Elem)
		wire.WriteInt32(b, int32(len(t.Items)))
		for _, item := range t.Items {
			id, err := tagType(item)
			if err != nil {
				return err
			}
			if id != t.Elem {
				return fmt.Errorf("list element is %s, list holds %s", typeName(id), typeName(t.Elem))
			}
			if err := writePayload(b, item); err != nil {
				return err
			}
		}
	case Compound:
		return writeCompound(b, t)
	case []int32:
		wire.WriteInt32(b, int32(len(t)))
		for _, n := range t {
			wire.WriteInt32(b, n)
		}
	case []int64:
		wire.WriteInt32(b, int32(len(t)))
		for _, n := range t {
			wire.WriteInt64(b, n)
		}
	default:
		return fmt.Errorf("unsupported tag value %T", v)
	}
	return nil
}

func tagType(v Value) (byte, error) {
	switch v.(type) {
	case int8:
		return TagByte, nil
	case int16:
		return TagShort, nil
	case int32:
		return TagInt, nil
	case int64:
		return TagLong, nil
	case float32:
		return TagFloat, nil
	case float64:
		return TagDouble, nil
	case []byte:
		return TagByteArray, nil
	case string:
		return TagString, nil
	case List:
		return TagList, nil
	case Compound:
		return TagCompound, nil
	case []int32:
		return TagIntArray, nil
	case []int64:
		return TagLongArray, nil
	}
	return 0, fmt.Errorf("unsupported tag value %T", v)
}

func writeString(b *bytes.Buffer, s string) {
	wire.WriteUint16(b, uint16(len(s)))
	b.WriteString(s)
}
