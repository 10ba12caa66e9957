// Package nbt reads and writes the self-describing named-tag format used
// for nested compound values inside packets (registry entries, text
// components). Only the network form is handled: the root compound is
// nameless, as the wire protocol has sent it since the configuration
// phase was introduced.
//
// The reader is bounded everywhere a length appears: array and list
// counts are checked against the bytes remaining in the cursor before
// allocation, and nesting depth is capped so a crafted tag tree cannot
// recurse the stack away.
package nbt

import (
	"errors"
	"fmt"
)

// Tag type ids, in wire order.
const (
	TagEnd byte = iota
	TagByte
	TagShort
	TagInt
	TagLong
	TagFloat
	TagDouble
	TagByteArray
	TagString
	TagList
	TagCompound
	TagIntArray
	TagLongArray
)

// MaxDepth caps compound/list nesting. The vanilla codec uses 512.
const MaxDepth = 512

// Value is one decoded tag payload. The dynamic type is one of:
// int8, int16, int32, int64, float32, float64, []byte, string,
// List, Compound, []int32, []int64.
type Value any

// Compound is a named mapping of tags. Key order is not significant.
type Compound map[string]Value

// List is a homogeneous sequence of tag payloads. Elem records the
// element tag id so empty lists round-trip exactly.
type List struct {
	Elem  byte
	Items []Value
}

// ErrDepthExceeded is returned when nesting passes MaxDepth.
var ErrDepthExceeded = errors.New("tag nesting deeper than limit")

// typeName renders a tag id for error messages.
func typeName(id byte) string {
	switch id {
	case TagEnd:
		return "End"
	case TagByte:
		return "Byte"
	case TagShort:
		return "Short"
	case TagInt:
		return "Int"
	case TagLong:
		return "Long"
	case TagFloat:
		return "Float"
	case TagDouble:
		return "Double"
	case TagByteArray:
		return "ByteArray"
	case TagString:
		return "String"
	case TagList:
		return "List"
	case TagCompound:
		return "Compound"
	case TagIntArray:
		return "IntArray"
	case TagLongArray:
		return "LongArray"
	}
	return fmt.Sprintf("Unknown(%d)", id)
}
