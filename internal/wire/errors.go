package wire

import (
	"errors"
	"fmt"
)

// The decode error taxonomy is a closed set. Every failure mode the codec
// can hit maps to exactly one of the types below so that callers can match
// with errors.Is / errors.As and log the offending sizes or ids. None of
// them is retryable: a decode failure means the byte stream can no longer
// be trusted and the connection must be torn down.

// ErrMalformedVarInt is returned when a VarInt still has its continuation
// bit set after the 5-byte cap.
var ErrMalformedVarInt = errors.New("malformed VarInt")

// ErrMalformedVarLong is returned when a VarLong still has its continuation
// bit set after the 10-byte cap.
var ErrMalformedVarLong = errors.New("malformed VarLong")

// TruncatedError is returned when a read would pass the end of the buffer.
type TruncatedError struct {
	Attempted int // bytes the decoder asked for
	Available int // bytes left in the buffer
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("tried to read %d bytes but only %d were available", e.Attempted, e.Available)
}

// SizeLimitError is returned when a declared length exceeds the caller's
// cap. It is raised before any allocation or per-element decode happens.
type SizeLimitError struct {
	What     string // "string", "sequence", "mapping", "frame", ...
	Declared int
	Max      int
}

func (e *SizeLimitError) Error() string {
	return fmt.Sprintf("declared %s length %d exceeds maximum %d", e.What, e.Declared, e.Max)
}

// InvalidUTF8Error is returned when a decoded string is not valid UTF-8.
// It keeps the raw bytes plus a lossy preview for diagnostics.
type InvalidUTF8Error struct {
	Bytes []byte
	Lossy string
}

func (e *InvalidUTF8Error) Error() string {
	return fmt.Sprintf("invalid UTF-8: %v (lossy: %q)", e.Bytes, e.Lossy)
}

// DiscriminantError is returned when a numeric value read for a closed
// enumeration has no corresponding variant.
type DiscriminantError struct {
	What  string // the enumeration being decoded
	Value int32
}

func (e *DiscriminantError) Error() string {
	return fmt.Sprintf("unexpected %s variant %d", e.What, e.Value)
}

// TagError wraps a failure from the nested tag-tree (NBT) reader so that
// compound-value problems stay distinguishable from flat codec problems.
type TagError struct {
	Err error
}

func (e *TagError) Error() string { return "invalid tag structure: " + e.Err.Error() }
func (e *TagError) Unwrap() error { return e.Err }
