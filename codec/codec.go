// Package codec serializes heterogeneous argument tuples into a
// self-describing byte form and parses the same shape back.
//
// An encoded tuple is a concatenation of per-argument records:
//
//	(slot_id int32, size int32, bytes[size])
//
// slot_id is the 0-based position of the argument in the declared tuple.
// Fixed-size arithmetic kinds store their raw little-endian representation;
// Text stores the string bytes with size capped at MaxTextLen. The framing
// lets a consumer locate individual fields with a linear header scan, with
// no separate schema.
//
// The same byte form is used between event loops inside one process and as
// the payload contract handed to transports at the process boundary.
package codec

import (
	"fmt"

	"github.com/greatboxs/go-ipc/internal/constants"
)

// MaxTextLen is the maximum byte length of a single Text argument.
const MaxTextLen = constants.MaxTextArgLen

// recordHeaderLen is the size of the (slot_id, size) pair preceding each record.
const recordHeaderLen = constants.RecordHeaderLen

// Type identifies the declared kind of one tuple slot.
type Type int

const (
	Bool Type = iota
	Int8
	Uint8
	Int16
	Uint16
	Int32
	Uint32
	Int64
	Uint64
	Float32
	Float64
	Text
)

// FixedSize returns the encoded byte width of a fixed-size kind, or 0 for
// variable-size kinds (Text).
func (t Type) FixedSize() int {
	switch t {
	case Bool, Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Int64, Uint64, Float64:
		return 8
	default:
		return 0
	}
}

func (t Type) String() string {
	switch t {
	case Bool:
		return "bool"
	case Int8:
		return "int8"
	case Uint8:
		return "uint8"
	case Int16:
		return "int16"
	case Uint16:
		return "uint16"
	case Int32:
		return "int32"
	case Uint32:
		return "uint32"
	case Int64:
		return "int64"
	case Uint64:
		return "uint64"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Text:
		return "text"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// TypeOf maps a Go value onto its codec kind. Untyped integer literals
// arrive as int and map to Int64. Unsupported values return ok=false.
func TypeOf(v any) (Type, bool) {
	switch v.(type) {
	case bool:
		return Bool, true
	case int8:
		return Int8, true
	case uint8:
		return Uint8, true
	case int16:
		return Int16, true
	case uint16:
		return Uint16, true
	case int32:
		return Int32, true
	case uint32:
		return Uint32, true
	case int64, int:
		return Int64, true
	case uint64:
		return Uint64, true
	case float32:
		return Float32, true
	case float64:
		return Float64, true
	case string:
		return Text, true
	default:
		return 0, false
	}
}

// ShapeOf infers the tuple shape of a value list. It fails on the first
// value with no codec kind.
func ShapeOf(vals ...any) ([]Type, error) {
	shape := make([]Type, len(vals))
	for i, v := range vals {
		t, ok := TypeOf(v)
		if !ok {
			return nil, &Error{Op: "shape", Code: TypeOrder, Slot: i, Msg: fmt.Sprintf("unsupported value type %T", v)}
		}
		shape[i] = t
	}
	return shape, nil
}

// minEncodedSize is the smallest legal buffer for a shape: one header per
// slot plus every fixed width. Text contributes only its header.
func minEncodedSize(shape []Type) int {
	size := 0
	for _, t := range shape {
		size += recordHeaderLen + t.FixedSize()
	}
	return size
}

// Marshal encodes a value list into a fresh buffer, inferring the tuple
// shape from the values themselves.
func Marshal(vals ...any) ([]byte, error) {
	shape, err := ShapeOf(vals...)
	if err != nil {
		return nil, err
	}
	enc := NewEncoder(shape...)
	if err := enc.AppendAll(vals...); err != nil {
		return nil, err
	}
	out := make([]byte, len(enc.buf))
	copy(out, enc.buf)
	enc.release()
	return out, nil
}
