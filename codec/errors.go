package codec

import (
	"errors"
	"fmt"
)

// Code is a high-level codec error category.
type Code string

const (
	// TypeOrder reports an appended value whose type does not match the
	// declared slot, or a value with no codec kind at all.
	TypeOrder Code = "type out of order"

	// OversizedArgument reports a text argument longer than MaxTextLen.
	OversizedArgument Code = "oversized argument"

	// EncodingIntegrity reports a completed encode whose buffer fails
	// re-parsing or is shorter than the declared fixed widths.
	EncodingIntegrity Code = "encoding integrity"

	// TruncatedInput reports a decode buffer that ends before the declared
	// record count has been read.
	TruncatedInput Code = "truncated input"

	// InvalidSlot reports a record header inconsistent with its position
	// or declared kind.
	InvalidSlot Code = "invalid slot"
)

// Error is a structured codec error with the failing operation and slot.
type Error struct {
	Op   string // "append", "finish", "decode", "shape"
	Code Code
	Slot int // slot index, -1 if not applicable
	Msg  string
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Op != "" {
		return fmt.Sprintf("codec: %s (op=%s slot=%d)", msg, e.Op, e.Slot)
	}
	return fmt.Sprintf("codec: %s", msg)
}

// Is matches errors by code so callers can test against the category
// constants with errors.Is.
func (e *Error) Is(target error) bool {
	if te, ok := target.(*Error); ok {
		return e.Code == te.Code
	}
	return false
}

// IsCode checks whether an error carries a specific codec error code.
func IsCode(err error, code Code) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}
