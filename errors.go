package ipc

import (
	"errors"
	"fmt"
)

// Error represents a structured runtime error with operation context
type Error struct {
	Op    string    // Operation that failed (e.g., "enqueue", "post", "execute")
	Kind  ErrorKind // High-level error category
	ID    int32     // Entity identifier (0 if not applicable)
	Msg   string    // Human-readable message
	Inner error     // Wrapped error
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" && e.ID != 0 {
		return fmt.Sprintf("ipc: %s (op=%s id=%d)", msg, e.Op, e.ID)
	}
	if e.Op != "" {
		return fmt.Sprintf("ipc: %s (op=%s)", msg, e.Op)
	}
	return fmt.Sprintf("ipc: %s", msg)
}

// Unwrap returns the wrapped error for errors.Is/As support
func (e *Error) Unwrap() error {
	return e.Inner
}

// Is matches errors by kind so callers can compare against sentinel values
func (e *Error) Is(target error) bool {
	if te, ok := target.(*Error); ok {
		return e.Kind == te.Kind
	}
	return false
}

// ErrorKind represents high-level error categories
type ErrorKind string

const (
	ErrKindQueueFull    ErrorKind = "queue full"
	ErrKindStateMisuse  ErrorKind = "state misuse"
	ErrKindTaskPanic    ErrorKind = "task panic"
	ErrKindShutdown     ErrorKind = "manager shut down"
	ErrKindNotFound     ErrorKind = "not found"
	ErrKindInvalidInput ErrorKind = "invalid input"
)

// ErrQueueFull is returned by MessageQueue.Enqueue when the queue is at
// capacity. Compare with errors.Is.
var ErrQueueFull = &Error{Op: "enqueue", Kind: ErrKindQueueFull, Msg: "message queue is full"}

// NewError creates a new structured error
func NewError(op string, kind ErrorKind, msg string) *Error {
	return &Error{
		Op:   op,
		Kind: kind,
		Msg:  msg,
	}
}

// NewEntityError creates a new structured error tied to a worker or loop id
func NewEntityError(op string, id int32, kind ErrorKind, msg string) *Error {
	return &Error{
		Op:   op,
		ID:   id,
		Kind: kind,
		Msg:  msg,
	}
}

// WrapError wraps an existing error with runtime context
func WrapError(op string, inner error) *Error {
	if inner == nil {
		return nil
	}
	if ie, ok := inner.(*Error); ok {
		return &Error{
			Op:    op,
			Kind:  ie.Kind,
			ID:    ie.ID,
			Msg:   ie.Msg,
			Inner: ie.Inner,
		}
	}
	return &Error{
		Op:    op,
		Kind:  ErrKindInvalidInput,
		Msg:   inner.Error(),
		Inner: inner,
	}
}

// IsKind checks if an error matches a specific error kind
func IsKind(err error, kind ErrorKind) bool {
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Kind == kind
	}
	return false
}
