package ipc

import (
	"math"

	"github.com/greatboxs/go-ipc/codec"
	"github.com/greatboxs/go-ipc/internal/ident"
	"github.com/greatboxs/go-ipc/internal/logging"
)

// Message is an immutable value passed between producers and event loops.
// The payload is typically an encoded argument tuple but the runtime treats
// it as opaque bytes. Messages are shared by pointer across threads; every
// field is read-only after construction.
type Message struct {
	id       int32
	sender   string
	receiver string
	payload  []byte
}

// NewMessage creates a message with a copy of the given payload and a fresh
// identifier. Payloads whose length does not fit in a 32-bit unsigned count
// (the codec limit) are rejected with a logged nil.
func NewMessage(sender, receiver string, payload []byte) *Message {
	if uint64(len(payload)) > math.MaxUint32 {
		logging.Warnf("message from %q to %q rejected: payload length %d exceeds 32-bit count", sender, receiver, len(payload))
		return nil
	}
	m := &Message{
		id:       ident.Next(ident.Message),
		sender:   sender,
		receiver: receiver,
	}
	if len(payload) > 0 {
		m.payload = make([]byte, len(payload))
		copy(m.payload, payload)
	}
	return m
}

// NewMessageString creates a message whose payload is the raw content bytes.
func NewMessageString(sender, receiver, content string) *Message {
	return NewMessage(sender, receiver, []byte(content))
}

// NewMessageValues encodes the value list through the codec and wraps the
// result in a message. Encoding failures surface synchronously.
func NewMessageValues(sender, receiver string, vals ...any) (*Message, error) {
	payload, err := codec.Marshal(vals...)
	if err != nil {
		return nil, err
	}
	return NewMessage(sender, receiver, payload), nil
}

// DecodeMessage parses the message payload as an encoded tuple of the
// declared shape.
func DecodeMessage(m *Message, shape ...codec.Type) ([]any, error) {
	if m == nil {
		return nil, NewError("decode", ErrKindInvalidInput, "nil message")
	}
	return codec.Decode(m.payload, shape...)
}

// ID returns the message identifier.
func (m *Message) ID() int32 {
	return m.id
}

// Sender returns the producer name.
func (m *Message) Sender() string {
	return m.sender
}

// Receiver returns the consumer name.
func (m *Message) Receiver() string {
	return m.receiver
}

// Payload returns the message bytes. The slice aliases the message's
// internal storage and must not be modified.
func (m *Message) Payload() []byte {
	return m.payload
}

// Len returns the payload length in bytes.
func (m *Message) Len() int {
	return len(m.payload)
}
