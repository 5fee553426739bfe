package ipc

import (
	"github.com/greatboxs/go-ipc/internal/constants"
)

// DefaultQueueCapacity is the bounded message queue capacity used when the
// caller passes a non-positive value.
const DefaultQueueCapacity = constants.DefaultMessageQueueCapacity

// MessageQueue is a process-local bounded FIFO of messages. Enqueue never
// blocks; Dequeue blocks until a message is available.
type MessageQueue struct {
	ch chan *Message
}

// NewMessageQueue creates a queue with the given capacity, or
// DefaultQueueCapacity when capacity <= 0.
func NewMessageQueue(capacity int) *MessageQueue {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	return &MessageQueue{
		ch: make(chan *Message, capacity),
	}
}

// Enqueue appends a message and wakes one waiter. A full queue returns
// ErrQueueFull without blocking and without changing the queue.
func (q *MessageQueue) Enqueue(m *Message) error {
	if m == nil {
		return NewError("enqueue", ErrKindInvalidInput, "nil message")
	}
	select {
	case q.ch <- m:
		return nil
	default:
		return ErrQueueFull
	}
}

// Dequeue blocks until a message is available and returns it. The returned
// message is never nil.
func (q *MessageQueue) Dequeue() *Message {
	return <-q.ch
}

// TryDequeue pops the front message without blocking.
func (q *MessageQueue) TryDequeue() (*Message, bool) {
	select {
	case m := <-q.ch:
		return m, true
	default:
		return nil, false
	}
}

// Size returns the current queue length.
func (q *MessageQueue) Size() int {
	return len(q.ch)
}

// Capacity returns the fixed queue capacity.
func (q *MessageQueue) Capacity() int {
	return cap(q.ch)
}
