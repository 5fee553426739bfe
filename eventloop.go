package ipc

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/greatboxs/go-ipc/internal/ident"
	"github.com/greatboxs/go-ipc/internal/interfaces"
	"github.com/greatboxs/go-ipc/internal/logging"
)

// Handler consumes one delivered message.
type Handler func(*Message)

// Handle is a revocable reference to a handler. An event loop's secondary
// handler is installed through a Handle so the owner can withdraw it at any
// time; deliveries after Drop are silently skipped.
type Handle struct {
	fn      Handler
	dropped atomic.Bool
}

// NewHandle wraps a handler in a revocable reference.
func NewHandle(fn Handler) *Handle {
	return &Handle{fn: fn}
}

// Drop withdraws the handler. In-flight deliveries that already upgraded
// the handle still run.
func (h *Handle) Drop() {
	h.dropped.Store(true)
}

// invoke runs the handler unless the handle is nil, empty or dropped.
func (h *Handle) invoke(m *Message) {
	if h == nil || h.fn == nil || h.dropped.Load() {
		return
	}
	h.fn(m)
}

// LoopState represents the event loop lifecycle state machine
type LoopState int32

const (
	LoopCreated LoopState = iota
	LoopRunning
	LoopStopped
)

func (s LoopState) String() string {
	switch s {
	case LoopCreated:
		return "created"
	case LoopRunning:
		return "running"
	case LoopStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// EventLoop binds one worker to a message handler pair and delivers posted
// messages in FIFO order. The main handler is the loop's own run function
// and always fires; the secondary handler is optional and revocable. A
// stopped loop cannot be restarted.
type EventLoop struct {
	id     int32
	mu     sync.RWMutex
	state  LoopState
	worker *Worker
	run    Handler // main path, may be nil
	sub    *Handle

	observer interfaces.Observer
	logger   interfaces.Logger
}

// NewEventLoop creates a loop bound to the given worker. The worker is
// required; run is the loop's main handler and may be nil for loops that
// only feed a secondary handler.
func NewEventLoop(w *Worker, run Handler) (*EventLoop, error) {
	if w == nil {
		return nil, NewError("create", ErrKindInvalidInput, "event loop requires a worker")
	}
	return &EventLoop{
		id:     ident.Next(ident.EventLoop),
		state:  LoopCreated,
		worker: w,
		run:    run,
		logger: logging.Default(),
	}, nil
}

// ID returns the loop identifier.
func (l *EventLoop) ID() int32 {
	return l.id
}

// State returns the loop's current lifecycle state.
func (l *EventLoop) State() LoopState {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Running reports whether the loop is accepting and delivering messages.
func (l *EventLoop) Running() bool {
	return l.State() == LoopRunning
}

// Worker returns the bound worker. The reference is shared, not owned.
func (l *EventLoop) Worker() *Worker {
	return l.worker
}

// SetHandle installs the secondary handler. Passing nil clears it.
func (l *EventLoop) SetHandle(h *Handle) {
	l.mu.Lock()
	l.sub = h
	l.mu.Unlock()
}

// SetObserver installs a metrics observer for post/delivery accounting.
func (l *EventLoop) SetObserver(o Observer) {
	l.mu.Lock()
	l.observer = o
	l.mu.Unlock()
}

// Start moves the loop to Running and starts its worker. Allowed only from
// Created; anything else is a logged no-op error.
func (l *EventLoop) Start() error {
	l.mu.Lock()
	if l.state != LoopCreated {
		st := l.state
		l.mu.Unlock()
		l.logger.Warnf("event loop %d: start ignored in state %s", l.id, st)
		return NewEntityError("start", l.id, ErrKindStateMisuse, "loop not in created state")
	}
	l.state = LoopRunning
	l.mu.Unlock()
	l.worker.Start()
	return nil
}

// Stop moves the loop to Stopped and quits its worker. Allowed only from
// Running; a stopped loop stays stopped.
func (l *EventLoop) Stop() error {
	l.mu.Lock()
	if l.state != LoopRunning {
		st := l.state
		l.mu.Unlock()
		l.logger.Warnf("event loop %d: stop ignored in state %s", l.id, st)
		return NewEntityError("stop", l.id, ErrKindStateMisuse, "loop not running")
	}
	l.state = LoopStopped
	l.mu.Unlock()
	l.worker.Quit()
	return nil
}

// Wait joins the worker thread after the loop has been stopped.
func (l *EventLoop) Wait() {
	if l.State() == LoopStopped {
		l.worker.Join()
	}
}

// Post delivers the message to the loop's handlers, in the order Post
// returned to its callers. Posting to a stopped loop silently drops the
// message: producers commonly race user-driven shutdown and must not
// crash. Posting nil is ignored.
func (l *EventLoop) Post(m *Message) {
	if m == nil {
		return
	}
	l.mu.RLock()
	state := l.state
	run := l.run
	sub := l.sub
	obs := l.observer
	l.mu.RUnlock()

	if state == LoopStopped {
		l.logger.Debugf("event loop %d: message %d dropped, loop stopped", l.id, m.ID())
		if obs != nil {
			obs.ObserveMessageDropped()
		}
		return
	}

	t := NewVoidTask(func() error {
		if run != nil {
			run(m)
		}
		sub.invoke(m)
		return nil
	}, l.taskCompleted)
	l.worker.AddTask(t)

	if obs != nil {
		obs.ObserveMessagePosted(uint64(m.Len()))
		obs.ObserveQueueDepth(uint32(l.worker.TaskCount()))
	}
}

// PostValues encodes a value list through the codec and posts the result.
// Encoding failures surface synchronously to the producer.
func (l *EventLoop) PostValues(sender, receiver string, vals ...any) error {
	m, err := NewMessageValues(sender, receiver, vals...)
	if err != nil {
		return err
	}
	l.Post(m)
	return nil
}

// taskCompleted runs on the worker thread after each delivery task.
func (l *EventLoop) taskCompleted(t *Task) {
	if t.Failed() {
		l.logger.Warnf("event loop %d: handler failed: %v", l.id, t.Err())
	}
}
