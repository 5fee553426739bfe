package ipc

import (
	"sync"

	"github.com/greatboxs/go-ipc/internal/interfaces"
	"github.com/greatboxs/go-ipc/internal/logging"
)

// EventLoopManager is the process-wide registry that owns event loops.
// Each created loop gets a fresh dedicated worker; stopping the loop quits
// that worker.
type EventLoopManager struct {
	mu      sync.RWMutex
	loops   map[int32]*EventLoop
	closed  bool
	metrics *Metrics
	logger  interfaces.Logger
}

var (
	loopManOnce sync.Once
	loopMan     *EventLoopManager
)

// Loops returns the process-wide event loop manager.
func Loops() *EventLoopManager {
	loopManOnce.Do(func() {
		loopMan = newEventLoopManager()
	})
	return loopMan
}

func newEventLoopManager() *EventLoopManager {
	return &EventLoopManager{
		loops:   make(map[int32]*EventLoop),
		metrics: NewMetrics(),
		logger:  logging.Default(),
	}
}

// Create constructs an event loop on a fresh dedicated worker, installs
// the optional secondary handle and retains the loop. Creating after Quit
// is a logged no-op returning nil.
func (m *EventLoopManager) Create(handle *Handle) *EventLoop {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		m.logger.Warnf("event loop manager: create ignored after shutdown")
		return nil
	}
	w := NewWorker()
	w.SetObserver(m.metrics)
	l, err := NewEventLoop(w, nil)
	if err != nil {
		// unreachable: the worker is always non-nil
		m.logger.Warnf("event loop manager: create failed: %v", err)
		return nil
	}
	l.SetHandle(handle)
	l.SetObserver(m.metrics)
	m.loops[l.ID()] = l
	return l
}

// Get looks up a retained loop by id, nil when absent.
func (m *EventLoopManager) Get(id int32) *EventLoop {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loops[id]
}

// Count returns the number of retained loops.
func (m *EventLoopManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.loops)
}

// Metrics returns the counters shared by every managed loop.
func (m *EventLoopManager) Metrics() *Metrics {
	return m.metrics
}

// Post delivers a message to the loop with the given id. Unknown ids are
// logged no-ops: shutdown races between lookup and delivery are routine.
func (m *EventLoopManager) Post(id int32, msg *Message) {
	l := m.Get(id)
	if l == nil {
		m.logger.Warnf("event loop manager: post to unknown loop %d dropped", id)
		return
	}
	l.Post(msg)
}

// PostLoop delivers a message to an explicit loop reference.
func (m *EventLoopManager) PostLoop(l *EventLoop, msg *Message) {
	if l == nil {
		return
	}
	l.Post(msg)
}

// PostValues encodes a value list and posts it to the loop with the given
// id. Encoding failures and unknown ids surface synchronously.
func (m *EventLoopManager) PostValues(id int32, sender, receiver string, vals ...any) error {
	l := m.Get(id)
	if l == nil {
		return NewEntityError("post", id, ErrKindNotFound, "no such event loop")
	}
	return l.PostValues(sender, receiver, vals...)
}

// Quit stops every retained running loop and forbids further creation.
// Workers exit after their in-flight task; queued deliveries that have not
// started are dropped. To drain a loop first, wait for its worker's queue to
// empty (WorkerManager.Wait on the loop's Worker) before calling Quit.
func (m *EventLoopManager) Quit() {
	m.mu.Lock()
	loops := make([]*EventLoop, 0, len(m.loops))
	for _, l := range m.loops {
		loops = append(loops, l)
	}
	m.closed = true
	m.mu.Unlock()

	for _, l := range loops {
		if l.Running() {
			_ = l.Stop()
		}
	}
	m.logger.Debugf("event loop manager: %d loops stopped", len(loops))
}
