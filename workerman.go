package ipc

import (
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/greatboxs/go-ipc/internal/constants"
	"github.com/greatboxs/go-ipc/internal/interfaces"
	"github.com/greatboxs/go-ipc/internal/logging"
)

// WorkerManager is the process-wide registry that owns long-lived workers.
// Retained workers are the root owners of their threads: QuitAll is the
// single place the process tears them down.
type WorkerManager struct {
	mu      sync.RWMutex
	pool    map[int32]*Worker
	closed  bool
	metrics *Metrics
	logger  interfaces.Logger
}

var (
	workerManOnce sync.Once
	workerMan     *WorkerManager
)

// Workers returns the process-wide worker manager.
func Workers() *WorkerManager {
	workerManOnce.Do(func() {
		workerMan = newWorkerManager()
	})
	return workerMan
}

func newWorkerManager() *WorkerManager {
	return &WorkerManager{
		pool:    make(map[int32]*Worker),
		metrics: NewMetrics(),
		logger:  logging.Default(),
	}
}

// Create constructs a worker, optionally pre-seeded with initial tasks.
// Unless detach is set the manager retains the worker and shuts it down in
// QuitAll; detached workers are the caller's to quit and join. Creating
// after QuitAll is a logged no-op returning nil.
func (m *WorkerManager) Create(tasks []*Task, detach bool) *Worker {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		m.logger.Warnf("worker manager: create ignored after shutdown")
		return nil
	}
	w := NewWorker(tasks...)
	w.SetObserver(m.metrics)
	if !detach {
		m.pool[w.ID()] = w
	}
	return w
}

// Get looks up a retained worker by id.
func (m *WorkerManager) Get(id int32) *Worker {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pool[id]
}

// Count returns the number of retained workers.
func (m *WorkerManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.pool)
}

// Metrics returns the counters shared by every managed worker.
func (m *WorkerManager) Metrics() *Metrics {
	return m.metrics
}

// Wait polls until the worker's queue drains or the timeout elapses, and
// reports whether it drained. Polling granularity is 1ms.
func (m *WorkerManager) Wait(w *Worker, timeout time.Duration) bool {
	if w == nil {
		return false
	}
	deadline := time.Now().Add(timeout)
	for w.TaskCount() > 0 {
		if time.Now().After(deadline) {
			break
		}
		time.Sleep(constants.ManagerWaitPoll)
	}
	return w.TaskCount() == 0
}

// QuitAll quits and joins every retained worker, then forbids further
// creation. Workers are torn down concurrently; the call returns when the
// last thread has exited.
func (m *WorkerManager) QuitAll() {
	m.mu.Lock()
	workers := make([]*Worker, 0, len(m.pool))
	for _, w := range m.pool {
		workers = append(workers, w)
	}
	m.pool = make(map[int32]*Worker)
	m.closed = true
	m.mu.Unlock()

	var g errgroup.Group
	for _, w := range workers {
		w := w
		g.Go(func() error {
			w.Quit()
			w.Join()
			return nil
		})
	}
	_ = g.Wait()
	m.logger.Debugf("worker manager: %d workers shut down", len(workers))
}
