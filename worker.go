package ipc

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/greatboxs/go-ipc/internal/constants"
	"github.com/greatboxs/go-ipc/internal/ident"
	"github.com/greatboxs/go-ipc/internal/interfaces"
	"github.com/greatboxs/go-ipc/internal/logging"
)

// WorkerState represents the worker lifecycle state machine
type WorkerState int32

const (
	WorkerIdle      WorkerState = iota // thread up, not consuming
	WorkerRunning                      // consuming the task queue
	WorkerStopped                      // consumption paused, thread alive
	WorkerFinalized                    // quit requested, thread draining out
	WorkerExited                       // thread gone, terminal
)

func (s WorkerState) String() string {
	switch s {
	case WorkerIdle:
		return "idle"
	case WorkerRunning:
		return "running"
	case WorkerStopped:
		return "stopped"
	case WorkerFinalized:
		return "finalized"
	case WorkerExited:
		return "exited"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// taskEntry is one queue slot: either a strong reference that keeps the
// task runnable, or a weak reference the producer may cancel before pickup.
type taskEntry struct {
	strong *Task
	weak   *WeakTask
}

// Worker is a single-thread execution engine over a FIFO task queue. The
// thread is spawned at construction and lives until Quit; Start and Stop
// only gate whether the queue is consumed.
type Worker struct {
	id int32

	mu     sync.Mutex
	state  WorkerState
	queue  []taskEntry
	joined bool

	notify chan struct{} // queue/state change signal, capacity 1
	done   chan struct{} // closed when the thread exits

	executed atomic.Uint64
	tid      atomic.Int64 // kernel thread id, 0 until the loop stores it
	cpu      atomic.Int32 // pending affinity request, -1 when none

	observer interfaces.Observer // may be nil
	logger   interfaces.Logger
}

// NewWorker creates a worker in the Idle state with its thread already
// spawned. Initial tasks are enqueued as strong entries before the thread
// can observe Running.
func NewWorker(tasks ...*Task) *Worker {
	w := &Worker{
		id:     ident.Next(ident.Worker),
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
		logger: logging.Default(),
	}
	w.cpu.Store(-1)
	for _, t := range tasks {
		if t != nil {
			w.queue = append(w.queue, taskEntry{strong: t})
		}
	}
	go w.loop()
	return w
}

// SetObserver installs a metrics observer. The loop reads the field under
// the worker mutex, so it may be changed while the worker is consuming.
func (w *Worker) SetObserver(o Observer) {
	w.mu.Lock()
	w.observer = o
	w.mu.Unlock()
}

// ID returns the worker identifier.
func (w *Worker) ID() int32 {
	return w.id
}

// State returns the current lifecycle state.
func (w *Worker) State() WorkerState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// ExecutedCount returns the number of tasks whose execution has returned.
// Skipped weak entries are not counted.
func (w *Worker) ExecutedCount() uint64 {
	return w.executed.Load()
}

// TaskCount returns the number of queued entries not yet picked up.
func (w *Worker) TaskCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.queue)
}

// ThreadID returns the kernel thread id of the worker thread, or 0 when
// the platform cannot express it or the thread has not stored it yet.
func (w *Worker) ThreadID() int {
	return int(w.tid.Load())
}

// Start begins (or resumes) queue consumption. Allowed from Idle and
// Stopped; on a Running worker it does nothing, and in Finalized or Exited
// it is a logged no-op.
func (w *Worker) Start() {
	w.mu.Lock()
	switch w.state {
	case WorkerIdle, WorkerStopped:
		w.state = WorkerRunning
	case WorkerRunning:
		// already consuming
	default:
		w.logger.Warnf("worker %d: start ignored in state %s", w.id, w.state)
	}
	w.mu.Unlock()
	w.wake()
}

// Stop pauses consumption without exiting the thread. Allowed only from
// Running; anything else is a logged no-op.
func (w *Worker) Stop() {
	w.mu.Lock()
	if w.state == WorkerRunning {
		w.state = WorkerStopped
	} else {
		w.logger.Warnf("worker %d: stop ignored in state %s", w.id, w.state)
	}
	w.mu.Unlock()
}

// Quit asks the thread to exit after the in-flight task, if any, returns.
// Queued tasks that were not started are never executed. Allowed from
// Idle, Running and Stopped; afterwards the worker cannot be restarted.
func (w *Worker) Quit() {
	w.mu.Lock()
	switch w.state {
	case WorkerIdle, WorkerRunning, WorkerStopped:
		w.state = WorkerFinalized
	default:
		w.logger.Warnf("worker %d: quit ignored in state %s", w.id, w.state)
	}
	w.mu.Unlock()
	w.wake()
}

// AddTask enqueues a strong entry: the task runs even if the producer
// drops every other reference. Enqueuing onto an exited worker is a
// logged no-op; entries pushed after Quit are accepted but never run.
func (w *Worker) AddTask(t *Task) {
	if t == nil {
		return
	}
	w.push(taskEntry{strong: t})
}

// AddWeakTask enqueues a cancellable entry; see WeakTask.
func (w *Worker) AddWeakTask(wt *WeakTask) {
	if wt == nil {
		return
	}
	w.push(taskEntry{weak: wt})
}

func (w *Worker) push(e taskEntry) {
	w.mu.Lock()
	if w.state == WorkerExited {
		w.mu.Unlock()
		w.logger.Warnf("worker %d: task dropped, worker has exited", w.id)
		return
	}
	w.queue = append(w.queue, e)
	w.mu.Unlock()
	w.wake()
}

// AddFunc wraps a void function in a task, enqueues it and returns the
// task handle for completion tracking.
func (w *Worker) AddFunc(fn func() error, callback Callback) *Task {
	t := NewVoidTask(fn, callback)
	w.AddTask(t)
	return t
}

// AddTaskFunc wraps a value-returning function in a task and enqueues it
// on the worker. The result lands at index 0 of the returned task's bag.
func AddTaskFunc[R any](w *Worker, fn func() (R, error), callback Callback) *Task {
	t := NewTask(fn, callback)
	w.AddTask(t)
	return t
}

// Reset drops every queued entry that has not been picked up. The
// in-flight task, if any, continues.
func (w *Worker) Reset() {
	w.mu.Lock()
	if w.state != WorkerExited {
		w.queue = nil
	}
	w.mu.Unlock()
}

// Join blocks until the worker thread exits. Only the first call blocks;
// subsequent calls and calls after Detach return immediately.
func (w *Worker) Join() {
	w.mu.Lock()
	if w.joined {
		w.mu.Unlock()
		return
	}
	w.joined = true
	w.mu.Unlock()
	<-w.done
}

// Detach releases thread ownership: a later Join will not block. The
// thread still exits only through Quit.
func (w *Worker) Detach() {
	w.mu.Lock()
	if !w.joined {
		w.joined = true
	}
	w.mu.Unlock()
}

// Done exposes the thread-exit signal for select-based waiters.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// AssignTo requests best-effort CPU affinity for the worker thread. On
// platforms without thread affinity this is a no-op.
func (w *Worker) AssignTo(cpu int) error {
	if cpu < 0 {
		return NewEntityError("assign", w.id, ErrKindInvalidInput, "negative cpu index")
	}
	w.cpu.Store(int32(cpu))
	if tid := w.tid.Load(); tid != 0 {
		return setThreadAffinity(int(tid), cpu)
	}
	// The loop applies the pending request once it knows its tid.
	return nil
}

// wake nudges the loop; the token is merged if one is already pending.
func (w *Worker) wake() {
	select {
	case w.notify <- struct{}{}:
	default:
	}
}

// loop is the worker thread. It is pinned to an OS thread so that CPU
// affinity and the one-thread-per-worker model hold for the life of the
// worker.
func (w *Worker) loop() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	w.tid.Store(int64(currentThreadID()))
	if cpu := w.cpu.Load(); cpu >= 0 {
		if err := setThreadAffinity(w.ThreadID(), int(cpu)); err != nil {
			w.logger.Warnf("worker %d: cpu affinity failed: %v", w.id, err)
		}
	}
	w.logger.Debugf("worker %d: thread up (tid=%d)", w.id, w.ThreadID())

	for {
		var task *Task
		skipped := false

		w.mu.Lock()
		if len(w.queue) == 0 && w.state == WorkerRunning {
			w.mu.Unlock()
			w.waitForWork()
			w.mu.Lock()
		}

		state := w.state
		switch {
		case state == WorkerFinalized:
			w.mu.Unlock()
			w.exit()
			return
		case state == WorkerRunning && len(w.queue) > 0:
			entry := w.queue[0]
			w.queue[0] = taskEntry{}
			w.queue = w.queue[1:]
			if entry.strong != nil {
				task = entry.strong
			} else if entry.weak != nil {
				task = entry.weak.Upgrade()
				skipped = task == nil
			}
			w.mu.Unlock()
		case state == WorkerRunning:
			w.mu.Unlock()
		default:
			// Idle or Stopped: hold the thread, back off briefly.
			w.mu.Unlock()
			time.Sleep(constants.WorkerStoppedSleep)
		}

		if task != nil {
			w.runTask(task)
		} else if skipped {
			if obs := w.getObserver(); obs != nil {
				obs.ObserveTaskSkipped()
			}
			w.logger.Debugf("worker %d: weak task cancelled before pickup", w.id)
		}
	}
}

// waitForWork blocks for a queue/state notification, bounded so the loop
// re-checks state even if a wakeup was lost to a shutdown race.
func (w *Worker) waitForWork() {
	timer := time.NewTimer(constants.WorkerIdleWait)
	defer timer.Stop()
	select {
	case <-w.notify:
	case <-timer.C:
	}
}

// runTask executes one task. Task panics are already contained by
// Task.Execute; the extra recover keeps a defective Execute path from
// taking the thread down.
func (w *Worker) runTask(t *Task) {
	start := time.Now()
	func() {
		defer func() {
			if r := recover(); r != nil {
				w.logger.Warnf("worker %d: task escaped execute: %v", w.id, r)
			}
		}()
		t.Execute()
	}()
	w.executed.Add(1)
	if obs := w.getObserver(); obs != nil {
		obs.ObserveTask(uint64(time.Since(start).Nanoseconds()), t.Failed())
	}
}

func (w *Worker) getObserver() interfaces.Observer {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.observer
}

func (w *Worker) exit() {
	w.mu.Lock()
	w.state = WorkerExited
	w.mu.Unlock()
	close(w.done)
	w.logger.Debugf("worker %d: thread exited after %d tasks", w.id, w.executed.Load())
}
