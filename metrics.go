package ipc

import (
	"sync/atomic"
	"time"

	"github.com/greatboxs/go-ipc/internal/interfaces"
)

// Observer receives runtime events for metrics collection. Implementations
// must be thread-safe; methods are called from worker threads and producer
// goroutines concurrently.
type Observer = interfaces.Observer

// Metrics tracks operational statistics for workers and event loops
type Metrics struct {
	// Task counters
	TasksExecuted atomic.Uint64 // Tasks whose execution returned
	TasksFailed   atomic.Uint64 // Tasks that ended in the failed state
	TasksSkipped  atomic.Uint64 // Weak entries cancelled before pickup

	// Message counters
	MessagesPosted  atomic.Uint64 // Messages accepted by Post
	MessagesDropped atomic.Uint64 // Messages dropped by stopped loops
	BytesPosted     atomic.Uint64 // Total payload bytes accepted

	// Queue statistics
	QueueDepthTotal atomic.Uint64 // Cumulative depth samples
	QueueDepthCount atomic.Uint64 // Number of depth samples
	MaxQueueDepth   atomic.Uint32 // Maximum observed depth

	// Performance tracking
	TotalTaskLatencyNs atomic.Uint64 // Cumulative task execution time

	// Lifecycle
	StartTime atomic.Int64 // Creation timestamp (UnixNano)
}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	m := &Metrics{}
	m.StartTime.Store(time.Now().UnixNano())
	return m
}

// ObserveTask records one task execution
func (m *Metrics) ObserveTask(latencyNs uint64, failed bool) {
	m.TasksExecuted.Add(1)
	if failed {
		m.TasksFailed.Add(1)
	}
	m.TotalTaskLatencyNs.Add(latencyNs)
}

// ObserveTaskSkipped records a weak entry cancelled before pickup
func (m *Metrics) ObserveTaskSkipped() {
	m.TasksSkipped.Add(1)
}

// ObserveMessagePosted records an accepted message
func (m *Metrics) ObserveMessagePosted(bytes uint64) {
	m.MessagesPosted.Add(1)
	m.BytesPosted.Add(bytes)
}

// ObserveMessageDropped records a message dropped by a stopped loop
func (m *Metrics) ObserveMessageDropped() {
	m.MessagesDropped.Add(1)
}

// ObserveQueueDepth records a queue depth sample
func (m *Metrics) ObserveQueueDepth(depth uint32) {
	m.QueueDepthTotal.Add(uint64(depth))
	m.QueueDepthCount.Add(1)
	for {
		current := m.MaxQueueDepth.Load()
		if depth <= current {
			break
		}
		if m.MaxQueueDepth.CompareAndSwap(current, depth) {
			break
		}
	}
}

// AverageTaskLatency returns the mean task execution time
func (m *Metrics) AverageTaskLatency() time.Duration {
	count := m.TasksExecuted.Load()
	if count == 0 {
		return 0
	}
	return time.Duration(m.TotalTaskLatencyNs.Load() / count)
}

// AverageQueueDepth returns the mean sampled queue depth
func (m *Metrics) AverageQueueDepth() float64 {
	count := m.QueueDepthCount.Load()
	if count == 0 {
		return 0
	}
	return float64(m.QueueDepthTotal.Load()) / float64(count)
}

// MetricsSnapshot is a point-in-time copy of all counters
type MetricsSnapshot struct {
	TasksExecuted   uint64
	TasksFailed     uint64
	TasksSkipped    uint64
	MessagesPosted  uint64
	MessagesDropped uint64
	BytesPosted     uint64
	MaxQueueDepth   uint32
	AvgTaskLatency  time.Duration
	AvgQueueDepth   float64
	Uptime          time.Duration
}

// Snapshot returns a consistent-enough copy of the counters for reporting
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		TasksExecuted:   m.TasksExecuted.Load(),
		TasksFailed:     m.TasksFailed.Load(),
		TasksSkipped:    m.TasksSkipped.Load(),
		MessagesPosted:  m.MessagesPosted.Load(),
		MessagesDropped: m.MessagesDropped.Load(),
		BytesPosted:     m.BytesPosted.Load(),
		MaxQueueDepth:   m.MaxQueueDepth.Load(),
		AvgTaskLatency:  m.AverageTaskLatency(),
		AvgQueueDepth:   m.AverageQueueDepth(),
		Uptime:          time.Since(time.Unix(0, m.StartTime.Load())),
	}
}
