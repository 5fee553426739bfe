// Package interfaces provides internal interface definitions for go-ipc.
// These are separate from the public interfaces to avoid circular imports
// between the main package and internal packages.
package interfaces

// Logger interface for optional logging.
type Logger interface {
	Printf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
	Warnf(format string, args ...interface{})
}

// Observer interface for metrics collection.
// Implementations must be thread-safe as methods are called from worker
// threads and producer goroutines concurrently.
type Observer interface {
	ObserveTask(latencyNs uint64, failed bool)
	ObserveTaskSkipped()
	ObserveMessagePosted(bytes uint64)
	ObserveMessageDropped()
	ObserveQueueDepth(depth uint32)
}
