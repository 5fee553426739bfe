package constants

import "time"

// Default configuration constants
const (
	// DefaultMessageQueueCapacity is the default bounded message queue capacity
	DefaultMessageQueueCapacity = 1024

	// MaxTextArgLen is the maximum byte length of a single text argument
	// in an encoded tuple (10KB)
	MaxTextArgLen = 1024 * 10

	// RecordHeaderLen is the size of the (slot_id, size) header preceding
	// every encoded argument record
	RecordHeaderLen = 8
)

// Timing constants for the worker main loop and task retrieval
//
// The worker thread alternates between waiting for queue activity and
// draining tasks. Producers notify on every enqueue, so the idle wait only
// bounds how long a worker sleeps when a notification is lost to shutdown
// races; it is not a scheduling granularity.
const (
	// WorkerIdleWait is how long an idle worker blocks for a queue
	// notification before re-checking its state.
	WorkerIdleWait = 1 * time.Second

	// WorkerStoppedSleep is the back-off between state checks while a
	// worker is stopped. Stopped workers keep their thread alive so they
	// can resume without respawning; 1ms keeps resume latency low without
	// spinning.
	WorkerStoppedSleep = 1 * time.Millisecond

	// ManagerWaitPoll is the polling interval WorkerManager.Wait uses to
	// watch a worker's queue drain.
	ManagerWaitPoll = 1 * time.Millisecond

	// DefaultGetTimeout is how long Task.Get waits for completion when the
	// caller does not pass an explicit timeout.
	DefaultGetTimeout = 5 * time.Second
)
