// Package ipc provides the in-process concurrency runtime of the go-ipc
// messaging toolkit: single-thread workers with deterministic lifecycle,
// one-shot tasks with future-like result handles, event loops that deliver
// typed messages in FIFO order, a bounded message queue, and process-wide
// managers that own and shut down the lot.
//
// Messages carry opaque payload bytes, typically an argument tuple encoded
// with the codec subpackage; the same byte form crosses process boundaries
// through external transports.
package ipc
