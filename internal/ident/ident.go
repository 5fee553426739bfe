// Package ident hands out process-wide monotonic identifiers, one counter
// per entity kind. Identifiers start at 1 and are never reused.
package ident

import "sync/atomic"

// Kind selects the counter an identifier is drawn from.
type Kind int

const (
	EventLoop Kind = iota
	Worker
	Message
	numKinds
)

var counters [numKinds]atomic.Int32

// Next returns the next identifier for the given kind.
func Next(k Kind) int32 {
	return counters[k].Add(1)
}
