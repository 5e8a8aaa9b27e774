package timeq

import "time"

// ExpireFunc is the expiry callback invoked by the queue's background
// goroutine for each delivered event. It receives the timestamp the event was
// scheduled for and its value. It runs on the queue's own goroutine, so a
// slow callback delays delivery of later events but never blocks concurrent
// Add/Remove/Reschedule calls.
type ExpireFunc[V comparable] func(at time.Time, value V)

// Event is a snapshot of one scheduled entry, as returned by Snapshot.
type Event[V comparable] struct {
	// At is the instant the event is scheduled to fire.
	At time.Time
	// Value is the caller-supplied value delivered on expiry.
	Value V
}

// event is the internal record stored in the heap and the value index.
type event[V comparable] struct {
	at  time.Time
	val V

	// seq breaks ties between events scheduled for the same instant;
	// lower seq fires first (insertion order).
	seq uint64

	// heapIdx is the record's current position in the heap slice,
	// maintained by eventHeap.Swap so removal by value is O(log N).
	heapIdx int
}
