// Package timeq implements a thread-safe, time-ordered event queue.
// Callers register (timestamp, value) pairs; a single background goroutine
// sleeps until the earliest registered timestamp is due, then delivers each
// due event exactly once, in timestamp order, to an expiry callback supplied
// at construction.
//
// Events may be cancelled or rescheduled by value or by timestamp at any
// point before they fire. Every mutation wakes the background goroutine so
// that rescheduling an event to an earlier deadline takes effect immediately
// rather than after a stale sleep expires.
//
// The queue holds no events at construction and waits without a timer while
// empty. Multiple events may share one instant; they are delivered in
// insertion order.
package timeq
