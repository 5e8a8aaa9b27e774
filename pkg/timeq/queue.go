package timeq

import (
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"github.com/chronoq/chronoq/pkg/logger"
)

// Opts holds optional configuration for a Queue.
type Opts struct {
	// Logger receives lifecycle and callback-fault messages.
	// If nil, logging is disabled.
	Logger logger.Logger
}

// Queue is a thread-safe, time-ordered event queue. Events are kept in a
// min-heap keyed by (timestamp, insertion sequence) together with a value
// index, so the earliest due event is a constant-time lookup and cancel by
// value is O(log N). The heap and the index always describe the same set of
// events: they are only ever mutated together, inside one critical section.
//
// A single background goroutine, started by New, waits until the earliest
// deadline (or indefinitely while the queue is empty) and delivers due events
// to the expiry callback. All exported methods may be called concurrently
// from any number of goroutines.
type Queue[V comparable] struct {
	onExpire ExpireFunc[V]
	log      logger.Logger

	mu       sync.Mutex
	heap     eventHeap[V]
	index    map[V]*event[V]
	nextSeq  uint64
	stopping bool

	wake chan struct{} // cap 1; signalled by every mutation and by Stop
	done chan struct{} // closed when the run goroutine exits
}

// New creates a Queue and starts its background scheduling goroutine.
// onExpire is invoked once for each event whose timestamp is reached; a nil
// onExpire discards deliveries. Callers must call Stop when done with the
// queue, or the goroutine leaks.
func New[V comparable](onExpire ExpireFunc[V], opts *Opts) *Queue[V] {
	if onExpire == nil {
		onExpire = func(time.Time, V) {}
	}
	var l logger.Logger = logger.NewNopLogger()
	if opts != nil && opts.Logger != nil {
		l = opts.Logger
	}
	q := &Queue[V]{
		onExpire: onExpire,
		log:      l,
		index:    make(map[V]*event[V]),
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	go q.run()
	return q
}

// signal wakes the run goroutine if it is waiting. Non-blocking: one pending
// token is enough, the loop re-reads the store after every wake.
func (q *Queue[V]) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Add schedules value to be delivered once at is reached. If value is already
// scheduled it is moved to the new timestamp instead, exactly as Reschedule
// would — a value is never scheduled twice. Events sharing one instant are
// delivered in insertion order.
func (q *Queue[V]) Add(at time.Time, value V) {
	q.mu.Lock()
	if q.stopping {
		q.mu.Unlock()
		return
	}
	if ev, ok := q.index[value]; ok {
		ev.at = at
		q.heap.fix(ev.heapIdx)
	} else {
		ev := &event[V]{at: at, val: value, seq: q.nextSeq}
		q.nextSeq++
		q.heap.push(ev)
		q.index[value] = ev
	}
	q.mu.Unlock()
	q.signal()
}

// Remove cancels the event scheduled for value. It is a no-op if value is not
// scheduled, which includes the case where the event has already fired.
func (q *Queue[V]) Remove(value V) {
	q.mu.Lock()
	if q.stopping {
		q.mu.Unlock()
		return
	}
	if ev, ok := q.index[value]; ok {
		q.heap.remove(ev.heapIdx)
		delete(q.index, value)
	}
	q.mu.Unlock()
	q.signal()
}

// RemoveAt cancels every event scheduled for exactly the instant at.
// It is a no-op if no event is scheduled at that instant.
func (q *Queue[V]) RemoveAt(at time.Time) {
	q.mu.Lock()
	if q.stopping {
		q.mu.Unlock()
		return
	}
	for i := 0; i < len(q.heap); {
		if !q.heap[i].at.Equal(at) {
			i++
			continue
		}
		ev := q.heap.remove(i)
		delete(q.index, ev.val)
		// removal reshuffles the heap; rescan from the start
		i = 0
	}
	q.mu.Unlock()
	q.signal()
}

// UpdateValue rebinds the event scheduled at the instant at to newValue,
// keeping its timestamp. If several events share the instant, the earliest
// inserted one is rebound. If newValue is already scheduled elsewhere, that
// older entry is cancelled first so no value appears twice. No-op if no event
// is scheduled at the instant.
func (q *Queue[V]) UpdateValue(at time.Time, newValue V) {
	q.mu.Lock()
	if q.stopping {
		q.mu.Unlock()
		return
	}
	var target *event[V]
	for _, ev := range q.heap {
		if ev.at.Equal(at) && (target == nil || ev.seq < target.seq) {
			target = ev
		}
	}
	if target != nil && target.val != newValue {
		if old, ok := q.index[newValue]; ok && old != target {
			q.heap.remove(old.heapIdx)
			delete(q.index, old.val)
		}
		delete(q.index, target.val)
		target.val = newValue
		q.index[newValue] = target
	}
	q.mu.Unlock()
	q.signal()
}

// Reschedule moves the event scheduled for value to the new instant. No-op if
// value is not scheduled. The background goroutine is woken so that moving an
// event earlier than the deadline it is currently sleeping towards takes
// effect immediately.
func (q *Queue[V]) Reschedule(newAt time.Time, value V) {
	q.mu.Lock()
	if q.stopping {
		q.mu.Unlock()
		return
	}
	if ev, ok := q.index[value]; ok {
		ev.at = newAt
		q.heap.fix(ev.heapIdx)
	}
	q.mu.Unlock()
	q.signal()
}

// Len reports the number of currently scheduled events.
func (q *Queue[V]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.index)
}

// Snapshot returns a copy of all currently scheduled events in delivery
// order (ascending timestamp, insertion order within one instant).
func (q *Queue[V]) Snapshot() []Event[V] {
	// Event fields are copied under the lock: concurrent mutations rewrite
	// at/seq in place, so the records must not be read through the shared
	// pointers once the lock is released. Only the sort runs unlocked.
	type rec struct {
		ev  Event[V]
		seq uint64
	}
	q.mu.Lock()
	recs := make([]rec, len(q.heap))
	for i, ev := range q.heap {
		recs[i] = rec{ev: Event[V]{At: ev.at, Value: ev.val}, seq: ev.seq}
	}
	q.mu.Unlock()

	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].ev.At.Equal(recs[j].ev.At) {
			return recs[i].ev.At.Before(recs[j].ev.At)
		}
		return recs[i].seq < recs[j].seq
	})
	out := make([]Event[V], len(recs))
	for i, r := range recs {
		out[i] = r.ev
	}
	return out
}

// Stop shuts down the background goroutine and blocks until it has exited.
// It is idempotent and safe to call concurrently; every caller returns only
// once the goroutine is gone, after which the expiry callback is never
// invoked again. Mutating calls made after Stop are silent no-ops. Pending
// events due after the stop instant are discarded, not delivered.
func (q *Queue[V]) Stop() {
	q.mu.Lock()
	q.stopping = true
	q.mu.Unlock()
	q.signal()
	<-q.done
}

// run is the scheduling loop. It alternates between waiting — blocked until
// the earliest deadline, a mutation signal, or a stop request — and draining
// every currently-due event. While the queue is empty no timer is armed and
// the select blocks on the wake channel alone.
func (q *Queue[V]) run() {
	defer close(q.done)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		q.mu.Lock()
		if q.stopping {
			q.mu.Unlock()
			return
		}
		var timerCh <-chan time.Time
		if len(q.heap) > 0 {
			dur := time.Until(q.heap[0].at)
			if dur < 0 {
				dur = 0
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(dur)
			timerCh = timer.C
		}
		q.mu.Unlock()

		select {
		case <-q.wake:
		case <-timerCh:
		}

		q.drain()
	}
}

// drain fires every event whose timestamp is at or before now. The mutex is
// released around each callback invocation so mutations are not serialized
// behind callback latency; the heap minimum is re-read under the lock before
// every delivery because the set may have changed meanwhile. A pending stop
// request aborts the drain before the next delivery.
func (q *Queue[V]) drain() {
	for {
		q.mu.Lock()
		if q.stopping || len(q.heap) == 0 || q.heap[0].at.After(time.Now()) {
			q.mu.Unlock()
			return
		}
		ev := q.heap.pop()
		delete(q.index, ev.val)
		q.mu.Unlock()

		q.deliver(ev.at, ev.val)
	}
}

// deliver invokes the expiry callback with panic recovery so a faulty
// callback cannot kill the scheduling goroutine.
func (q *Queue[V]) deliver(at time.Time, value V) {
	defer func() {
		if r := recover(); r != nil {
			q.log.Error("expiry callback panic: %v\n%s", r, debug.Stack())
		}
	}()
	q.onExpire(at, value)
}
