package timeq

import (
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/chronoq/chronoq/pkg/logger"
)

// recorder collects deliveries from the queue goroutine for assertions.
type recorder[V comparable] struct {
	mu    sync.Mutex
	fired []V
}

func (r *recorder[V]) expire(_ time.Time, value V) {
	r.mu.Lock()
	r.fired = append(r.fired, value)
	r.mu.Unlock()
}

func (r *recorder[V]) values() []V {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]V(nil), r.fired...)
}

func TestQueueAddAndFire(t *testing.T) {
	defer goleak.VerifyNone(t)

	rec := &recorder[string]{}
	q := New(rec.expire, nil)
	defer q.Stop()

	q.Add(time.Now().Add(50*time.Millisecond), "one")

	time.Sleep(300 * time.Millisecond)

	got := rec.values()
	if len(got) != 1 || got[0] != "one" {
		t.Fatalf("expected [one] fired, got %v", got)
	}
	if q.Len() != 0 {
		t.Errorf("expected empty queue after fire, got %d", q.Len())
	}
}

func TestQueueDeliveryOrder(t *testing.T) {
	rec := &recorder[int]{}
	q := New(rec.expire, nil)
	defer q.Stop()

	// Insert out of order, deadlines close together; delivery must follow
	// ascending timestamps, not insertion order.
	now := time.Now()
	q.Add(now.Add(260*time.Millisecond), 2)
	q.Add(now.Add(220*time.Millisecond), 1)
	q.Add(now.Add(300*time.Millisecond), 3)

	time.Sleep(700 * time.Millisecond)

	got := rec.values()
	if len(got) != 3 {
		t.Fatalf("expected 3 deliveries, got %d", len(got))
	}
	if got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Errorf("expected delivery order [1 2 3] (ascending timestamps), got %v", got)
	}
}

func TestQueueSameInstantInsertionOrder(t *testing.T) {
	rec := &recorder[string]{}
	q := New(rec.expire, nil)
	defer q.Stop()

	at := time.Now().Add(100 * time.Millisecond)
	q.Add(at, "first")
	q.Add(at, "second")
	q.Add(at, "third")

	time.Sleep(400 * time.Millisecond)

	got := rec.values()
	if len(got) != 3 {
		t.Fatalf("expected 3 deliveries for one instant, got %d: %v", len(got), got)
	}
	if got[0] != "first" || got[1] != "second" || got[2] != "third" {
		t.Errorf("expected insertion order for equal instants, got %v", got)
	}
}

func TestQueueCancelBeforeFire(t *testing.T) {
	rec := &recorder[string]{}
	q := New(rec.expire, nil)
	defer q.Stop()

	q.Add(time.Now().Add(5*time.Second), "doomed")
	time.Sleep(50 * time.Millisecond)
	q.Remove("doomed")

	time.Sleep(200 * time.Millisecond)

	if got := rec.values(); len(got) != 0 {
		t.Fatalf("expected no deliveries after cancel, got %v", got)
	}
	if q.Len() != 0 {
		t.Errorf("expected empty queue, got %d", q.Len())
	}
}

func TestQueueRemoveAt(t *testing.T) {
	rec := &recorder[string]{}
	q := New(rec.expire, nil)
	defer q.Stop()

	at := time.Now().Add(5 * time.Second)
	q.Add(at, "a")
	q.Add(at, "b")
	q.Add(at.Add(time.Second), "survivor")

	q.RemoveAt(at)

	if q.Len() != 1 {
		t.Fatalf("expected 1 event left after RemoveAt, got %d", q.Len())
	}
	snap := q.Snapshot()
	if len(snap) != 1 || snap[0].Value != "survivor" {
		t.Errorf("expected only survivor left, got %v", snap)
	}
}

func TestQueueRescheduleEarlierWakesPromptly(t *testing.T) {
	rec := &recorder[string]{}
	q := New(rec.expire, nil)
	defer q.Stop()

	// The loop arms a timer for +100s; rescheduling to +150ms must re-arm it
	// immediately, not after the stale deadline.
	q.Add(time.Now().Add(100*time.Second), "soon")
	time.Sleep(50 * time.Millisecond)

	start := time.Now()
	q.Reschedule(time.Now().Add(150*time.Millisecond), "soon")

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(rec.values()) == 1 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	got := rec.values()
	if len(got) != 1 {
		t.Fatalf("expected delivery within 2s after rescheduling earlier, got %v", got)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("delivery took %v, loop slept past the rescheduled deadline", elapsed)
	}
}

func TestQueueRescheduleLater(t *testing.T) {
	rec := &recorder[string]{}
	q := New(rec.expire, nil)
	defer q.Stop()

	q.Add(time.Now().Add(100*time.Millisecond), "patient")
	q.Reschedule(time.Now().Add(5*time.Second), "patient")

	time.Sleep(400 * time.Millisecond)

	if got := rec.values(); len(got) != 0 {
		t.Fatalf("expected no delivery before the new deadline, got %v", got)
	}
	if q.Len() != 1 {
		t.Errorf("expected event still scheduled, got len %d", q.Len())
	}
}

func TestQueueNoOpIdempotence(t *testing.T) {
	rec := &recorder[string]{}
	q := New(rec.expire, nil)
	defer q.Stop()

	q.Add(time.Now().Add(time.Hour), "keep")

	// None of these may error, panic, or disturb the stored event.
	q.Remove("absent")
	q.Remove("absent")
	q.RemoveAt(time.Now().Add(30 * time.Minute))
	q.UpdateValue(time.Now().Add(30*time.Minute), "nobody")
	q.Reschedule(time.Now().Add(30*time.Minute), "absent")

	if q.Len() != 1 {
		t.Fatalf("expected 1 event untouched, got %d", q.Len())
	}
	snap := q.Snapshot()
	if snap[0].Value != "keep" {
		t.Errorf("expected keep still scheduled, got %v", snap)
	}
}

func TestQueueAddDuplicateValueReschedules(t *testing.T) {
	rec := &recorder[string]{}
	q := New(rec.expire, nil)
	defer q.Stop()

	q.Add(time.Now().Add(50*time.Millisecond), "dup")
	// Re-adding the same value moves it; it must not fire at the first instant.
	q.Add(time.Now().Add(5*time.Second), "dup")

	if q.Len() != 1 {
		t.Fatalf("expected a single entry for dup, got %d", q.Len())
	}

	time.Sleep(300 * time.Millisecond)

	if got := rec.values(); len(got) != 0 {
		t.Fatalf("expected no delivery at the replaced deadline, got %v", got)
	}
}

func TestQueueUpdateValue(t *testing.T) {
	rec := &recorder[string]{}
	q := New(rec.expire, nil)
	defer q.Stop()

	at := time.Now().Add(150 * time.Millisecond)
	q.Add(at, "old")
	q.UpdateValue(at, "new")

	time.Sleep(400 * time.Millisecond)

	got := rec.values()
	if len(got) != 1 || got[0] != "new" {
		t.Fatalf("expected [new] delivered, got %v", got)
	}
}

func TestQueueUpdateValueEvictsExistingBinding(t *testing.T) {
	rec := &recorder[string]{}
	q := New(rec.expire, nil)
	defer q.Stop()

	at := time.Now().Add(time.Hour)
	q.Add(at, "a")
	q.Add(at.Add(time.Minute), "b")

	// Rebinding the event at `at` to "b" must evict b's old entry so the
	// value appears once.
	q.UpdateValue(at, "b")

	if q.Len() != 1 {
		t.Fatalf("expected 1 event after rebinding, got %d", q.Len())
	}
	snap := q.Snapshot()
	if snap[0].Value != "b" || !snap[0].At.Equal(at) {
		t.Errorf("expected b bound to the earlier instant, got %v", snap)
	}
}

func TestQueueStopDiscardsPending(t *testing.T) {
	defer goleak.VerifyNone(t)

	rec := &recorder[string]{}
	q := New(rec.expire, nil)

	q.Add(time.Now().Add(300*time.Millisecond), "never")
	q.Stop()

	// Stop blocks until the goroutine exits; nothing may fire afterwards.
	time.Sleep(500 * time.Millisecond)

	if got := rec.values(); len(got) != 0 {
		t.Fatalf("expected no deliveries after Stop, got %v", got)
	}
}

func TestQueueStopIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	q := New[string](nil, nil)
	q.Stop()
	q.Stop()

	// Mutations after Stop must be safe no-ops.
	q.Add(time.Now(), "late")
	q.Remove("late")
	q.Reschedule(time.Now(), "late")
	if q.Len() != 0 {
		t.Errorf("expected mutations after Stop to be no-ops, got len %d", q.Len())
	}
}

func TestQueueConcurrentStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	q := New[int](nil, nil)
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Stop()
		}()
	}
	wg.Wait()
}

func TestQueueCallbackPanicRecovered(t *testing.T) {
	ml := logger.NewMockLogger()
	var mu sync.Mutex
	var fired []string
	q := New(func(_ time.Time, v string) {
		mu.Lock()
		fired = append(fired, v)
		mu.Unlock()
		if v == "bomb" {
			panic("callback blew up")
		}
	}, &Opts{Logger: ml})
	defer q.Stop()

	now := time.Now()
	q.Add(now.Add(50*time.Millisecond), "bomb")
	q.Add(now.Add(150*time.Millisecond), "after")

	time.Sleep(500 * time.Millisecond)

	mu.Lock()
	got := append([]string(nil), fired...)
	mu.Unlock()
	if len(got) != 2 || got[1] != "after" {
		t.Fatalf("expected loop to survive panic and deliver [bomb after], got %v", got)
	}
	if len(ml.ErrorCalls()) == 0 {
		t.Error("expected the panic to be logged")
	}
}

func TestQueueEmptyWaitsWithoutFiring(t *testing.T) {
	rec := &recorder[string]{}
	q := New(rec.expire, nil)
	defer q.Stop()

	// Nothing scheduled: the loop must idle on its wake channel without
	// spinning or firing.
	time.Sleep(200 * time.Millisecond)

	if got := rec.values(); len(got) != 0 {
		t.Fatalf("expected no deliveries on an empty queue, got %v", got)
	}
}

func TestQueueSnapshotOrder(t *testing.T) {
	q := New[string](nil, nil)
	defer q.Stop()

	now := time.Now().Add(time.Hour)
	q.Add(now.Add(2*time.Minute), "c")
	q.Add(now, "a")
	q.Add(now.Add(time.Minute), "b")

	snap := q.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(snap))
	}
	if snap[0].Value != "a" || snap[1].Value != "b" || snap[2].Value != "c" {
		t.Errorf("expected snapshot in delivery order [a b c], got %v", snap)
	}
}

// checkConsistent verifies that the heap and the value index describe exactly
// the same set of events, under a quiescent lock.
func checkConsistent[V comparable](t *testing.T, q *Queue[V]) {
	t.Helper()
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.heap) != len(q.index) {
		t.Fatalf("heap holds %d events, index holds %d", len(q.heap), len(q.index))
	}
	for i, ev := range q.heap {
		if ev.heapIdx != i {
			t.Fatalf("event %v has stale heapIdx %d (actual %d)", ev.val, ev.heapIdx, i)
		}
		got, ok := q.index[ev.val]
		if !ok {
			t.Fatalf("heap event %v missing from index", ev.val)
		}
		if got != ev {
			t.Fatalf("index entry for %v points at a different record", ev.val)
		}
	}
}

func TestQueueIndexConsistencyAfterMutationMix(t *testing.T) {
	q := New[int](nil, nil)
	defer q.Stop()

	base := time.Now().Add(time.Hour)
	for i := 0; i < 50; i++ {
		q.Add(base.Add(time.Duration(i)*time.Second), i)
	}
	for i := 0; i < 50; i += 3 {
		q.Remove(i)
	}
	for i := 1; i < 50; i += 3 {
		q.Reschedule(base.Add(time.Duration(100+i)*time.Second), i)
	}
	q.RemoveAt(base.Add(2 * time.Second))
	q.UpdateValue(base.Add(5*time.Second), 500)
	q.UpdateValue(base.Add(8*time.Second), 7) // evicts 7's old slot

	checkConsistent(t, q)
}
