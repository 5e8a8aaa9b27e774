package timeq

import (
	"testing"
	"time"
)

func TestHeapPopOrdering(t *testing.T) {
	h := &eventHeap[string]{}

	now := time.Now()
	h.push(&event[string]{val: "late", at: now.Add(3 * time.Hour), seq: 0})
	h.push(&event[string]{val: "early", at: now.Add(1 * time.Hour), seq: 1})
	h.push(&event[string]{val: "mid", at: now.Add(2 * time.Hour), seq: 2})

	want := []string{"early", "mid", "late"}
	for i, w := range want {
		ev := h.pop()
		if ev.val != w {
			t.Errorf("pop %d: expected %s, got %s", i, w, ev.val)
		}
	}
}

func TestHeapEqualInstantsInsertionOrder(t *testing.T) {
	h := &eventHeap[string]{}
	at := time.Now().Add(time.Hour)

	h.push(&event[string]{val: "a", at: at, seq: 0})
	h.push(&event[string]{val: "b", at: at, seq: 1})
	h.push(&event[string]{val: "c", at: at, seq: 2})

	if h.Len() != 3 {
		t.Fatalf("expected 3 items, got %d", h.Len())
	}
	// Equal timestamps must pop in insertion (seq) order.
	want := []string{"a", "b", "c"}
	for i, w := range want {
		ev := h.pop()
		if ev.val != w {
			t.Errorf("pop %d: expected %s, got %s", i, w, ev.val)
		}
	}
}

func TestHeapIdxTracksPosition(t *testing.T) {
	h := &eventHeap[int]{}
	now := time.Now()

	evs := make([]*event[int], 5)
	for i := range evs {
		evs[i] = &event[int]{val: i, at: now.Add(time.Duration(5-i) * time.Minute), seq: uint64(i)}
		h.push(evs[i])
	}

	for _, ev := range evs {
		if (*h)[ev.heapIdx] != ev {
			t.Fatalf("heapIdx %d does not point back at event %d", ev.heapIdx, ev.val)
		}
	}

	// Remove from the middle and re-verify every surviving index.
	removed := h.remove(evs[2].heapIdx)
	if removed != evs[2] {
		t.Fatalf("expected to remove event 2, got %d", removed.val)
	}
	if removed.heapIdx != -1 {
		t.Errorf("removed event should have heapIdx -1, got %d", removed.heapIdx)
	}
	for _, ev := range evs {
		if ev == removed {
			continue
		}
		if (*h)[ev.heapIdx] != ev {
			t.Fatalf("heapIdx %d stale after removal for event %d", ev.heapIdx, ev.val)
		}
	}
}

func TestHeapFixAfterKeyChange(t *testing.T) {
	h := &eventHeap[string]{}
	now := time.Now()

	a := &event[string]{val: "a", at: now.Add(1 * time.Hour), seq: 0}
	b := &event[string]{val: "b", at: now.Add(2 * time.Hour), seq: 1}
	h.push(a)
	h.push(b)

	// Move b ahead of a and fix; b must become the minimum.
	b.at = now.Add(30 * time.Minute)
	h.fix(b.heapIdx)

	if (*h)[0] != b {
		t.Errorf("expected b at heap root after fix, got %s", (*h)[0].val)
	}
}
