package timeq

import "container/heap"

// eventHeap implements container/heap.Interface for *event records,
// sorted by (at, seq) — earliest instant first, insertion order within
// one instant (min-heap).
type eventHeap[V comparable] []*event[V]

func (h eventHeap[V]) Len() int { return len(h) }

func (h eventHeap[V]) Less(i, j int) bool {
	if !h[i].at.Equal(h[j].at) {
		return h[i].at.Before(h[j].at)
	}
	return h[i].seq < h[j].seq
}

func (h eventHeap[V]) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].heapIdx = i
	h[j].heapIdx = j
}

func (h *eventHeap[V]) Push(x any) {
	ev := x.(*event[V])
	ev.heapIdx = len(*h)
	*h = append(*h, ev)
}

func (h *eventHeap[V]) Pop() any {
	old := *h
	n := len(old)
	ev := old[n-1]
	old[n-1] = nil // allow GC
	ev.heapIdx = -1
	*h = old[:n-1]
	return ev
}

// push adds a record, maintaining the heap invariant.
func (h *eventHeap[V]) push(ev *event[V]) {
	heap.Push(h, ev)
}

// pop removes and returns the record with the earliest (at, seq) key.
// Panics if the heap is empty.
func (h *eventHeap[V]) pop() *event[V] {
	return heap.Pop(h).(*event[V])
}

// remove removes the record at position idx and re-heapifies in O(log N).
func (h *eventHeap[V]) remove(idx int) *event[V] {
	return heap.Remove(h, idx).(*event[V])
}

// fix re-establishes the heap invariant after the record at idx changed key.
func (h *eventHeap[V]) fix(idx int) {
	heap.Fix(h, idx)
}
