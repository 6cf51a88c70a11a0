package sim

import "container/heap"

// eventHeap implements a priority queue with deterministic ordering.
// Ordering: timestamp → insertion sequence.
type eventHeap struct {
	events []event
}

func newEventHeap() *eventHeap {
	h := &eventHeap{
		events: make([]event, 0),
	}
	heap.Init(h)
	return h
}

// Len implements heap.Interface
func (h *eventHeap) Len() int {
	return len(h.events)
}

// Less implements heap.Interface with deterministic ordering
func (h *eventHeap) Less(i, j int) bool {
	return h.events[i].before(h.events[j])
}

// Swap implements heap.Interface
func (h *eventHeap) Swap(i, j int) {
	h.events[i], h.events[j] = h.events[j], h.events[i]
}

// Push implements heap.Interface
func (h *eventHeap) Push(x any) {
	h.events = append(h.events, x.(event))
}

// Pop implements heap.Interface
func (h *eventHeap) Pop() any {
	old := h.events
	n := len(old)
	item := old[n-1]
	old[n-1] = event{}
	h.events = old[0 : n-1]
	return item
}

func (h *eventHeap) schedule(e event) {
	heap.Push(h, e)
}

// popNext removes and returns the next event. ok is false on an empty heap.
func (h *eventHeap) popNext() (e event, ok bool) {
	if h.Len() == 0 {
		return event{}, false
	}
	return heap.Pop(h).(event), true
}

// peek returns the next event without removing it.
func (h *eventHeap) peek() (e event, ok bool) {
	if h.Len() == 0 {
		return event{}, false
	}
	return h.events[0], true
}

// discard drops every pending event and returns how many were dropped.
func (h *eventHeap) discard() int {
	n := len(h.events)
	clear(h.events)
	h.events = h.events[:0]
	return n
}
