package sim

import "testing"

// TestEventHeap_TimestampOrdering tests that events are popped in timestamp order
func TestEventHeap_TimestampOrdering(t *testing.T) {
	h := newEventHeap()

	h.schedule(event{time: 100, seq: 1})
	h.schedule(event{time: 50, seq: 2})
	h.schedule(event{time: 150, seq: 3})

	for _, want := range []float64{50, 100, 150} {
		got, ok := h.popNext()
		if !ok {
			t.Fatalf("heap empty, want event at %v", want)
		}
		if got.time != want {
			t.Errorf("event timestamp = %v, want %v", got.time, want)
		}
	}

	if h.Len() != 0 {
		t.Errorf("Heap should be empty, len = %d", h.Len())
	}
}

// TestEventHeap_SequenceOrdering tests same-timestamp events pop in insertion order
func TestEventHeap_SequenceOrdering(t *testing.T) {
	h := newEventHeap()

	h.schedule(event{time: 10, seq: 3})
	h.schedule(event{time: 10, seq: 1})
	h.schedule(event{time: 10, seq: 2})

	for want := uint64(1); want <= 3; want++ {
		got, _ := h.popNext()
		if got.seq != want {
			t.Errorf("event seq = %d, want %d", got.seq, want)
		}
	}
}

func TestEventHeap_PeekAndEmpty(t *testing.T) {
	h := newEventHeap()
	if _, ok := h.peek(); ok {
		t.Error("peek on empty heap should report !ok")
	}
	if _, ok := h.popNext(); ok {
		t.Error("popNext on empty heap should report !ok")
	}

	h.schedule(event{time: 2, seq: 1})
	h.schedule(event{time: 1, seq: 2})
	e, ok := h.peek()
	if !ok || e.time != 1 {
		t.Errorf("peek = %v, want time 1", e)
	}
	if h.Len() != 2 {
		t.Errorf("peek must not remove, len = %d", h.Len())
	}
	if n := h.discard(); n != 2 || h.Len() != 0 {
		t.Errorf("discard = %d (len %d), want 2 (len 0)", n, h.Len())
	}
}
