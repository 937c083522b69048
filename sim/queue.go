package sim

import "container/heap"

// EventQueue is a priority queue over Events plus a cancelled-ids tombstone
// set. Cancellation never touches the heap directly: it marks an id as
// cancelled and pop() silently discards any cancelled event it encounters,
// which keeps cancel O(1) at the cost of occasionally popping and
// discarding dead entries.
type EventQueue struct {
	heap      eventHeap
	cancelled map[EventID]struct{}
	nextID    EventID
	clock     float64
}

func newEventQueue() *EventQueue {
	return &EventQueue{
		heap:      make(eventHeap, 0),
		cancelled: make(map[EventID]struct{}),
	}
}

// nextEventID allocates the next globally unique, monotonically increasing
// event id. Allocation happens regardless of whether the event is ever
// pushed, so EventCount reflects every event ever created, including
// cancelled ones.
func (q *EventQueue) nextEventID() EventID {
	id := q.nextID
	q.nextID++
	return id
}

// push inserts ev into the heap. O(log n).
func (q *EventQueue) push(ev Event) {
	heap.Push(&q.heap, ev)
}

// pop repeatedly pops the min-time event until a non-cancelled one is
// found, advances the clock to that event's time, and returns it.
// Amortised O(log n). Returns false if the queue drains without finding a
// live event.
func (q *EventQueue) pop() (Event, bool) {
	for q.heap.Len() > 0 {
		ev := heap.Pop(&q.heap).(Event)
		if _, dead := q.cancelled[ev.ID]; dead {
			delete(q.cancelled, ev.ID)
			continue
		}
		if ev.Time > q.clock {
			q.clock = ev.Time
		}
		return ev, true
	}
	return Event{}, false
}

// peek returns the earliest non-cancelled event without removing it. It
// lazily discards cancelled entries sitting at the top of the heap but
// does not advance the clock.
func (q *EventQueue) peek() (Event, bool) {
	for q.heap.Len() > 0 {
		ev := q.heap[0]
		if _, dead := q.cancelled[ev.ID]; dead {
			heap.Pop(&q.heap)
			delete(q.cancelled, ev.ID)
			continue
		}
		return ev, true
	}
	return Event{}, false
}

// cancel marks event id as a tombstone. Cancelling an id that does not
// exist, or has already been delivered, is a no-op.
func (q *EventQueue) cancel(id EventID) {
	q.cancelled[id] = struct{}{}
}

// cancelMatching tombstones every still-pending event for which pred
// returns true. Used by component deregistration to apply its cancel
// policy; O(n) in the number of pending events, acceptable since
// deregistration is rare compared to steady-state dispatch.
func (q *EventQueue) cancelMatching(pred func(Event) bool) {
	for _, ev := range q.heap {
		if pred(ev) {
			q.cancelled[ev.ID] = struct{}{}
		}
	}
}

// snapshot returns a time-ordered-ish copy of the pending events for
// introspection (Engine.DumpEvents). It does not filter cancelled ids
// still sitting in the heap, mirroring dump_events' role as a raw look at
// queue state for tests and model checkers.
func (q *EventQueue) snapshot() []Event {
	out := make([]Event, len(q.heap))
	copy(out, q.heap)
	return out
}

// time is the current simulated clock value.
func (q *EventQueue) time() float64 { return q.clock }

// eventCount is the total number of events ever created, including
// cancelled ones.
func (q *EventQueue) eventCount() uint64 { return uint64(q.nextID) }

// eventHeap implements container/heap.Interface, ordering events by
// (time, id) so equal-time events are delivered in creation order.
type eventHeap []Event

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].Time != h[j].Time {
		return h[i].Time < h[j].Time
	}
	return h[i].ID < h[j].ID
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(Event))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
