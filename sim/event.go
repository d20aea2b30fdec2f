package sim

import "container/heap"

// EventTag classifies an event for logging and for the deterministic
// tie-break used by the event heap (spec.md §4.1).
type EventTag string

const (
	TagNone             EventTag = "None"
	TagCloudletFinished EventTag = "CloudletFinished"
	TagVMStartup        EventTag = "VmStartup"
	TagExternalNudge    EventTag = "ExternalNudge"
)

// eventTagPriority orders events that land on the same tick. Lower values
// are processed first. Nudges sort last so that real work on a tick is
// always drained before a keep-alive nudge is considered.
var eventTagPriority = map[EventTag]int{
	TagVMStartup:        1,
	TagCloudletFinished: 2,
	TagExternalNudge:    3,
	TagNone:             4,
}

// Event is anything the clock can schedule and execute. From/To identify
// the logical sender/receiver (a VM id, a datacenter id, or -1 for the
// simulation itself) and are carried for logging only; the Handler
// registered with the clock performs the actual state transition.
type Event struct {
	at      int64
	id      uint64
	Tag     EventTag
	From    int
	To      int
	Payload any
}

func (e *Event) Timestamp() int64 { return e.at }
func (e *Event) ID() uint64       { return e.id }

// eventQueue implements container/heap.Interface over Event, with a
// deterministic three-level ordering: timestamp, then tag priority, then
// insertion-order event id. This is what lets two same-tick events always
// replay in the same order (I9: bit-for-bit determinism across resets).
type eventQueue []*Event

func (q eventQueue) Len() int { return len(q) }

func (q eventQueue) Less(i, j int) bool {
	a, b := q[i], q[j]
	if a.at != b.at {
		return a.at < b.at
	}
	pa, pb := eventTagPriority[a.Tag], eventTagPriority[b.Tag]
	if pa != pb {
		return pa < pb
	}
	return a.id < b.id
}

func (q eventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *eventQueue) Push(x any) {
	*q = append(*q, x.(*Event))
}

func (q *eventQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}

var _ heap.Interface = (*eventQueue)(nil)
