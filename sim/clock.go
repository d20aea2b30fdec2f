package sim

import (
	"container/heap"

	"github.com/sirupsen/logrus"
)

// defaultMaxIterations bounds the number of events AdvanceTo will drain in
// a single call. It exists purely as a guard against degenerate inputs
// (e.g. a zero-delay event that reschedules itself forever); a sane
// workload never comes close to it.
const defaultMaxIterations = 1000

// Handler executes one event against whatever owns the clock. The clock
// itself knows nothing about hosts, VMs or cloudlets — it only orders and
// dispatches events, exactly like the teacher's EventHeap/Event split
// (sim/cluster/event_heap.go, sim/cluster/events.go) generalizes the
// single-instance sim.Simulator's inline heap handling.
type Handler interface {
	HandleEvent(ev *Event)
}

// Clock is the virtual clock and event queue described in spec.md §4.1.
// It is not safe for concurrent use; the whole simulation core is
// single-threaded by design (spec.md §5).
type Clock struct {
	now           int64
	queue         eventQueue
	nextEventID   uint64
	handler       Handler
	running       bool
	maxIterations int
}

// NewClock creates a running Clock at time 0.
func NewClock(handler Handler) *Clock {
	q := make(eventQueue, 0)
	heap.Init(&q)
	return &Clock{
		queue:         q,
		handler:       handler,
		running:       true,
		maxIterations: defaultMaxIterations,
	}
}

// Now returns the current virtual clock value.
func (c *Clock) Now() int64 { return c.now }

// IsRunning reports whether the clock accepts further events.
func (c *Clock) IsRunning() bool { return c.running }

// Terminate stops the clock. Idempotent (P1): terminating an already
// terminated clock is a no-op.
func (c *Clock) Terminate() {
	c.running = false
}

// Send schedules an event `delay` ticks from now, tagged `tag`, carrying
// `payload`, nominally from entity `from` to entity `to` (informational
// only — ids such as a VM id or datacenter index, or -1 for "the
// simulation itself"). Returns the scheduled event.
func (c *Clock) Send(from, to int, delay int64, tag EventTag, payload any) *Event {
	if delay < 0 {
		delay = 0
	}
	c.nextEventID++
	ev := &Event{
		at:      c.now + delay,
		id:      c.nextEventID,
		Tag:     tag,
		From:    from,
		To:      to,
		Payload: payload,
	}
	heap.Push(&c.queue, ev)
	return ev
}

// Pending reports whether any event remains in the queue.
func (c *Clock) Pending() bool { return c.queue.Len() > 0 }

// AdvanceTo repeatedly pops and executes the minimum-timestamp event while
// that timestamp is <= targetT, advancing c.now to match each processed
// event in turn. Once no further event qualifies, c.now is set to targetT
// (clock is monotonic non-decreasing: targetT is always >= the last
// processed event's timestamp, since events are processed in order).
//
// If maxIterations is exceeded — a guard against degenerate event chains,
// e.g. a zero-delay self-rescheduling event — AdvanceTo logs a warning,
// clamps the clock to targetT and returns (EventLoopStall, spec.md §7).
func (c *Clock) AdvanceTo(targetT int64) {
	iterations := 0
	for c.queue.Len() > 0 && c.queue[0].at <= targetT {
		iterations++
		if iterations > c.maxIterations {
			logrus.Warnf("sim: AdvanceTo hit maxIterations (%d) advancing to %d; clamping clock", c.maxIterations, targetT)
			c.now = targetT
			return
		}
		ev := heap.Pop(&c.queue).(*Event)
		c.now = ev.at
		if c.handler != nil {
			c.handler.HandleEvent(ev)
		}
	}
	if c.now < targetT {
		c.now = targetT
	}
}
