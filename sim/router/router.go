// Package router implements the global, multi-DC broker (C7): arrival
// intake into a FIFO waiting queue, fixed-size batch extraction, and
// range-validated routing to per-DC receivers, per spec.md §4.7.
// Grounded on the teacher's sim/cluster/router.go top-level dispatcher,
// generalized from "route to an inference replica" to "route to a
// datacenter".
package router

import (
	"github.com/sirupsen/logrus"

	"github.com/greensim/greensim/sim"
)

// Receiver is the capability a datacenter's local scheduler exposes to
// the global router (implemented by broker.LocalScheduler).
type Receiver interface {
	Receive(c *sim.Cloudlet, now int64)
}

// Router owns the full sorted arrival timeline and the FIFO of
// arrived-but-unrouted jobs.
type Router struct {
	allCloudlets     []*sim.Cloudlet
	nextArrivalIndex int
	globalWaiting    []int

	firstIntakeDone    bool
	routingInvalidCount int
}

// NewRouter builds a router over a workload already sorted by arrival
// time ascending (ties broken by id, per spec.md §4.3).
func NewRouter(cloudlets []*sim.Cloudlet) *Router {
	return &Router{allCloudlets: cloudlets}
}

// Intake scans arrivals with arrivalTime in [windowStart, windowEnd) and
// appends them to globalWaiting. windowStart must be 0 on the very first
// call and the previous clock value on every subsequent call (spec.md
// §4.7 step 1). Returns the number of jobs admitted.
func (r *Router) Intake(windowStart, windowEnd int64) int {
	if !r.firstIntakeDone {
		windowStart = 0
		r.firstIntakeDone = true
	}
	_ = windowStart // arrivals are consumed strictly in order; lower bound is implied by nextArrivalIndex

	admitted := 0
	for r.nextArrivalIndex < len(r.allCloudlets) {
		c := r.allCloudlets[r.nextArrivalIndex]
		if c.ArrivalTime >= windowEnd {
			break
		}
		r.globalWaiting = append(r.globalWaiting, c.ID)
		r.nextArrivalIndex++
		admitted++
	}
	return admitted
}

// QueueLen returns the current size of globalWaiting.
func (r *Router) QueueLen() int { return len(r.globalWaiting) }

// GetBatch pops up to k jobs from the head of globalWaiting.
func (r *Router) GetBatch(k int) []int {
	if k > len(r.globalWaiting) {
		k = len(r.globalWaiting)
	}
	if k <= 0 {
		return nil
	}
	batch := append([]int(nil), r.globalWaiting[:k]...)
	r.globalWaiting = r.globalWaiting[k:]
	return batch
}

// PeekBatch returns up to k head jobs without mutating the queue (used by
// the observation builder for batchCloudletPes/batchCloudletMi).
func (r *Router) PeekBatch(k int) []int {
	if k > len(r.globalWaiting) {
		k = len(r.globalWaiting)
	}
	if k <= 0 {
		return nil
	}
	return append([]int(nil), r.globalWaiting[:k]...)
}

// PesDistribution buckets the entire globalWaiting queue into
// [#small(<=2 cores), #medium(3-4), #large(>=5)] (spec.md §4.7).
func (r *Router) PesDistribution(cloudlets map[int]*sim.Cloudlet) [3]int {
	var dist [3]int
	for _, id := range r.globalWaiting {
		c := cloudlets[id]
		switch {
		case c.CoresRequired <= 2:
			dist[0]++
		case c.CoresRequired <= 4:
			dist[1]++
		default:
			dist[2]++
		}
	}
	return dist
}

// Route hands each job in batch to receivers[actions[i]] for as many
// (job, action) pairs as actions provides; a batch longer than actions is
// left un-routed in place (spec.md §4.8 step 2: "missing actions leave
// jobs in queue"), which in this implementation means those jobs were
// never popped by the caller in the first place — see RouteBatch.
//
// Range-invalid destination indices are dropped with a warning and
// counted in RoutingInvalidCount; spec.md does not define a reward
// component for this class of error (only local-assign invalidity feeds
// the reward engine), so it surfaces only through RoutingInvalidCount and
// logging.
func (r *Router) Route(batch []int, actions []int, cloudlets map[int]*sim.Cloudlet, receivers []Receiver, now int64) int {
	routed := 0
	n := len(batch)
	if len(actions) < n {
		n = len(actions)
	}
	for i := 0; i < n; i++ {
		jobID := batch[i]
		dcIdx := actions[i]
		if dcIdx < 0 || dcIdx >= len(receivers) {
			r.routingInvalidCount++
			logrus.Warnf("router: job %d routed to out-of-range datacenter index %d, dropped", jobID, dcIdx)
			continue
		}
		job, ok := cloudlets[jobID]
		if !ok {
			continue
		}
		receivers[dcIdx].Receive(job, now)
		routed++
	}
	return routed
}

// RouteBatch is the combined step-2/step-3 convenience the simulation
// core calls each tick: it pops exactly len(globalActions) jobs (capped
// at batchSize and at the current queue length) and routes them,
// satisfying "excess actions are ignored; missing actions leave jobs in
// queue" by never popping more than actions can address.
func (r *Router) RouteBatch(batchSize int, globalActions []int, cloudlets map[int]*sim.Cloudlet, receivers []Receiver, now int64) int {
	m := len(globalActions)
	if m > batchSize {
		m = batchSize
	}
	batch := r.GetBatch(m)
	return r.Route(batch, globalActions, cloudlets, receivers, now)
}

// RoutingInvalidCount returns the cumulative count of route actions
// dropped for an out-of-range datacenter index.
func (r *Router) RoutingInvalidCount() int { return r.routingInvalidCount }
