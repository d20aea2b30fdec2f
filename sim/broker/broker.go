// Package broker implements the per-datacenter local scheduler (C6):
// a FIFO queue of routed jobs and the assignCloudletToVm state machine
// from spec.md §4.6, grounded on the teacher's sim/cluster/scheduler.go
// per-instance queue/assign contract.
package broker

import "github.com/greensim/greensim/sim"

// LocalScheduler is one datacenter's job queue and VM-assignment broker.
type LocalScheduler struct {
	DatacenterID int

	waitingLocal    []int
	arrivalAtBroker map[int]int64
	ownedVMs        map[int]bool

	waitTimeByCloudlet map[int]int64

	finishedThisStep   []int
	waitTimesThisStep  []int64

	cloudletsReceivedCumulative int
}

// NewLocalScheduler creates an empty broker for the given datacenter.
func NewLocalScheduler(dcID int) *LocalScheduler {
	return &LocalScheduler{
		DatacenterID:       dcID,
		arrivalAtBroker:    make(map[int]int64),
		ownedVMs:           make(map[int]bool),
		waitTimeByCloudlet: make(map[int]int64),
	}
}

// OwnVM registers vmID as belonging to this datacenter, making it a valid
// assignment target.
func (s *LocalScheduler) OwnVM(vmID int) { s.ownedVMs[vmID] = true }

// Owns reports whether vmID belongs to this datacenter.
func (s *LocalScheduler) Owns(vmID int) bool { return s.ownedVMs[vmID] }

// Receive enqueues a cloudlet routed to this DC by the global router
// (spec.md §4.7 step 3: "hand job to DC[dcIndex].localScheduler.receive(job)").
func (s *LocalScheduler) Receive(c *sim.Cloudlet, now int64) {
	s.waitingLocal = append(s.waitingLocal, c.ID)
	s.arrivalAtBroker[c.ID] = now
	s.cloudletsReceivedCumulative++
}

// QueueLen returns the number of jobs currently waiting for a VM.
func (s *LocalScheduler) QueueLen() int { return len(s.waitingLocal) }

// PeekHead returns the cloudlet id at the head of the queue, if any.
func (s *LocalScheduler) PeekHead() (int, bool) {
	if len(s.waitingLocal) == 0 {
		return 0, false
	}
	return s.waitingLocal[0], true
}

// CloudletsReceivedCumulative returns the running total of jobs ever
// handed to this broker (used by the reward engine's queue-length term).
func (s *LocalScheduler) CloudletsReceivedCumulative() int { return s.cloudletsReceivedCumulative }

// AssignCloudletToVM implements the exact contract of spec.md §4.6.
// cloudlets and vms are the owning datacenter's entity maps, keyed by id.
func (s *LocalScheduler) AssignCloudletToVM(vmID int, now int64, cloudlets map[int]*sim.Cloudlet, vms map[int]*sim.VM) bool {
	if vmID == -1 {
		// success-no-effect if nothing is waiting; otherwise invalid
		return len(s.waitingLocal) == 0
	}
	if !s.ownedVMs[vmID] {
		return false
	}
	if len(s.waitingLocal) == 0 {
		return false
	}

	headID := s.waitingLocal[0]
	vm, vmOK := vms[vmID]
	job, jobOK := cloudlets[headID]
	if !vmOK || !jobOK {
		// spec.md §9: a VM/job lookup mismatch is an invalid action, never a panic.
		return false
	}
	if vm.State != sim.VMRunning || vm.FreeCores < job.CoresRequired {
		return false
	}

	job.State = sim.CloudletRunning
	job.VMID = vmID
	job.StartTime = now
	vm.FreeCores -= job.CoresRequired

	wait := now - s.arrivalAtBroker[headID]
	s.waitTimeByCloudlet[headID] = wait
	delete(s.arrivalAtBroker, headID)
	s.waitingLocal = s.waitingLocal[1:]
	return true
}

// RecordFinished moves a just-finished cloudlet into this step's finished
// tracking, using the wait time captured at assignment time. Called by the
// simulation core when it processes a CloudletFinished event.
func (s *LocalScheduler) RecordFinished(cloudletID int) {
	wait, ok := s.waitTimeByCloudlet[cloudletID]
	if !ok {
		wait = 0
	}
	delete(s.waitTimeByCloudlet, cloudletID)
	s.finishedThisStep = append(s.finishedThisStep, cloudletID)
	s.waitTimesThisStep = append(s.waitTimesThisStep, wait)
}

// FinishedThisStep returns the cloudlet ids that finished during the
// current step, valid until ClearStepTracking is called.
func (s *LocalScheduler) FinishedThisStep() []int { return s.finishedThisStep }

// AvgWaitOfFinishedThisStep returns the mean wait time of jobs finished
// this step, or 0 if none finished (spec.md §4.10 component 1).
func (s *LocalScheduler) AvgWaitOfFinishedThisStep() float64 {
	if len(s.waitTimesThisStep) == 0 {
		return 0
	}
	var sum int64
	for _, w := range s.waitTimesThisStep {
		sum += w
	}
	return float64(sum) / float64(len(s.waitTimesThisStep))
}

// ClearStepTracking clears finishedThisStep and its wait times. Must be
// called after reward computation, per spec.md §4.6 and §4.8 step 9.
func (s *LocalScheduler) ClearStepTracking() {
	s.finishedThisStep = nil
	s.waitTimesThisStep = nil
}
