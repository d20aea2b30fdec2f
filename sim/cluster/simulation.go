package cluster

import (
	"fmt"
	"math"

	"github.com/greensim/greensim/sim"
	"github.com/greensim/greensim/sim/router"
	"github.com/greensim/greensim/sim/workload"
)

// DCInfo is the per-datacenter slice of the step/reset info dict
// (spec.md §4.8: "counts, current clock, per-DC energy ... and booleans
// for termination causes").
type DCInfo struct {
	CloudletsReceived       int
	CloudletsFinished       int
	EnergyGreenWhTick       float64
	EnergyBrownWhTick       float64
	CumulativeGreenWh       float64
	CumulativeBrownWh       float64
	CumulativeWastedGreenWh float64
	CumulativeCarbonKg      float64
	GreenRatio              float64
	CarbonIntensityKgPerKWh float64
	LocalActionValid        bool
}

// Info is the full info dict returned alongside observations and rewards.
// CloudletsFinishedTotal is a lifetime count across the whole episode so
// far; compare GlobalObservation.RecentCompletedTotal, which counts only
// this step's completions and resets every step.
type Info struct {
	Clock                      int64
	CloudletsFinishedTotal     int
	PerDC                      map[int]DCInfo
	TerminatedNoUnroutedJobs   bool
	TerminatedQueuesEmpty      bool
	Terminated                 bool
	Truncated                  bool
}

type finishPayload struct {
	dcID        int
	cloudletID  int
}

// Simulation is the hierarchical simulation core (C8): it owns the
// clock, the global router, every datacenter instance, and drives the
// fixed ten-phase step order from spec.md §4.8. Grounded on the
// teacher's sim/cluster/simulation.go top-level driver, generalized from
// one inference instance to a fleet of datacenters under a router.
type Simulation struct {
	Settings sim.SimulationSettings

	Clock  *sim.Clock
	Router *router.Router
	idGen  *sim.IDGenerator
	rng    *sim.PartitionedRNG

	datacenters   map[int]*Datacenter
	dcOrder       []int
	cloudletsByID map[int]*sim.Cloudlet

	powerModel sim.PowerModel
	deltaTicks int64

	currentStepCount       int64
	seed                   int64
	hasReset               bool
	cloudletsFinishedTotal int // lifetime count across the whole episode
	stepCompletedCount     int // count finished during the current step only
	lastAssignValid        map[int]bool
	terminated             bool
}

// NewSimulation prepares a simulation core from validated settings. Call
// Reset before the first Step.
func NewSimulation(settings sim.SimulationSettings) (*Simulation, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	deltaTicks := int64(math.Round(settings.SimulationTimestepSeconds))
	if deltaTicks < 1 {
		deltaTicks = 1
	}
	return &Simulation{
		Settings:   settings,
		powerModel: sim.LinearPowerModel{},
		deltaTicks: deltaTicks,
		idGen:      &sim.IDGenerator{},
	}, nil
}

// HandleEvent implements sim.Handler: it reacts to CloudletFinished
// events by releasing the VM's cores and recording the finish with the
// owning DC's local scheduler.
func (s *Simulation) HandleEvent(ev *sim.Event) {
	switch ev.Tag {
	case sim.TagCloudletFinished:
		p, ok := ev.Payload.(finishPayload)
		if !ok {
			return
		}
		dc, ok := s.datacenters[p.dcID]
		if !ok {
			return
		}
		c, ok := dc.Cloudlets[p.cloudletID]
		if !ok {
			return
		}
		if vm, ok := dc.VMs[c.VMID]; ok {
			vm.FreeCores += c.CoresRequired
		}
		dc.Scheduler.RecordFinished(c.ID)
		dc.CloudletsFinished++
		s.cloudletsFinishedTotal++
		s.stepCompletedCount++
	}
}

// Reset rebuilds all dynamic state from configuration and the given
// seed (spec.md §4.8 reset steps). workloadOverride, if non-nil, is used
// instead of loading settings.CloudletTraceFile — the seam tests use to
// inject synthetic workloads.
func (s *Simulation) Reset(seed int64, workloadOverride []*sim.Cloudlet) (GlobalObservation, map[int]LocalObservation, Info, error) {
	s.seed = seed
	s.rng = sim.NewPartitionedRNG(seed)
	s.idGen.Reset()
	s.terminated = false
	s.cloudletsFinishedTotal = 0
	s.stepCompletedCount = 0
	s.lastAssignValid = make(map[int]bool)

	cloudlets := workloadOverride
	if cloudlets == nil {
		loaded, err := workload.Load(&s.Settings)
		if err != nil {
			return GlobalObservation{}, nil, Info{}, err
		}
		cloudlets = loaded
	}
	s.cloudletsByID = make(map[int]*sim.Cloudlet, len(cloudlets))
	for _, c := range cloudlets {
		s.cloudletsByID[c.ID] = c
	}
	s.Router = router.NewRouter(cloudlets)

	s.datacenters = make(map[int]*Datacenter, len(s.Settings.Datacenters))
	s.dcOrder = nil
	for _, cfg := range s.Settings.Datacenters {
		dc, err := NewDatacenter(cfg, s.idGen, sim.FirstFitByFreeCores{})
		if err != nil {
			return GlobalObservation{}, nil, Info{}, fmt.Errorf("cluster: datacenter %d: %w", cfg.DatacenterID, err)
		}
		s.datacenters[cfg.DatacenterID] = dc
		s.dcOrder = append(s.dcOrder, cfg.DatacenterID)
		s.lastAssignValid[cfg.DatacenterID] = true
	}

	s.Clock = sim.NewClock(s)
	s.Clock.AdvanceTo(s.Settings.MinTimeBetweenEvents)
	s.currentStepCount = 0

	globalObs := buildGlobalObservation(s)
	localObs := make(map[int]LocalObservation, len(s.dcOrder))
	for _, dcID := range s.dcOrder {
		localObs[dcID] = buildLocalObservation(s.datacenters[dcID])
	}
	return globalObs, localObs, s.buildInfo(), nil
}

// receivers returns the router.Receiver slice indexed by position in
// dcOrder, matching the global action vector's dcIndex convention.
func (s *Simulation) receivers() []router.Receiver {
	out := make([]router.Receiver, len(s.dcOrder))
	for i, dcID := range s.dcOrder {
		out[i] = s.datacenters[dcID]
	}
	return out
}

// Step executes the fixed ten-phase tick (spec.md §4.8). localActions
// maps datacenter id to the VM id to assign (or -1 for no-assign).
func (s *Simulation) Step(globalActions []int, localActions map[int]int) (GlobalObservation, map[int]LocalObservation, float64, map[int]float64, bool, bool, Info) {
	now := s.Clock.Now()

	// 1. Global intake
	windowEnd := now + s.deltaTicks
	s.Router.Intake(now, windowEnd)

	// 2. Global routing
	s.Router.RouteBatch(s.Settings.GlobalRoutingBatchSize, globalActions, s.cloudletsByID, s.receivers(), now)

	// 3. Local scheduling
	for _, dcID := range s.dcOrder {
		dc := s.datacenters[dcID]
		vmID, ok := localActions[dcID]
		if !ok {
			vmID = -1
		}
		valid := dc.Scheduler.AssignCloudletToVM(vmID, now, dc.Cloudlets, dc.VMs)
		s.lastAssignValid[dcID] = valid
	}

	// 4. Advance clock by deltaTicks; compute cloudlet progress synchronously
	// for the tick about to elapse, then snapshot each VM's occupancy for
	// that same tick before CloudletFinished events free any cores — a
	// cloudlet that ran (and held its cores) for the whole tick must be
	// billed at that tick's utilization even though it finishes exactly on
	// the boundary (spec.md §4.2's u(t) = runningMI_s / (cores·mipsPerCore·
	// Δt) counts the MI actually executed, not the VM's state afterward).
	targetT := now + s.deltaTicks
	s.advanceCompute(targetT)
	for _, dcID := range s.dcOrder {
		refreshVMUtilization(s.datacenters[dcID])
	}
	s.Clock.AdvanceTo(targetT)

	// 5. Energy update per DC, using the occupancy snapshot taken above.
	for _, dcID := range s.dcOrder {
		dc := s.datacenters[dcID]
		s.updateEnergy(dc, targetT)
	}

	// 6. Sync completion counters happens inline via HandleEvent (step 4/5 overlap);
	// CloudletsFinished is already current.

	// 7. Build observations
	globalObs := buildGlobalObservation(s)
	localObs := make(map[int]LocalObservation, len(s.dcOrder))
	for _, dcID := range s.dcOrder {
		localObs[dcID] = buildLocalObservation(s.datacenters[dcID])
	}

	// 8. Compute rewards, before clearing per-step tracking
	uTarget := s.Settings.ResolveUtilizationTarget()
	localRewards := make(map[int]float64, len(s.dcOrder))
	var carbonDeltaSum float64
	for _, dcID := range s.dcOrder {
		dc := s.datacenters[dcID]
		localRewards[dcID] = localReward(dc, s.Settings.Reward, uTarget, s.lastAssignValid[dcID])
		carbonDeltaSum += dc.LastAllocation.CarbonKg
	}
	gReward := globalReward(localRewards, s.Settings.Reward, carbonDeltaSum)

	// 9. Clear per-step tracking
	for _, dcID := range s.dcOrder {
		s.datacenters[dcID].Scheduler.ClearStepTracking()
	}
	s.stepCompletedCount = 0

	// 10. Termination check
	terminated := s.allQueuesEmpty()
	if terminated && !s.terminated {
		s.terminated = true
		s.Clock.Terminate()
	}
	s.currentStepCount++
	truncated := s.currentStepCount >= s.Settings.MaxEpisodeLength

	info := s.buildInfo()
	info.Terminated = terminated
	info.Truncated = truncated
	info.TerminatedNoUnroutedJobs = s.Router.QueueLen() == 0
	info.TerminatedQueuesEmpty = terminated

	return globalObs, localObs, gReward, localRewards, terminated, truncated, info
}

// advanceCompute applies one tick's worth of compute progress to every
// Running cloudlet across every DC, scheduling a CloudletFinished event
// at targetT for any that complete (spec.md §4.2).
func (s *Simulation) advanceCompute(targetT int64) {
	deltaSeconds := s.Settings.SimulationTimestepSeconds
	for _, dcID := range s.dcOrder {
		dc := s.datacenters[dcID]
		for id := range dc.Cloudlets {
			c := dc.Cloudlets[id]
			if c.State != sim.CloudletRunning {
				continue
			}
			vm, ok := dc.VMs[c.VMID]
			if !ok {
				continue
			}
			host, ok := dc.Hosts[vm.HostID]
			if !ok {
				continue
			}
			finished := sim.Advance(c, host.Profile.MipsPerCore, deltaSeconds)
			if finished {
				sim.Finish(c, targetT)
				s.Clock.Send(dcID, c.ID, s.deltaTicks, sim.TagCloudletFinished, finishPayload{dcID: dcID, cloudletID: c.ID})
			}
		}
	}
}

// refreshVMUtilization recomputes each Running VM's CPU utilization for
// the tick that just elapsed, as the fraction of its cores occupied by a
// cloudlet during that tick (spec.md §4.2, §4.9's vmCpuLoad/hostCpuUtil
// feed off this). Must run after advanceCompute but before the clock
// advances far enough to process any CloudletFinished event for this
// tick, since that event frees the VM's cores and would otherwise make a
// cloudlet that ran the whole tick read back as idle.
func refreshVMUtilization(dc *Datacenter) {
	for _, id := range dc.VMOrder {
		vm := dc.VMs[id]
		if vm.State != sim.VMRunning || vm.Cores == 0 {
			vm.CPUUtil = 0
			continue
		}
		vm.CPUUtil = float64(vm.Cores-vm.FreeCores) / float64(vm.Cores)
	}
}

// updateEnergy performs the per-DC green-first allocation for the tick
// that just elapsed (spec.md §4.5).
func (s *Simulation) updateEnergy(dc *Datacenter, now int64) {
	deltaSeconds := s.Settings.SimulationTimestepSeconds
	deltaHours := deltaSeconds / 3600.0

	demandW := dc.TotalDemandW(s.powerModel)
	greenW := dc.TotalGreenW(now)

	alloc := dc.Accountant.Allocate(demandW*deltaHours, greenW*deltaHours)
	dc.LastAllocation = alloc

	for _, hostID := range dc.HostOrder {
		h := dc.Hosts[hostID]
		h.RecordSample(now, h.Utilization(dc.VMs))
	}
}

// allQueuesEmpty implements the termination predicate in spec.md §4.8
// step 10: no unrouted jobs, and every DC's local queue and running set
// is empty.
func (s *Simulation) allQueuesEmpty() bool {
	if s.Router.QueueLen() > 0 {
		return false
	}
	for _, dcID := range s.dcOrder {
		dc := s.datacenters[dcID]
		if dc.Scheduler.QueueLen() > 0 {
			return false
		}
		for _, c := range dc.Cloudlets {
			if c.State == sim.CloudletRunning || c.State == sim.CloudletAssigned {
				return false
			}
		}
	}
	return true
}

func (s *Simulation) buildInfo() Info {
	info := Info{
		Clock:                  s.Clock.Now(),
		CloudletsFinishedTotal: s.cloudletsFinishedTotal,
		PerDC:                  make(map[int]DCInfo, len(s.dcOrder)),
	}
	for _, dcID := range s.dcOrder {
		dc := s.datacenters[dcID]
		carbonIntensity := 0.0
		totalKWh := (dc.Accountant.CumulativeGreenWh() + dc.Accountant.CumulativeBrownWh()) / 1000
		if totalKWh > 0 {
			carbonIntensity = dc.Accountant.CumulativeCarbonKg() / totalKWh
		}
		greenRatio := 0.0
		if dc.LastAllocation.DemandWh > 0 {
			greenRatio = dc.LastAllocation.GreenUsedWh / dc.LastAllocation.DemandWh
		}
		info.PerDC[dcID] = DCInfo{
			CloudletsReceived:       dc.Scheduler.CloudletsReceivedCumulative(),
			CloudletsFinished:       dc.CloudletsFinished,
			EnergyGreenWhTick:       dc.LastAllocation.GreenUsedWh,
			EnergyBrownWhTick:       dc.LastAllocation.BrownUsedWh,
			CumulativeGreenWh:       dc.Accountant.CumulativeGreenWh(),
			CumulativeBrownWh:       dc.Accountant.CumulativeBrownWh(),
			CumulativeWastedGreenWh: dc.Accountant.CumulativeWastedGreenWh(),
			CumulativeCarbonKg:      dc.Accountant.CumulativeCarbonKg(),
			GreenRatio:              greenRatio,
			CarbonIntensityKgPerKWh: carbonIntensity,
			LocalActionValid:        s.lastAssignValid[dcID],
		}
	}
	return info
}

// Close terminates the clock and releases simulation state. Idempotent
// (spec.md P1).
func (s *Simulation) Close() error {
	if s.Clock != nil {
		s.Clock.Terminate()
	}
	return nil
}

// DatacenterIDs returns the fixed DC ordering established at reset.
func (s *Simulation) DatacenterIDs() []int { return append([]int(nil), s.dcOrder...) }
