package cluster

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/greensim/greensim/sim"
)

// GlobalObservation is the DC-level view built each tick (spec.md §4.9).
// All DC-indexed slices have length N = number of datacenters and use
// the fixed DCOrder established at reset.
type GlobalObservation struct {
	DCGreenPowerW   []float64
	DCTotalPowerW   []float64
	DCGreenRatio    []float64
	DCWastedGreenWh []float64

	DCShortMean      []float64
	DCShortTrend     []float64
	DCLongMean       []float64
	DCLongPeakTiming []float64

	DCQueueSize    []int
	DCAvgCpuUtil   []float64
	DCAvailablePEs []int
	DCAvgRamUtil   []float64

	UpcomingCount        int
	BatchCloudletPes     []int
	BatchCloudletMi      []int64
	QueuePesDistribution [3]int
	LoadImbalance        float64
	RecentCompletedTotal int // cloudlets that finished during this step only, not a lifetime total
	CurrentClock         int64
}

// LocalObservation is one DC's VM/host-level view (spec.md §4.9). Slot
// arrays are sized to that DC's fixed VM/host counts and keep stable slot
// ordering (VM creation order, host id order) across the whole episode.
type LocalObservation struct {
	VMCpuLoad []float64
	VMType    []int // 0=off/unknown, 1=S, 2=M, 3=L
	VMHostID  []int
	VMFreePEs []int

	HostCpuUtil []float64
	HostRamUtil []float64
	HostFreePEs []int

	WaitingLocal        int
	NextCloudletPEs     int
	ActualActiveVmCount int
	ActualHostCount     int
}

func vmTypeCode(size sim.VMSize) int {
	switch size {
	case sim.VMSmall:
		return 1
	case sim.VMMedium:
		return 2
	case sim.VMLarge:
		return 3
	default:
		return 0
	}
}

// buildLocalObservation constructs dc's local observation for the
// current tick.
func buildLocalObservation(dc *Datacenter) LocalObservation {
	obs := LocalObservation{
		VMCpuLoad:   make([]float64, len(dc.VMOrder)),
		VMType:      make([]int, len(dc.VMOrder)),
		VMHostID:    make([]int, len(dc.VMOrder)),
		VMFreePEs:   make([]int, len(dc.VMOrder)),
		HostCpuUtil: make([]float64, len(dc.HostOrder)),
		HostRamUtil: make([]float64, len(dc.HostOrder)),
		HostFreePEs: make([]int, len(dc.HostOrder)),
	}

	active := 0
	for i, id := range dc.VMOrder {
		vm := dc.VMs[id]
		if vm.State == sim.VMRunning {
			obs.VMCpuLoad[i] = vm.CPUUtil
			obs.VMType[i] = vmTypeCode(vm.Size)
			obs.VMHostID[i] = vm.HostID
			obs.VMFreePEs[i] = vm.FreeCores
			active++
		} else {
			obs.VMHostID[i] = -1
		}
	}

	for i, id := range dc.HostOrder {
		h := dc.Hosts[id]
		obs.HostCpuUtil[i] = h.Utilization(dc.VMs)
		obs.HostRamUtil[i] = h.RamUtilization()
		obs.HostFreePEs[i] = h.FreeCores
	}

	obs.WaitingLocal = dc.Scheduler.QueueLen()
	if headID, ok := dc.Scheduler.PeekHead(); ok {
		obs.NextCloudletPEs = dc.Cloudlets[headID].CoresRequired
	}
	obs.ActualActiveVmCount = active
	obs.ActualHostCount = len(dc.HostOrder)
	return obs
}

// buildGlobalObservation constructs the DC-level observation from the
// simulation's current state, using dcOrder for deterministic slot
// ordering.
func buildGlobalObservation(s *Simulation) GlobalObservation {
	n := len(s.dcOrder)
	obs := GlobalObservation{
		DCGreenPowerW:    make([]float64, n),
		DCTotalPowerW:    make([]float64, n),
		DCGreenRatio:     make([]float64, n),
		DCWastedGreenWh:  make([]float64, n),
		DCShortMean:      make([]float64, n),
		DCShortTrend:     make([]float64, n),
		DCLongMean:       make([]float64, n),
		DCLongPeakTiming: make([]float64, n),
		DCQueueSize:      make([]int, n),
		DCAvgCpuUtil:     make([]float64, n),
		DCAvailablePEs:   make([]int, n),
		DCAvgRamUtil:     make([]float64, n),
		CurrentClock:     s.Clock.Now(),
	}

	for i, dcID := range s.dcOrder {
		dc := s.datacenters[dcID]
		obs.DCGreenPowerW[i] = dc.TotalGreenW(s.Clock.Now())
		obs.DCTotalPowerW[i] = dc.TotalDemandW(s.powerModel)
		if obs.DCTotalPowerW[i] > 0 {
			obs.DCGreenRatio[i] = obs.DCGreenPowerW[i] / obs.DCTotalPowerW[i]
			if obs.DCGreenRatio[i] > 1 {
				obs.DCGreenRatio[i] = 1
			}
		}
		obs.DCWastedGreenWh[i] = dc.LastAllocation.WastedGreenWh

		shortRows, longRows := dc.Config.Green.ShortTermRows, dc.Config.Green.LongTermRows
		trend := dc.AggregateTrendFeatures(s.Clock.Now(), shortRows, longRows)
		obs.DCShortMean[i] = trend.ShortMean
		obs.DCShortTrend[i] = trend.ShortTrend
		obs.DCLongMean[i] = trend.LongMean
		obs.DCLongPeakTiming[i] = trend.LongPeakTiming

		obs.DCQueueSize[i] = dc.Scheduler.QueueLen()

		running := dc.RunningVMs()
		var cpuMean float64
		if len(running) > 0 {
			utils := make([]float64, len(running))
			for j, vm := range running {
				utils[j] = vm.CPUUtil
			}
			cpuMean = stat.Mean(utils, nil)
		}
		obs.DCAvgCpuUtil[i] = cpuMean

		var availPEs int
		var ramSum float64
		for _, hID := range dc.HostOrder {
			h := dc.Hosts[hID]
			availPEs += h.FreeCores
			ramSum += h.RamUtilization()
		}
		obs.DCAvailablePEs[i] = availPEs
		if len(dc.HostOrder) > 0 {
			obs.DCAvgRamUtil[i] = ramSum / float64(len(dc.HostOrder))
		}
	}

	obs.UpcomingCount = s.Router.QueueLen()
	batchIDs := s.Router.PeekBatch(s.Settings.GlobalRoutingBatchSize)
	obs.BatchCloudletPes = make([]int, s.Settings.GlobalRoutingBatchSize)
	obs.BatchCloudletMi = make([]int64, s.Settings.GlobalRoutingBatchSize)
	for i, id := range batchIDs {
		c := s.cloudletsByID[id]
		obs.BatchCloudletPes[i] = c.CoresRequired
		obs.BatchCloudletMi[i] = c.LengthMI
	}
	obs.QueuePesDistribution = s.Router.PesDistribution(s.cloudletsByID)

	if len(obs.DCAvgCpuUtil) > 0 {
		// loadImbalance is the population std-dev across DCAvgCpuUtil, not
		// the unbiased sample estimate — PopMeanVariance divides by N,
		// matching a fixed, fully-observed set of datacenters rather than a
		// sample drawn from a larger population.
		_, variance := stat.PopMeanVariance(obs.DCAvgCpuUtil, nil)
		if variance > 0 {
			obs.LoadImbalance = math.Sqrt(variance)
		}
	}
	obs.RecentCompletedTotal = s.stepCompletedCount

	return obs
}
