// Package cluster implements the hierarchical simulation core (C8), its
// observation builder (C9), and its reward engine (C10) from spec.md
// §4.8-§4.10. Grounded on the teacher's sim/cluster package, which plays
// the same "drive one tick end to end" role for a single inference
// instance; here it is lifted one level to orchestrate N datacenters.
package cluster

import (
	"github.com/greensim/greensim/sim"
	"github.com/greensim/greensim/sim/broker"
	"github.com/greensim/greensim/sim/green"
)

// Datacenter is the runtime instance of a sim.DatacenterConfig: owned
// hosts, VMs, local scheduler, green providers, and cumulative energy
// counters (spec.md §3's "Datacenter instance").
type Datacenter struct {
	Config sim.DatacenterConfig

	Hosts     map[int]*sim.Host
	HostOrder []int

	VMs     map[int]*sim.VM
	VMOrder []int

	Cloudlets map[int]*sim.Cloudlet

	Scheduler  *broker.LocalScheduler
	Providers  []green.Provider
	Accountant *green.CarbonAccountant
	AllocPolicy sim.AllocationPolicy

	CloudletsFinished int

	LastAllocation green.TickAllocation
}

// NewDatacenter builds a fresh runtime instance from config: hosts first,
// then the VM fleet placed onto them by policy, then the local scheduler
// bound to the placed VMs, then green providers (spec.md §4.8 reset
// step: "instantiate each DC (hosts -> allocation policy -> VMs -> local
// scheduler ... -> green providers)").
func NewDatacenter(cfg sim.DatacenterConfig, idGen *sim.IDGenerator, policy sim.AllocationPolicy) (*Datacenter, error) {
	dc := &Datacenter{
		Config:      cfg,
		Hosts:       make(map[int]*sim.Host),
		VMs:         make(map[int]*sim.VM),
		Cloudlets:   make(map[int]*sim.Cloudlet),
		Scheduler:   broker.NewLocalScheduler(cfg.DatacenterID),
		AllocPolicy: policy,
		Accountant:  green.NewCarbonAccountant(cfg.Carbon),
	}

	for i := 0; i < cfg.Hosts.HostsCount; i++ {
		h := sim.NewHost(i, cfg.Hosts.Profile)
		dc.Hosts[i] = h
		dc.HostOrder = append(dc.HostOrder, i)
	}

	templates := sim.DefaultVMTemplates()
	var fleet []*sim.VM
	counts := []struct {
		size  sim.VMSize
		count int
	}{
		{sim.VMSmall, cfg.VMs.InitialSmall},
		{sim.VMMedium, cfg.VMs.InitialMedium},
		{sim.VMLarge, cfg.VMs.InitialLarge},
	}
	for _, c := range counts {
		for i := 0; i < c.count; i++ {
			vm := sim.NewVM(idGen.Next(), templates[c.size], 0)
			fleet = append(fleet, vm)
		}
	}

	sim.PlaceFleet(fleet, dc.Hosts, dc.AllocPolicy)
	for _, vm := range fleet {
		dc.VMs[vm.ID] = vm
		dc.VMOrder = append(dc.VMOrder, vm.ID)
		dc.Scheduler.OwnVM(vm.ID)
	}

	if cfg.Green.Enabled {
		for _, turbineID := range cfg.Green.TurbineIDs {
			p, err := green.NewTurbineProvider(turbineID, cfg.Green.WindDataFile, cfg.Green.TimeScalingMode, cfg.Green.TimeZoneOffsetRows)
			if err != nil {
				return nil, err
			}
			dc.Providers = append(dc.Providers, p)
		}
	}

	return dc, nil
}

// Receive implements router.Receiver: the global router hands a routed
// job to this datacenter's local scheduler.
func (dc *Datacenter) Receive(c *sim.Cloudlet, now int64) {
	dc.Cloudlets[c.ID] = c
	dc.Scheduler.Receive(c, now)
}

// RunningVMs returns the VMs currently Running, in creation order.
func (dc *Datacenter) RunningVMs() []*sim.VM {
	var out []*sim.VM
	for _, id := range dc.VMOrder {
		if vm := dc.VMs[id]; vm.State == sim.VMRunning {
			out = append(out, vm)
		}
	}
	return out
}

// TotalDemandW sums P(u) across every host using the given power model.
func (dc *Datacenter) TotalDemandW(model sim.PowerModel) float64 {
	var total float64
	for _, id := range dc.HostOrder {
		h := dc.Hosts[id]
		u := h.Utilization(dc.VMs)
		total += model.PowerW(h.Profile, u)
	}
	return total
}

// TotalGreenW sums current green supply across every provider at t.
func (dc *Datacenter) TotalGreenW(t int64) float64 {
	var total float64
	for _, p := range dc.Providers {
		total += p.CurrentPowerW(t)
	}
	return total
}

// AggregateTrendFeatures combines all turbine providers' future-trend
// scalars, weighted by each turbine's maxPowerKW (spec.md §4.4, multi-
// turbine aggregation), and takes the earliest peak timing.
func (dc *Datacenter) AggregateTrendFeatures(t int64, shortRows, longRows int) green.TrendFeatures {
	if len(dc.Providers) == 0 {
		return green.TrendFeatures{}
	}
	var weightSum, shortMean, shortTrend, longMean float64
	peakTiming := 1.0
	for _, p := range dc.Providers {
		w := p.MaxPowerKW()
		f := p.FutureTrendFeatures(t, shortRows, longRows)
		weightSum += w
		shortMean += f.ShortMean * w
		shortTrend += f.ShortTrend * w
		longMean += f.LongMean * w
		if f.LongPeakTiming < peakTiming {
			peakTiming = f.LongPeakTiming
		}
	}
	if weightSum == 0 {
		return green.TrendFeatures{LongPeakTiming: peakTiming}
	}
	return green.TrendFeatures{
		ShortMean:      shortMean / weightSum,
		ShortTrend:     shortTrend / weightSum,
		LongMean:       longMean / weightSum,
		LongPeakTiming: peakTiming,
	}
}
