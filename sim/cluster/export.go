package cluster

import "github.com/greensim/greensim/sim/report"

// DumpResults writes the episode-end CSV result dumps for the current
// simulation state into dir (spec.md §6's "Results (CSV dumps)"),
// grounded on the teacher's trace-record shape adapted to cloudlet/VM/
// host entities. Dumping failures are logged by the report package and
// never returned as an error here (PostEpisodeIOError, spec.md §7).
func (s *Simulation) DumpResults(dir string) {
	dumper := report.NewDumper(dir)

	var cloudlets []report.CloudletRecord
	var vms []report.VMRecord
	hostHistories := make(map[report.HostKey][]report.HostUtilSample)
	var energy []report.EnergyRecord
	var green []report.GreenSummaryRecord

	for _, dcID := range s.dcOrder {
		dc := s.datacenters[dcID]

		for _, id := range dc.VMOrder {
			vm := dc.VMs[id]
			vms = append(vms, report.VMRecord{
				ID:           vm.ID,
				DatacenterID: dcID,
				HostID:       vm.HostID,
				Size:         vm.Size.String(),
				State:        vm.State.String(),
			})
		}

		for id, c := range dc.Cloudlets {
			cloudlets = append(cloudlets, report.CloudletRecord{
				ID:            id,
				ArrivalTime:   c.ArrivalTime,
				StartTime:     c.StartTime,
				FinishTime:    c.FinishTime,
				WaitTime:      c.StartTime - c.ArrivalTime,
				DatacenterID:  dcID,
				VMID:          c.VMID,
				CoresRequired: c.CoresRequired,
				State:         c.State.String(),
			})
		}

		for _, hID := range dc.HostOrder {
			h := dc.Hosts[hID]
			samples := make([]report.HostUtilSample, len(h.History))
			for i, s := range h.History {
				samples[i] = report.HostUtilSample{Tick: s.T, Utilization: s.U}
			}
			hostHistories[report.HostKey{DatacenterID: dcID, HostID: hID}] = samples
		}

		energy = append(energy, report.EnergyRecord{
			DatacenterID:  dcID,
			GreenWh:       dc.Accountant.CumulativeGreenWh(),
			BrownWh:       dc.Accountant.CumulativeBrownWh(),
			WastedGreenWh: dc.Accountant.CumulativeWastedGreenWh(),
			CarbonKg:      dc.Accountant.CumulativeCarbonKg(),
		})

		greenRatio := 0.0
		totalWh := dc.Accountant.CumulativeGreenWh() + dc.Accountant.CumulativeBrownWh()
		if totalWh > 0 {
			greenRatio = dc.Accountant.CumulativeGreenWh() / totalWh
		}
		green = append(green, report.GreenSummaryRecord{
			DatacenterID:      dcID,
			CumulativeGreenWh: dc.Accountant.CumulativeGreenWh(),
			CumulativeBrownWh: dc.Accountant.CumulativeBrownWh(),
			GreenRatio:        greenRatio,
		})
	}

	dumper.DumpAll(cloudlets, vms, hostHistories, energy, green)
}
