// Package report writes episode-end CSV result dumps, grounded on the
// teacher's sim/trace/record.go: pure data records with no dependency on
// the simulation engine, written with the standard encoding/csv writer.
// Dumping failures are a PostEpisodeIOError (spec.md §7): logged, never
// fatal, and never affect the next episode.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sirupsen/logrus"
)

// CloudletRecord is one row of cloudlets.csv.
type CloudletRecord struct {
	ID            int
	ArrivalTime   int64
	StartTime     int64
	FinishTime    int64
	WaitTime      int64
	DatacenterID  int
	VMID          int
	CoresRequired int
	State         string
}

// VMRecord is one row of vms.csv.
type VMRecord struct {
	ID           int
	DatacenterID int
	HostID       int
	Size         string
	State        string
}

// HostUtilSample is one row of a per-host utilisation history file.
type HostUtilSample struct {
	Tick        int64
	Utilization float64
}

// HostKey identifies one host's history file across the whole fleet.
// Host ids are only unique within a datacenter, so the datacenter id is
// part of the key — otherwise DC 1's host 0 would collide with DC 0's
// host 0 in both the map and the output filename.
type HostKey struct {
	DatacenterID int
	HostID       int
}

// EnergyRecord is one row of energy_consumption.csv.
type EnergyRecord struct {
	DatacenterID    int
	GreenWh         float64
	BrownWh         float64
	WastedGreenWh   float64
	CarbonKg        float64
}

// GreenSummaryRecord is one row of green_energy_summary.csv.
type GreenSummaryRecord struct {
	DatacenterID  int
	CumulativeGreenWh float64
	CumulativeBrownWh float64
	GreenRatio        float64
}

// Dumper writes one episode's result folder.
type Dumper struct {
	Dir string
}

// NewDumper prepares (but does not yet create) a dumper rooted at dir.
func NewDumper(dir string) *Dumper { return &Dumper{Dir: dir} }

// DumpAll writes every result file for one episode. Each file's failure
// is logged independently and does not abort the remaining dumps.
func (d *Dumper) DumpAll(cloudlets []CloudletRecord, vms []VMRecord, hostHistories map[HostKey][]HostUtilSample, energy []EnergyRecord, green []GreenSummaryRecord) {
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		logrus.Errorf("report: create result dir %q: %v", d.Dir, err)
		return
	}

	d.dump("cloudlets.csv", cloudletHeader, len(cloudlets), func(i int) []string { return cloudletRow(cloudlets[i]) })
	d.dump("vms.csv", vmHeader, len(vms), func(i int) []string { return vmRow(vms[i]) })
	d.dump("energy_consumption.csv", energyHeader, len(energy), func(i int) []string { return energyRow(energy[i]) })
	d.dump("green_energy_summary.csv", greenSummaryHeader, len(green), func(i int) []string { return greenSummaryRow(green[i]) })

	for key, history := range hostHistories {
		name := fmt.Sprintf("dc%d-host%d.csv", key.DatacenterID, key.HostID)
		d.dump(name, hostHeader, len(history), func(i int) []string { return hostRow(history[i]) })
	}
}

var (
	cloudletHeader      = []string{"id", "arrival_time", "start_time", "finish_time", "wait_time", "datacenter_id", "vm_id", "cores_required", "state"}
	vmHeader            = []string{"id", "datacenter_id", "host_id", "size", "state"}
	hostHeader          = []string{"tick", "utilization"}
	energyHeader        = []string{"datacenter_id", "green_wh", "brown_wh", "wasted_green_wh", "carbon_kg"}
	greenSummaryHeader  = []string{"datacenter_id", "cumulative_green_wh", "cumulative_brown_wh", "green_ratio"}
)

func cloudletRow(r CloudletRecord) []string {
	return []string{
		strconv.Itoa(r.ID),
		strconv.FormatInt(r.ArrivalTime, 10),
		strconv.FormatInt(r.StartTime, 10),
		strconv.FormatInt(r.FinishTime, 10),
		strconv.FormatInt(r.WaitTime, 10),
		strconv.Itoa(r.DatacenterID),
		strconv.Itoa(r.VMID),
		strconv.Itoa(r.CoresRequired),
		r.State,
	}
}

func vmRow(r VMRecord) []string {
	return []string{strconv.Itoa(r.ID), strconv.Itoa(r.DatacenterID), strconv.Itoa(r.HostID), r.Size, r.State}
}

func hostRow(r HostUtilSample) []string {
	return []string{strconv.FormatInt(r.Tick, 10), strconv.FormatFloat(r.Utilization, 'f', 6, 64)}
}

func energyRow(r EnergyRecord) []string {
	return []string{
		strconv.Itoa(r.DatacenterID),
		strconv.FormatFloat(r.GreenWh, 'f', 6, 64),
		strconv.FormatFloat(r.BrownWh, 'f', 6, 64),
		strconv.FormatFloat(r.WastedGreenWh, 'f', 6, 64),
		strconv.FormatFloat(r.CarbonKg, 'f', 6, 64),
	}
}

func greenSummaryRow(r GreenSummaryRecord) []string {
	return []string{
		strconv.Itoa(r.DatacenterID),
		strconv.FormatFloat(r.CumulativeGreenWh, 'f', 6, 64),
		strconv.FormatFloat(r.CumulativeBrownWh, 'f', 6, 64),
		strconv.FormatFloat(r.GreenRatio, 'f', 6, 64),
	}
}

func (d *Dumper) dump(filename string, header []string, n int, row func(int) []string) {
	path := filepath.Join(d.Dir, filename)
	f, err := os.Create(path)
	if err != nil {
		logrus.Errorf("report: create %q: %v", path, err)
		return
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		logrus.Errorf("report: write header to %q: %v", path, err)
		return
	}
	for i := 0; i < n; i++ {
		if err := w.Write(row(i)); err != nil {
			logrus.Errorf("report: write row to %q: %v", path, err)
			return
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		logrus.Errorf("report: flush %q: %v", path, err)
	}
}
