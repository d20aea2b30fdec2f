// Package workload implements the workload feeder (C3): parsing
// already-described jobs into cloudlets with arrival times, splitting
// oversize jobs, and a standalone synthetic job generator.
// Grounded on the teacher's sim/workload package (ServeGen-style trace
// ingestion + samplers), generalized from LLM request traces to
// cloudlet descriptors.
package workload

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/greensim/greensim/sim"
)

// Descriptor is an already-parsed job record, before cloudlet-entity
// construction (spec.md §4.3).
type Descriptor struct {
	ID            int
	ArrivalTime   int64
	LengthMI      int64
	CoresRequired int
	InputKB       float64
	OutputKB      float64
}

// LoadCSV parses the workload trace format from spec.md §6:
// cloudlet_id (int), arrival_time (seconds, float), length (MI, long),
// pes_required (int, 1..8), file_size (KB), output_size (KB). Malformed
// rows are a WorkloadError (spec.md §7): logged and skipped, never fatal.
func LoadCSV(path string) ([]Descriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("workload: open trace %q: %w", path, err)
	}
	defer f.Close()
	return parseCSV(f)
}

func parseCSV(r io.Reader) ([]Descriptor, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var out []Descriptor
	rowNum := 0
	headerSkipped := false
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			logrus.Warnf("workload: skipping malformed trace row %d: %v", rowNum, err)
			rowNum++
			continue
		}
		rowNum++

		if !headerSkipped {
			headerSkipped = true
			if _, ferr := strconv.Atoi(strings.TrimSpace(record[0])); ferr != nil {
				continue // header row
			}
		}

		d, ok := parseRow(record)
		if !ok {
			logrus.Warnf("workload: skipping malformed trace row %d", rowNum)
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func parseRow(record []string) (Descriptor, bool) {
	if len(record) < 6 {
		return Descriptor{}, false
	}
	id, err1 := strconv.Atoi(strings.TrimSpace(record[0]))
	arrivalSec, err2 := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
	length, err3 := strconv.ParseInt(strings.TrimSpace(record[2]), 10, 64)
	pes, err4 := strconv.Atoi(strings.TrimSpace(record[3]))
	inKB, err5 := strconv.ParseFloat(strings.TrimSpace(record[4]), 64)
	outKB, err6 := strconv.ParseFloat(strings.TrimSpace(record[5]), 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil || err6 != nil {
		return Descriptor{}, false
	}
	if pes < 1 {
		return Descriptor{}, false
	}
	return Descriptor{
		ID:            id,
		ArrivalTime:   int64(math.Round(arrivalSec)),
		LengthMI:      length,
		CoresRequired: pes,
		InputKB:       inKB,
		OutputKB:      outKB,
	}, true
}

// SplitOversizeCloudlets splits any descriptor whose CoresRequired
// exceeds maxPEs into ceil(coresRequired/maxPEs) fragments, each with
// floor(lengthMI/nSplits) MI and min(maxPEs, remaining) cores; fragments
// keep the original arrival time and receive fresh, unique ids allocated
// above the maximum id already present (spec.md §4.3).
func SplitOversizeCloudlets(descs []Descriptor, maxPEs int) []Descriptor {
	if maxPEs <= 0 {
		return descs
	}
	nextID := 0
	for _, d := range descs {
		if d.ID >= nextID {
			nextID = d.ID + 1
		}
	}

	out := make([]Descriptor, 0, len(descs))
	for _, d := range descs {
		if d.CoresRequired <= maxPEs {
			out = append(out, d)
			continue
		}
		nSplits := int(math.Ceil(float64(d.CoresRequired) / float64(maxPEs)))
		remainingCores := d.CoresRequired
		for i := 0; i < nSplits; i++ {
			cores := maxPEs
			if remainingCores < maxPEs {
				cores = remainingCores
			}
			remainingCores -= cores
			frag := Descriptor{
				ID:            nextID,
				ArrivalTime:   d.ArrivalTime,
				LengthMI:      d.LengthMI / int64(nSplits),
				CoresRequired: cores,
				InputKB:       d.InputKB,
				OutputKB:      d.OutputKB,
			}
			nextID++
			out = append(out, frag)
		}
	}
	return out
}

// sortDescriptors orders by arrival time ascending, ties broken by id
// (spec.md §4.3, §6).
func sortDescriptors(descs []Descriptor) {
	sort.SliceStable(descs, func(i, j int) bool {
		if descs[i].ArrivalTime != descs[j].ArrivalTime {
			return descs[i].ArrivalTime < descs[j].ArrivalTime
		}
		return descs[i].ID < descs[j].ID
	})
}

// BuildCloudlets converts descriptors into entity instances.
func BuildCloudlets(descs []Descriptor) []*sim.Cloudlet {
	out := make([]*sim.Cloudlet, len(descs))
	for i, d := range descs {
		out[i] = sim.NewCloudlet(d.ID, d.ArrivalTime, d.LengthMI, d.CoresRequired, d.InputKB, d.OutputKB)
	}
	return out
}

// Load dispatches on settings.WorkloadMode, applies the configured
// split policy, sorts, and builds cloudlet entities ready for the global
// router.
func Load(settings *sim.SimulationSettings) ([]*sim.Cloudlet, error) {
	var descs []Descriptor
	var err error
	switch settings.WorkloadMode {
	case sim.WorkloadModeSWF:
		descs, err = LoadSWF(settings.CloudletTraceFile)
	default:
		descs, err = LoadCSV(settings.CloudletTraceFile)
	}
	if err != nil {
		return nil, err
	}

	if settings.SplitLargeCloudlets {
		descs = SplitOversizeCloudlets(descs, settings.MaxCloudletPEs)
	}
	sortDescriptors(descs)
	return BuildCloudlets(descs), nil
}
