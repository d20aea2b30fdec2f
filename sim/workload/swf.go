package workload

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// swfAssumedMIPSPerCore is the throughput this adapter assumes when
// converting an SWF trace's wall-clock RunTime into a length in MI,
// since the Standard Workload Format records run time in seconds on
// unspecified hardware, not instruction counts.
const swfAssumedMIPSPerCore = 50_000.0

// LoadSWF is a best-effort adapter for the Standard Workload Format
// (Feitelson et al.): whitespace-separated fields, `-1` marks an unknown
// value, comment lines start with ';'. Only the fields needed to derive
// a Descriptor are read: JobID (1), SubmitTime (2), RunTime (4),
// AllocatedProcessors (5, falls back to field 8 RequestedNumberOfProcessors,
// then to 1).
func LoadSWF(path string) ([]Descriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("workload: open SWF trace %q: %w", path, err)
	}
	defer f.Close()
	return parseSWF(f)
}

func parseSWF(r io.Reader) ([]Descriptor, error) {
	scanner := bufio.NewScanner(r)
	var out []Descriptor
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		fields := strings.Fields(line)
		d, ok := parseSWFLine(fields)
		if !ok {
			logrus.Warnf("workload: skipping malformed SWF line %d", lineNum)
			continue
		}
		out = append(out, d)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("workload: read SWF trace: %w", err)
	}
	return out, nil
}

func parseSWFLine(fields []string) (Descriptor, bool) {
	if len(fields) < 5 {
		return Descriptor{}, false
	}
	id, err := strconv.Atoi(fields[0])
	if err != nil {
		return Descriptor{}, false
	}
	submit, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || submit < 0 {
		return Descriptor{}, false
	}
	runTime, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil || runTime < 0 {
		return Descriptor{}, false
	}

	procs := swfField(fields, 4)
	if procs <= 0 {
		procs = swfField(fields, 7)
	}
	if procs <= 0 {
		procs = 1
	}

	lengthMI := runTime * int64(procs) * int64(swfAssumedMIPSPerCore)
	return Descriptor{
		ID:            id,
		ArrivalTime:   submit,
		LengthMI:      lengthMI,
		CoresRequired: procs,
	}, true
}

func swfField(fields []string, idx int) int {
	if idx >= len(fields) {
		return 0
	}
	v, err := strconv.Atoi(fields[idx])
	if err != nil {
		return 0
	}
	return v
}
