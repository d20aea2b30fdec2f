package green

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// scadaPowerColumnIndex is the "Patv" column in the legacy 18-column SCADA
// wind-turbine export format (spec.md §6).
const scadaPowerColumnIndex = 14

// rawSample is one surviving (timestamp, power) row after cleaning.
type rawSample struct {
	T        time.Time
	PowerKW  float64
}

// timestampLayouts are tried in order; spec.md §6 names two accepted
// shapes: "YYYY-MM-DD HH:MM[:SS]" and "YYYY/M/D H:M".
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/1/2 15:4",
	"2006/1/2 15:04",
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}
	return time.Time{}, fmt.Errorf("green: unrecognized timestamp %q: %w", s, lastErr)
}

// loadCSVSamples reads a wind-power CSV file, accepting either the
// simplified 2-column form (timestamp, power_kw) or the legacy 18-column
// SCADA form (power at column index 14, "Patv" — spec.md §6). Malformed
// rows are logged and skipped (WorkloadError-equivalent for wind data,
// spec.md §7's WindDataError).
func loadCSVSamples(path string) ([]rawSample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("green: open wind data %q: %w", path, err)
	}
	defer f.Close()
	return parseCSVSamples(f)
}

func parseCSVSamples(r io.Reader) ([]rawSample, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // legacy and simplified forms differ in width

	var samples []rawSample
	rowNum := 0
	headerSkipped := false
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			logrus.Warnf("green: skipping malformed CSV row %d: %v", rowNum, err)
			rowNum++
			continue
		}
		rowNum++

		if !headerSkipped {
			headerSkipped = true
			if _, ferr := parseTimestamp(record[0]); ferr != nil {
				// first row doesn't parse as a timestamp; treat as header
				continue
			}
		}

		sample, ok := parseRecord(record)
		if !ok {
			logrus.Warnf("green: skipping malformed wind data row %d", rowNum)
			continue
		}
		samples = append(samples, sample)
	}
	return samples, nil
}

// parseRecord interprets one CSV row as either the simplified
// (timestamp, power_kw) form or the legacy 18-column SCADA form.
func parseRecord(record []string) (rawSample, bool) {
	if len(record) == 0 {
		return rawSample{}, false
	}
	ts, err := parseTimestamp(record[0])
	if err != nil {
		return rawSample{}, false
	}

	var powerKW float64
	if len(record) >= 18 {
		powerKW = parseFloatOrZero(record[scadaPowerColumnIndex])
	} else if len(record) >= 2 {
		powerKW = parseFloatOrZero(record[1])
	} else {
		return rawSample{}, false
	}
	return rawSample{T: ts, PowerKW: powerKW}, true
}

func parseFloatOrZero(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

// cleanSamples drops duplicate and non-monotonic timestamps, keeping the
// first occurrence of each strictly increasing timestamp (spec.md §6:
// "Duplicate/non-monotonic timestamps dropped with a warning").
func cleanSamples(samples []rawSample) []rawSample {
	if len(samples) == 0 {
		return nil
	}
	out := make([]rawSample, 0, len(samples))
	out = append(out, samples[0])
	dropped := 0
	for i := 1; i < len(samples); i++ {
		if samples[i].T.After(out[len(out)-1].T) {
			out = append(out, samples[i])
		} else {
			dropped++
		}
	}
	if dropped > 0 {
		logrus.Warnf("green: dropped %d duplicate/non-monotonic wind data rows", dropped)
	}
	return out
}
