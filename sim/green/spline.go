// Package green implements the wind-power interpolation provider (C4) and
// the per-tick energy allocator / carbon accountant (C5) from spec.md
// §4.4-§4.5.
package green

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/interp"
)

// spline wraps gonum's natural cubic spline fit (gonum.org/v1/gonum/interp.NaturalCubic),
// the concrete home spec.md §4.4's "natural cubic spline" requirement maps
// onto in this repo's dependency stack (SPEC_FULL.md §4). It additionally
// tracks the fitted domain so callers can clamp/wrap queries before
// evaluating, since gonum's Predict panics outside [minT, maxT].
type spline struct {
	fit        interp.NaturalCubic
	minT, maxT float64
}

// fitSpline builds a natural cubic spline over the strictly increasing
// (t, p) sample pairs. Samples must already be deduplicated and sorted;
// see cleanSamples in csv.go.
func fitSpline(ts, ps []float64) (*spline, error) {
	if len(ts) < 2 {
		return nil, fmt.Errorf("green: need at least 2 samples to fit a spline, got %d", len(ts))
	}
	if !sort.Float64sAreSorted(ts) {
		return nil, fmt.Errorf("green: spline sample timestamps must be sorted ascending")
	}
	var s spline
	if err := s.fit.Fit(ts, ps); err != nil {
		return nil, fmt.Errorf("green: fit natural cubic spline: %w", err)
	}
	s.minT = ts[0]
	s.maxT = ts[len(ts)-1]
	return &s, nil
}

// eval evaluates the spline at t, first clamping t into [minT, maxT]
// (provider.go's rawKW already wraps queries into that range).
func (s *spline) eval(t float64) float64 {
	if t < s.minT {
		t = s.minT
	} else if t > s.maxT {
		t = s.maxT
	}
	return s.fit.Predict(t)
}
