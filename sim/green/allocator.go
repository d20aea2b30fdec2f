package green

import "github.com/greensim/greensim/sim"

// TickAllocation is the outcome of allocating one simulation tick's energy
// demand against available green supply (spec.md §4.5).
type TickAllocation struct {
	DemandWh     float64
	GreenAvailWh float64
	GreenUsedWh  float64
	BrownUsedWh  float64
	WastedGreenWh float64
	CarbonKg     float64
}

// CarbonAccountant performs green-first energy allocation and running
// carbon accounting, grounded on the teacher's sim/metrics.go running-total
// accumulator pattern (cumulative counters updated once per tick, read by
// both the reward engine and the CSV reporter).
type CarbonAccountant struct {
	factors sim.CarbonFactors

	cumulativeCarbonKg float64
	cumulativeGreenWh  float64
	cumulativeBrownWh  float64
	cumulativeWastedWh float64
}

// NewCarbonAccountant starts a fresh accountant for one datacenter's
// configured carbon-intensity factors.
func NewCarbonAccountant(factors sim.CarbonFactors) *CarbonAccountant {
	return &CarbonAccountant{factors: factors}
}

// Allocate consumes demandWh of energy against greenAvailWh of available
// green supply this tick, green-first: green energy covers as much of the
// demand as it can, brown covers the rest, and any unused green is wasted
// (spec.md §4.5, I-GRN invariants: greenUsedWh <= min(demandWh, greenAvailWh),
// brownUsedWh = demandWh - greenUsedWh, wastedGreenWh = greenAvailWh - greenUsedWh).
func (a *CarbonAccountant) Allocate(demandWh, greenAvailWh float64) TickAllocation {
	if demandWh < 0 {
		demandWh = 0
	}
	if greenAvailWh < 0 {
		greenAvailWh = 0
	}

	greenUsed := demandWh
	if greenAvailWh < greenUsed {
		greenUsed = greenAvailWh
	}
	brownUsed := demandWh - greenUsed
	wastedGreen := greenAvailWh - greenUsed

	carbonKg := (greenUsed/1000)*a.factors.GreenKgPerKWh + (brownUsed/1000)*a.factors.BrownKgPerKWh

	a.cumulativeCarbonKg += carbonKg
	a.cumulativeGreenWh += greenUsed
	a.cumulativeBrownWh += brownUsed
	a.cumulativeWastedWh += wastedGreen

	return TickAllocation{
		DemandWh:      demandWh,
		GreenAvailWh:  greenAvailWh,
		GreenUsedWh:   greenUsed,
		BrownUsedWh:   brownUsed,
		WastedGreenWh: wastedGreen,
		CarbonKg:      carbonKg,
	}
}

// CumulativeCarbonKg returns the running total since this accountant was
// created (used by sim/report for the episode-end energy_consumption.csv
// dump).
func (a *CarbonAccountant) CumulativeCarbonKg() float64 { return a.cumulativeCarbonKg }

// CumulativeGreenWh returns the running total of green energy consumed.
func (a *CarbonAccountant) CumulativeGreenWh() float64 { return a.cumulativeGreenWh }

// CumulativeBrownWh returns the running total of brown energy consumed.
func (a *CarbonAccountant) CumulativeBrownWh() float64 { return a.cumulativeBrownWh }

// CumulativeWastedGreenWh returns the running total of green energy that
// was available but not used (curtailed).
func (a *CarbonAccountant) CumulativeWastedGreenWh() float64 { return a.cumulativeWastedWh }
