package workload

import (
	"math"
	"math/rand"
)

// ArrivalSampler draws the inter-arrival gap, in seconds, before the next
// synthetic job. Grounded on the teacher's sim/workload ArrivalSampler
// capability interface used to drive ServeGen-style synthetic traces.
type ArrivalSampler interface {
	NextGap(rng *rand.Rand) float64
}

// LengthSampler draws a synthetic job's length in MI.
type LengthSampler interface {
	NextLengthMI(rng *rand.Rand) int64
}

// PoissonArrivalSampler produces exponentially distributed inter-arrival
// gaps for a Poisson process of the given rate (jobs/second).
type PoissonArrivalSampler struct {
	RatePerSecond float64
}

func (p PoissonArrivalSampler) NextGap(rng *rand.Rand) float64 {
	if p.RatePerSecond <= 0 {
		return math.Inf(1)
	}
	return rng.ExpFloat64() / p.RatePerSecond
}

// GammaLengthSampler draws job lengths from a Gamma(shape, scale)
// distribution via the Marsaglia-Tsang method, matching the teacher's
// sim/workload gammaRand helper for heavy-tailed length/duration draws.
type GammaLengthSampler struct {
	Shape float64
	Scale float64
}

func (g GammaLengthSampler) NextLengthMI(rng *rand.Rand) int64 {
	v := gammaRand(rng, g.Shape, g.Scale)
	if v < 1 {
		v = 1
	}
	return int64(v)
}

// gammaRand implements the Marsaglia-Tsang method for shape >= 1; for
// shape < 1 it boosts the shape by one and corrects with a uniform draw,
// the standard transformation used when only the shape>=1 generator is
// implemented directly.
func gammaRand(rng *rand.Rand, shape, scale float64) float64 {
	if shape < 1 {
		u := rng.Float64()
		return gammaRand(rng, shape+1, scale) * math.Pow(u, 1/shape)
	}

	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9*d)
	for {
		var x, v float64
		for {
			x = rng.NormFloat64()
			v = 1 + c*x
			if v > 0 {
				break
			}
		}
		v = v * v * v
		u := rng.Float64()
		if u < 1-0.0331*x*x*x*x {
			return d * v * scale
		}
		if math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v * scale
		}
	}
}

// CoresSampler draws a synthetic job's core requirement.
type CoresSampler interface {
	NextCores(rng *rand.Rand) int
}

// UniformCoresSampler draws a core count uniformly from [Min, Max].
type UniformCoresSampler struct {
	Min, Max int
}

func (u UniformCoresSampler) NextCores(rng *rand.Rand) int {
	if u.Max <= u.Min {
		return u.Min
	}
	return u.Min + rng.Intn(u.Max-u.Min+1)
}

// GenerateSynthetic produces a synthetic workload of n jobs with
// arrival times accumulated from arrivals' NextGap, and returns fresh,
// sequential ids starting at 0 (the teacher's equivalent is a ServeGen
// synthetic trace for load testing without a captured production log).
// Load does not call it: Load always reads settings.CloudletTraceFile.
func GenerateSynthetic(n int, arrivals ArrivalSampler, lengths LengthSampler, cores CoresSampler, rng *rand.Rand) []Descriptor {
	out := make([]Descriptor, n)
	var t float64
	for i := 0; i < n; i++ {
		t += arrivals.NextGap(rng)
		out[i] = Descriptor{
			ID:            i,
			ArrivalTime:   int64(math.Round(t)),
			LengthMI:      lengths.NextLengthMI(rng),
			CoresRequired: cores.NextCores(rng),
			InputKB:       64,
			OutputKB:      32,
		}
	}
	return out
}
