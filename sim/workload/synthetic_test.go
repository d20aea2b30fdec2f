package workload

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoissonArrivalSampler_ZeroRateYieldsInfiniteGap(t *testing.T) {
	p := PoissonArrivalSampler{RatePerSecond: 0}
	rng := rand.New(rand.NewSource(1))
	assert.True(t, p.NextGap(rng) > 1e300)
}

func TestPoissonArrivalSampler_PositiveRateYieldsPositiveGaps(t *testing.T) {
	p := PoissonArrivalSampler{RatePerSecond: 2}
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		assert.Greater(t, p.NextGap(rng), 0.0)
	}
}

func TestGammaLengthSampler_NeverReturnsBelowOne(t *testing.T) {
	g := GammaLengthSampler{Shape: 0.3, Scale: 1}
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 50; i++ {
		assert.GreaterOrEqual(t, g.NextLengthMI(rng), int64(1))
	}
}

func TestUniformCoresSampler_RespectsBounds(t *testing.T) {
	u := UniformCoresSampler{Min: 2, Max: 6}
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 100; i++ {
		c := u.NextCores(rng)
		assert.GreaterOrEqual(t, c, 2)
		assert.LessOrEqual(t, c, 6)
	}
}

func TestUniformCoresSampler_DegenerateRangeReturnsMin(t *testing.T) {
	u := UniformCoresSampler{Min: 4, Max: 4}
	rng := rand.New(rand.NewSource(4))
	assert.Equal(t, 4, u.NextCores(rng))
}

func TestGenerateSynthetic_ProducesSequentialIDsAndNonDecreasingArrivals(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	descs := GenerateSynthetic(10, PoissonArrivalSampler{RatePerSecond: 1}, GammaLengthSampler{Shape: 2, Scale: 1000}, UniformCoresSampler{Min: 1, Max: 4}, rng)

	assert.Len(t, descs, 10)
	for i, d := range descs {
		assert.Equal(t, i, d.ID)
		if i > 0 {
			assert.GreaterOrEqual(t, d.ArrivalTime, descs[i-1].ArrivalTime)
		}
		assert.GreaterOrEqual(t, d.CoresRequired, 1)
		assert.LessOrEqual(t, d.CoresRequired, 4)
	}
}
