package green

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greensim/greensim/sim"
)

func samplesFromPowers(powers []float64) []rawSample {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]rawSample, len(powers))
	for i, p := range powers {
		out[i] = rawSample{T: base.Add(time.Duration(i) * time.Minute), PowerKW: p}
	}
	return out
}

func rampPowers(n int) []float64 {
	powers := make([]float64, n)
	for i := range powers {
		powers[i] = float64(i % 10)
	}
	return powers
}

func TestTurbineProvider_CyclicWrap_PeriodicInT(t *testing.T) {
	// 100 rows => xs[i] = i-12, minT=-12, maxT=87, period=99.
	raw := samplesFromPowers(rampPowers(100))
	p, err := newTurbineProviderFromSamples("t0", raw, sim.TimeScalingCompressed, 0)
	require.NoError(t, err)

	period := int64(99)
	for _, tt := range []int64{0, 10, 50} {
		assert.InDelta(t, p.CurrentPowerW(tt), p.CurrentPowerW(tt+period), 1e-6)
	}
}

func TestTurbineProvider_TimezoneOffsetByFullPeriod_MatchesZeroOffset(t *testing.T) {
	raw := samplesFromPowers(rampPowers(100))
	zero, err := newTurbineProviderFromSamples("t0", raw, sim.TimeScalingCompressed, 0)
	require.NoError(t, err)
	shifted, err := newTurbineProviderFromSamples("t0", raw, sim.TimeScalingCompressed, 99)
	require.NoError(t, err)

	for _, tt := range []int64{0, 5, 10, 40} {
		assert.InDelta(t, zero.CurrentPowerW(tt), shifted.CurrentPowerW(tt), 1e-6)
	}
}

func TestNewTurbineProviderFromSamples_DegradesToZeroOnInsufficientData(t *testing.T) {
	raw := samplesFromPowers([]float64{42})
	p, err := newTurbineProviderFromSamples("t0", raw, sim.TimeScalingCompressed, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, p.CurrentPowerW(0))
	assert.Equal(t, 0.0, p.MaxPowerKW())
}

func TestTurbineProvider_MaxPowerKW_IsMaxOfSamples(t *testing.T) {
	raw := samplesFromPowers([]float64{1, 5, 3, 9, 2})
	p, err := newTurbineProviderFromSamples("t0", raw, sim.TimeScalingCompressed, 0)
	require.NoError(t, err)
	assert.Equal(t, 9.0, p.MaxPowerKW())
}

func TestTurbineProvider_FutureTrendFeatures_BoundedRanges(t *testing.T) {
	raw := samplesFromPowers(rampPowers(100))
	p, err := newTurbineProviderFromSamples("t0", raw, sim.TimeScalingCompressed, 0)
	require.NoError(t, err)

	tf := p.FutureTrendFeatures(0, 5, 20)
	assert.GreaterOrEqual(t, tf.ShortMean, 0.0)
	assert.LessOrEqual(t, tf.ShortMean, 1.0)
	assert.GreaterOrEqual(t, tf.ShortTrend, -1.0)
	assert.LessOrEqual(t, tf.ShortTrend, 1.0)
	assert.GreaterOrEqual(t, tf.LongMean, 0.0)
	assert.LessOrEqual(t, tf.LongMean, 1.0)
	assert.GreaterOrEqual(t, tf.LongPeakTiming, 0.0)
	assert.LessOrEqual(t, tf.LongPeakTiming, 1.0)
}

func TestTurbineProvider_FuturePowerW_MatchesCurrentPowerWAtHorizons(t *testing.T) {
	raw := samplesFromPowers(rampPowers(100))
	p, err := newTurbineProviderFromSamples("t0", raw, sim.TimeScalingCompressed, 0)
	require.NoError(t, err)

	horizons := []int64{0, 1, 5}
	got := p.FuturePowerW(10, horizons)
	require.Len(t, got, 3)
	for i, h := range horizons {
		assert.Equal(t, p.CurrentPowerW(10+h), got[i])
	}
}
