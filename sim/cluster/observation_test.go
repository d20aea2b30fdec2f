package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greensim/greensim/sim"
	"github.com/greensim/greensim/sim/internal/testutil"
)

func TestVmTypeCode_MapsEachSize(t *testing.T) {
	assert.Equal(t, 1, vmTypeCode(sim.VMSmall))
	assert.Equal(t, 2, vmTypeCode(sim.VMMedium))
	assert.Equal(t, 3, vmTypeCode(sim.VMLarge))
}

func TestBuildLocalObservation_ReflectsQueueAndVMState(t *testing.T) {
	cfg := testutil.SingleHostSingleVMConfig(0)
	dc, err := NewDatacenter(cfg, &sim.IDGenerator{}, sim.FirstFitByFreeCores{})
	require.NoError(t, err)

	job := sim.NewCloudlet(0, 0, 1000, 2, 0, 0)
	dc.Receive(job, 0)

	obs := buildLocalObservation(dc)
	assert.Equal(t, 1, obs.WaitingLocal)
	assert.Equal(t, 2, obs.NextCloudletPEs)
	assert.Equal(t, 1, obs.ActualActiveVmCount)
	assert.Equal(t, 1, obs.ActualHostCount)
	require.Len(t, obs.VMType, 1)
	assert.Equal(t, 1, obs.VMType[0]) // Small
}

func TestBuildGlobalObservation_SizesMatchDatacenterCount(t *testing.T) {
	settings := testutil.DefaultSettings(
		testutil.SingleHostSingleVMConfig(0),
		testutil.SingleHostSingleVMConfig(1),
	)
	s, err := NewSimulation(settings)
	require.NoError(t, err)
	_, _, _, err = s.Reset(1, []*sim.Cloudlet{})
	require.NoError(t, err)

	obs := buildGlobalObservation(s)
	assert.Len(t, obs.DCGreenPowerW, 2)
	assert.Len(t, obs.DCQueueSize, 2)
	assert.Equal(t, [3]int{0, 0, 0}, obs.QueuePesDistribution)
}
