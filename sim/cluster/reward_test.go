package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greensim/greensim/sim"
	"github.com/greensim/greensim/sim/internal/testutil"
)

func TestLocalReward_InvalidActionAppliesPenalty(t *testing.T) {
	cfg := testutil.SingleHostSingleVMConfig(0)
	dc, err := NewDatacenter(cfg, &sim.IDGenerator{}, sim.FirstFitByFreeCores{})
	require.NoError(t, err)
	coef := sim.DefaultRewardCoefficients()

	validReward := localReward(dc, coef, 0.95, true)
	invalidReward := localReward(dc, coef, 0.95, false)

	assert.InDelta(t, coef.InvalidAction, validReward-invalidReward, 1e-9)
}

func TestLocalReward_HigherWaitYieldsLowerReward(t *testing.T) {
	cfg := testutil.SingleHostSingleVMConfig(0)
	dc, err := NewDatacenter(cfg, &sim.IDGenerator{}, sim.FirstFitByFreeCores{})
	require.NoError(t, err)
	coef := sim.DefaultRewardCoefficients()

	job := sim.NewCloudlet(0, 0, 1000, 2, 0, 0)
	dc.Cloudlets[0] = job
	dc.Scheduler.OwnVM(0)
	dc.Scheduler.Receive(job, 0)
	vms := map[int]*sim.VM{0: dc.VMs[0]}
	dc.Scheduler.AssignCloudletToVM(0, 100, dc.Cloudlets, vms)
	dc.Scheduler.RecordFinished(0)

	rewardWithWait := localReward(dc, coef, 0.95, true)
	dc.Scheduler.ClearStepTracking()
	rewardWithoutWait := localReward(dc, coef, 0.95, true)

	assert.Less(t, rewardWithWait, rewardWithoutWait)
}

func TestGlobalReward_SumsLocalsAndSubtractsCarbon(t *testing.T) {
	coef := sim.DefaultRewardCoefficients()
	locals := map[int]float64{0: -1.0, 1: -2.0}
	g := globalReward(locals, coef, 0.01)
	assert.InDelta(t, -3.0-coef.Carbon*0.01, g, 1e-9)
}
