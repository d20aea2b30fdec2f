package cluster

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/greensim/greensim/sim"
)

// localReward computes one DC's reward for the current step, per the sum
// of four independent, unclipped components (spec.md §4.10). lastAssignValid
// reflects the outcome of this step's assignCloudletToVm call.
func localReward(dc *Datacenter, coef sim.RewardCoefficients, uTarget float64, lastAssignValid bool) float64 {
	waitPenalty := -coef.WaitTime * math.Log1p(dc.Scheduler.AvgWaitOfFinishedThisStep())

	running := dc.RunningVMs()
	var uMean, uVar float64
	if len(running) > 0 {
		utils := make([]float64, len(running))
		for i, vm := range running {
			utils[i] = vm.CPUUtil
		}
		// Population variance across this DC's running VMs (same choice as
		// observation.go's loadImbalance, for the same reason: the VM set
		// is fully observed, not sampled), so the two σ² users agree.
		uMean, uVar = stat.PopMeanVariance(utils, nil)
	}
	utilPenalty := -coef.Utilization * (math.Sqrt(math.Max(uVar, 0)) + math.Abs(uMean-uTarget))

	received := dc.Scheduler.CloudletsReceivedCumulative()
	queuePenalty := -coef.Queue * (float64(dc.Scheduler.QueueLen()) / math.Max(1, float64(received)))

	invalidPenalty := 0.0
	if !lastAssignValid {
		invalidPenalty = -coef.InvalidAction
	}

	return waitPenalty + utilPenalty + queuePenalty + invalidPenalty
}

// globalReward sums the per-DC local rewards and subtracts the
// carbon-weighted emissions added across all DCs this tick (spec.md §4.10:
// R_global = Σ R_local_dc − w_carbon · Σ ΔcarbonKg_this_tick).
func globalReward(localRewards map[int]float64, coef sim.RewardCoefficients, deltaCarbonKgSum float64) float64 {
	var sum float64
	for _, r := range localRewards {
		sum += r
	}
	return sum - coef.Carbon*deltaCarbonKgSum
}
