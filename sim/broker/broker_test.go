package broker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/greensim/greensim/sim"
)

func runningVM(id, cores int) *sim.VM {
	vm := sim.NewVM(id, sim.VMTemplate{Cores: cores, RamMB: 1000, BwMbps: 100, StorMB: 1000}, 0)
	vm.State = sim.VMRunning
	vm.FreeCores = cores
	return vm
}

func TestAssignCloudletToVM_NegativeOne_SucceedsOnlyIfQueueEmpty(t *testing.T) {
	s := NewLocalScheduler(0)
	cloudlets := map[int]*sim.Cloudlet{}
	vms := map[int]*sim.VM{}

	assert.True(t, s.AssignCloudletToVM(-1, 0, cloudlets, vms))

	job := sim.NewCloudlet(1, 0, 1000, 1, 0, 0)
	cloudlets[1] = job
	s.Receive(job, 0)
	assert.False(t, s.AssignCloudletToVM(-1, 0, cloudlets, vms))
}

func TestAssignCloudletToVM_RejectsUnownedVM(t *testing.T) {
	s := NewLocalScheduler(0)
	job := sim.NewCloudlet(1, 0, 1000, 1, 0, 0)
	cloudlets := map[int]*sim.Cloudlet{1: job}
	vm := runningVM(5, 4)
	vms := map[int]*sim.VM{5: vm}
	s.Receive(job, 0)

	assert.False(t, s.AssignCloudletToVM(5, 1, cloudlets, vms))
}

func TestAssignCloudletToVM_RejectsWhenQueueEmpty(t *testing.T) {
	s := NewLocalScheduler(0)
	vm := runningVM(5, 4)
	s.OwnVM(5)
	assert.False(t, s.AssignCloudletToVM(5, 1, map[int]*sim.Cloudlet{}, map[int]*sim.VM{5: vm}))
}

func TestAssignCloudletToVM_RejectsNonRunningVM(t *testing.T) {
	s := NewLocalScheduler(0)
	job := sim.NewCloudlet(1, 0, 1000, 1, 0, 0)
	cloudlets := map[int]*sim.Cloudlet{1: job}
	vm := runningVM(5, 4)
	vm.State = sim.VMPending
	vms := map[int]*sim.VM{5: vm}
	s.OwnVM(5)
	s.Receive(job, 0)

	assert.False(t, s.AssignCloudletToVM(5, 1, cloudlets, vms))
}

func TestAssignCloudletToVM_RejectsInsufficientFreeCores(t *testing.T) {
	s := NewLocalScheduler(0)
	job := sim.NewCloudlet(1, 0, 1000, 4, 0, 0)
	cloudlets := map[int]*sim.Cloudlet{1: job}
	vm := runningVM(5, 2)
	vms := map[int]*sim.VM{5: vm}
	s.OwnVM(5)
	s.Receive(job, 0)

	assert.False(t, s.AssignCloudletToVM(5, 1, cloudlets, vms))
}

func TestAssignCloudletToVM_SuccessAssignsAndRecordsWait(t *testing.T) {
	s := NewLocalScheduler(0)
	job := sim.NewCloudlet(1, 0, 1000, 2, 0, 0)
	cloudlets := map[int]*sim.Cloudlet{1: job}
	vm := runningVM(5, 4)
	vms := map[int]*sim.VM{5: vm}
	s.OwnVM(5)
	s.Receive(job, 0)

	ok := s.AssignCloudletToVM(5, 3, cloudlets, vms)
	assert.True(t, ok)
	assert.Equal(t, sim.CloudletRunning, job.State)
	assert.Equal(t, 5, job.VMID)
	assert.Equal(t, int64(3), job.StartTime)
	assert.Equal(t, 2, vm.FreeCores)
	assert.Equal(t, 0, s.QueueLen())

	s.RecordFinished(1)
	assert.Equal(t, []int{1}, s.FinishedThisStep())
	assert.InDelta(t, 3.0, s.AvgWaitOfFinishedThisStep(), 1e-9)
}

func TestAssignCloudletToVM_MissingVMOrJobLookupNeverPanics(t *testing.T) {
	s := NewLocalScheduler(0)
	job := sim.NewCloudlet(1, 0, 1000, 2, 0, 0)
	s.OwnVM(5)
	s.Receive(job, 0)

	assert.NotPanics(t, func() {
		ok := s.AssignCloudletToVM(5, 1, map[int]*sim.Cloudlet{}, map[int]*sim.VM{})
		assert.False(t, ok)
	})
}

func TestClearStepTracking_ResetsFinishedAndWaitTimes(t *testing.T) {
	s := NewLocalScheduler(0)
	job := sim.NewCloudlet(1, 0, 1000, 2, 0, 0)
	cloudlets := map[int]*sim.Cloudlet{1: job}
	vm := runningVM(5, 4)
	vms := map[int]*sim.VM{5: vm}
	s.OwnVM(5)
	s.Receive(job, 0)
	s.AssignCloudletToVM(5, 0, cloudlets, vms)
	s.RecordFinished(1)

	s.ClearStepTracking()
	assert.Empty(t, s.FinishedThisStep())
	assert.Equal(t, 0.0, s.AvgWaitOfFinishedThisStep())
}

func TestCloudletsReceivedCumulative_TracksAllReceives(t *testing.T) {
	s := NewLocalScheduler(0)
	s.Receive(sim.NewCloudlet(1, 0, 100, 1, 0, 0), 0)
	s.Receive(sim.NewCloudlet(2, 0, 100, 1, 0, 0), 0)
	assert.Equal(t, 2, s.CloudletsReceivedCumulative())
}
