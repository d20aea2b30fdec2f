package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testProfile() HostProfile {
	return HostProfile{
		Name: "h", Cores: 4, MipsPerCore: 50_000,
		RamMB: 8192, BwMbps: 1000, StorageMB: 100_000,
		PeakPowerW: 200, IdlePowerPct: 0.25,
	}
}

func TestHost_CanFitAndPlace(t *testing.T) {
	h := NewHost(0, testProfile())
	vm := NewVM(0, DefaultVMTemplates()[VMSmall], 0)

	assert.True(t, h.CanFit(vm.Cores, vm.RamMB, vm.BwMbps, vm.StorMB))
	h.Place(vm)
	assert.Equal(t, 2, h.FreeCores)
	assert.Equal(t, 0, vm.HostID)
	assert.Contains(t, h.VMIDs, vm.ID)
}

func TestHost_Utilization_PEWeightedAverage(t *testing.T) {
	h := NewHost(0, testProfile())
	vm := NewVM(0, DefaultVMTemplates()[VMSmall], 0) // 2 cores
	h.Place(vm)
	vm.State = VMRunning
	vm.CPUUtil = 1.0

	vms := map[int]*VM{0: vm}
	// 2 cores at 100% util out of a 4-core host => 0.5
	assert.InDelta(t, 0.5, h.Utilization(vms), 1e-9)
}

func TestHost_Utilization_IgnoresNonRunningVMs(t *testing.T) {
	h := NewHost(0, testProfile())
	vm := NewVM(0, DefaultVMTemplates()[VMSmall], 0)
	h.Place(vm)
	vm.CPUUtil = 1.0 // still Pending at this point

	vms := map[int]*VM{0: vm}
	assert.Equal(t, 0.0, h.Utilization(vms))
}

func TestHost_RamUtilization(t *testing.T) {
	h := NewHost(0, testProfile())
	vm := NewVM(0, DefaultVMTemplates()[VMMedium], 0) // 8192 ram, the whole host
	h.Place(vm)
	assert.InDelta(t, 1.0, h.RamUtilization(), 1e-9)
}

func TestLinearPowerModel_ClampsAndInterpolates(t *testing.T) {
	model := LinearPowerModel{}
	p := testProfile()

	assert.InDelta(t, p.IdlePowerW(), model.PowerW(p, 0), 1e-9)
	assert.InDelta(t, p.PeakPowerW, model.PowerW(p, 1), 1e-9)
	assert.InDelta(t, p.IdlePowerW(), model.PowerW(p, -5), 1e-9)
	assert.InDelta(t, p.PeakPowerW, model.PowerW(p, 5), 1e-9)
}

func TestEnergyWh(t *testing.T) {
	assert.InDelta(t, 200.0/3600.0, EnergyWh(200, 1), 1e-9)
}
