package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstFitByFreeCores_PicksLowestIDThatFits(t *testing.T) {
	hosts := map[int]*Host{
		0: NewHost(0, HostProfile{Cores: 2, RamMB: 1000, BwMbps: 100, StorageMB: 1000}),
		1: NewHost(1, HostProfile{Cores: 8, RamMB: 8000, BwMbps: 1000, StorageMB: 8000}),
	}
	vm := NewVM(0, VMTemplate{Cores: 4, RamMB: 2000, BwMbps: 100, StorMB: 1000}, 0)

	policy := FirstFitByFreeCores{}
	hostID, ok := policy.Place(vm, hosts)
	assert.True(t, ok)
	assert.Equal(t, 1, hostID) // host 0 can't fit 4 cores
}

func TestPlaceFleet_MarksUnplaceableVMsFailed(t *testing.T) {
	hosts := map[int]*Host{
		0: NewHost(0, HostProfile{Cores: 2, RamMB: 2000, BwMbps: 100, StorageMB: 2000}),
	}
	small := NewVM(0, VMTemplate{Cores: 2, RamMB: 1000, BwMbps: 50, StorMB: 500}, 0)
	tooBig := NewVM(1, VMTemplate{Cores: 4, RamMB: 1000, BwMbps: 50, StorMB: 500}, 0)

	PlaceFleet([]*VM{small, tooBig}, hosts, FirstFitByFreeCores{})

	assert.Equal(t, VMRunning, small.State)
	assert.Equal(t, VMFailed, tooBig.State)
	assert.Equal(t, -1, tooBig.HostID)
}
