package sim

// UtilSample is one (t, utilization) point in a host's state-history
// trail, kept for final energy-integration reporting (spec.md §4.2).
type UtilSample struct {
	T int64
	U float64
}

// Host is a running instance of a HostProfile (spec.md §3). VM placement
// is tracked by id (design notes §9: "Use indices for everything in hot
// paths; avoid shared-ownership graphs") rather than by owned pointers.
type Host struct {
	ID      int
	Profile HostProfile

	VMIDs []int

	FreeCores   int
	FreeRamMB   int
	FreeBwMbps  int
	FreeStorMB  int

	History []UtilSample
}

// NewHost creates a Host with full free capacity from its profile.
func NewHost(id int, profile HostProfile) *Host {
	return &Host{
		ID:         id,
		Profile:    profile,
		VMIDs:      nil,
		FreeCores:  profile.Cores,
		FreeRamMB:  profile.RamMB,
		FreeBwMbps: profile.BwMbps,
		FreeStorMB: profile.StorageMB,
		History:    nil,
	}
}

// CanFit reports whether the host has enough free capacity for a VM
// template's resource demand.
func (h *Host) CanFit(cores, ramMB, bwMbps, storMB int) bool {
	return h.FreeCores >= cores && h.FreeRamMB >= ramMB && h.FreeBwMbps >= bwMbps && h.FreeStorMB >= storMB
}

// Place reserves the VM's resources on the host and records the VM id.
func (h *Host) Place(vm *VM) {
	h.FreeCores -= vm.Cores
	h.FreeRamMB -= vm.RamMB
	h.FreeBwMbps -= vm.BwMbps
	h.FreeStorMB -= vm.StorMB
	h.VMIDs = append(h.VMIDs, vm.ID)
	vm.HostID = h.ID
}

// Utilization computes the PE-weighted average CPU utilization across the
// host's VMs (spec.md §4.2): Σ(vm.cores·vm.cpuUtil) / host.cores.
func (h *Host) Utilization(vms map[int]*VM) float64 {
	if h.Profile.Cores == 0 {
		return 0
	}
	var weighted float64
	for _, id := range h.VMIDs {
		vm, ok := vms[id]
		if !ok || vm.State != VMRunning {
			continue
		}
		weighted += float64(vm.Cores) * vm.CPUUtil
	}
	return weighted / float64(h.Profile.Cores)
}

// RecordSample appends a (t, utilization) sample to the host's history.
func (h *Host) RecordSample(t int64, u float64) {
	h.History = append(h.History, UtilSample{T: t, U: u})
}

// RamUtilization reports the fraction of host RAM currently reserved.
func (h *Host) RamUtilization() float64 {
	if h.Profile.RamMB == 0 {
		return 0
	}
	used := h.Profile.RamMB - h.FreeRamMB
	return float64(used) / float64(h.Profile.RamMB)
}
