package sim

import "sort"

// AllocationPolicy is the capability interface for VM-to-host placement
// (spec.md §9). The default, FirstFitByFreeCores, implements spec.md
// §4.2's "bin-pack VMs to hosts first-fit by free cores, tie-broken by
// lowest host id" — grounded on the single-method capability-interface
// style the teacher uses for pluggable policies (sim/policy/admission.go's
// AdmissionPolicy, sim/cluster's RoutingPolicy).
type AllocationPolicy interface {
	// Place selects a host for vm among hosts, returning its id and true
	// on success, or false if no host has room.
	Place(vm *VM, hosts map[int]*Host) (hostID int, ok bool)
}

// FirstFitByFreeCores is the default AllocationPolicy.
type FirstFitByFreeCores struct{}

func (FirstFitByFreeCores) Place(vm *VM, hosts map[int]*Host) (int, bool) {
	ids := make([]int, 0, len(hosts))
	for id := range hosts {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		h := hosts[id]
		if h.CanFit(vm.Cores, vm.RamMB, vm.BwMbps, vm.StorMB) {
			return id, true
		}
	}
	return 0, false
}

// PlaceFleet places every VM in vms onto hosts using policy, in VM-id
// order (deterministic — spec.md I9). VMs that cannot be placed are
// marked Failed and left off every host (spec.md §4.2: "failure is
// recorded and the VM is marked Failed (not retried)").
func PlaceFleet(vms []*VM, hosts map[int]*Host, policy AllocationPolicy) {
	for _, vm := range vms {
		hostID, ok := policy.Place(vm, hosts)
		if !ok {
			vm.State = VMFailed
			vm.HostID = -1
			continue
		}
		hosts[hostID].Place(vm)
		vm.State = VMRunning
	}
}
