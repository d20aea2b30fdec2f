package sim

// VMSize is the preset VM shape named in spec.md's glossary (Small/Medium/
// Large), each a preset core count. Ram/bw/storage scale with a
// VMTemplate rather than being hardcoded, so a DatacenterConfig can tune
// the fleet mix without code changes.
type VMSize int

const (
	VMSmall VMSize = iota
	VMMedium
	VMLarge
)

func (s VMSize) String() string {
	switch s {
	case VMSmall:
		return "Small"
	case VMMedium:
		return "Medium"
	case VMLarge:
		return "Large"
	default:
		return "Unknown"
	}
}

// VMTemplate describes the resource shape for one VM size.
type VMTemplate struct {
	Size    VMSize
	Cores   int
	RamMB   int
	BwMbps  int
	StorMB  int
}

// DefaultVMTemplates returns the default Small=2/Medium=4/Large=8 core
// fleet templates from spec.md §3, with proportionally scaled ram/bw/
// storage. NewDatacenter uses these templates for every datacenter; a
// DatacenterConfig sets only how many VMs of each size to create, not
// their shapes.
func DefaultVMTemplates() map[VMSize]VMTemplate {
	return map[VMSize]VMTemplate{
		VMSmall:  {Size: VMSmall, Cores: 2, RamMB: 4096, BwMbps: 100, StorMB: 20000},
		VMMedium: {Size: VMMedium, Cores: 4, RamMB: 8192, BwMbps: 200, StorMB: 40000},
		VMLarge:  {Size: VMLarge, Cores: 8, RamMB: 16384, BwMbps: 400, StorMB: 80000},
	}
}

// VMState is the VM lifecycle state (spec.md §3).
type VMState int

const (
	VMPending VMState = iota
	VMRunning
	VMFailed
	VMStopped
)

func (s VMState) String() string {
	switch s {
	case VMPending:
		return "Pending"
	case VMRunning:
		return "Running"
	case VMFailed:
		return "Failed"
	case VMStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// VM is a virtual machine instance. IDs are globally unique and monotonic
// within an episode (spec.md I10), minted by IDGenerator.
type VM struct {
	ID      int
	Size    VMSize
	Cores   int
	RamMB   int
	BwMbps  int
	StorMB  int
	HostID  int // -1 if never placed (Failed before assignment)
	State   VMState
	CPUUtil float64 // in [0,1]; instantaneous utilization, updated per tick

	// FreeCores tracks cores held by the VM itself that are not currently
	// occupied by a running cloudlet. The local scheduler assigns a
	// cloudlet whenever its core requirement fits in FreeCores, so a VM
	// may run several cloudlets at once.
	FreeCores int

	createdAtTick int64
}

// NewVM builds a VM from a template, unplaced (HostID = -1, State =
// Pending) until an AllocationPolicy places it on a host.
func NewVM(id int, tpl VMTemplate, now int64) *VM {
	return &VM{
		ID:            id,
		Size:          tpl.Size,
		Cores:         tpl.Cores,
		RamMB:         tpl.RamMB,
		BwMbps:        tpl.BwMbps,
		StorMB:        tpl.StorMB,
		HostID:        -1,
		State:         VMPending,
		FreeCores:     tpl.Cores,
		createdAtTick: now,
	}
}

// IDGenerator mints globally unique, monotonically increasing VM ids,
// reset at the start of each episode (spec.md §3, §9: "A global VM-id
// counter lives inside the simulation instance and resets on reset()").
type IDGenerator struct {
	next int
}

// Next returns the next id and advances the counter.
func (g *IDGenerator) Next() int {
	id := g.next
	g.next++
	return id
}

// Reset returns the counter to 0.
func (g *IDGenerator) Reset() { g.next = 0 }
