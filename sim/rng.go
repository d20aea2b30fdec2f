package sim

import (
	"hash/fnv"
	"math/rand"
)

// PartitionedRNG hands out isolated, order-independent random streams per
// subsystem, derived deterministically from one episode seed — grounded
// on the teacher's sim/cluster/rng.go PartitionedRNG, which solves the
// exact same problem (workload generation, routing jitter and VM failure
// sampling must not perturb each other's draws just because one subsystem
// drew more or fewer times this tick).
type PartitionedRNG struct {
	masterSeed int64
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG derives a fresh set of subsystem RNGs from masterSeed.
func NewPartitionedRNG(masterSeed int64) *PartitionedRNG {
	return &PartitionedRNG{
		masterSeed: masterSeed,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns the (lazily created) RNG for the named subsystem.
// Repeated calls with the same name return the same *rand.Rand.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	rng := rand.New(rand.NewSource(p.deriveSeed(name)))
	p.subsystems[name] = rng
	return rng
}

func (p *PartitionedRNG) deriveSeed(name string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	nameHash := int64(h.Sum64())
	return p.masterSeed ^ nameHash
}

// Subsystem name constants used across the simulation core.
const (
	SubsystemWorkload = "workload"
	SubsystemRouting  = "routing"
	SubsystemVMFault  = "vm-fault"
)
