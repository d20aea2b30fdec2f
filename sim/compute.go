package sim

// Advance runs a Running cloudlet forward by one tick of length
// deltaSeconds on the given VM/host pair, per spec.md §4.2: progress per
// tick is min(remainingMI, coresRequired · mipsPerCore · Δt). It returns
// true if the cloudlet finished this tick (RemainingMI reached 0).
//
// mipsPerCore comes from the host profile: the VM itself has no MIPS
// rating, only a core count — compute capacity belongs to the physical
// host, matching spec.md §3's HostProfile fields.
func Advance(c *Cloudlet, mipsPerCore float64, deltaSeconds float64) bool {
	if c.State != CloudletRunning {
		return false
	}
	capacityMI := float64(c.CoresRequired) * mipsPerCore * deltaSeconds
	progress := capacityMI
	if float64(c.RemainingMI) < progress {
		progress = float64(c.RemainingMI)
	}
	c.RemainingMI -= int64(progress)
	if c.RemainingMI <= 0 {
		c.RemainingMI = 0
		return true
	}
	return false
}

// Finish transitions a cloudlet to Finished at the given clock time. VM
// bookkeeping is left to the caller: the simulation core frees the VM's
// cores when it handles the matching CloudletFinished event.
func Finish(c *Cloudlet, now int64) {
	c.State = CloudletFinished
	c.FinishTime = now
}
