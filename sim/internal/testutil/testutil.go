// Package testutil provides deterministic fixture builders shared across
// this module's test files, mirroring the teacher's test-helper style of
// small, explicit constructors rather than a generic fixture framework.
package testutil

import (
	"fmt"
	"os"
	"testing"

	"github.com/greensim/greensim/sim"
)

// SmallHostProfile is a host profile small enough for fast, deterministic
// single-DC tests (spec.md §8 scenario S1: 4 cores, 50 000 MIPS/core,
// peak 200 W, idle 50 W).
func SmallHostProfile() sim.HostProfile {
	return sim.HostProfile{
		Name:         "test-host",
		Cores:        4,
		MipsPerCore:  50_000,
		RamMB:        16384,
		BwMbps:       1000,
		StorageMB:    100_000,
		PeakPowerW:   200,
		IdlePowerPct: 0.25,
	}
}

// SingleHostSingleVMConfig returns a DatacenterConfig with one host and
// one Small VM, green energy disabled (spec.md §8 scenario S1).
func SingleHostSingleVMConfig(dcID int) sim.DatacenterConfig {
	return sim.DatacenterConfig{
		DatacenterID: dcID,
		Name:         fmt.Sprintf("dc-%d", dcID),
		Hosts:        sim.HostFleetConfig{HostsCount: 1, Profile: SmallHostProfile()},
		VMs:          sim.VMFleetConfig{InitialSmall: 1},
		Green:        sim.GreenEnergyConfig{Enabled: false},
		Carbon:       sim.CarbonFactors{GreenKgPerKWh: 0.01, BrownKgPerKWh: 0.4},
	}
}

// DefaultSettings returns a single-DC SimulationSettings suitable as a
// starting point for tests, with cfgs substituted for the datacenter list.
func DefaultSettings(cfgs ...sim.DatacenterConfig) sim.SimulationSettings {
	return sim.SimulationSettings{
		SimulationTimestepSeconds: 1.0,
		MinTimeBetweenEvents:      1,
		MaxEpisodeLength:          1000,
		MaxCloudletPEs:            8,
		SplitLargeCloudlets:       false,
		WorkloadMode:              sim.WorkloadModeCSV,
		GlobalRoutingBatchSize:    8,
		Reward:                    sim.DefaultRewardCoefficients(),
		SingleDatacenterMode:      len(cfgs) <= 1,
		Datacenters:               cfgs,
	}
}

// TinyWorkload returns the single-job workload from spec.md §8 scenario
// S1: id=0, arrival=0, length=100 000 MI, 2 cores, 100/50 KB I/O.
func TinyWorkload() []*sim.Cloudlet {
	return []*sim.Cloudlet{
		sim.NewCloudlet(0, 0, 100_000, 2, 100, 50),
	}
}

// WriteTempCSV writes content to a temp file registered for cleanup on
// tb, and returns its path. Used to build wind-power and workload CSV
// fixtures inline in test files.
func WriteTempCSV(tb testing.TB, content string) string {
	tb.Helper()
	f, err := os.CreateTemp(tb.TempDir(), "fixture-*.csv")
	if err != nil {
		tb.Fatalf("testutil: create temp file: %v", err)
	}
	if _, err := f.WriteString(content); err != nil {
		tb.Fatalf("testutil: write temp file: %v", err)
	}
	if err := f.Close(); err != nil {
		tb.Fatalf("testutil: close temp file: %v", err)
	}
	return f.Name()
}

// ConstantWindCSV builds a simplified (timestamp, power_kw) CSV with n
// rows one minute apart, all at the given constant power — enough points
// for a natural cubic spline fit (spec.md §8 scenario S3).
func ConstantWindCSV(n int, powerKW float64) string {
	out := "timestamp,power_kw\n"
	for i := 0; i < n; i++ {
		out += fmt.Sprintf("2024-01-01 00:%02d:00,%.2f\n", i, powerKW)
	}
	return out
}
