package sim

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WorkloadMode selects how cloudlets are ingested (spec.md §6).
type WorkloadMode string

const (
	WorkloadModeCSV WorkloadMode = "CSV"
	WorkloadModeSWF WorkloadMode = "SWF"
)

// TimeScalingMode selects how a green-energy provider maps CSV rows to
// simulation time (spec.md §4.4).
type TimeScalingMode string

const (
	TimeScalingRealTime   TimeScalingMode = "RealTime"
	TimeScalingCompressed TimeScalingMode = "Compressed"
)

// RewardCoefficients groups the reward-shaping weights from spec.md §4.10
// and §6, mirroring the teacher's grouped-config-struct style (sim/config.go's
// KVCacheConfig/BatchConfig/LatencyCoeffs).
type RewardCoefficients struct {
	WaitTime       float64 `yaml:"reward_wait_time_coef"`
	Utilization    float64 `yaml:"reward_unutilization_coef"`
	Queue          float64 `yaml:"reward_queue_penalty_coef"`
	InvalidAction  float64 `yaml:"reward_invalid_action_coef"`
	Carbon         float64 `yaml:"carbon_emission_penalty_coef"`
	// UtilizationTarget resolves the open question in spec.md §9 (0.95
	// single-DC vs 0.75 multi-DC) as a configurable value rather than a
	// hardcoded constant; left at 0, SimulationSettings.ResolveUtilizationTarget
	// picks a value based on SingleDatacenterMode.
	UtilizationTarget float64 `yaml:"reward_utilization_target"`
}

// DefaultRewardCoefficients returns the recommended defaults from spec.md
// §4.10 for a single-DC configuration. UtilizationTarget is left at 0, so
// SimulationSettings.ResolveUtilizationTarget applies the single-DC (0.95)
// or multi-DC (0.75) target according to SingleDatacenterMode.
func DefaultRewardCoefficients() RewardCoefficients {
	return RewardCoefficients{
		WaitTime:      0.75,
		Utilization:   0.25,
		Queue:         0.55,
		InvalidAction: 1.0,
		Carbon:        500.0,
	}
}

// CarbonFactors groups the per-energy-type carbon intensity factors
// (spec.md §3's DatacenterConfig).
type CarbonFactors struct {
	GreenKgPerKWh float64 `yaml:"green_carbon_factor"`
	BrownKgPerKWh float64 `yaml:"brown_carbon_factor"`
}

// VMFleetConfig groups initial VM-fleet counts (spec.md §3).
type VMFleetConfig struct {
	InitialSmall  int `yaml:"initial_s_vm_count"`
	InitialMedium int `yaml:"initial_m_vm_count"`
	InitialLarge  int `yaml:"initial_l_vm_count"`
}

// HostFleetConfig groups the host profile mix for a datacenter (spec.md §3).
type HostFleetConfig struct {
	HostsCount int         `yaml:"hosts_count"`
	Profile    HostProfile `yaml:"host_profile"`
}

// GreenEnergyConfig groups the wind-power data source settings for one
// datacenter (spec.md §3, §4.4).
type GreenEnergyConfig struct {
	Enabled          bool            `yaml:"green_energy_enabled"`
	TurbineIDs       []string        `yaml:"turbine_ids"`
	WindDataFile     string          `yaml:"wind_data_file"`
	TimeScalingMode  TimeScalingMode `yaml:"time_scaling_mode"`
	TimeZoneOffsetRows int           `yaml:"time_zone_offset_rows"`
	ShortTermRows    int             `yaml:"short_term_rows"`
	LongTermRows     int             `yaml:"long_term_rows"`
}

// DatacenterConfig is spec.md §3's DatacenterConfig entity.
type DatacenterConfig struct {
	DatacenterID int               `yaml:"datacenter_id"`
	Name         string            `yaml:"name"`
	Hosts        HostFleetConfig   `yaml:"hosts"`
	VMs          VMFleetConfig     `yaml:"vms"`
	Green        GreenEnergyConfig `yaml:"green"`
	Carbon       CarbonFactors     `yaml:"carbon"`
}

// SimulationSettings is spec.md §6's general configuration schema.
type SimulationSettings struct {
	SimulationTimestepSeconds float64            `yaml:"simulation_timestep"`
	MinTimeBetweenEvents      int64              `yaml:"min_time_between_events"`
	MaxEpisodeLength          int64              `yaml:"max_episode_length"`
	MaxCloudletPEs            int                `yaml:"max_cloudlet_pes"`
	SplitLargeCloudlets       bool               `yaml:"split_large_cloudlets"`
	WorkloadMode              WorkloadMode       `yaml:"workload_mode"`
	CloudletTraceFile         string             `yaml:"cloudlet_trace_file"`
	GlobalRoutingBatchSize    int                `yaml:"global_routing_batch_size"`
	Reward                    RewardCoefficients `yaml:"reward"`
	SingleDatacenterMode      bool               `yaml:"single_datacenter_mode"`
	Datacenters               []DatacenterConfig `yaml:"datacenters"`
}

// ResolveUtilizationTarget applies the open-question resolution in
// DESIGN.md: single-DC mode targets 0.95 utilization, multi-DC targets
// 0.75, unless the config explicitly overrides RewardCoefficients.UtilizationTarget.
func (s *SimulationSettings) ResolveUtilizationTarget() float64 {
	if s.Reward.UtilizationTarget != 0 {
		return s.Reward.UtilizationTarget
	}
	if s.SingleDatacenterMode {
		return 0.95
	}
	return 0.75
}

// Validate performs the startup-time checks that constitute a
// ConfigurationError (spec.md §7): missing required keys, invalid batch
// size, no datacenters configured.
func (s *SimulationSettings) Validate() error {
	if s.GlobalRoutingBatchSize <= 0 {
		return &ConfigError{Field: "global_routing_batch_size", Reason: "must be > 0"}
	}
	if s.SimulationTimestepSeconds <= 0 {
		return &ConfigError{Field: "simulation_timestep", Reason: "must be > 0"}
	}
	if len(s.Datacenters) == 0 {
		return &ConfigError{Field: "datacenters", Reason: "at least one datacenter is required"}
	}
	seen := make(map[int]bool)
	for _, dc := range s.Datacenters {
		if seen[dc.DatacenterID] {
			return &ConfigError{Field: "datacenters", Reason: fmt.Sprintf("duplicate datacenter_id %d", dc.DatacenterID)}
		}
		seen[dc.DatacenterID] = true
	}
	return nil
}

// LoadSettings reads and parses a YAML SimulationSettings document,
// mirroring the teacher's cmd/workload_config.go loader pattern
// (os.ReadFile + yaml.Unmarshal into a grouped struct) but returning an
// error instead of panicking, since this is a library entrypoint rather
// than a CLI-only helper.
func LoadSettings(path string) (*SimulationSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sim: read settings %q: %w", path, err)
	}
	var s SimulationSettings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("sim: parse settings %q: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}
