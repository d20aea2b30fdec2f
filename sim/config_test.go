package sim

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulationSettings_Validate_RequiresDatacenters(t *testing.T) {
	s := SimulationSettings{GlobalRoutingBatchSize: 1, SimulationTimestepSeconds: 1}
	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "datacenters")
}

func TestSimulationSettings_Validate_RejectsDuplicateDatacenterIDs(t *testing.T) {
	s := SimulationSettings{
		GlobalRoutingBatchSize:    1,
		SimulationTimestepSeconds: 1,
		Datacenters: []DatacenterConfig{
			{DatacenterID: 0}, {DatacenterID: 0},
		},
	}
	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestSimulationSettings_ResolveUtilizationTarget(t *testing.T) {
	single := SimulationSettings{SingleDatacenterMode: true}
	assert.Equal(t, 0.95, single.ResolveUtilizationTarget())

	multi := SimulationSettings{SingleDatacenterMode: false}
	assert.Equal(t, 0.75, multi.ResolveUtilizationTarget())

	overridden := SimulationSettings{SingleDatacenterMode: false, Reward: RewardCoefficients{UtilizationTarget: 0.8}}
	assert.Equal(t, 0.8, overridden.ResolveUtilizationTarget())
}

func TestLoadSettings_ParsesYAMLAndValidates(t *testing.T) {
	yamlContent := `
simulation_timestep: 1.0
global_routing_batch_size: 4
datacenters:
  - datacenter_id: 0
    name: dc-0
`
	f, err := os.CreateTemp(t.TempDir(), "settings-*.yaml")
	require.NoError(t, err)
	_, err = f.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	settings, err := LoadSettings(f.Name())
	require.NoError(t, err)
	assert.Equal(t, 4, settings.GlobalRoutingBatchSize)
	assert.Len(t, settings.Datacenters, 1)
}

func TestLoadSettings_MissingFile(t *testing.T) {
	_, err := LoadSettings("/nonexistent/path.yaml")
	assert.Error(t, err)
}
