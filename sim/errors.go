// Package sim implements the discrete-event cloud simulation kernel: the
// virtual clock and event queue (C1), the host/VM/cloudlet resource model
// and power accounting (C2), and workload ingestion (C3, in sim/workload).
//
// Sub-packages layer the rest of the system on top of this kernel:
//   - sim/green:   wind-power interpolation and energy/carbon accounting (C4, C5)
//   - sim/broker:  per-datacenter local scheduling (C6)
//   - sim/router:  global multi-datacenter routing (C7)
//   - sim/cluster: the hierarchical simulation core, observations and
//     reward shaping (C8, C9, C10)
//   - sim/report:  post-episode CSV result dumps
package sim

import "errors"

// Error taxonomy, per the error handling design: configuration errors are
// fatal at startup, workload/wind-data errors are per-row and recoverable,
// and event-loop stalls are recoverable but logged loudly. None of these
// ever panic; callers decide what "fatal" means for their context.
var (
	// ErrConfiguration marks a fatal, startup-time configuration problem:
	// a missing required key, unknown profile name, or invalid batch size.
	ErrConfiguration = errors.New("sim: configuration error")

	// ErrWorkloadRow marks a single malformed workload row; the row is
	// skipped and ingestion continues.
	ErrWorkloadRow = errors.New("sim: malformed workload row")
)

// ConfigError wraps ErrConfiguration with the offending field and reason.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "sim: configuration error: " + e.Field + ": " + e.Reason
}

func (e *ConfigError) Unwrap() error { return ErrConfiguration }
