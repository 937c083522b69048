// Package config loads the engine-wide policy knobs that sit above a single
// simulation run: the default PRNG seed a batch tool should use when the
// caller doesn't pick one, how aggressively to rate-limit undelivered-event
// logging, and which telemetry backend to wire up. The engine itself never
// reads a config file; it takes a seed and an explicit telemetry set per
// sim.New. EngineOptions exists for the harness around the engine, the
// batch experiment runner or CLI that otherwise hardcodes these as flags.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// TelemetryBackend selects which telemetry.Logger/Metrics/Tracer set
// sim.NewFromConfig wires in.
type TelemetryBackend string

const (
	// TelemetryNoop discards all logging, metrics, and tracing. The default.
	TelemetryNoop TelemetryBackend = "noop"
	// TelemetryClue delegates to goa.design/clue/log and OpenTelemetry.
	TelemetryClue TelemetryBackend = "clue"
)

// EngineOptions is the YAML-loadable configuration for an engine and the
// tooling around it.
type EngineOptions struct {
	// DefaultSeed seeds the engine's PRNG when a batch tool doesn't pick
	// an explicit seed per run.
	DefaultSeed uint64 `yaml:"default_seed"`
	// Telemetry selects the backend sim.NewFromConfig wires in.
	Telemetry TelemetryBackend `yaml:"telemetry"`
	// UndeliveredEventLogRate caps undelivered-event log records per
	// second; zero means unlimited.
	UndeliveredEventLogRate float64 `yaml:"undelivered_event_log_rate"`
	// UndeliveredEventLogBurst is the token bucket burst size for the
	// same limiter.
	UndeliveredEventLogBurst int `yaml:"undelivered_event_log_burst"`
	// StepTimeout bounds how long a single Task resume/suspend handoff
	// may block before the engine treats it as a stuck task and panics
	// with a ProgrammerError. Zero disables the watchdog.
	StepTimeout time.Duration `yaml:"step_timeout"`
}

// Default returns the zero-configuration defaults sim.New falls back to
// when constructed without an explicit EngineOptions.
func Default() *EngineOptions {
	return &EngineOptions{
		DefaultSeed:              1,
		Telemetry:                TelemetryNoop,
		UndeliveredEventLogRate:  5,
		UndeliveredEventLogBurst: 10,
		StepTimeout:              0,
	}
}

// Load reads and validates an EngineOptions document from a YAML file.
func Load(path string) (*EngineOptions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %q: %w", path, err)
	}
	opts := Default()
	if err := yaml.Unmarshal(data, opts); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %q: %w", path, err)
	}
	return opts, nil
}

// Validate checks the option set for internal consistency.
func (o *EngineOptions) Validate() error {
	switch o.Telemetry {
	case TelemetryNoop, TelemetryClue, "":
	default:
		return fmt.Errorf("unknown telemetry backend %q", o.Telemetry)
	}
	if o.UndeliveredEventLogRate < 0 {
		return fmt.Errorf("undelivered_event_log_rate must be >= 0, got %v", o.UndeliveredEventLogRate)
	}
	if o.UndeliveredEventLogBurst < 0 {
		return fmt.Errorf("undelivered_event_log_burst must be >= 0, got %v", o.UndeliveredEventLogBurst)
	}
	if o.StepTimeout < 0 {
		return fmt.Errorf("step_timeout must be >= 0, got %v", o.StepTimeout)
	}
	return nil
}
