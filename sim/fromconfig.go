package sim

import (
	"github.com/desim-go/core/sim/config"
	"github.com/desim-go/core/sim/telemetry"
)

// NewFromConfig constructs an Engine from a loaded EngineOptions,
// translating each policy knob into the Option it corresponds to: the
// telemetry backend selection becomes WithTelemetry, the rate limit
// becomes WithUndeliveredLogRate, and StepTimeout becomes WithStepTimeout.
// extra is applied after the config-derived options, so a caller can
// still layer on anything EngineOptions has no knob for, such as
// WithSchemaRegistry.
func NewFromConfig(opts *config.EngineOptions, extra ...Option) *Engine {
	var logger telemetry.Logger
	var metrics telemetry.Metrics
	var tracer telemetry.Tracer
	switch opts.Telemetry {
	case config.TelemetryClue:
		logger, metrics, tracer = telemetry.NewClueLogger(), telemetry.NewClueMetrics(), telemetry.NewClueTracer()
	default:
		logger, metrics, tracer = telemetry.Noop()
	}

	all := make([]Option, 0, 3+len(extra))
	all = append(all,
		WithTelemetry(logger, metrics, tracer),
		WithUndeliveredLogRate(opts.UndeliveredEventLogRate, opts.UndeliveredEventLogBurst),
		WithStepTimeout(opts.StepTimeout),
	)
	all = append(all, extra...)
	return New(opts.DefaultSeed, all...)
}
