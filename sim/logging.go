package sim

import "encoding/json"

// logDelivery emits one structured trace record per delivery to a
// synchronous handler, naming the destination component. This is
// observability only; it never affects dispatch semantics.
func (e *Engine) logDelivery(ev Event) {
	e.logger.Debug(e.logCtx, "event delivered",
		"time", ev.Time,
		"event_id", ev.ID,
		"src", e.registry.mustName(ev.Src),
		"dst", e.registry.mustName(ev.Dst),
		"event_type", typeTag(ev.Payload),
	)
	e.metrics.IncCounter("sim.events.delivered", 1)
	e.validateSchema(ev)
}

// validateSchema checks a delivered event's payload against the schema
// registered for its type tag, if a registry is wired in and a schema is
// registered for that tag. A mismatch is logged, not panicked: a payload
// that fails its own declared schema is a modelling bug worth surfacing,
// not a simulation-corrupting programmer error like the ones
// ProgrammerError covers.
func (e *Engine) validateSchema(ev Event) {
	if e.schemas == nil {
		return
	}
	tag := typeTag(ev.Payload)
	if !e.schemas.Has(tag) {
		return
	}
	payloadJSON, err := json.Marshal(ev.Payload)
	if err != nil {
		e.logger.Warn(e.logCtx, "event payload not JSON-marshalable for schema validation",
			"event_id", ev.ID, "event_type", tag, "error", err.Error())
		return
	}
	if err := e.schemas.Validate(tag, payloadJSON); err != nil {
		e.logger.Warn(e.logCtx, "event payload failed schema validation",
			"event_id", ev.ID, "event_type", tag, "error", err.Error())
		e.metrics.IncCounter("sim.events.schema_invalid", 1)
	}
}

// recordUndelivered keeps an undelivered event for later inspection and,
// subject to undeliveredLimiter, logs a warning. A model that keeps
// addressing a deregistered or never-registered component would
// otherwise flood the log sink with one warning per delivery; the limiter
// caps that without suppressing the underlying record, which is always
// kept.
func (e *Engine) recordUndelivered(ev Event) {
	e.undelivered = append(e.undelivered, ev)
	e.metrics.IncCounter("sim.events.undelivered", 1)
	if e.undeliveredLimiter.Allow() {
		e.logger.Warn(e.logCtx, "event undelivered: no handler or awaiter registered",
			"time", ev.Time,
			"event_id", ev.ID,
			"src", e.registry.mustName(ev.Src),
			"dst", e.registry.mustName(ev.Dst),
			"event_type", typeTag(ev.Payload),
		)
	}
}
