package sim

// Context is the per-component facade handed to every registered handler
// and to the root driver: accessors over the shared engine state, the
// emit/cancel surface, and the async extensions (spawn, sleep, recv,
// channels). A Context is cheap to create and is always scoped to exactly
// one owning ComponentID.
type Context struct {
	engine *Engine
	owner  ComponentID
	shared bool
	task   *Task // nil outside a spawned task
}

func newContext(engine *Engine, owner ComponentID, shared bool, task *Task) *Context {
	return &Context{engine: engine, owner: owner, shared: shared, task: task}
}

// ID returns the owning component's id.
func (c *Context) ID() ComponentID { return c.owner }

// Name returns the owning component's registered name.
func (c *Context) Name() string { return c.engine.registry.mustName(c.owner) }

// Time returns the current simulated clock value.
func (c *Context) Time() float64 { return c.engine.queue.time() }

// Rand draws a uniform float64 in [0, 1) from the engine's shared PRNG.
func (c *Context) Rand() float64 { return c.engine.rand.float64() }

// GenRange draws a uniform float64 in [lo, hi) from the engine's shared
// PRNG. hi must be strictly greater than lo.
func (c *Context) GenRange(lo, hi float64) float64 { return c.engine.rand.rangeFloat64(lo, hi) }

// Sample draws a value from dist, handing it the engine's shared PRNG so
// the draw stays part of the same deterministic sequence Rand and
// GenRange use. Component code supplies dist (exponential inter-arrival
// times, a discrete empirical distribution, whatever the model calls
// for); the engine only owns the generator, not the sampling scheme.
func (c *Context) Sample(dist Distribution) float64 { return dist.Sample(c.engine.rand) }

// Emit schedules payload for delivery to dst after delay simulated time,
// using the context's owner as src. delay must be >= 0.
func (c *Context) Emit(payload any, dst ComponentID, delay float64) EventID {
	return c.emit(payload, c.owner, dst, delay)
}

// EmitNow is Emit with delay 0.
func (c *Context) EmitNow(payload any, dst ComponentID) EventID {
	return c.Emit(payload, dst, 0)
}

// EmitSelf is Emit with dst set to the context's owner.
func (c *Context) EmitSelf(payload any, delay float64) EventID {
	return c.Emit(payload, c.owner, delay)
}

// EmitSelfNow is EmitSelf with delay 0.
func (c *Context) EmitSelfNow(payload any) EventID {
	return c.Emit(payload, c.owner, 0)
}

// EmitAs overrides the source, bypassing the context's own owner. Used by
// the root driver to inject initial stimuli that should appear to come
// from an arbitrary component.
func (c *Context) EmitAs(payload any, src, dst ComponentID, delay float64) EventID {
	return c.emit(payload, src, dst, delay)
}

// EmitOrdered is a performance optimization: the caller asserts that
// successive EmitOrdered calls issued from this context carry
// non-decreasing delay. A violation is diagnostics-only — it logs a
// warning through the engine's telemetry rather than panicking, because
// unlike the other programmer errors, this one does not corrupt engine
// state if ignored.
func (c *Context) EmitOrdered(payload any, dst ComponentID, delay float64) EventID {
	if delay < c.engine.lastOrderedDelay[c.owner] {
		c.engine.logger.Warn(c.engine.logCtx, "emit_ordered delay violates non-decreasing assertion",
			"component", c.Name(), "delay", delay, "previous_delay", c.engine.lastOrderedDelay[c.owner])
	}
	c.engine.lastOrderedDelay[c.owner] = delay
	return c.emit(payload, c.owner, dst, delay)
}

func (c *Context) emit(payload any, src, dst ComponentID, delay float64) EventID {
	if delay < 0 {
		panicKind(ErrNegativeDelay, "emit delay %v is negative", delay)
	}
	id := c.engine.queue.nextEventID()
	c.engine.queue.push(Event{
		ID:      id,
		Time:    c.engine.queue.time() + delay,
		Src:     src,
		Dst:     dst,
		Payload: payload,
	})
	return id
}

// CancelEvent cancels a previously scheduled event by id. Cancelling an
// id that does not exist, or has already been delivered, is a no-op. If
// an awaiter was already registered for the event it is left dangling —
// it is not this call's job to clean up another suspension point's
// bookkeeping.
func (c *Context) CancelEvent(id EventID) {
	c.engine.queue.cancel(id)
}

// LookupName resolves a component id to its registered name.
func (c *Context) LookupName(id ComponentID) (string, bool) {
	return c.engine.registry.lookupName(id)
}

// LookupID resolves a component name to its id.
func (c *Context) LookupID(name string) (ComponentID, bool) {
	return c.engine.registry.lookupID(name)
}

// Spawn submits fn to the executor as a new task and returns immediately;
// it does not wait for fn to run or suspend. fn receives a Context scoped
// to the same owner as c, with task set so it may call Sleep/Recv/channel
// operations.
//
// Spawn is only permitted from the shared handler flavor (or from another
// task, or from the root driver): a mutable-flavor handler's Context is
// only valid for the duration of the OnEvent call, so a task spawned from
// it would reference state that may already have been reused by the time
// the task resumes.
func (c *Context) Spawn(fn func(ctx *Context)) TaskID {
	if !c.shared {
		panicKind(ErrUnsharedSpawn, "component %q must use RegisterShared to spawn tasks", c.Name())
	}
	return c.engine.spawn(c.owner, fn)
}
