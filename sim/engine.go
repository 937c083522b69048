package sim

import (
	"context"
	"time"

	"github.com/desim-go/core/sim/schema"
	"github.com/desim-go/core/sim/telemetry"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Engine owns every piece of simulation state: the clock and event queue,
// the component registry, the shared PRNG, the awaiter tables, and the
// task ready queue. A single Engine instance is never shared across
// goroutines except through the one-baton-at-a-time discipline Task and
// Context enforce; running independent simulations in parallel means
// running independent Engines on independent goroutines, not sharing one.
type Engine struct {
	queue    *EventQueue
	registry *ComponentRegistry
	rand     *engineRand
	awaiters *awaiterTable

	ready      []*Task
	tasks      map[TaskID]*Task
	nextTaskID TaskID

	keyExtractors    map[string]func(any) (EventKey, bool)
	lastOrderedDelay map[ComponentID]float64
	undelivered      []Event
	chanCounter      uint32

	runID uuid.UUID

	logger             telemetry.Logger
	metrics            telemetry.Metrics
	tracer             telemetry.Tracer
	logCtx             context.Context
	undeliveredLimiter *rate.Limiter
	schemas            *schema.Registry
	stepTimeout        time.Duration

	rootCtx *Context
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithTelemetry wires a concrete Logger/Metrics/Tracer set into the
// engine in place of the no-op default.
func WithTelemetry(logger telemetry.Logger, metrics telemetry.Metrics, tracer telemetry.Tracer) Option {
	return func(e *Engine) {
		e.logger, e.metrics, e.tracer = logger, metrics, tracer
	}
}

// WithLogContext sets the base context.Context structured log and trace
// calls are made with. Defaults to context.Background().
func WithLogContext(ctx context.Context) Option {
	return func(e *Engine) { e.logCtx = ctx }
}

// WithUndeliveredLogRate caps how many undelivered-event warnings the
// engine logs per second, with the given token-bucket burst, so a model
// that keeps addressing a deregistered component cannot flood the log
// sink. Defaults to 5/s with a burst of 10. eventsPerSecond <= 0 disables
// the limiter (logs every undelivered event).
func WithUndeliveredLogRate(eventsPerSecond float64, burst int) Option {
	limit := rate.Limit(eventsPerSecond)
	if eventsPerSecond <= 0 {
		limit = rate.Inf
	}
	return func(e *Engine) { e.undeliveredLimiter = rate.NewLimiter(limit, burst) }
}

// WithSchemaRegistry wires a schema.Registry into the engine. When set,
// logDelivery validates the payload of every event delivered to a
// synchronous handler against the schema registered for its type tag, if
// any (events completing an awaiter are not validated), and logs a warning on
// mismatch instead of blindly trusting the model's own serialisation.
func WithSchemaRegistry(r *schema.Registry) Option {
	return func(e *Engine) { e.schemas = r }
}

// WithStepTimeout bounds how long a single task resume/suspend handoff
// may block before the engine treats the task as stuck and panics with
// ErrStuckTask. Zero, the default, disables the watchdog.
func WithStepTimeout(d time.Duration) Option {
	return func(e *Engine) { e.stepTimeout = d }
}

// New constructs an Engine whose PRNG is fully determined by seed.
func New(seed uint64, opts ...Option) *Engine {
	logger, metrics, tracer := telemetry.Noop()
	e := &Engine{
		queue:              newEventQueue(),
		registry:           newComponentRegistry(),
		rand:               newEngineRand(seed),
		awaiters:           newAwaiterTable(),
		tasks:              make(map[TaskID]*Task),
		keyExtractors:      make(map[string]func(any) (EventKey, bool)),
		lastOrderedDelay:   make(map[ComponentID]float64),
		runID:              uuid.New(),
		logger:             logger,
		metrics:            metrics,
		tracer:             tracer,
		logCtx:             context.Background(),
		undeliveredLimiter: rate.NewLimiter(5, 10),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.keyExtractors[typeTagOf[*chanNotify]()] = func(p any) (EventKey, bool) {
		n, ok := p.(*chanNotify)
		if !ok {
			return 0, false
		}
		return chanNotifyKey(n.chanID, n.ticket), true
	}
	e.rootCtx = newContext(e, NoComponent, true, nil)
	return e
}

// RunID uniquely identifies this engine instance across a process, so
// multiple concurrently running simulations can be told apart in a shared
// telemetry sink.
func (e *Engine) RunID() uuid.UUID { return e.runID }

// RootContext returns the Context used to inject initial stimuli before
// any component-owned event has been delivered. It is the shared flavor,
// so it may Spawn root-level tasks.
func (e *Engine) RootContext() *Context { return e.rootCtx }

// Register adds a mutable-flavor component: handler is invoked with
// exclusive access to its own state for the duration of each call, but
// may not Spawn a task that outlives that call.
func (e *Engine) Register(name string, handler Handler) ComponentID {
	return e.registry.register(name, handler, false)
}

// RegisterShared adds a shared-flavor component: handler is responsible
// for its own interior mutability, in exchange for being allowed to
// Spawn tasks that outlive a single OnEvent call.
func (e *Engine) RegisterShared(name string, handler SharedHandler) ComponentID {
	return e.registry.register(name, handler, true)
}

// Deregister removes id's handler mapping and applies policy to its
// in-flight events.
func (e *Engine) Deregister(id ComponentID, policy DeregisterPolicy) {
	_, ok := e.registry.deregister(id)
	if !ok || policy == DeregisterNone {
		return
	}
	e.queue.cancelMatching(func(ev Event) bool {
		switch policy {
		case DeregisterIncoming:
			return ev.Dst == id
		case DeregisterOutgoing:
			return ev.Src == id
		case DeregisterBoth:
			return ev.Dst == id || ev.Src == id
		default:
			return false
		}
	})
}

// spawn backs Context.Spawn: it allocates a Task and places it on the
// ready queue without running it.
func (e *Engine) spawn(owner ComponentID, fn func(ctx *Context)) TaskID {
	id := e.nextTaskID
	e.nextTaskID++

	ctx := newContext(e, owner, true, nil)
	task := newTask(id, owner, fn, ctx)
	ctx.task = task

	e.tasks[id] = task
	e.ready = append(e.ready, task)
	return id
}

func (e *Engine) nextChanID() uint32 {
	e.chanCounter++
	return e.chanCounter
}

// Time returns the current simulated clock value.
func (e *Engine) Time() float64 { return e.queue.time() }

// EventCount returns the total number of events ever created, including
// cancelled ones.
func (e *Engine) EventCount() uint64 { return e.queue.eventCount() }

// Undelivered returns the events that were popped with no registered
// handler and no matching awaiter at dispatch time.
func (e *Engine) Undelivered() []Event {
	out := make([]Event, len(e.undelivered))
	copy(out, e.undelivered)
	return out
}

// DumpEvents returns a snapshot of the pending event queue, for test and
// model-checker introspection. It is not on the dispatch hot path.
func (e *Engine) DumpEvents() []Event { return e.queue.snapshot() }

// PendingAwaiters reports how many awaiters are currently registered,
// for property tests asserting awaiter-table hygiene.
func (e *Engine) PendingAwaiters() int { return e.awaiters.len() }

// PendingTasks reports how many spawned tasks have not yet completed.
func (e *Engine) PendingTasks() int { return len(e.tasks) }

// Step performs one iteration of the dispatch loop: if the executor has a
// ready task, it polls it; otherwise it pops and delivers the next event.
// It returns false once both the ready queue and the event queue are
// empty, meaning the simulation has drained.
func (e *Engine) Step() bool {
	if len(e.ready) > 0 {
		task := e.ready[0]
		e.ready = e.ready[1:]
		e.resumeTask(task, nil)
		return true
	}
	ev, ok := e.queue.pop()
	if !ok {
		return false
	}
	e.deliver(ev)
	return true
}

// Steps runs up to n steps, stopping early if the simulation drains.
// Returns false if it stopped early.
func (e *Engine) Steps(n uint64) bool {
	for i := uint64(0); i < n; i++ {
		if !e.Step() {
			return false
		}
	}
	return true
}

// StepUntilNoEvents runs steps until the simulation drains.
func (e *Engine) StepUntilNoEvents() {
	for e.Step() {
	}
}

// StepForDuration runs steps while the next pending event's time is no
// later than the current time plus d.
func (e *Engine) StepForDuration(d float64) {
	e.stepUntilTime(e.queue.time() + d)
}

// StepUntilTime runs steps while the next pending event's time is no
// later than the absolute time t.
func (e *Engine) StepUntilTime(t float64) {
	e.stepUntilTime(t)
}

func (e *Engine) stepUntilTime(end float64) {
	for {
		if len(e.ready) > 0 {
			if !e.Step() {
				return
			}
			continue
		}
		ev, ok := e.queue.peek()
		if !ok || ev.Time > end {
			return
		}
		if !e.Step() {
			return
		}
	}
}

func (e *Engine) resumeTask(task *Task, val any) {
	msg, timedOut := task.resumeWithTimeout(val, e.stepTimeout)
	if timedOut {
		panicKind(ErrStuckTask, "task %d did not suspend or finish within %s", task.id, e.stepTimeout)
	}
	if msg.done {
		delete(e.tasks, task.id)
		if msg.panicVal != nil {
			panic(msg.panicVal)
		}
	}
}

func (e *Engine) completeAwaiter(awaiter *sharedAwaiter, payload any) {
	awaiter.completed = true
	awaiter.payload = payload
	e.resumeTask(awaiter.task, payload)
}

// deliver implements the classification step of the dispatch loop: timer
// completions, then awaiter matches (which always win over a synchronous
// handler for the same event), then the synchronous handler, then
// undelivered bookkeeping.
func (e *Engine) deliver(ev Event) {
	_, span := e.tracer.Start(e.logCtx, "sim.deliver")
	span.SetAttribute("event_id", int64(ev.ID))
	span.SetAttribute("time", ev.Time)
	span.SetAttribute("event_type", typeTag(ev.Payload))
	defer span.End()

	if tf, ok := ev.Payload.(*timerFired); ok {
		span.SetAttribute("outcome", "timer")
		e.completeAwaiter(tf.awaiter, nil)
		return
	}

	tag := typeTag(ev.Payload)
	var key EventKey
	var hasKey bool
	if extractor, ok := e.keyExtractors[tag]; ok {
		if k, matched := extractor(ev.Payload); matched {
			key, hasKey = k, true
		}
	}

	if awaiter, akey, ok := e.awaiters.match(tag, ev.Src, ev.Dst, hasKey, key); ok {
		span.SetAttribute("outcome", "awaiter")
		e.awaiters.remove(akey)
		e.completeAwaiter(awaiter, ev.Payload)
		return
	}

	if handler, _, ok := e.registry.handlerFor(ev.Dst); ok {
		span.SetAttribute("outcome", "handler")
		e.logDelivery(ev)
		ctx := newContext(e, ev.Dst, e.registry.isShared(ev.Dst), nil)
		handler.OnEvent(ctx, ev)
		return
	}

	span.SetAttribute("outcome", "undelivered")
	e.recordUndelivered(ev)
}
