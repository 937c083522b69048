package sim

// KeyExtractor derives a 64-bit EventKey from a payload instance, letting
// multiple awaiters share a payload type but disambiguate by content.
// Register one per payload type via Engine.RegisterKeyExtractor before
// issuing a keyed await for that type.
type KeyExtractor[T any] func(payload T) EventKey

// RegisterKeyExtractor installs fn as the key extractor for payload type
// T. Registering a second extractor for the same type is a programmer
// error.
func RegisterKeyExtractor[T any](e *Engine, fn KeyExtractor[T]) {
	tag := typeTagOf[T]()
	if _, exists := e.keyExtractors[tag]; exists {
		panicKind(ErrDuplicateAwaiter, "key extractor already registered for %s", tag)
	}
	e.keyExtractors[tag] = func(payload any) (EventKey, bool) {
		typed, ok := payload.(T)
		if !ok {
			return 0, false
		}
		return fn(typed), true
	}
}

// EventAwait is a fluent builder for a suspension on the next matching
// event of payload type T. Obtain one with Recv, narrow it with From
// and/or ByKey, then resolve it with Await or WithTimeout. Recv is a free
// function rather than a Context method because Go does not allow generic
// methods.
type EventAwait[T any] struct {
	ctx    *Context
	hasSrc bool
	src    ComponentID
	hasKey bool
	key    EventKey
}

// Recv starts building an await for the next event of payload type T
// addressed to ctx's owner.
func Recv[T any](ctx *Context) *EventAwait[T] {
	if ctx.task == nil {
		panicKind(ErrSuspendOutsideTask, "Recv called outside a spawned task")
	}
	return &EventAwait[T]{ctx: ctx}
}

// From narrows the await to events emitted by src.
func (a *EventAwait[T]) From(src ComponentID) *EventAwait[T] {
	a.hasSrc = true
	a.src = src
	return a
}

// ByKey narrows the await to events whose extracted EventKey equals key.
// T must have a key extractor registered via RegisterKeyExtractor.
func (a *EventAwait[T]) ByKey(key EventKey) *EventAwait[T] {
	a.hasKey = true
	a.key = key
	return a
}

func (a *EventAwait[T]) register() (*sharedAwaiter, awaitKey) {
	key := awaitKey{
		typeTag: typeTagOf[T](),
		dst:     a.ctx.owner,
		hasSrc:  a.hasSrc,
		src:     a.src,
		hasKey:  a.hasKey,
		key:     a.key,
	}
	awaiter := &sharedAwaiter{task: a.ctx.task}
	a.ctx.engine.awaiters.register(key, awaiter)
	return awaiter, key
}

// Await suspends the current task until a matching event arrives and
// returns its payload.
func (a *EventAwait[T]) Await() T {
	awaiter, _ := a.register()
	a.ctx.task.suspend()
	return awaiter.payload.(T)
}

// Timeout is the outcome WithTimeout returns when no matching event
// arrived before the deadline. It carries enough of the await's filter
// to let the caller tell a timeout apart from a successful receive
// without losing context.
type Timeout struct {
	HasSrc bool
	Src    ComponentID
	HasKey bool
	Key    EventKey
}

// WithTimeout races the event await against a timer of duration d;
// whichever completes first wins and the other is actively cancelled. It
// returns the received payload and a nil Timeout on success, or a zero
// value and a non-nil Timeout if the deadline elapsed first.
func (a *EventAwait[T]) WithTimeout(d float64) (T, *Timeout) {
	if d < 0 {
		panicKind(ErrNegativeDelay, "timeout duration %v is negative", d)
	}
	ctx := a.ctx
	eventAwaiter, key := a.register()

	timerAwaiter := &sharedAwaiter{task: ctx.task}
	timerID := ctx.engine.queue.nextEventID()
	ctx.engine.queue.push(Event{
		ID:      timerID,
		Time:    ctx.engine.queue.time() + d,
		Src:     ctx.owner,
		Dst:     ctx.owner,
		Payload: &timerFired{awaiter: timerAwaiter},
	})

	ctx.task.suspend()

	var zero T
	if eventAwaiter.completed {
		// The event won the race; cancel the loser's timer event so it
		// is never delivered even if it is already sitting in the
		// queue at the same timestamp.
		ctx.engine.queue.cancel(timerID)
		return eventAwaiter.payload.(T), nil
	}

	// The timer won; the event awaiter is still registered and must be
	// removed so it cannot be matched by a later, unrelated event.
	ctx.engine.awaiters.remove(key)
	return zero, &Timeout{HasSrc: a.hasSrc, Src: a.src, HasKey: a.hasKey, Key: a.key}
}
