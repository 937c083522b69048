package sim

// chanNotify is the self-addressed wake-up signal a Chan uses when a
// receiver is already waiting and a sender has something for it. Its
// EventKey packs the owning channel's id into the high bits and the
// ticket number into the low bits so many Chan instances living on the
// same component do not collide in the engine's awaiter table.
type chanNotify struct {
	chanID uint32
	ticket uint32
}

func chanNotifyKey(chanID, ticket uint32) EventKey {
	return EventKey(uint64(chanID)<<32 | uint64(ticket))
}

// Chan is an unbounded multi-producer multi-consumer queue for task-to-task
// communication. Delivery is FIFO across consumers: the Nth call to
// Receive, across however many goroutines-as-tasks call it, receives the
// Nth item ever sent. Internally it uses monotonic send/receive tickets
// and a keyed self-addressed notify event exactly the way the engine's
// timer and event-await machinery already works, rather than a separate
// synchronization primitive — there is only ever one goroutine actually
// running simulation logic at a time, so no locking is needed even though
// many tasks may hold a reference to the same Chan.
type Chan[T any] struct {
	engine *Engine
	owner  ComponentID
	id     uint32
	items  []T
	sendN  uint32
	recvN  uint32
}

// NewChan creates a channel homed on ctx's owning component. Any task may
// Send or Receive on it once a reference is shared, regardless of which
// component spawned that task; ticketing, not ownership, is what keeps
// delivery order correct.
func NewChan[T any](ctx *Context) *Chan[T] {
	return &Chan[T]{
		engine: ctx.engine,
		owner:  ctx.owner,
		id:     ctx.engine.nextChanID(),
	}
}

// Send enqueues v. If a receiver is already waiting for the ticket this
// send fills, a notify event wakes it; otherwise the value simply sits in
// the queue until a future Receive call claims it.
func (c *Chan[T]) Send(v T) {
	c.sendN++
	c.items = append(c.items, v)
	if c.recvN >= c.sendN {
		c.engine.queue.push(Event{
			ID:      c.engine.queue.nextEventID(),
			Time:    c.engine.queue.time(),
			Src:     c.owner,
			Dst:     c.owner,
			Payload: &chanNotify{chanID: c.id, ticket: c.sendN},
		})
	}
}

// Receive suspends ctx's task until the next item in send order is
// available, then returns it.
func (c *Chan[T]) Receive(ctx *Context) T {
	if ctx.task == nil {
		panicKind(ErrSuspendOutsideTask, "Chan.Receive called outside a spawned task")
	}
	c.recvN++
	ticket := c.recvN
	taken := c.sendN - uint32(len(c.items))
	if ticket > c.sendN || ticket > taken+1 {
		key := awaitKey{typeTag: typeTagOf[*chanNotify](), dst: c.owner, hasKey: true, key: chanNotifyKey(c.id, ticket)}
		awaiter := &sharedAwaiter{task: ctx.task}
		c.engine.awaiters.register(key, awaiter)
		if ticket <= c.sendN {
			// The item for this ticket is already queued but earlier
			// tickets are still waiting on their notify events: queue this
			// ticket's notify behind theirs so items are taken in order.
			c.engine.queue.push(Event{
				ID:      c.engine.queue.nextEventID(),
				Time:    c.engine.queue.time(),
				Src:     c.owner,
				Dst:     c.owner,
				Payload: &chanNotify{chanID: c.id, ticket: ticket},
			})
		}
		ctx.task.suspend()
	}
	v := c.items[0]
	c.items = c.items[1:]
	return v
}

// Stats reports the channel's send/receive ticket counters, exposed for
// introspection the way the engine exposes queue and awaiter counts to
// tests.
func (c *Chan[T]) Stats() (sent, received uint32) {
	return c.sendN, c.recvN
}
