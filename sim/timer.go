package sim

// timerFired is the self-addressed payload a Sleep call schedules: when it
// is popped off the event queue and delivered back to its own component,
// the dispatcher recognizes the type and completes the timer's awaiter
// directly rather than consulting the awaiter table. Needs no separate
// timer registry: the awaiter to complete travels with the event itself.
type timerFired struct {
	awaiter *sharedAwaiter
}

// sleep suspends the calling task until duration simulated time has
// elapsed; the caller must be running inside a task (Context.Sleep checks
// this). It returns the id of the timer event only after that event has
// been delivered, so the id cannot be used to cancel the wait.
func (c *Context) sleep(duration float64) EventID {
	if duration < 0 {
		panicKind(ErrNegativeDelay, "sleep duration %v is negative", duration)
	}
	awaiter := &sharedAwaiter{task: c.task}
	id := c.engine.queue.nextEventID()
	c.engine.queue.push(Event{
		ID:      id,
		Time:    c.engine.queue.time() + duration,
		Src:     c.owner,
		Dst:     c.owner,
		Payload: &timerFired{awaiter: awaiter},
	})
	c.task.suspend()
	return id
}

// Sleep blocks the current task until duration simulated time has
// elapsed. It must be called from within a task spawned via Context.Spawn;
// calling it from a synchronous handler is a programmer error since
// handlers may not suspend.
func (c *Context) Sleep(duration float64) {
	if c.task == nil {
		panicKind(ErrSuspendOutsideTask, "Sleep called outside a spawned task")
	}
	c.sleep(duration)
}
