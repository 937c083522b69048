package sim

import "time"

// Task is a cooperative computation running on its own goroutine but
// executing only while it holds the "baton": two unbuffered channels used
// as a strict hand-off so exactly one of (the dispatcher, a synchronous
// handler, a task) is ever doing simulation work at a time.
//
// This stands in for a raw-waker/Future::poll style coroutine machinery:
// rather than hand-rolling a Poll state machine and a manual-refcount
// waker vtable, a suspension point is an ordinary blocking Go call that
// parks the task's goroutine on resumeCh until the executor schedules it
// again.
type Task struct {
	id       TaskID
	owner    ComponentID
	resumeCh chan any
	suckCh   chan suspendMsg
	finished bool
}

// suspendMsg is what a task goroutine reports back to the executor each
// time it yields the baton: either "I suspended, come back later" or "I'm
// done", optionally carrying a recovered panic so the executor's
// controlling goroutine can re-panic synchronously instead of letting the
// task's goroutine crash the whole process asynchronously.
type suspendMsg struct {
	done     bool
	panicVal any
}

func newTask(id TaskID, owner ComponentID, fn func(ctx *Context), ctx *Context) *Task {
	t := &Task{
		id:       id,
		owner:    owner,
		resumeCh: make(chan any),
		suckCh:   make(chan suspendMsg),
	}
	go t.run(fn, ctx)
	return t
}

// run is the task's goroutine body. It blocks for the first baton
// handoff before doing anything, so spawning a task never runs it inline;
// the task only starts once the executor's ready queue reaches it.
func (t *Task) run(fn func(ctx *Context), ctx *Context) {
	<-t.resumeCh

	var panicVal any
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicVal = r
			}
		}()
		fn(ctx)
	}()

	t.suckCh <- suspendMsg{done: true, panicVal: panicVal}
}

// resume hands the baton to the task with val as the result of whatever
// it was suspended on, and blocks until the task either suspends again or
// finishes. Resuming a finished task is a programmer error.
func (t *Task) resume(val any) suspendMsg {
	msg, _ := t.resumeWithTimeout(val, 0)
	return msg
}

// resumeWithTimeout is resume with a watchdog: if timeout is positive and
// the task does not hand the baton back within it, resumeWithTimeout
// returns with timedOut set instead of blocking forever. The task's
// goroutine is left running; a stuck task's goroutine is never reclaimed,
// since nothing else can safely un-stick it. timeout <= 0 disables the
// watchdog and blocks indefinitely, as resume always did.
func (t *Task) resumeWithTimeout(val any, timeout time.Duration) (msg suspendMsg, timedOut bool) {
	if t.finished {
		panicKind(ErrPollCompletedTask, "task %d already completed", t.id)
	}
	t.resumeCh <- val
	if timeout <= 0 {
		msg = <-t.suckCh
		if msg.done {
			t.finished = true
		}
		return msg, false
	}
	select {
	case msg = <-t.suckCh:
		if msg.done {
			t.finished = true
		}
		return msg, false
	case <-time.After(timeout):
		return suspendMsg{}, true
	}
}

// suspend yields the baton back to the executor and blocks until the next
// resume. Called only from the task's own goroutine, while it holds the
// baton, immediately after registering whatever awaiter it is suspending
// on — the registration must complete before the baton is yielded so the
// executor cannot observe a task "suspended" with nothing registered to
// wake it.
func (t *Task) suspend() any {
	t.suckCh <- suspendMsg{done: false}
	return <-t.resumeCh
}
