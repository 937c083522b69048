package sim

import (
	"errors"
	"testing"
)

func expectProgrammerError(t *testing.T, kind ErrorKind, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected a panic for %s, got none", kind)
		}
		var pe *ProgrammerError
		if !errors.As(asError(r), &pe) {
			t.Fatalf("expected *ProgrammerError, got %v (%T)", r, r)
		}
		if pe.Kind != kind {
			t.Fatalf("expected kind %s, got %s", kind, pe.Kind)
		}
	}()
	fn()
}

// asError adapts a recovered panic value, which may or may not already be
// an error, into something errors.As can walk.
func asError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return nil
}

func TestDuplicateComponentNamePanics(t *testing.T) {
	e := New(1)
	e.Register("a", recordingComponentHandler{})
	expectProgrammerError(t, ErrDuplicateComponent, func() {
		e.Register("a", recordingComponentHandler{})
	})
}

func TestNegativeDelayEmitPanics(t *testing.T) {
	e := New(1)
	id := e.Register("a", recordingComponentHandler{})
	ctx := newContext(e, id, false, nil)
	expectProgrammerError(t, ErrNegativeDelay, func() {
		ctx.Emit(probePayload{}, id, -1)
	})
}

func TestPollCompletedTaskPanics(t *testing.T) {
	e := New(1)
	shared := e.RegisterShared("a", sharedHandlerFunc(func(ctx *Context, ev Event) {}))
	ctx := newContext(e, shared, true, nil)
	ctx.Spawn(func(taskCtx *Context) {})

	task := e.ready[0]
	e.Step() // run the task to completion

	expectProgrammerError(t, ErrPollCompletedTask, func() {
		e.resumeTask(task, nil)
	})
}

func TestSpawnFromMutableHandlerPanics(t *testing.T) {
	e := New(1)
	id := e.Register("a", recordingComponentHandler{})
	ctx := newContext(e, id, false, nil)
	expectProgrammerError(t, ErrUnsharedSpawn, func() {
		ctx.Spawn(func(*Context) {})
	})
}

type recordingComponentHandler struct{}

func (recordingComponentHandler) OnEvent(*Context, Event) {}
