package telemetry

import (
	"context"
	"testing"
)

func TestNoopDoesNotPanic(t *testing.T) {
	logger, metrics, tracer := Noop()
	ctx := context.Background()

	logger.Debug(ctx, "msg", "k", "v")
	logger.Info(ctx, "msg")
	logger.Warn(ctx, "msg")
	logger.Error(ctx, "msg")

	metrics.IncCounter("c", 1, "tag", "v")
	metrics.RecordGauge("g", 1.5)

	spanCtx, span := tracer.Start(ctx, "op")
	if spanCtx == nil {
		t.Fatal("expected non-nil context from Start")
	}
	span.SetAttribute("k", "v")
	span.RecordError(nil)
	span.End()
}

func TestFieldersPairsUpKeyvals(t *testing.T) {
	fs := fielders("hello", []any{"a", 1, "b", 2, "dangling"})
	// msg + 2 well-formed pairs; the trailing unpaired key is dropped.
	if len(fs) != 3 {
		t.Fatalf("expected 3 fielders, got %d", len(fs))
	}
}
