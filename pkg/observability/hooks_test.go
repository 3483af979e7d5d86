package observability

import (
	"context"
	"testing"
	"time"
)

type countingPipelineHooks struct {
	NoopPipelineHooks
	resolves int
	renders  int
}

func (h *countingPipelineHooks) OnResolveComplete(_ context.Context, _ string, _ time.Duration, _ error) {
	h.resolves++
}

func (h *countingPipelineHooks) OnRenderComplete(_ context.Context, _, _ string, _ int, _ time.Duration, _ error) {
	h.renders++
}

func TestSetAndGetPipelineHooks(t *testing.T) {
	defer Reset()

	h := &countingPipelineHooks{}
	SetPipelineHooks(h)

	ctx := context.Background()
	Pipeline().OnResolveComplete(ctx, "local", time.Millisecond, nil)
	Pipeline().OnRenderComplete(ctx, "local", "png", 42, time.Millisecond, nil)

	if h.resolves != 1 || h.renders != 1 {
		t.Errorf("resolves=%d renders=%d, want 1 and 1", h.resolves, h.renders)
	}
}

func TestSetNilKeepsCurrent(t *testing.T) {
	defer Reset()

	h := &countingPipelineHooks{}
	SetPipelineHooks(h)
	SetPipelineHooks(nil)

	if Pipeline() != PipelineHooks(h) {
		t.Error("nil registration must not replace existing hooks")
	}
}

func TestReset(t *testing.T) {
	SetPipelineHooks(&countingPipelineHooks{})
	Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset must restore no-op hooks")
	}
}

func TestDefaultsAreNoop(t *testing.T) {
	defer Reset()
	ctx := context.Background()

	// Must not panic.
	Pipeline().OnResolveStart(ctx)
	Cache().OnCacheHit(ctx, "render")
	Cache().OnCacheMiss(ctx, "render")
	Cache().OnCacheSet(ctx, "render", 10)
	HTTP().OnRequest(ctx, "GET", "kroki.io", "/plantuml/png/x")
	HTTP().OnError(ctx, "GET", "kroki.io", "/plantuml/png/x", context.DeadlineExceeded)
}
