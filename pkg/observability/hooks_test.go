package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Generate hooks
	g := NoopGenerateHooks{}
	g.OnGenerateStart(ctx, 12345, 8)
	g.OnGenerateComplete(ctx, 12345, 14, time.Millisecond, nil)
	g.OnShortfall(ctx, "NO_CANDIDATE", "Elite", -1)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "map")
	c.OnCacheMiss(ctx, "artifact")
	c.OnCacheSet(ctx, "artifact", 1024)

	// Render hooks
	r := NoopRenderHooks{}
	r.OnRenderStart(ctx, []string{"svg"})
	r.OnRenderComplete(ctx, []string{"svg"}, time.Second, nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Generate().(NoopGenerateHooks); !ok {
		t.Error("Generate() should return NoopGenerateHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := Render().(NoopRenderHooks); !ok {
		t.Error("Render() should return NoopRenderHooks by default")
	}

	// Set custom hooks
	customGenerate := &testGenerateHooks{}
	SetGenerateHooks(customGenerate)
	if Generate() != customGenerate {
		t.Error("SetGenerateHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customRender := &testRenderHooks{}
	SetRenderHooks(customRender)
	if Render() != customRender {
		t.Error("SetRenderHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Generate().(NoopGenerateHooks); !ok {
		t.Error("Reset() should restore NoopGenerateHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testGenerateHooks{}
	SetGenerateHooks(custom)

	// Setting nil should be ignored
	SetGenerateHooks(nil)

	if Generate() != custom {
		t.Error("SetGenerateHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testGenerateHooks struct{ NoopGenerateHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testRenderHooks struct{ NoopRenderHooks }
