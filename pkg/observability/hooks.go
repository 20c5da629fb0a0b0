// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers register hooks
// at startup to receive events about map generation, cache operations, and
// rendering.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hook arguments are plain values, so this package imports nothing from the
// rest of the module and any package may emit events.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetGenerateHooks(&myGenerateHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Generate().OnGenerateStart(ctx, seed, layers)
//	// ... build the map ...
//	observability.Generate().OnGenerateComplete(ctx, seed, nodeCount, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Generate Hooks
// =============================================================================

// GenerateHooks receives events from map generation.
type GenerateHooks interface {
	OnGenerateStart(ctx context.Context, seed int64, layers int)
	OnGenerateComplete(ctx context.Context, seed int64, nodeCount int, duration time.Duration, err error)

	// OnShortfall records a placement that was skipped. code is the warning
	// code, nodeType the type that could not be placed.
	OnShortfall(ctx context.Context, code, nodeType string, layer int)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Render Hooks
// =============================================================================

// RenderHooks receives events from artifact rendering.
type RenderHooks interface {
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopGenerateHooks is a no-op implementation of GenerateHooks.
type NoopGenerateHooks struct{}

func (NoopGenerateHooks) OnGenerateStart(context.Context, int64, int) {}
func (NoopGenerateHooks) OnGenerateComplete(context.Context, int64, int, time.Duration, error) {
}
func (NoopGenerateHooks) OnShortfall(context.Context, string, string, int) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopRenderHooks is a no-op implementation of RenderHooks.
type NoopRenderHooks struct{}

func (NoopRenderHooks) OnRenderStart(context.Context, []string)                          {}
func (NoopRenderHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	generateHooks GenerateHooks = NoopGenerateHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	renderHooks   RenderHooks   = NoopRenderHooks{}
	hooksMu       sync.RWMutex
)

// SetGenerateHooks registers custom generation hooks.
// This should be called once at application startup before any generation.
func SetGenerateHooks(h GenerateHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		generateHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetRenderHooks registers custom render hooks.
func SetRenderHooks(h RenderHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		renderHooks = h
	}
}

// Generate returns the registered generation hooks.
func Generate() GenerateHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return generateHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Render returns the registered render hooks.
func Render() RenderHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return renderHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	generateHooks = NoopGenerateHooks{}
	cacheHooks = NoopCacheHooks{}
	renderHooks = NoopRenderHooks{}
}
