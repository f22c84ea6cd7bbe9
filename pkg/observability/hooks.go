// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about capture, rendering, verification, cache operations
// and the preview server.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetRenderHooks(&myRenderHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Render().OnRenderStart(ctx, rec.ID.String(), rec.Len())
//	// ... build the figure ...
//	observability.Render().OnRenderComplete(ctx, rec.ID.String(), elements, mode, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Record Hooks
// =============================================================================

// RecordHooks receives capture events. Capture runs inline with drawing and
// carries no context, so these hooks take none.
type RecordHooks interface {
	// OnRecord is called after a command was appended.
	OnRecord(kind, group string, elements int)

	// OnLabelDropped is called when the primary renderer discarded a label.
	OnLabelDropped(group string)

	// OnStyleFallback is called when a style value was substituted.
	OnStyleFallback(field, value string)
}

// =============================================================================
// Render Hooks
// =============================================================================

// RenderHooks receives events from the interactive renderer and the
// verification pipeline.
type RenderHooks interface {
	// Render events
	OnRenderStart(ctx context.Context, recordingID string, commands int)
	OnRenderComplete(ctx context.Context, recordingID string, elements int, mode string, duration time.Duration, err error)

	// Export events
	OnExport(ctx context.Context, format string, size int, duration time.Duration, err error)

	// Verification events
	OnCompare(ctx context.Context, distance, tolerance float64, passed bool)
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
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the preview server.
type HTTPHooks interface {
	// OnRequest records an incoming HTTP request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records a completed HTTP response.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopRecordHooks is a no-op implementation of RecordHooks.
type NoopRecordHooks struct{}

func (NoopRecordHooks) OnRecord(string, string, int)   {}
func (NoopRecordHooks) OnLabelDropped(string)          {}
func (NoopRecordHooks) OnStyleFallback(string, string) {}

// NoopRenderHooks is a no-op implementation of RenderHooks.
type NoopRenderHooks struct{}

func (NoopRenderHooks) OnRenderStart(context.Context, string, int) {}
func (NoopRenderHooks) OnRenderComplete(context.Context, string, int, string, time.Duration, error) {
}
func (NoopRenderHooks) OnExport(context.Context, string, int, time.Duration, error) {}
func (NoopRenderHooks) OnCompare(context.Context, float64, float64, bool)           {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	recordHooks RecordHooks = NoopRecordHooks{}
	renderHooks RenderHooks = NoopRenderHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	httpHooks   HTTPHooks   = NoopHTTPHooks{}
	hooksMu     sync.RWMutex
)

// SetRecordHooks registers custom record hooks.
// This should be called once at application startup before any capture.
func SetRecordHooks(h RecordHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		recordHooks = h
	}
}

// SetRenderHooks registers custom render hooks.
// This should be called once at application startup before any rendering.
func SetRenderHooks(h RenderHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		renderHooks = h
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

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before the server starts.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Record returns the registered record hooks.
func Record() RecordHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return recordHooks
}

// Render returns the registered render hooks.
func Render() RenderHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return renderHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	recordHooks = NoopRecordHooks{}
	renderHooks = NoopRenderHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
