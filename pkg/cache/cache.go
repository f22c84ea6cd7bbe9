// Package cache stores recordings, figures and rendered artifacts keyed by
// content hash.
//
// Three backends implement [Cache]: [FileCache] for the CLI, [RedisCache]
// for the preview server and shared deployments, and [NullCache] when
// caching is disabled. Keys come from a [Keyer] so that every entry point
// derives the same key for the same recording and options.
package cache

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/starbridge/pkg/observability"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the stored value and whether it was found. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl keeps the entry until it is deleted.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}

// Default lifetimes per entry type.
const (
	TTLRecording = 24 * time.Hour
	TTLFigure    = 24 * time.Hour
	TTLArtifact  = 7 * 24 * time.Hour
)

// =============================================================================
// Keys
// =============================================================================

// Keyer derives cache keys.
type Keyer interface {
	RecordingKey(recordingHash string) string
	FigureKey(recordingHash string, opts FigureKeyOpts) string
	ArtifactKey(recordingHash string, opts ArtifactKeyOpts) string
}

// FigureKeyOpts are the renderer settings that change a figure.
type FigureKeyOpts struct {
	MirrorX     bool          `json:"mirror_x"`
	MaxElements int           `json:"max_elements"`
	TimeBudget  time.Duration `json:"time_budget"`
	Title       string        `json:"title"`
}

// ArtifactKeyOpts are the settings that change an exported artifact.
type ArtifactKeyOpts struct {
	Format  string        `json:"format"`
	Width   int           `json:"width"`
	Height  int           `json:"height"`
	Backend string        `json:"backend,omitempty"`
	Figure  FigureKeyOpts `json:"figure"`
}

// DefaultKeyer produces keys of the form "type:sha256".
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// RecordingKey keys a stored recording.
func (DefaultKeyer) RecordingKey(recordingHash string) string {
	return "recording:" + recordingHash
}

// FigureKey keys a figure built from a recording.
func (DefaultKeyer) FigureKey(recordingHash string, opts FigureKeyOpts) string {
	return hashKey("figure", recordingHash, opts)
}

// ArtifactKey keys an exported artifact.
func (DefaultKeyer) ArtifactKey(recordingHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", recordingHash, opts)
}

// keyType returns the part of key before its first colon, skipping any
// scope prefix ending in ':'.
func keyType(key string) string {
	for _, t := range []string{"recording", "figure", "artifact"} {
		if strings.Contains(key, t+":") {
			return t
		}
	}
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return "unknown"
}

// =============================================================================
// Instrumentation
// =============================================================================

type instrumented struct {
	Cache
}

// Instrumented reports hits, misses and writes of c to the registered
// observability cache hooks.
func Instrumented(c Cache) Cache {
	if c == nil {
		c = NewNullCache()
	}
	return instrumented{c}
}

func (c instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := c.Cache.Get(ctx, key)
	if err == nil {
		if hit {
			observability.Cache().OnCacheHit(ctx, keyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, keyType(key))
		}
	}
	return data, hit, err
}

func (c instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := c.Cache.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
	}
	return err
}

type fixedTTL struct {
	Cache
	ttl time.Duration
}

// WithTTL overrides the lifetime of every entry written through c.
func WithTTL(c Cache, ttl time.Duration) Cache {
	return fixedTTL{c, ttl}
}

func (c fixedTTL) Set(ctx context.Context, key string, data []byte, _ time.Duration) error {
	return c.Cache.Set(ctx, key, data, c.ttl)
}
