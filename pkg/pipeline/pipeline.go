// Package pipeline turns recordings into artifacts.
//
// The same Runner serves the CLI and the preview server, so both derive the
// same cache keys and defaults. A run has two stages:
//
//  1. Figure: replay the recording through the interactive renderer
//  2. Export: write the figure as HTML, SVG, PNG or JSON
//
// A third operation, [Runner.Verify], compares a primary-renderer raster
// with a raster of the figure and checks per-group element counts.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, rec, pipeline.Options{
//	    Formats: []string{pipeline.FormatHTML, pipeline.FormatPNG},
//	    MirrorX: true,
//	})
//	if err != nil {
//	    return err
//	}
//	html := result.Artifacts[pipeline.FormatHTML]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/starbridge/pkg/cache"
	"github.com/matzehuels/starbridge/pkg/consistency"
	"github.com/matzehuels/starbridge/pkg/interactive"
	"github.com/matzehuels/starbridge/pkg/rasterize"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultTolerance is the accepted fingerprint distance in Verify.
	DefaultTolerance = consistency.DefaultTolerance

	// DefaultBackend rasterizes figures in-process.
	DefaultBackend = rasterize.BackendVector
)

// Format constants for output formats.
const (
	FormatHTML = "html"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatHTML: true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatJSON: true,
}

// ValidBackends is the set of rasterizer backends.
var ValidBackends = map[string]bool{
	rasterize.BackendVector:  true,
	rasterize.BackendRSVG:    true,
	rasterize.BackendBrowser: true,
}

// ContentTypes maps formats to HTTP content types.
var ContentTypes = map[string]string{
	FormatHTML: "text/html; charset=utf-8",
	FormatSVG:  "image/svg+xml",
	FormatPNG:  "image/png",
	FormatJSON: "application/json",
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures a run. It supports JSON for server requests.
type Options struct {
	// Figure options
	MirrorX     bool          `json:"mirror_x,omitempty"`
	MaxElements int           `json:"max_elements,omitempty"`
	TimeBudget  time.Duration `json:"time_budget,omitempty"`
	Workers     int           `json:"workers,omitempty"`
	Title       string        `json:"title,omitempty"`

	// Export options
	Formats []string `json:"formats,omitempty"`
	Width   int      `json:"width,omitempty"`
	Height  int      `json:"height,omitempty"`
	Backend string   `json:"backend,omitempty"`
	Refresh bool     `json:"refresh,omitempty"`

	// Verify options
	Tolerance float64        `json:"tolerance,omitempty"`
	Exact     bool           `json:"exact,omitempty"`
	Expected  map[string]int `json:"expected,omitempty"`

	// Runtime options (not serialized)
	Logger     *log.Logger          `json:"-"`
	Rasterizer rasterize.Rasterizer `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a run.
type Result struct {
	// RecordingHash is the content hash of the recording.
	RecordingHash string

	// Figure is the interactive handle.
	Figure *interactive.Figure

	// Artifacts holds exported outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains run statistics.
type Stats struct {
	Commands   int
	Traces     int
	Elements   int
	Mode       interactive.Mode
	FigureTime time.Duration
	ExportTime time.Duration
}

// CacheInfo tracks cache hits for each stage.
type CacheInfo struct {
	FigureHit bool // Whether the figure came from cache
	ExportHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: html, svg, png, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateBackend checks that a rasterizer backend is valid.
func ValidateBackend(backend string) error {
	if !ValidBackends[backend] {
		return fmt.Errorf("invalid backend: %q (must be one of: vector, rsvg, browser)", backend)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := ValidateBackend(o.Backend); err != nil {
		return err
	}
	if o.Width < 0 || o.Height < 0 {
		return fmt.Errorf("size must not be negative: %dx%d", o.Width, o.Height)
	}
	if o.MaxElements < 0 {
		return fmt.Errorf("max_elements must not be negative: %d", o.MaxElements)
	}
	if o.Tolerance < 0 || o.Tolerance > 1 {
		return fmt.Errorf("tolerance %v outside [0, 1]", o.Tolerance)
	}
	o.validated = true
	return nil
}

// SetDefaults fills zero fields.
func (o *Options) SetDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatHTML}
	}
	if o.Backend == "" {
		o.Backend = DefaultBackend
	}
	if o.Tolerance == 0 {
		o.Tolerance = DefaultTolerance
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// FigureKeyOpts returns cache key options for the figure stage.
func (o *Options) FigureKeyOpts() cache.FigureKeyOpts {
	return cache.FigureKeyOpts{
		MirrorX:     o.MirrorX,
		MaxElements: o.MaxElements,
		TimeBudget:  o.TimeBudget,
		Title:       o.Title,
	}
}

// ArtifactKeyOpts returns cache key options for one exported format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{
		Format: format,
		Width:  o.Width,
		Height: o.Height,
		Figure: o.FigureKeyOpts(),
	}
	if format == FormatPNG {
		opts.Backend = o.Backend
	}
	return opts
}

// RendererOptions returns the interactive renderer options these options
// describe.
func (o *Options) RendererOptions() []interactive.Option {
	return []interactive.Option{
		interactive.WithMirrorX(o.MirrorX),
		interactive.WithBudget(interactive.Budget{MaxElements: o.MaxElements, TimeBudget: o.TimeBudget}),
		interactive.WithWorkers(o.Workers),
		interactive.WithTitle(o.Title),
		interactive.WithLogger(o.Logger),
	}
}

// Renderer builds the interactive renderer these options describe.
func (o *Options) Renderer() *interactive.Renderer {
	return interactive.New(o.RendererOptions()...)
}

// Checker builds the consistency checker these options describe.
func (o *Options) Checker() *consistency.Checker {
	c := consistency.NewChecker(o.Tolerance)
	if o.Exact {
		c.Mode = consistency.ModeExact
	}
	return c
}
