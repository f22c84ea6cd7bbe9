package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/starbridge/pkg/cache"
	"github.com/matzehuels/starbridge/pkg/consistency"
	"github.com/matzehuels/starbridge/pkg/errors"
	"github.com/matzehuels/starbridge/pkg/interactive"
	"github.com/matzehuels/starbridge/pkg/ir"
)

// Runner executes the pipeline with caching. It holds no per-run state, so
// one Runner may serve concurrent runs with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  cache.Instrumented(c),
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute builds the figure for rec and exports it in every requested format.
func (r *Runner) Execute(ctx context.Context, rec *ir.Recording, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid options")
	}
	r.applyLogger(&opts)

	hash, err := r.StoreRecording(ctx, rec)
	if err != nil {
		return nil, err
	}
	result := &Result{RecordingHash: hash}

	// Stage 1: Figure
	figStart := time.Now()
	fig, figHit, err := r.figure(ctx, rec, hash, opts)
	if err != nil {
		return nil, fmt.Errorf("figure: %w", err)
	}
	result.Figure = fig
	result.Stats.FigureTime = time.Since(figStart)
	result.Stats.Commands = rec.Len()
	result.Stats.Traces = len(fig.Traces)
	result.Stats.Mode = fig.Mode
	for _, t := range fig.Traces {
		result.Stats.Elements += t.Elements
	}
	result.CacheInfo.FigureHit = figHit

	r.Logger.Info("built figure",
		"commands", result.Stats.Commands,
		"traces", result.Stats.Traces,
		"mode", fig.Mode,
		"duration", result.Stats.FigureTime)

	// Stage 2: Export
	exportStart := time.Now()
	artifacts, exportHit, err := r.export(ctx, fig, hash, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.ExportTime = time.Since(exportStart)
	result.CacheInfo.ExportHit = exportHit

	r.Logger.Info("exported artifacts",
		"formats", opts.Formats,
		"cached", exportHit,
		"duration", result.Stats.ExportTime)

	return result, nil
}

// Figure builds the figure for rec, using the cache when possible.
func (r *Runner) Figure(ctx context.Context, rec *ir.Recording, opts Options) (*interactive.Figure, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid options")
	}
	r.applyLogger(&opts)
	hash, err := RecordingHash(rec)
	if err != nil {
		return nil, err
	}
	fig, _, err := r.figure(ctx, rec, hash, opts)
	return fig, err
}

func (r *Runner) figure(ctx context.Context, rec *ir.Recording, hash string, opts Options) (*interactive.Figure, bool, error) {
	key := r.Keyer.FigureKey(hash, opts.FigureKeyOpts())
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if fig, err := interactive.FigureFromJSON(data); err == nil {
				fig.RecordingID = rec.ID.String()
				return fig, true, nil
			}
		}
	}

	fig, err := opts.Renderer().Render(ctx, rec)
	if err != nil {
		return nil, false, err
	}
	if data, err := fig.JSON(); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLFigure); err != nil {
			r.Logger.Warn("cache figure", "error", err)
		}
	}
	return fig, false, nil
}

func (r *Runner) export(ctx context.Context, fig *interactive.Figure, hash string, opts Options) (map[string][]byte, bool, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	if !opts.Refresh {
		for _, format := range opts.Formats {
			data, hit, err := r.Cache.Get(ctx, r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format)))
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	rendered, err := Export(ctx, fig, opts)
	if err != nil {
		return nil, false, err
	}
	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			r.Logger.Warn("cache artifact", "format", format, "error", err)
		}
	}
	return rendered, false, nil
}

// =============================================================================
// Recordings
// =============================================================================

// recordingContent is what RecordingHash covers: everything but the ID.
type recordingContent struct {
	Projection ir.ProjectionDescriptor `json:"projection"`
	Canvas     ir.CanvasDescriptor     `json:"canvas"`
	Commands   []ir.Command            `json:"commands"`
}

// RecordingHash returns the content hash of rec. Recordings that differ only
// in their ID hash the same, so they share cached figures and artifacts.
func RecordingHash(rec *ir.Recording) (string, error) {
	data, err := json.Marshal(recordingContent{
		Projection: rec.Projection,
		Canvas:     rec.Canvas,
		Commands:   rec.Commands(),
	})
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "encode recording")
	}
	return cache.Hash(data), nil
}

// StoreRecording caches rec under its content hash and returns the hash.
func (r *Runner) StoreRecording(ctx context.Context, rec *ir.Recording) (string, error) {
	hash, err := RecordingHash(rec)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "encode recording")
	}
	if err := r.Cache.Set(ctx, r.Keyer.RecordingKey(hash), data, cache.TTLRecording); err != nil {
		r.Logger.Warn("cache recording", "error", err)
	}
	return hash, nil
}

// LoadRecording returns the cached recording with the given hash, finalized.
func (r *Runner) LoadRecording(ctx context.Context, hash string) (*ir.Recording, error) {
	data, hit, err := r.Cache.Get(ctx, r.Keyer.RecordingKey(hash))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read cache")
	}
	if !hit {
		return nil, errors.New(errors.ErrCodeNotFound, "recording %s not cached", hash)
	}
	var rec ir.Recording
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode recording %s", hash)
	}
	return rec.Finalize(), nil
}

// =============================================================================
// Verification
// =============================================================================

// Verification is the outcome of Verify.
type Verification struct {
	Figure  *interactive.Figure
	Compare consistency.Result

	// Replay lists per-group differences between the recording and the figure.
	Replay []consistency.Mismatch

	// Expected lists differences between the recording and opts.Expected.
	Expected []consistency.Mismatch
}

// Passed reports whether every check passed.
func (v *Verification) Passed() bool {
	return v.Compare.Passed && len(v.Replay) == 0 && len(v.Expected) == 0
}

// Err returns the first failed check as an error.
func (v *Verification) Err() error {
	if err := v.Compare.Err(); err != nil {
		return err
	}
	if len(v.Replay) > 0 {
		return errors.New(errors.ErrCodeStructureMismatch, "replay differs from recording: %v", v.Replay)
	}
	if len(v.Expected) > 0 {
		return errors.New(errors.ErrCodeStructureMismatch, "recording differs from expected counts: %v", v.Expected)
	}
	return nil
}

// Verify rasterizes the figure of rec and compares it with the primary
// raster. It also checks that the figure carries every recorded element and,
// when opts.Expected is set, that the recording matches the domain counts.
// A failed check is reported in the result, not as an error.
func (r *Runner) Verify(ctx context.Context, rec *ir.Recording, primaryImg image.Image, opts Options) (*Verification, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid options")
	}
	r.applyLogger(&opts)

	fig, err := r.Figure(ctx, rec, opts)
	if err != nil {
		return nil, err
	}
	img, err := Rasterize(ctx, fig, opts)
	if err != nil {
		return nil, fmt.Errorf("rasterize: %w", err)
	}

	v := &Verification{
		Figure:  fig,
		Compare: opts.Checker().Compare(ctx, primaryImg, img),
	}
	v.Replay = consistency.ReplayMismatches(rec, fig)
	if opts.Expected != nil {
		v.Expected = consistency.CompareCounts(rec.ElementCounts(), opts.Expected)
	}

	r.Logger.Info("verified figure",
		"distance", fmt.Sprintf("%.4f", v.Compare.Distance),
		"tolerance", v.Compare.Tolerance,
		"passed", v.Passed())
	return v, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
