// Package session ties one primary canvas, its recorder and the interactive
// renderer into a plot session.
//
// Domain code draws through [Session.Renderer]. Every call lands on the
// primary canvas and, when the canvas accepted it, in the session's
// recording. The session then exports either artifact:
//
//	sess, err := session.New(session.KindMap, proj)
//	if err != nil {
//	    return err
//	}
//	r := sess.Renderer()
//	r.Scatter(primary.ScatterCall{...})
//	r.Text(primary.TextCall{...})
//
//	sess.ExportStatic("chart.png")                         // primary raster
//	sess.ExportInteractive(ctx, "chart.html", 0, 0)        // viewer page
//	fig, err := sess.ToInteractiveHandle(ctx)              // in-memory figure
//
// A session has one writer. Recordings are never shared between sessions.
package session

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/starbridge/pkg/errors"
	"github.com/matzehuels/starbridge/pkg/interactive"
	"github.com/matzehuels/starbridge/pkg/ir"
	"github.com/matzehuels/starbridge/pkg/primary"
	"github.com/matzehuels/starbridge/pkg/recorder"
)

// Kind is the plot type of a session.
type Kind string

const (
	KindMap     Kind = "map"
	KindZenith  Kind = "zenith"
	KindHorizon Kind = "horizon"
	KindOptic   Kind = "optic"
)

// Preset holds the defaults of a plot kind.
type Preset struct {
	Width, Height int
	Projection    string
}

var presets = map[Kind]Preset{
	KindMap:     {Width: 1200, Height: 900, Projection: "mercator"},
	KindZenith:  {Width: 1000, Height: 1000, Projection: "zenith"},
	KindHorizon: {Width: 1200, Height: 600, Projection: "horizon"},
	KindOptic:   {Width: 1000, Height: 1000, Projection: "optic"},
}

// PresetFor returns the preset of k.
func PresetFor(k Kind) (Preset, bool) {
	p, ok := presets[k]
	return p, ok
}

// Default colours of a new session.
const (
	DefaultBackground       = "#0b1026"
	DefaultFigureBackground = "#0b1026"
)

// Option configures a Session.
type Option func(*config)

type config struct {
	width, height int
	scale         float64
	background    string
	figureBg      string
	logger        *log.Logger
	canvasOpts    []primary.CanvasOption
	renderOpts    []interactive.Option
}

// WithSize overrides the preset size in logical pixels.
func WithSize(width, height int) Option {
	return func(c *config) { c.width, c.height = width, height }
}

// WithScale sets the raster scale of the primary canvas.
func WithScale(scale float64) Option {
	return func(c *config) { c.scale = scale }
}

// WithBackground sets the plot and figure background colours.
func WithBackground(plot, figure string) Option {
	return func(c *config) { c.background, c.figureBg = plot, figure }
}

// WithLogger sets the logger for the recorder and the interactive renderer.
func WithLogger(l *log.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithCanvasOptions passes options to the primary canvas.
func WithCanvasOptions(opts ...primary.CanvasOption) Option {
	return func(c *config) { c.canvasOpts = append(c.canvasOpts, opts...) }
}

// WithRenderOptions passes options to the interactive renderer.
func WithRenderOptions(opts ...interactive.Option) Option {
	return func(c *config) { c.renderOpts = append(c.renderOpts, opts...) }
}

// Session is one plot being drawn.
type Session struct {
	ID        string
	Kind      Kind
	CreatedAt time.Time

	canvas   *primary.Canvas
	rec      *recorder.Recorder
	renderer *interactive.Renderer
	logger   *log.Logger
}

// New starts a session of kind k. An empty projection id selects the
// preset's projection.
func New(k Kind, proj ir.ProjectionDescriptor, opts ...Option) (*Session, error) {
	preset, ok := presets[k]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown plot kind %q", k)
	}
	cfg := config{
		width:      preset.Width,
		height:     preset.Height,
		scale:      1,
		background: DefaultBackground,
		figureBg:   DefaultFigureBackground,
		logger:     log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.width <= 0 || cfg.height <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid size %dx%d", cfg.width, cfg.height)
	}
	if proj.ID == "" {
		proj.ID = preset.Projection
	}

	desc := ir.CanvasDescriptor{
		Background:       cfg.background,
		FigureBackground: cfg.figureBg,
		Width:            cfg.width,
		Height:           cfg.height,
		Scale:            cfg.scale,
	}
	canvas := primary.NewCanvas(proj, desc, cfg.canvasOpts...)
	s := &Session{
		ID:        uuid.NewString(),
		Kind:      k,
		CreatedAt: time.Now(),
		canvas:    canvas,
		rec:       recorder.New(canvas, ir.New(proj, desc), recorder.WithLogger(cfg.logger)),
		renderer:  interactive.New(append([]interactive.Option{interactive.WithLogger(cfg.logger)}, cfg.renderOpts...)...),
		logger:    cfg.logger,
	}
	s.logger.Debug("session started", "id", s.ID, "kind", k, "projection", proj.ID, "width", cfg.width, "height", cfg.height)
	return s, nil
}

// Renderer returns the renderer domain code draws through.
func (s *Session) Renderer() primary.Renderer { return s.rec }

// Canvas returns the primary canvas.
func (s *Session) Canvas() *primary.Canvas { return s.canvas }

// Recording returns the active recording.
func (s *Session) Recording() *ir.Recording { return s.rec.Recording() }

// Drawn returns the per-group counts the primary canvas drew.
func (s *Session) Drawn() map[string]int { return s.canvas.Drawn() }

// ExportStatic writes the primary raster. The call goes to the primary
// renderer unchanged.
func (s *Session) ExportStatic(path string) error {
	return s.rec.Export(path)
}

// ToInteractiveHandle renders a frozen snapshot of the recording. Drawing
// may continue afterwards without affecting the returned figure.
func (s *Session) ToInteractiveHandle(ctx context.Context) (*interactive.Figure, error) {
	return s.renderer.Render(ctx, s.rec.Finalize())
}

// ExportInteractive writes the self-contained viewer page to path. Zero
// width or height keeps the canvas size.
func (s *Session) ExportInteractive(ctx context.Context, path string, width, height int, opts ...interactive.HTMLOption) error {
	fig, err := s.ToInteractiveHandle(ctx)
	if err != nil {
		return err
	}
	return interactive.ExportHTML(fig, path, width, height, opts...)
}

// Clear empties the canvas and the recording so the session can draw a new
// scene.
func (s *Session) Clear() {
	s.canvas.Clear()
	s.rec.Clear()
}
