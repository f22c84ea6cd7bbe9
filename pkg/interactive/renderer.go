package interactive

import (
	"context"
	stderrors "errors"
	"io"
	"runtime"
	"slices"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/starbridge/pkg/errors"
	"github.com/matzehuels/starbridge/pkg/ir"
	"github.com/matzehuels/starbridge/pkg/observability"
	"github.com/matzehuels/starbridge/pkg/style"
)

// DefaultDecimatedElements caps point counts when only a time budget is set
// and it was exceeded.
const DefaultDecimatedElements = 50_000

// supportedProjections lists the projection ids the viewer can display.
// Coordinates arrive already projected, so the viewer only needs to know
// the projection is planar and axis-aligned.
var supportedProjections = map[string]bool{
	"cartesian":       true,
	"equirectangular": true,
	"miller":          true,
	"mercator":        true,
	"mollweide":       true,
	"stereographic":   true,
	"orthographic":    true,
	"zenith":          true,
	"horizon":         true,
	"optic":           true,
}

// SupportedProjections returns the supported projection ids, sorted.
func SupportedProjections() []string {
	out := make([]string, 0, len(supportedProjections))
	for p := range supportedProjections {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Budget bounds the cost of a render. Zero fields are unlimited.
type Budget struct {
	MaxElements int
	TimeBudget  time.Duration
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithMirrorX flips the horizontal axis relative to the primary renderer.
// Label anchors are mirrored to match.
func WithMirrorX(mirror bool) Option {
	return func(r *Renderer) { r.mirrorX = mirror }
}

// WithBudget sets the element and time budget.
func WithBudget(b Budget) Option {
	return func(r *Renderer) { r.budget = b }
}

// WithWorkers sets the number of goroutines building traces.
func WithWorkers(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithTitle sets the figure title.
func WithTitle(title string) Option {
	return func(r *Renderer) { r.title = title }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// Renderer builds figures from recordings. A Renderer holds only
// configuration and may be shared between goroutines.
type Renderer struct {
	mirrorX bool
	budget  Budget
	workers int
	title   string
	logger  *log.Logger
}

// New creates a Renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		workers: runtime.GOMAXPROCS(0),
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render replays rec. It reads a consistent copy of the commands, so the
// recording may keep being written by its owner.
func (r *Renderer) Render(ctx context.Context, rec *ir.Recording) (*Figure, error) {
	observability.Render().OnRenderStart(ctx, rec.ID.String(), rec.Len())
	start := time.Now()

	fig, err := r.RenderCommands(ctx, rec.Commands(), rec.Projection, rec.Canvas)
	elements, mode := 0, ""
	if fig != nil {
		fig.RecordingID = rec.ID.String()
		mode = string(fig.Mode)
		for _, t := range fig.Traces {
			elements += t.Elements
		}
	}
	observability.Render().OnRenderComplete(ctx, rec.ID.String(), elements, mode, time.Since(start), err)
	return fig, err
}

// RenderCommands builds a figure from commands and scene descriptors.
func (r *Renderer) RenderCommands(ctx context.Context, cmds []ir.Command, proj ir.ProjectionDescriptor, canvas ir.CanvasDescriptor) (*Figure, error) {
	if !supportedProjections[proj.ID] {
		return nil, errors.New(errors.ErrCodeUnsupportedProjection, "projection %q is not supported (supported: %v)", proj.ID, SupportedProjections())
	}
	for i, c := range cmds {
		if err := c.Validate(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidCommand, err, "command %d", i)
		}
	}

	layout := r.layout(proj, canvas)
	order := drawOrder(cmds)

	limit := r.budget.MaxElements
	mode := ModeFull
	if limit > 0 && pointCount(cmds) > limit {
		r.logger.Warn("element budget exceeded, decimating", "points", pointCount(cmds), "budget", limit)
		cmds, mode = decimate(cmds, limit), ModeDecimated
	}

	traces, err := r.build(ctx, cmds, order, layout, r.budget.TimeBudget)
	if timedOut(ctx, err) && mode == ModeFull {
		if limit <= 0 {
			limit = DefaultDecimatedElements
		}
		r.logger.Warn("time budget exceeded, decimating", "budget", r.budget.TimeBudget, "points", limit)
		cmds, mode = decimate(cmds, limit), ModeDecimated
		traces, err = r.build(ctx, cmds, order, layout, r.budget.TimeBudget)
	}
	if timedOut(ctx, err) {
		return nil, errors.Wrap(errors.ErrCodeBudgetExceeded, err, "render did not finish within %v", r.budget.TimeBudget)
	}
	if err != nil {
		return nil, err
	}

	fig := &Figure{
		Title:  r.title,
		Layout: layout,
		Traces: traces,
		Mode:   mode,
	}
	mergeLegend(fig)
	return fig, nil
}

// timedOut reports whether err comes from the render's own time budget
// rather than from the caller's context.
func timedOut(ctx context.Context, err error) bool {
	return stderrors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil
}

func (r *Renderer) layout(proj ir.ProjectionDescriptor, canvas ir.CanvasDescriptor) Layout {
	ext := proj.Rendered
	l := Layout{
		Projection: proj.ID,
		Width:      canvas.Width,
		Height:     canvas.Height,
		Scale:      canvas.Scale,
		XRange:     [2]float64{ext.XMin, ext.XMax},
		YRange:     [2]float64{ext.YMin, ext.YMax},
		MirrorX:    r.mirrorX,
		Background: colorOr(canvas.Background, "#ffffff"),
		Paper:      colorOr(canvas.FigureBackground, colorOr(canvas.Background, "#ffffff")),
	}
	if l.Scale <= 0 {
		l.Scale = 1
	}
	if r.mirrorX {
		l.XRange[0], l.XRange[1] = l.XRange[1], l.XRange[0]
	}
	return l
}

func colorOr(raw, def string) string {
	if hex, _, ok := style.Color(raw); ok && hex != "" {
		return hex
	}
	return def
}

// drawOrder returns command indices sorted by z with ties in recording order.
func drawOrder(cmds []ir.Command) []int {
	order := make([]int, len(cmds))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return cmds[order[a]].Z < cmds[order[b]].Z })
	return order
}

// build converts commands to traces in draw order. Work is spread across
// goroutines; each writes only its own slot.
func (r *Renderer) build(ctx context.Context, cmds []ir.Command, order []int, l Layout, budget time.Duration) ([]Trace, error) {
	if budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, budget)
		defer cancel()
	}

	traces := make([]Trace, len(order))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for slot, idx := range order {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			traces[slot] = r.trace(cmds[idx], idx, l)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return traces, nil
}

// mergeLegend assigns legend visibility: the first trace of each group in
// draw order owns the legend entry, later traces join it silently.
func mergeLegend(fig *Figure) {
	index := make(map[string]int)
	for i := range fig.Traces {
		t := &fig.Traces[i]
		t.Visible = true
		if at, ok := index[t.Group]; ok {
			t.ShowLegend = false
			fig.Legend[at].Traces = append(fig.Legend[at].Traces, i)
			continue
		}
		t.ShowLegend = true
		index[t.Group] = len(fig.Legend)
		symbol, color := legendGlyph(t)
		fig.Legend = append(fig.Legend, LegendEntry{
			Group:  t.Group,
			Name:   t.Name,
			Symbol: symbol,
			Color:  color,
			Traces: []int{i},
		})
	}
}

func legendGlyph(t *Trace) (string, string) {
	switch {
	case t.Marker != nil && len(t.Marker.Colors) > 0:
		return t.Marker.Symbol, t.Marker.Colors[0]
	case t.Fill != nil:
		return "square", t.Fill.Color
	case t.Line != nil:
		return "line", t.Line.Color
	case t.Text != nil:
		return "text", t.Text.Color
	case t.Gradient != nil && len(t.Gradient.Stops) > 0:
		return "square", t.Gradient.Stops[len(t.Gradient.Stops)-1].Color
	}
	return "", ""
}

// =============================================================================
// Decimation
// =============================================================================

func pointCount(cmds []ir.Command) int {
	n := 0
	for _, c := range cmds {
		if c.Kind() == ir.KindPoints {
			n += c.Len()
		}
	}
	return n
}

// decimate shrinks every point cluster proportionally so the total stays
// within limit, keeping each cluster's largest markers in original order.
func decimate(cmds []ir.Command, limit int) []ir.Command {
	total := pointCount(cmds)
	if total <= limit {
		return cmds
	}
	out := slices.Clone(cmds)
	for i, c := range out {
		pc, ok := c.Geometry.(ir.PointCluster)
		if !ok {
			continue
		}
		keep := pc.Len() * limit / total
		out[i] = keepLargest(c, pc, keep)
	}
	return out
}

func keepLargest(c ir.Command, pc ir.PointCluster, keep int) ir.Command {
	idx := make([]int, pc.Len())
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return pc.Sizes[idx[a]] > pc.Sizes[idx[b]] })
	idx = idx[:keep]
	sort.Ints(idx)

	var next ir.PointCluster
	var meta []ir.Record
	for _, i := range idx {
		next.X = append(next.X, pc.X[i])
		next.Y = append(next.Y, pc.Y[i])
		next.Sizes = append(next.Sizes, pc.Sizes[i])
		next.Colors = append(next.Colors, pc.Colors[i])
		next.Alphas = append(next.Alphas, pc.Alphas[i])
		if len(c.Metadata) > 0 {
			meta = append(meta, c.Metadata[i])
		}
	}
	c.Geometry = next
	c.Metadata = meta
	return c
}
