// Package recorder captures primitive drawing calls into an IR recording.
//
// A [Recorder] wraps a [primary.Renderer] and implements the same interface.
// Every call is validated, forwarded unchanged to the wrapped renderer, and
// only after the wrapped call succeeds is it normalized and appended to the
// active [ir.Recording]. Malformed calls fail before anything is drawn or
// recorded. Labels are recorded only when the wrapped renderer reports
// them as kept, at the position and alignment it finally used.
//
//	canvas := primary.NewCanvas(proj, desc)
//	rec := recorder.New(canvas, ir.New(proj, desc))
//	_ = rec.Scatter(primary.ScatterCall{...})
//	snapshot := rec.Finalize()
//
// A Recorder has exactly one writer and is not safe for concurrent use.
package recorder

import (
	"io"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/starbridge/pkg/errors"
	"github.com/matzehuels/starbridge/pkg/ir"
	"github.com/matzehuels/starbridge/pkg/observability"
	"github.com/matzehuels/starbridge/pkg/primary"
	"github.com/matzehuels/starbridge/pkg/style"
)

// Option configures a Recorder.
type Option func(*Recorder)

// WithLogger sets the logger used for style fallback diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(r *Recorder) {
		if l != nil {
			r.logger = l
		}
	}
}

// Recorder is a capturing decorator over a primary renderer.
type Recorder struct {
	inner  primary.Renderer
	rec    *ir.Recording
	logger *log.Logger
}

// Verify interface compliance at compile time.
var _ primary.Renderer = (*Recorder)(nil)

// New wraps inner so that every successful call is appended to rec.
func New(inner primary.Renderer, rec *ir.Recording, opts ...Option) *Recorder {
	r := &Recorder{
		inner:  inner,
		rec:    rec,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Recording returns the active, writable recording.
func (r *Recorder) Recording() *ir.Recording { return r.rec }

// Finalize returns a frozen snapshot of the active recording. Capture
// continues into the active recording afterwards.
func (r *Recorder) Finalize() *ir.Recording { return r.rec.Snapshot() }

// Clear empties the active recording for reuse.
func (r *Recorder) Clear() { r.rec.Clear() }

// Export delegates unchanged to the wrapped renderer.
func (r *Recorder) Export(path string) error { return r.inner.Export(path) }

// =============================================================================
// Primitives
// =============================================================================

// Scatter records a point cluster.
func (r *Recorder) Scatter(call primary.ScatterCall) error {
	sizes, colors, alphas, err := call.Expand()
	if err != nil {
		return err
	}
	normColors := make([]string, len(colors))
	normAlphas := make([]float64, len(alphas))
	for i := range colors {
		hex, a := r.color("colors", colors[i])
		if hex == "" {
			hex = style.FallbackColor
		}
		normColors[i] = hex
		normAlphas[i] = style.Alpha(alphas[i]) * a
	}

	cmd := ir.Command{
		Geometry: ir.PointCluster{
			X:      call.X,
			Y:      call.Y,
			Sizes:  sizes,
			Colors: normColors,
			Alphas: normAlphas,
		},
		Style:    r.normalize(call.Style),
		Metadata: call.Meta,
		Z:        call.Layer.Z,
		Group:    call.Layer.Group,
	}
	return r.capture(cmd, func() error { return r.inner.Scatter(call) })
}

// Plot records a polyline.
func (r *Recorder) Plot(call primary.PlotCall) error {
	pts, err := call.Points()
	if err != nil {
		return err
	}
	cmd := ir.Command{
		Geometry: ir.Polyline{Points: pts},
		Style:    r.normalize(call.Style),
		Metadata: single(call.Meta),
		Z:        call.Layer.Z,
		Group:    call.Layer.Group,
	}
	return r.capture(cmd, func() error { return r.inner.Plot(call) })
}

// Polygon records a polygon.
func (r *Recorder) Polygon(call primary.PolygonCall) error {
	cmd := ir.Command{
		Geometry: ir.Polygon{Ring: call.Points},
		Style:    r.normalize(call.Style),
		Metadata: single(call.Meta),
		Z:        call.Layer.Z,
		Group:    call.Layer.Group,
	}
	return r.capture(cmd, func() error { return r.inner.Polygon(call) })
}

// LineCollection records a line bundle.
func (r *Recorder) LineCollection(call primary.LineCollectionCall) error {
	cmd := ir.Command{
		Geometry: ir.LineBundle{Segments: call.Segments},
		Style:    r.normalize(call.Style),
		Metadata: call.Meta,
		Z:        call.Layer.Z,
		Group:    call.Layer.Group,
	}
	return r.capture(cmd, func() error { return r.inner.LineCollection(call) })
}

// Gradient records a gradient fill.
func (r *Recorder) Gradient(call primary.GradientCall) error {
	stops := make([]ir.ColorStop, len(call.Stops))
	for i, s := range call.Stops {
		hex, a := r.color("stops", s.Color)
		if hex == "" {
			hex = style.FallbackColor
		}
		stops[i] = ir.ColorStop{Offset: s.Offset, Color: style.HexAlpha(hex, a)}
	}
	cmd := ir.Command{
		Geometry: ir.GradientFill{Shape: call.Shape, Angle: call.Angle, Stops: stops},
		Z:        call.Z(),
		Group:    call.Layer.Group,
	}
	return r.capture(cmd, func() error { return r.inner.Gradient(call) })
}

// Text forwards the label and records it only if the wrapped renderer kept
// it, at the final position and alignment.
func (r *Recorder) Text(call primary.TextCall) (primary.TextResult, error) {
	probe := ir.Command{
		Geometry: ir.TextLabel{Text: call.Text, At: ir.Point{X: call.X, Y: call.Y}},
		Metadata: single(call.Meta),
		Group:    call.Layer.Group,
	}
	if err := r.precheck(probe); err != nil {
		return primary.TextResult{}, err
	}

	res, err := r.inner.Text(call)
	if err != nil {
		return res, err
	}
	if !res.Kept {
		r.logger.Debug("label dropped", "group", call.Layer.Group, "text", call.Text)
		observability.Record().OnLabelDropped(call.Layer.Group)
		return res, nil
	}

	placed := call.Style
	placed.HA, placed.VA = res.HA, res.VA
	cmd := ir.Command{
		Geometry: ir.TextLabel{Text: call.Text, At: ir.Point{X: res.X, Y: res.Y}},
		Style:    r.normalize(placed),
		Metadata: single(call.Meta),
		Z:        call.Layer.Z,
		Group:    call.Layer.Group,
	}
	return res, r.append(cmd)
}

// capture validates cmd, runs draw and appends cmd if draw succeeded.
func (r *Recorder) capture(cmd ir.Command, draw func() error) error {
	if err := r.precheck(cmd); err != nil {
		return err
	}
	if err := draw(); err != nil {
		return err
	}
	return r.append(cmd)
}

func (r *Recorder) precheck(cmd ir.Command) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	if r.rec.Finalized() {
		return errors.New(errors.ErrCodeRecordingFinalized, "recording %s is finalized", r.rec.ID)
	}
	return nil
}

func (r *Recorder) append(cmd ir.Command) error {
	if err := r.rec.Append(cmd); err != nil {
		return err
	}
	observability.Record().OnRecord(cmd.Kind().String(), cmd.Group, cmd.Len())
	return nil
}

func single(rec ir.Record) []ir.Record {
	if rec == nil {
		return nil
	}
	return []ir.Record{rec}
}

// =============================================================================
// Style normalization
// =============================================================================

func (r *Recorder) normalize(st primary.Style) ir.Style {
	out := ir.Style{
		Width:     style.LineWidth(st.LineWidth),
		EdgeWidth: style.LineWidth(st.EdgeWidth),
		Font: ir.Font{
			Size:   style.FontSize(st.FontSize),
			Weight: style.FontWeight(st.FontWeight),
			Family: st.FontName,
		},
	}

	if alpha := style.Alpha(st.Alpha); alpha < 1 {
		out.Opacity = alpha
	}
	out.Color = style.HexAlpha(r.color("color", st.Color))
	out.EdgeColor = style.HexAlpha(r.color("edge_color", st.EdgeColor))
	out.FillColor = style.HexAlpha(r.color("fill_color", st.FillColor))

	var ok bool
	if st.Marker != "" {
		if out.Marker, ok = style.Marker(st.Marker); !ok {
			r.fallback("marker", st.Marker)
		}
	}
	if out.Dash, ok = style.Dash(st.LineStyle); !ok {
		r.fallback("line_style", st.LineStyle)
	}
	if out.Anchor, ok = style.Anchor(st.VA, st.HA); !ok {
		r.fallback("anchor", st.VA+"/"+st.HA)
	}
	return out
}

func (r *Recorder) color(field, raw string) (string, float64) {
	hex, a, ok := style.Color(raw)
	if !ok {
		r.fallback(field, raw)
	}
	return hex, a
}

func (r *Recorder) fallback(field, value string) {
	r.logger.Debug("style fallback", "field", field, "value", strconv.Quote(value))
	observability.Record().OnStyleFallback(field, value)
}
