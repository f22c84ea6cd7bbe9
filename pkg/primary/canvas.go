package primary

import (
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/fogleman/gg"

	"github.com/matzehuels/starbridge/pkg/ir"
	"github.com/matzehuels/starbridge/pkg/style"
)

// GradientZ is the conventional z-order of background gradients.
const GradientZ = -1

// CanvasOption configures a Canvas.
type CanvasOption func(*Canvas)

// WithLabelPadding sets the clearance in logical pixels kept between labels.
func WithLabelPadding(px float64) CanvasOption {
	return func(c *Canvas) { c.padding = px }
}

// WithoutCollisions keeps every label regardless of overlap.
func WithoutCollisions() CanvasOption {
	return func(c *Canvas) { c.collisions = false }
}

// op is one retained draw call.
type op struct {
	z    int
	seq  int
	draw func(dc *gg.Context)
}

// Canvas is a retained-mode rasterizing Renderer. It is not safe for
// concurrent use; one plot session owns one canvas.
type Canvas struct {
	proj  ir.ProjectionDescriptor
	desc  ir.CanvasDescriptor
	w, h  float64
	scale float64

	padding    float64
	collisions bool

	fonts   *fontCache
	measure *gg.Context

	ops    []op
	labels []box
	drawn  map[string]int
	img    image.Image
}

// NewCanvas creates an empty canvas for the given scene.
func NewCanvas(proj ir.ProjectionDescriptor, desc ir.CanvasDescriptor, opts ...CanvasOption) *Canvas {
	if desc.Scale <= 0 {
		desc.Scale = 1
	}
	w, h := desc.PixelSize()
	c := &Canvas{
		proj:       proj,
		desc:       desc,
		w:          float64(w),
		h:          float64(h),
		scale:      desc.Scale,
		padding:    2,
		collisions: true,
		fonts:      newFontCache(),
		measure:    gg.NewContext(1, 1),
		drawn:      make(map[string]int),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Projection returns the scene projection.
func (c *Canvas) Projection() ir.ProjectionDescriptor { return c.proj }

// Descriptor returns the canvas descriptor with its effective scale.
func (c *Canvas) Descriptor() ir.CanvasDescriptor { return c.desc }

// Drawn returns the number of elements drawn per group: points for
// scatters, segments for line collections, kept labels, and one for every
// other call.
func (c *Canvas) Drawn() map[string]int {
	out := make(map[string]int, len(c.drawn))
	for g, n := range c.drawn {
		out[g] = n
	}
	return out
}

// Clear drops every retained call, kept label and tally.
func (c *Canvas) Clear() {
	c.ops = nil
	c.labels = nil
	c.drawn = make(map[string]int)
	c.img = nil
}

// Image paints the retained calls and returns the raster.
func (c *Canvas) Image() image.Image {
	if c.img != nil {
		return c.img
	}
	dc := gg.NewContext(int(c.w), int(c.h))
	dc.SetColor(c.background())
	dc.Clear()

	ops := make([]op, len(c.ops))
	copy(ops, c.ops)
	sort.SliceStable(ops, func(i, j int) bool { return ops[i].z < ops[j].z })
	for _, o := range ops {
		dc.Push()
		o.draw(dc)
		dc.Pop()
	}
	c.img = dc.Image()
	return c.img
}

func (c *Canvas) background() color.Color {
	bg := c.desc.Background
	if bg == "" {
		bg = c.desc.FigureBackground
	}
	hex, a, ok := style.Color(bg)
	if !ok || hex == "" {
		return color.White
	}
	return rgba(hex, a)
}

func (c *Canvas) push(z int, draw func(dc *gg.Context)) {
	c.ops = append(c.ops, op{z: z, seq: len(c.ops), draw: draw})
	c.img = nil
}

func (c *Canvas) tally(group string, n int) {
	c.drawn[group] += n
}

// px maps a rendered-extent point to raster pixels.
func (c *Canvas) px(p ir.Point) (float64, float64) {
	return c.proj.Rendered.Map(p, c.w, c.h)
}

// =============================================================================
// Primitives
// =============================================================================

// Scatter implements Renderer.
func (c *Canvas) Scatter(call ScatterCall) error {
	sizes, colors, alphas, err := call.Expand()
	if err != nil {
		return err
	}
	marker, _ := style.Marker(call.Style.Marker)
	shape := style.MarkerShape(marker)
	edge, edgeAlpha, _ := style.Color(call.Style.EdgeColor)
	edgeWidth := style.LineWidth(call.Style.EdgeWidth) * c.scale

	type mark struct {
		x, y, r float64
		fill    color.Color
	}
	marks := make([]mark, call.Len())
	for i := range marks {
		x, y := c.px(ir.Point{X: call.X[i], Y: call.Y[i]})
		hex, a, _ := style.Color(colors[i])
		if hex == "" {
			hex = style.FallbackColor
		}
		marks[i] = mark{
			x:    x,
			y:    y,
			r:    style.MarkerRadius(sizes[i]) * c.scale,
			fill: rgba(hex, style.Alpha(alphas[i])*a),
		}
	}

	c.push(call.Layer.Z, func(dc *gg.Context) {
		for _, m := range marks {
			drawMarker(dc, shape, m.x, m.y, m.r, m.fill)
			if edge != "" && edgeWidth > 0 && !shape.Hollow {
				traceShape(dc, shape, m.x, m.y, m.r)
				dc.SetColor(rgba(edge, edgeAlpha))
				dc.SetLineWidth(edgeWidth)
				dc.Stroke()
			}
		}
	})
	c.tally(call.Layer.Group, call.Len())
	return nil
}

// Plot implements Renderer.
func (c *Canvas) Plot(call PlotCall) error {
	pts, err := call.Points()
	if err != nil {
		return err
	}
	c.strokePaths(call.Layer.Z, [][]ir.Point{pts}, call.Style)
	c.tally(call.Layer.Group, 1)
	return nil
}

// LineCollection implements Renderer.
func (c *Canvas) LineCollection(call LineCollectionCall) error {
	c.strokePaths(call.Layer.Z, call.Segments, call.Style)
	c.tally(call.Layer.Group, len(call.Segments))
	return nil
}

func (c *Canvas) strokePaths(z int, paths [][]ir.Point, st Style) {
	hex, a, _ := style.Color(st.Color)
	if hex == "" {
		return
	}
	col := rgba(hex, style.Alpha(st.Alpha)*a)
	width := style.LineWidth(st.LineWidth)
	dash, _ := style.Dash(st.LineStyle)
	pattern := style.DashPattern(dash, width)

	mapped := make([][][2]float64, len(paths))
	for i, p := range paths {
		mapped[i] = make([][2]float64, len(p))
		for j, pt := range p {
			x, y := c.px(pt)
			mapped[i][j] = [2]float64{x, y}
		}
	}
	scale := c.scale
	c.push(z, func(dc *gg.Context) {
		dc.SetColor(col)
		dc.SetLineWidth(width * scale)
		dc.SetLineCapRound()
		if pattern != nil {
			scaled := make([]float64, len(pattern))
			for i, v := range pattern {
				scaled[i] = v * scale
			}
			dc.SetDash(scaled...)
		}
		for _, p := range mapped {
			if len(p) == 0 {
				continue
			}
			dc.NewSubPath()
			dc.MoveTo(p[0][0], p[0][1])
			for _, q := range p[1:] {
				dc.LineTo(q[0], q[1])
			}
		}
		dc.Stroke()
	})
}

// Polygon implements Renderer.
func (c *Canvas) Polygon(call PolygonCall) error {
	st := call.Style
	alpha := style.Alpha(st.Alpha)
	fill, fa, _ := style.Color(st.FillColor)
	edgeRaw := st.EdgeColor
	if edgeRaw == "" && fill == "" {
		edgeRaw = st.Color
	}
	edge, ea, _ := style.Color(edgeRaw)
	width := style.LineWidth(st.LineWidth) * c.scale
	dash, _ := style.Dash(st.LineStyle)
	pattern := style.DashPattern(dash, style.LineWidth(st.LineWidth))

	ring := ir.Polygon{Ring: call.Points}.Closed()
	mapped := make([][2]float64, len(ring))
	for i, p := range ring {
		x, y := c.px(p)
		mapped[i] = [2]float64{x, y}
	}
	scale := c.scale
	c.push(call.Layer.Z, func(dc *gg.Context) {
		if len(mapped) == 0 {
			return
		}
		dc.MoveTo(mapped[0][0], mapped[0][1])
		for _, q := range mapped[1:] {
			dc.LineTo(q[0], q[1])
		}
		dc.ClosePath()
		if fill != "" {
			dc.SetColor(rgba(fill, alpha*fa))
			dc.FillPreserve()
		}
		if edge != "" && width > 0 {
			dc.SetColor(rgba(edge, alpha*ea))
			dc.SetLineWidth(width)
			if pattern != nil {
				scaled := make([]float64, len(pattern))
				for i, v := range pattern {
					scaled[i] = v * scale
				}
				dc.SetDash(scaled...)
			}
			dc.StrokePreserve()
		}
		dc.ClearPath()
	})
	c.tally(call.Layer.Group, 1)
	return nil
}

// Gradient implements Renderer.
func (c *Canvas) Gradient(call GradientCall) error {
	if err := ir.ValidateGeometry(ir.GradientFill{Shape: call.Shape, Angle: call.Angle, Stops: call.Stops}); err != nil {
		return err
	}
	w, h := c.w, c.h
	c.push(call.Z(), func(dc *gg.Context) {
		var grad gg.Gradient
		if call.Shape == ir.GradientRadial {
			r := math.Hypot(w, h) / 2
			grad = gg.NewRadialGradient(w/2, h/2, 0, w/2, h/2, r)
		} else {
			x0, y0, x1, y1 := style.GradientEnds(call.Angle, w, h)
			grad = gg.NewLinearGradient(x0, y0, x1, y1)
		}
		for _, s := range call.Stops {
			hex, a, _ := style.Color(s.Color)
			grad.AddColorStop(s.Offset, rgba(hex, a))
		}
		dc.SetFillStyle(grad)
		dc.DrawRectangle(0, 0, w, h)
		dc.Fill()
	})
	c.tally(call.Layer.Group, 1)
	return nil
}

func rgba(hex string, alpha float64) color.NRGBA {
	r, g, b, a := style.RGBA(hex, alpha)
	return color.NRGBA{R: r, G: g, B: b, A: a}
}
