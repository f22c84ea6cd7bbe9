package interactive

import (
	"math"
	"slices"

	"github.com/matzehuels/starbridge/pkg/ir"
	"github.com/matzehuels/starbridge/pkg/style"
)

// trace converts one command. It is a pure function of its inputs.
func (r *Renderer) trace(c ir.Command, order int, l Layout) Trace {
	t := Trace{
		Group:    c.Group,
		Name:     style.LegendName(c.Group),
		Z:        c.Z,
		Order:    order,
		Elements: c.Len(),
	}
	switch g := c.Geometry.(type) {
	case ir.PointCluster:
		markersTrace(&t, g, c.Style)
	case ir.Polyline:
		t.Type = TraceLine
		t.X, t.Y = split(g.Points)
		t.Line = strokeSpec(c.Style.Color, c.Style)
	case ir.LineBundle:
		t.Type = TraceLine
		t.X, t.Y = joinSegments(g.Segments)
		t.Line = strokeSpec(c.Style.Color, c.Style)
	case ir.Polygon:
		polygonTrace(&t, g, c.Style)
	case ir.TextLabel:
		r.textTrace(&t, g, c.Style)
	case ir.GradientFill:
		gradientTrace(&t, g, l)
	}
	if len(c.Metadata) > 0 {
		t.Hover = make([]string, len(c.Metadata))
		for i, rec := range c.Metadata {
			t.Hover[i] = Hover(rec)
		}
	}
	return t
}

func markersTrace(t *Trace, g ir.PointCluster, st ir.Style) {
	t.Type = TraceMarkers
	t.X, t.Y = slices.Clone(Coords(g.X)), slices.Clone(Coords(g.Y))
	symbol, _ := style.Symbol(st.Marker)
	m := &MarkerSpec{
		Symbol:    symbol,
		Radii:     make([]float64, g.Len()),
		Colors:    make([]string, g.Len()),
		Opacities: make([]float64, g.Len()),
	}
	for i := range m.Radii {
		hex, a := paint(g.Colors[i])
		m.Radii[i] = style.MarkerRadius(g.Sizes[i])
		m.Colors[i] = hex
		m.Opacities[i] = style.Opacity(g.Alphas[i]) * a
	}
	if st.EdgeColor != "" && st.EdgeWidth > 0 {
		m.EdgeColor, m.EdgeOpacity = paint(st.EdgeColor)
		m.EdgeWidth = st.EdgeWidth
	}
	t.Marker = m
}

// strokeSpec strokes with color. An empty color means no stroke, as on the
// primary canvas.
func strokeSpec(color string, st ir.Style) *LineSpec {
	if color == "" {
		return nil
	}
	hex, a := paint(color)
	dash, _ := style.DashName(st.Dash)
	return &LineSpec{
		Color:     hex,
		Width:     st.Width,
		Dash:      dash,
		DashArray: style.DashArray(st.Dash, st.Width),
		Opacity:   st.Alpha() * a,
	}
}

// polygonTrace closes the ring. Without a fill colour the polygon is an
// outline only.
func polygonTrace(t *Trace, g ir.Polygon, st ir.Style) {
	t.Type = TracePolygon
	t.X, t.Y = split(g.Closed())
	if st.Filled() {
		hex, a := paint(st.FillColor)
		t.Fill = &FillSpec{Color: hex, Opacity: st.Alpha() * a}
	}
	edge := st.EdgeColor
	if edge == "" && !st.Filled() {
		edge = st.Color
	}
	if st.Width > 0 {
		t.Line = strokeSpec(edge, st)
	}
}

func (r *Renderer) textTrace(t *Trace, g ir.TextLabel, st ir.Style) {
	t.Type = TraceText
	t.X, t.Y = Coords{g.At.X}, Coords{g.At.Y}
	y, x := style.TextAnchor(st.Anchor, r.mirrorX)
	color, a := style.FallbackColor, 1.0
	if st.Color != "" {
		color, a = paint(st.Color)
	}
	t.Text = &TextSpec{
		Text:    g.Text,
		Size:    style.FontSize(st.Font.Size),
		Color:   color,
		Opacity: st.Alpha() * a,
		Family:  st.Font.Family,
		Weight:  st.Font.Weight,
		XAnchor: x,
		YAnchor: y,
	}
}

// paint splits a normalized colour into "#rrggbb" and the opacity it
// carries.
func paint(c string) (string, float64) {
	hex, a, ok := style.Color(c)
	if !ok || hex == "" {
		return style.FallbackColor, 1
	}
	return hex, style.Opacity(a)
}

func gradientTrace(t *Trace, g ir.GradientFill, l Layout) {
	t.Type = TraceGradient
	t.X = Coords{l.XRange[0], l.XRange[1]}
	t.Y = Coords{l.YRange[0], l.YRange[1]}
	spec := &GradientSpec{Shape: string(g.Shape), Angle: g.Angle}
	if l.MirrorX && g.Shape == ir.GradientLinear {
		spec.Angle = 180 - g.Angle
	}
	for _, s := range g.Stops {
		spec.Stops = append(spec.Stops, StopSpec{Offset: s.Offset, Color: s.Color})
	}
	t.Gradient = spec
}

func split(pts []ir.Point) (Coords, Coords) {
	x := make(Coords, len(pts))
	y := make(Coords, len(pts))
	for i, p := range pts {
		x[i], y[i] = p.X, p.Y
	}
	return x, y
}

// joinSegments concatenates segments into one series with a NaN break
// between consecutive segments.
func joinSegments(segs [][]ir.Point) (Coords, Coords) {
	var x, y Coords
	for i, seg := range segs {
		if i > 0 {
			x = append(x, math.NaN())
			y = append(y, math.NaN())
		}
		for _, p := range seg {
			x = append(x, p.X)
			y = append(y, p.Y)
		}
	}
	return x, y
}
