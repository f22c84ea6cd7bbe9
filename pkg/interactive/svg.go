package interactive

import (
	"bytes"
	"fmt"
	"html"
	"math"
	"slices"
	"strings"

	"github.com/matzehuels/starbridge/pkg/ir"
	"github.com/matzehuels/starbridge/pkg/style"
)

// SVGOption configures RenderSVG.
type SVGOption func(*svgRenderer)

type hoverMode int

const (
	hoverNone hoverMode = iota
	hoverTitle
	hoverData
)

type svgRenderer struct {
	hover  hoverMode
	hidden bool
	id     string
}

// WithTooltips attaches hover text as native SVG titles.
func WithTooltips() SVGOption { return func(r *svgRenderer) { r.hover = hoverTitle } }

// WithHiddenTraces emits invisible traces with display:none instead of
// dropping them.
func WithHiddenTraces() SVGOption { return func(r *svgRenderer) { r.hidden = true } }

func withHoverData() SVGOption { return func(r *svgRenderer) { r.hover = hoverData } }

// RenderSVG draws f as a standalone SVG document in logical pixels.
// Labels are SVG text elements.
func RenderSVG(f *Figure, opts ...SVGOption) []byte {
	r := svgRenderer{id: "sb"}
	for _, opt := range opts {
		opt(&r)
	}
	l := f.Layout

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">`+"\n",
		l.Width, l.Height, l.Width, l.Height)
	r.renderDefs(&buf, f)
	fmt.Fprintf(&buf, `  <rect x="0" y="0" width="%d" height="%d" fill="%s"/>`+"\n", l.Width, l.Height, l.Paper)
	if l.Background != l.Paper {
		fmt.Fprintf(&buf, `  <rect x="0" y="0" width="%d" height="%d" fill="%s"/>`+"\n", l.Width, l.Height, l.Background)
	}
	buf.WriteString(`  <g id="sb-scene">` + "\n")
	for i := range f.Traces {
		t := &f.Traces[i]
		if !t.Visible && !r.hidden {
			continue
		}
		r.renderTrace(&buf, i, t, l)
	}
	buf.WriteString("  </g>\n</svg>\n")
	return buf.Bytes()
}

func (r *svgRenderer) renderDefs(buf *bytes.Buffer, f *Figure) {
	var defs bytes.Buffer
	w, h := float64(f.Layout.Width), float64(f.Layout.Height)
	for i, t := range f.Traces {
		g := t.Gradient
		if g == nil {
			continue
		}
		id := fmt.Sprintf("%s-grad-%d", r.id, i)
		if g.Shape == string(ir.GradientRadial) {
			fmt.Fprintf(&defs, `    <radialGradient id="%s" gradientUnits="userSpaceOnUse" cx="%.2f" cy="%.2f" r="%.2f">`+"\n",
				id, w/2, h/2, math.Hypot(w, h)/2)
		} else {
			x0, y0, x1, y1 := style.GradientEnds(g.Angle, w, h)
			fmt.Fprintf(&defs, `    <linearGradient id="%s" gradientUnits="userSpaceOnUse" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f">`+"\n",
				id, x0, y0, x1, y1)
		}
		for _, s := range g.Stops {
			hex, alpha, _ := style.Color(s.Color)
			fmt.Fprintf(&defs, `      <stop offset="%.4f" stop-color="%s" stop-opacity="%.3f"/>`+"\n", s.Offset, hex, alpha)
		}
		if g.Shape == string(ir.GradientRadial) {
			defs.WriteString("    </radialGradient>\n")
		} else {
			defs.WriteString("    </linearGradient>\n")
		}
	}
	if defs.Len() == 0 {
		return
	}
	buf.WriteString("  <defs>\n")
	buf.Write(defs.Bytes())
	buf.WriteString("  </defs>\n")
}

func (r *svgRenderer) renderTrace(buf *bytes.Buffer, i int, t *Trace, l Layout) {
	display := ""
	if !t.Visible {
		display = ` style="display:none"`
	}
	fmt.Fprintf(buf, `    <g class="sb-trace" data-group="%s" data-trace="%d"%s>`+"\n", esc(t.Group), i, display)
	switch t.Type {
	case TraceMarkers:
		r.renderMarkers(buf, t, l)
	case TraceLine:
		r.renderLine(buf, t, l)
	case TracePolygon:
		r.renderPolygon(buf, t, l)
	case TraceText:
		r.renderText(buf, t, l)
	case TraceGradient:
		fmt.Fprintf(buf, `      <rect x="0" y="0" width="%d" height="%d" fill="url(#%s-grad-%d)"/>`+"\n", l.Width, l.Height, r.id, i)
	}
	buf.WriteString("    </g>\n")
}

// =============================================================================
// Markers
// =============================================================================

func (r *svgRenderer) renderMarkers(buf *bytes.Buffer, t *Trace, l Layout) {
	m := t.Marker
	if m == nil {
		return
	}
	shape := style.SymbolShape(m.Symbol)
	for i := range t.X {
		if math.IsNaN(t.X[i]) || math.IsNaN(t.Y[i]) {
			continue
		}
		x, y := l.Map(t.X[i], t.Y[i])
		rad := m.Radii[i]
		paint := markerPaint(shape, m, i)

		if !shape.Bare {
			tag := "path"
			if shape.Round() {
				tag = "ellipse"
				fmt.Fprintf(buf, `      <ellipse cx="%.2f" cy="%.2f" rx="%.2f" ry="%.2f"%s`, x, y, rad*shape.RX, rad*shape.RY, paint)
			} else {
				fmt.Fprintf(buf, `      <path d="%s"%s`, outlinePath(shape.Outline, x, y, rad), paint)
			}
			r.closeElement(buf, t, i, tag)
		}
		if d := overlayPath(shape, x, y, rad); d != "" {
			fmt.Fprintf(buf, `      <path d="%s" fill="none" stroke="%s" stroke-opacity="%.3f" stroke-width="%.2f"`,
				d, m.Colors[i], m.Opacities[i], overlayWidth(rad))
			r.closeElement(buf, t, i, "path")
		}
		if shape.Dot {
			fmt.Fprintf(buf, `      <circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s" fill-opacity="%.3f"`,
				x, y, math.Max(0.5, rad/4), m.Colors[i], m.Opacities[i])
			r.closeElement(buf, t, i, "circle")
		}
	}
}

func markerPaint(shape style.Shape, m *MarkerSpec, i int) string {
	if shape.Hollow {
		return fmt.Sprintf(` fill="none" stroke="%s" stroke-opacity="%.3f" stroke-width="%.2f"`,
			m.Colors[i], m.Opacities[i], overlayWidth(m.Radii[i]))
	}
	s := fmt.Sprintf(` fill="%s" fill-opacity="%.3f"`, m.Colors[i], m.Opacities[i])
	if m.EdgeColor != "" {
		s += fmt.Sprintf(` stroke="%s" stroke-opacity="%.3f" stroke-width="%.2f"`, m.EdgeColor, m.EdgeOpacity, m.EdgeWidth)
	}
	return s
}

// overlayWidth matches the primary canvas stroke for hollow markers.
func overlayWidth(rad float64) float64 {
	return math.Max(1, rad/4)
}

func outlinePath(pts []ir.Point, cx, cy, rad float64) string {
	var sb strings.Builder
	for i, p := range pts {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		fmt.Fprintf(&sb, "%s%.2f %.2f ", cmd, cx+p.X*rad, cy+p.Y*rad)
	}
	sb.WriteString("Z")
	return sb.String()
}

func overlayPath(s style.Shape, cx, cy, rad float64) string {
	var sb strings.Builder
	if s.Plus {
		fmt.Fprintf(&sb, "M%.2f %.2f L%.2f %.2f M%.2f %.2f L%.2f %.2f ",
			cx-rad, cy, cx+rad, cy, cx, cy-rad, cx, cy+rad)
	}
	if s.Cross {
		d := rad / math.Sqrt2
		fmt.Fprintf(&sb, "M%.2f %.2f L%.2f %.2f M%.2f %.2f L%.2f %.2f ",
			cx-d, cy-d, cx+d, cy+d, cx-d, cy+d, cx+d, cy-d)
	}
	return strings.TrimSpace(sb.String())
}

// =============================================================================
// Lines, polygons and text
// =============================================================================

// seriesPath builds path data from a coordinate series. A NaN starts a new
// subpath.
func seriesPath(t *Trace, l Layout, closed bool) string {
	parts := slices.DeleteFunc(subpaths(t, l), func(d string) bool { return d == "" })
	d := strings.Join(parts, " ")
	if closed {
		d = strings.TrimSpace(d + " Z")
	}
	return d
}

// subpaths returns the path data of each NaN-separated run, so entry i is
// segment i of a line bundle.
func subpaths(t *Trace, l Layout) []string {
	var out []string
	var sb strings.Builder
	for i := range t.X {
		if math.IsNaN(t.X[i]) || math.IsNaN(t.Y[i]) {
			out = append(out, strings.TrimSpace(sb.String()))
			sb.Reset()
			continue
		}
		x, y := l.Map(t.X[i], t.Y[i])
		cmd := "L"
		if sb.Len() == 0 {
			cmd = "M"
		}
		fmt.Fprintf(&sb, "%s%.2f %.2f ", cmd, x, y)
	}
	return append(out, strings.TrimSpace(sb.String()))
}

func strokeAttrs(s *LineSpec) string {
	if s == nil {
		return ` stroke="none"`
	}
	out := fmt.Sprintf(` stroke="%s" stroke-width="%.2f" stroke-opacity="%.3f" stroke-linejoin="round"`,
		s.Color, s.Width, s.Opacity)
	if s.DashArray != "" {
		out += fmt.Sprintf(` stroke-dasharray="%s"`, s.DashArray)
	}
	return out
}

// hitWidth is the minimum stroke width of a segment hover target.
const hitWidth = 6.0

// renderLine draws the series as one path. With hover text per segment,
// each segment also gets an invisible hit path carrying its own text.
func (r *svgRenderer) renderLine(buf *bytes.Buffer, t *Trace, l Layout) {
	if r.hover == hoverNone || len(t.Hover) <= 1 {
		fmt.Fprintf(buf, `      <path d="%s" fill="none"%s`, seriesPath(t, l, false), strokeAttrs(t.Line))
		r.closeElement(buf, t, 0, "path")
		return
	}
	fmt.Fprintf(buf, `      <path d="%s" fill="none"%s/>`+"\n", seriesPath(t, l, false), strokeAttrs(t.Line))
	width := hitWidth
	if t.Line != nil {
		width = math.Max(width, t.Line.Width)
	}
	for i, d := range subpaths(t, l) {
		fmt.Fprintf(buf, `      <path class="sb-hit" d="%s" fill="none" stroke="#000000" stroke-opacity="0" stroke-width="%.2f"`, d, width)
		r.closeElement(buf, t, i, "path")
	}
}

func (r *svgRenderer) renderPolygon(buf *bytes.Buffer, t *Trace, l Layout) {
	fill := ` fill="none"`
	if t.Fill != nil {
		fill = fmt.Sprintf(` fill="%s" fill-opacity="%.3f"`, t.Fill.Color, t.Fill.Opacity)
	}
	fmt.Fprintf(buf, `      <path d="%s"%s%s`, seriesPath(t, l, true), fill, strokeAttrs(t.Line))
	r.closeElement(buf, t, 0, "path")
}

func (r *svgRenderer) renderText(buf *bytes.Buffer, t *Trace, l Layout) {
	s := t.Text
	if s == nil || len(t.X) == 0 {
		return
	}
	x, y := l.Map(t.X[0], t.Y[0])
	anchor, baseline := style.SVGTextAnchor(s.YAnchor, s.XAnchor)
	fmt.Fprintf(buf, `      <text x="%.2f" y="%.2f" font-size="%.1f" fill="%s" fill-opacity="%.3f" text-anchor="%s" dominant-baseline="%s"`,
		x, y, s.Size, s.Color, s.Opacity, anchor, baseline)
	if s.Family != "" {
		fmt.Fprintf(buf, ` font-family="%s"`, esc(s.Family))
	}
	if s.Weight != "" {
		fmt.Fprintf(buf, ` font-weight="%s"`, esc(s.Weight))
	}
	buf.WriteString(r.hoverAttr(t, 0))
	buf.WriteString(">")
	buf.WriteString(esc(s.Text))
	if r.hover == hoverTitle {
		if h := hoverAt(t, 0); h != "" {
			fmt.Fprintf(buf, "<title>%s</title>", esc(h))
		}
	}
	buf.WriteString("</text>\n")
}

// closeElement ends an element opened by the caller, attaching hover text
// for element i.
func (r *svgRenderer) closeElement(buf *bytes.Buffer, t *Trace, i int, tag string) {
	buf.WriteString(r.hoverAttr(t, i))
	h := hoverAt(t, i)
	if r.hover == hoverTitle && h != "" {
		fmt.Fprintf(buf, "><title>%s</title></%s>\n", esc(h), tag)
		return
	}
	buf.WriteString("/>\n")
}

func (r *svgRenderer) hoverAttr(t *Trace, i int) string {
	if r.hover != hoverData {
		return ""
	}
	h := hoverAt(t, i)
	if h == "" {
		return ""
	}
	return fmt.Sprintf(` data-hover="%s"`, esc(h))
}

func hoverAt(t *Trace, i int) string {
	switch {
	case i < len(t.Hover):
		return t.Hover[i]
	case len(t.Hover) == 1:
		return t.Hover[0]
	}
	return ""
}

func esc(s string) string { return html.EscapeString(s) }
