package style

import (
	"strconv"
	"strings"

	"github.com/matzehuels/starbridge/pkg/ir"
)

// =============================================================================
// Markers
// =============================================================================

// DefaultSymbol is the viewer symbol used for markers missing from the table.
const DefaultSymbol = "circle"

// symbols maps IR markers to viewer symbol names. Approximations:
// comet becomes a star-diamond, star4 a star-square and ellipse a circle.
var symbols = map[ir.Marker]string{
	ir.MarkerCircle:      "circle",
	ir.MarkerSquare:      "square",
	ir.MarkerStar:        "star",
	ir.MarkerStar4:       "star-square",
	ir.MarkerDiamond:     "diamond",
	ir.MarkerTriangle:    "triangle-up",
	ir.MarkerPlus:        "cross",
	ir.MarkerCirclePlus:  "circle-cross",
	ir.MarkerCircleCross: "circle-x",
	ir.MarkerCircleDot:   "circle-dot",
	ir.MarkerComet:       "star-diamond",
	ir.MarkerEllipse:     "circle",
}

// Symbol returns the viewer symbol for m.
func Symbol(m ir.Marker) (string, bool) {
	if s, ok := symbols[m]; ok {
		return s, true
	}
	return DefaultSymbol, m == ""
}

// =============================================================================
// Dashes
// =============================================================================

// dashPatterns are on/off lengths in multiples of the stroke width.
var dashPatterns = map[ir.Dash][]float64{
	ir.DashSolid:   nil,
	ir.DashDashed:  {3.7, 1.6},
	ir.DashDotted:  {1, 1.65},
	ir.DashDashDot: {6.4, 1.6, 1, 1.6},
}

var dashNames = map[ir.Dash]string{
	ir.DashSolid:   "solid",
	ir.DashDashed:  "dash",
	ir.DashDotted:  "dot",
	ir.DashDashDot: "dashdot",
}

// DashPattern returns the on/off lengths for d scaled by width (points). A
// solid or unknown dash returns nil. Widths below one point are treated as
// one so dots stay visible.
func DashPattern(d ir.Dash, width float64) []float64 {
	unit := dashPatterns[d]
	if unit == nil {
		return nil
	}
	if width < 1 {
		width = 1
	}
	out := make([]float64, len(unit))
	for i, u := range unit {
		out[i] = u * width
	}
	return out
}

// DashArray encodes DashPattern as an SVG stroke-dasharray value, or "" for
// solid lines.
func DashArray(d ir.Dash, width float64) string {
	p := DashPattern(d, width)
	if p == nil {
		return ""
	}
	parts := make([]string, len(p))
	for i, v := range p {
		parts[i] = strconv.FormatFloat(v, 'f', 2, 64)
	}
	return strings.Join(parts, ",")
}

// DashName returns the viewer dash name for d, falling back to "solid".
func DashName(d ir.Dash) (string, bool) {
	if n, ok := dashNames[d]; ok {
		return n, true
	}
	return "solid", d == ""
}

// =============================================================================
// Text anchors
// =============================================================================

// Viewer anchor values.
const (
	AnchorTop    = "top"
	AnchorMiddle = "middle"
	AnchorBottom = "bottom"
	AnchorLeft   = "left"
	AnchorCenter = "center"
	AnchorRight  = "right"
)

var yanchors = map[ir.VAnchor]string{
	ir.VAnchorTop:      AnchorTop,
	ir.VAnchorCenter:   AnchorMiddle,
	ir.VAnchorBottom:   AnchorBottom,
	ir.VAnchorBaseline: AnchorBottom,
}

var xanchors = map[ir.HAnchor]string{
	ir.HAnchorLeft:   AnchorLeft,
	ir.HAnchorCenter: AnchorCenter,
	ir.HAnchorRight:  AnchorRight,
}

var mirroredX = map[string]string{
	AnchorLeft:   AnchorRight,
	AnchorCenter: AnchorCenter,
	AnchorRight:  AnchorLeft,
}

// TextAnchor maps an IR anchor to the viewer (yanchor, xanchor) pair. When
// the viewer's x axis runs opposite to the primary renderer's, mirrored
// swaps left and right. Unknown values fall back to (middle, center).
func TextAnchor(a ir.Anchor, mirrored bool) (y, x string) {
	y, ok := yanchors[a.V]
	if !ok {
		y = AnchorMiddle
	}
	x, ok = xanchors[a.H]
	if !ok {
		x = AnchorCenter
	}
	if mirrored {
		x = mirroredX[x]
	}
	return y, x
}

var svgTextAnchor = map[string]string{
	AnchorLeft:   "start",
	AnchorCenter: "middle",
	AnchorRight:  "end",
}

var svgBaseline = map[string]string{
	AnchorTop:    "text-before-edge",
	AnchorMiddle: "central",
	AnchorBottom: "text-after-edge",
}

// SVGTextAnchor maps a viewer anchor pair to SVG text-anchor and
// dominant-baseline values.
func SVGTextAnchor(y, x string) (textAnchor, baseline string) {
	textAnchor, ok := svgTextAnchor[x]
	if !ok {
		textAnchor = "middle"
	}
	baseline, ok = svgBaseline[y]
	if !ok {
		baseline = "central"
	}
	return textAnchor, baseline
}
