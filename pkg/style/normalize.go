package style

import (
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/starbridge/pkg/ir"
)

// Defaults substituted for unknown or missing primary style values.
const (
	DefaultMarker     = ir.MarkerCircle
	DefaultDash       = ir.DashSolid
	DefaultVAnchor    = ir.VAnchorCenter
	DefaultHAnchor    = ir.HAnchorCenter
	DefaultFontSize   = 10.0
	DefaultFontWeight = "normal"
	DefaultLineWidth  = 1.0
)

// markerTokens maps primary marker tokens to IR markers. Short tokens are
// the single-character codes of the primary renderer.
var markerTokens = map[string]ir.Marker{
	"point":        ir.MarkerCircle,
	"circle":       ir.MarkerCircle,
	".":            ir.MarkerCircle,
	"o":            ir.MarkerCircle,
	"square":       ir.MarkerSquare,
	"s":            ir.MarkerSquare,
	"star":         ir.MarkerStar,
	"*":            ir.MarkerStar,
	"star_8":       ir.MarkerStar,
	"star_4":       ir.MarkerStar4,
	"diamond":      ir.MarkerDiamond,
	"D":            ir.MarkerDiamond,
	"d":            ir.MarkerDiamond,
	"triangle":     ir.MarkerTriangle,
	"^":            ir.MarkerTriangle,
	"plus":         ir.MarkerPlus,
	"+":            ir.MarkerPlus,
	"circle_plus":  ir.MarkerCirclePlus,
	"circle_cross": ir.MarkerCircleCross,
	"circle_dot":   ir.MarkerCircleDot,
	"comet":        ir.MarkerComet,
	"ellipse":      ir.MarkerEllipse,
}

var dashTokens = map[string]ir.Dash{
	"":        ir.DashSolid,
	"solid":   ir.DashSolid,
	"-":       ir.DashSolid,
	"dashed":  ir.DashDashed,
	"--":      ir.DashDashed,
	"dotted":  ir.DashDotted,
	":":       ir.DashDotted,
	"dashdot": ir.DashDashDot,
	"-.":      ir.DashDashDot,
}

var vanchorTokens = map[string]ir.VAnchor{
	"top":             ir.VAnchorTop,
	"center":          ir.VAnchorCenter,
	"center_baseline": ir.VAnchorCenter,
	"middle":          ir.VAnchorCenter,
	"bottom":          ir.VAnchorBottom,
	"baseline":        ir.VAnchorBaseline,
}

var hanchorTokens = map[string]ir.HAnchor{
	"left":   ir.HAnchorLeft,
	"center": ir.HAnchorCenter,
	"middle": ir.HAnchorCenter,
	"right":  ir.HAnchorRight,
}

var boldWeights = map[string]bool{
	"bold":       true,
	"heavy":      true,
	"extra bold": true,
	"black":      true,
	"semibold":   true,
	"demibold":   true,
	"demi":       true,
}

// Marker normalizes a primary marker token. Unknown tokens become a circle,
// the shape nearest to a generic point.
func Marker(token string) (ir.Marker, bool) {
	if m, ok := markerTokens[token]; ok {
		return m, true
	}
	if m, ok := markerTokens[strings.ToLower(token)]; ok {
		return m, true
	}
	return DefaultMarker, false
}

// Dash normalizes a primary line-style token. Unknown tokens become solid.
func Dash(token string) (ir.Dash, bool) {
	if d, ok := dashTokens[strings.ToLower(strings.TrimSpace(token))]; ok {
		return d, true
	}
	return DefaultDash, false
}

// Anchor normalizes primary vertical and horizontal alignment tokens.
// Unknown tokens become centered on that axis.
func Anchor(va, ha string) (ir.Anchor, bool) {
	ok := true
	v, found := vanchorTokens[strings.ToLower(va)]
	if !found {
		v, ok = DefaultVAnchor, va == ""
	}
	h, found := hanchorTokens[strings.ToLower(ha)]
	if !found {
		h, ok = DefaultHAnchor, ok && ha == ""
	}
	return ir.Anchor{V: v, H: h}, ok
}

// FontWeight normalizes a weight name or numeric weight to "bold" or
// "normal".
func FontWeight(w string) string {
	w = strings.ToLower(strings.TrimSpace(w))
	if boldWeights[w] {
		return "bold"
	}
	if n, err := strconv.Atoi(w); err == nil && n >= 600 {
		return "bold"
	}
	return DefaultFontWeight
}

// FontSize returns size in points, substituting the default for missing or
// invalid sizes.
func FontSize(size float64) float64 {
	if size <= 0 || math.IsNaN(size) || math.IsInf(size, 0) {
		return DefaultFontSize
	}
	return size
}

// LineWidth returns a stroke width in points. Negative or non-finite widths
// become the default; zero is kept and means no stroke.
func LineWidth(w float64) float64 {
	if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
		return DefaultLineWidth
	}
	return w
}

// Alpha normalizes a style opacity field. Zero, negative or non-finite
// values mean unset and become fully opaque; values above one are clamped.
// Opacities derived from colours go through [Opacity] instead.
func Alpha(a float64) float64 {
	if a <= 0 || math.IsNaN(a) {
		return 1
	}
	return math.Min(a, 1)
}

// Opacity clamps a resolved opacity to [0, 1]. Zero stays transparent; NaN
// becomes opaque.
func Opacity(a float64) float64 {
	if math.IsNaN(a) {
		return 1
	}
	return math.Min(math.Max(a, 0), 1)
}
