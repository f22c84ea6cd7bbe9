package style

import (
	"math"

	"github.com/matzehuels/starbridge/pkg/ir"
)

// Shape describes a marker in unit coordinates (radius 1, y down) so that
// both renderers draw identical outlines. A nil Outline means an ellipse
// with radii RX and RY.
type Shape struct {
	Outline []ir.Point
	RX, RY  float64

	// Hollow shapes are stroked, never filled. Bare shapes draw only
	// their overlays.
	Hollow bool
	Bare   bool
	// Plus and Cross overlay "+" and "x" strokes; Dot overlays a centre dot.
	Plus  bool
	Cross bool
	Dot   bool
}

// Round reports whether the shape is an ellipse.
func (s Shape) Round() bool { return s.Outline == nil }

var shapes = map[ir.Marker]Shape{
	ir.MarkerCircle:      {RX: 1, RY: 1},
	ir.MarkerEllipse:     {RX: 1.3, RY: 0.75},
	ir.MarkerSquare:      {Outline: rect(math.Sqrt(math.Pi) / 2)},
	ir.MarkerDiamond:     {Outline: star(2, 1.25, 1.25, 0)},
	ir.MarkerTriangle:    {Outline: star(3, 1.35, 1.35*0.5, 0)},
	ir.MarkerStar:        {Outline: star(5, 1.4, 0.55, 0)},
	ir.MarkerStar4:       {Outline: star(4, 1.4, 0.45, 0)},
	ir.MarkerComet:       {Outline: star(4, 1.4, 0.7, 0)},
	ir.MarkerPlus:        {RX: 1, RY: 1, Hollow: true, Bare: true, Plus: true},
	ir.MarkerCirclePlus:  {RX: 1, RY: 1, Hollow: true, Plus: true},
	ir.MarkerCircleCross: {RX: 1, RY: 1, Hollow: true, Cross: true},
	ir.MarkerCircleDot:   {RX: 1, RY: 1, Hollow: true, Dot: true},
}

// MarkerShape returns the unit shape of m, a circle for unknown markers.
func MarkerShape(m ir.Marker) Shape {
	if s, ok := shapes[m]; ok {
		return s
	}
	return shapes[DefaultMarker]
}

// star returns an n-pointed star with alternating outer and inner radii,
// the first point straight up, rotated by rot radians.
func star(n int, outer, inner, rot float64) []ir.Point {
	pts := make([]ir.Point, 0, 2*n)
	for i := 0; i < 2*n; i++ {
		r := outer
		if i%2 == 1 {
			r = inner
		}
		a := rot - math.Pi/2 + float64(i)*math.Pi/float64(n)
		pts = append(pts, ir.Point{X: r * math.Cos(a), Y: r * math.Sin(a)})
	}
	return pts
}

func rect(half float64) []ir.Point {
	return []ir.Point{{X: -half, Y: -half}, {X: half, Y: -half}, {X: half, Y: half}, {X: -half, Y: half}}
}

// GradientEnds returns the end points of a linear ramp at angle degrees
// (0 = left to right, 90 = bottom to top) spanning a w×h area with y down.
func GradientEnds(angle, w, h float64) (x0, y0, x1, y1 float64) {
	rad := angle * math.Pi / 180
	dx, dy := math.Cos(rad), -math.Sin(rad)
	half := (math.Abs(dx)*w + math.Abs(dy)*h) / 2
	cx, cy := w/2, h/2
	return cx - dx*half, cy - dy*half, cx + dx*half, cy + dy*half
}

// SymbolShape returns the unit shape of a viewer symbol. Ellipses share the
// circle symbol and are drawn as circles.
func SymbolShape(symbol string) Shape {
	for m, s := range symbols {
		if s == symbol && m != ir.MarkerEllipse {
			return MarkerShape(m)
		}
	}
	return shapes[DefaultMarker]
}
