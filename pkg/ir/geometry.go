package ir

import (
	"math"

	"github.com/matzehuels/starbridge/pkg/errors"
)

// Point is a coordinate pair in rendered (already projected) space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Geometry is the kind-specific payload of a command. The set of
// implementations is closed; see the package documentation.
type Geometry interface {
	// Kind returns the variant tag.
	Kind() Kind
	// Len returns the element count used for metadata alignment and
	// structural checks: points for clusters, segments for bundles, and 1
	// for every other kind.
	Len() int

	validate() error
}

// =============================================================================
// Point cluster
// =============================================================================

// PointCluster is a scatter of markers. All five slices have the same
// length. Sizes use the primary renderer's area convention (pt²); Colors are
// normalized "#rrggbb" strings and Alphas are resolved opacities in [0, 1]
// with zero fully transparent.
type PointCluster struct {
	X      []float64 `json:"x"`
	Y      []float64 `json:"y"`
	Sizes  []float64 `json:"sizes"`
	Colors []string  `json:"colors"`
	Alphas []float64 `json:"alphas"`
}

func (PointCluster) Kind() Kind { return KindPoints }
func (g PointCluster) Len() int { return len(g.X) }

// At returns the i-th point.
func (g PointCluster) At(i int) Point { return Point{g.X[i], g.Y[i]} }

func (g PointCluster) validate() error {
	n := len(g.X)
	fields := []struct {
		name string
		n    int
	}{
		{"y", len(g.Y)},
		{"sizes", len(g.Sizes)},
		{"colors", len(g.Colors)},
		{"alphas", len(g.Alphas)},
	}
	for _, f := range fields {
		if f.n != n {
			return errors.Mismatch(KindPoints.String(), f.name, f.n, n)
		}
	}
	for i := 0; i < n; i++ {
		if !finite(g.X[i]) || !finite(g.Y[i]) || !finite(g.Sizes[i]) {
			return errors.New(errors.ErrCodeInvalidCommand, "points command: element %d is not finite", i)
		}
	}
	return nil
}

// =============================================================================
// Lines and shapes
// =============================================================================

// Polyline is one connected run of points.
type Polyline struct {
	Points []Point `json:"points"`
}

func (Polyline) Kind() Kind { return KindPolyline }
func (Polyline) Len() int   { return 1 }

func (g Polyline) validate() error {
	if len(g.Points) < 2 {
		return errors.New(errors.ErrCodeInvalidCommand, "polyline command: need at least 2 points, got %d", len(g.Points))
	}
	return checkPoints(KindPolyline, g.Points)
}

// Polygon is a closed ring. The ring may or may not repeat its first point
// at the end; [Polygon.Closed] always returns the explicitly closed form.
type Polygon struct {
	Ring []Point `json:"ring"`
}

func (Polygon) Kind() Kind { return KindPolygon }
func (Polygon) Len() int   { return 1 }

// Closed returns the ring with the first point repeated at the end.
func (g Polygon) Closed() []Point {
	n := len(g.Ring)
	if n == 0 || g.Ring[0] == g.Ring[n-1] {
		return append([]Point(nil), g.Ring...)
	}
	out := make([]Point, 0, n+1)
	out = append(out, g.Ring...)
	return append(out, g.Ring[0])
}

func (g Polygon) validate() error {
	if len(g.Ring) < 3 {
		return errors.New(errors.ErrCodeInvalidCommand, "polygon command: need at least 3 points, got %d", len(g.Ring))
	}
	return checkPoints(KindPolygon, g.Ring)
}

// LineBundle is a set of disjoint segments drawn with one style.
type LineBundle struct {
	Segments [][]Point `json:"segments"`
}

func (LineBundle) Kind() Kind { return KindLineBundle }
func (g LineBundle) Len() int { return len(g.Segments) }

func (g LineBundle) validate() error {
	for i, seg := range g.Segments {
		if len(seg) < 2 {
			return errors.New(errors.ErrCodeInvalidCommand, "line_bundle command: segment %d has %d points", i, len(seg))
		}
		if err := checkPoints(KindLineBundle, seg); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Text
// =============================================================================

// TextLabel is a label the primary renderer kept at its final position.
type TextLabel struct {
	Text string `json:"text"`
	At   Point  `json:"at"`
}

func (TextLabel) Kind() Kind { return KindText }
func (TextLabel) Len() int   { return 1 }

func (g TextLabel) validate() error {
	return checkPoints(KindText, []Point{g.At})
}

// =============================================================================
// Gradient
// =============================================================================

// GradientShape selects how a gradient ramp is laid out.
type GradientShape string

const (
	GradientLinear GradientShape = "linear"
	GradientRadial GradientShape = "radial"
)

// ColorStop is one position on a gradient ramp.
type ColorStop struct {
	Offset float64 `json:"offset"`
	Color  string  `json:"color"`
}

// GradientFill paints the rendered extent with a colour ramp. Linear ramps
// run along Angle (degrees, 0 = left to right, 90 = bottom to top); radial
// ramps run from the centre outwards.
type GradientFill struct {
	Shape GradientShape `json:"shape"`
	Angle float64       `json:"angle,omitempty"`
	Stops []ColorStop   `json:"stops"`
}

func (GradientFill) Kind() Kind { return KindGradient }
func (GradientFill) Len() int   { return 1 }

func (g GradientFill) validate() error {
	if g.Shape != GradientLinear && g.Shape != GradientRadial {
		return errors.New(errors.ErrCodeInvalidCommand, "gradient command: unknown shape %q", g.Shape)
	}
	if len(g.Stops) < 2 {
		return errors.New(errors.ErrCodeInvalidCommand, "gradient command: need at least 2 stops, got %d", len(g.Stops))
	}
	prev := math.Inf(-1)
	for i, s := range g.Stops {
		if s.Offset < 0 || s.Offset > 1 || s.Offset < prev {
			return errors.New(errors.ErrCodeInvalidCommand, "gradient command: stop %d offset %g out of order", i, s.Offset)
		}
		prev = s.Offset
	}
	return nil
}

// ValidateGeometry checks a geometry payload on its own, without the
// command-level group and metadata checks.
func ValidateGeometry(g Geometry) error {
	if g == nil {
		return errors.New(errors.ErrCodeInvalidCommand, "command has no geometry")
	}
	return g.validate()
}

func checkPoints(k Kind, pts []Point) error {
	for i, p := range pts {
		if !finite(p.X) || !finite(p.Y) {
			return errors.New(errors.ErrCodeInvalidCommand, "%s command: point %d is not finite", k, i)
		}
	}
	return nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
