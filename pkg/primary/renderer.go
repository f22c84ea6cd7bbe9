package primary

import (
	"github.com/matzehuels/starbridge/pkg/errors"
	"github.com/matzehuels/starbridge/pkg/ir"
)

// DefaultMarkerArea is the marker area used when a scatter call has no sizes.
const DefaultMarkerArea = 36.0

// Renderer is the primitive drawing surface wrapped by the recorder.
type Renderer interface {
	Scatter(ScatterCall) error
	Plot(PlotCall) error
	Polygon(PolygonCall) error
	Text(TextCall) (TextResult, error)
	LineCollection(LineCollectionCall) error
	Gradient(GradientCall) error

	// Export writes the rendered raster to path; the format follows the
	// file extension.
	Export(path string) error
}

// Style is a style in the primary renderer's conventions. Colours are hex
// codes, CSS names or single-letter codes. Alpha of zero means unset.
type Style struct {
	Color      string
	EdgeColor  string
	FillColor  string
	Alpha      float64
	LineWidth  float64
	EdgeWidth  float64
	LineStyle  string
	Marker     string
	FontSize   float64
	FontWeight string
	FontName   string
	HA         string
	VA         string
}

// Layer places a call in the scene.
type Layer struct {
	Group string
	Z     int
}

// =============================================================================
// Calls
// =============================================================================

// ScatterCall draws one marker per (X[i], Y[i]). Sizes, Colors and Alphas
// may be empty (use the style), hold one value (broadcast) or one value
// per point.
type ScatterCall struct {
	X, Y   []float64
	Sizes  []float64
	Colors []string
	Alphas []float64
	Style  Style
	Layer  Layer
	Meta   []ir.Record
}

// Len returns the number of points.
func (c ScatterCall) Len() int { return len(c.X) }

// Expand validates the parallel arrays and returns sizes, colours and
// alphas broadcast to one entry per point.
func (c ScatterCall) Expand() ([]float64, []string, []float64, error) {
	n := len(c.X)
	if len(c.Y) != n {
		return nil, nil, nil, errors.Mismatch("points", "y", len(c.Y), n)
	}

	sizes, err := broadcast("sizes", c.Sizes, n, DefaultMarkerArea)
	if err != nil {
		return nil, nil, nil, err
	}
	colors, err := broadcast("colors", c.Colors, n, c.Style.Color)
	if err != nil {
		return nil, nil, nil, err
	}
	alphas, err := broadcast("alphas", c.Alphas, n, c.Style.Alpha)
	if err != nil {
		return nil, nil, nil, err
	}
	return sizes, colors, alphas, nil
}

func broadcast[T any](field string, in []T, n int, def T) ([]T, error) {
	switch len(in) {
	case n:
		return in, nil
	case 0, 1:
		v := def
		if len(in) == 1 {
			v = in[0]
		}
		out := make([]T, n)
		for i := range out {
			out[i] = v
		}
		return out, nil
	default:
		return nil, errors.Mismatch("points", field, len(in), n)
	}
}

// PlotCall draws one connected line through (X[i], Y[i]).
type PlotCall struct {
	X, Y  []float64
	Style Style
	Layer Layer
	Meta  ir.Record
}

// Points validates the call and returns its vertices.
func (c PlotCall) Points() ([]ir.Point, error) {
	if len(c.X) != len(c.Y) {
		return nil, errors.Mismatch("polyline", "y", len(c.Y), len(c.X))
	}
	pts := make([]ir.Point, len(c.X))
	for i := range c.X {
		pts[i] = ir.Point{X: c.X[i], Y: c.Y[i]}
	}
	return pts, nil
}

// PolygonCall draws a closed ring. FillColor empty means outline only.
type PolygonCall struct {
	Points []ir.Point
	Style  Style
	Layer  Layer
	Meta   ir.Record
}

// TextCall draws a label anchored at (X, Y) with alignment Style.HA and
// Style.VA. Unless AllowOverlap is set, a label overlapping an earlier kept
// label or leaving the canvas is discarded; with Retry, alternative
// placements around the anchor are tried first.
type TextCall struct {
	Text         string
	X, Y         float64
	Style        Style
	Layer        Layer
	Meta         ir.Record
	AllowOverlap bool
	Retry        bool
}

// TextResult is the outcome of a text call.
type TextResult struct {
	Kept bool
	X, Y float64
	HA   string
	VA   string
}

// LineCollectionCall draws many disjoint segments with one style.
type LineCollectionCall struct {
	Segments [][]ir.Point
	Style    Style
	Layer    Layer
	Meta     []ir.Record
}

// GradientCall fills the canvas with a colour ramp.
type GradientCall struct {
	Shape ir.GradientShape
	Angle float64
	Stops []ir.ColorStop
	Layer Layer
}

// Z is the call's z-order. An unset layer z draws at GradientZ, behind
// everything at the default layer.
func (c GradientCall) Z() int {
	if c.Layer.Z == 0 {
		return GradientZ
	}
	return c.Layer.Z
}
