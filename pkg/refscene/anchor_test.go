package refscene

import (
	"context"
	"fmt"
	"image"
	"math"
	"testing"

	"github.com/matzehuels/starbridge/pkg/interactive"
	"github.com/matzehuels/starbridge/pkg/ir"
	"github.com/matzehuels/starbridge/pkg/primary"
	"github.com/matzehuels/starbridge/pkg/recorder"
	"github.com/matzehuels/starbridge/pkg/style"
)

// inkBounds returns the bounding box of bright pixels.
func inkBounds(img image.Image) (image.Rectangle, bool) {
	b := img.Bounds()
	ink := image.Rectangle{Min: b.Max, Max: b.Min}
	found := false
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if r, _, _, _ := img.At(x, y).RGBA(); r>>8 > 127 {
				ink = ink.Union(image.Rect(x, y, x+1, y+1))
				found = true
			}
		}
	}
	return ink, found
}

// side reports where the span [lo, hi] lies relative to at along one axis:
// 1 after it, -1 before it, 0 across it.
func side(lo, hi, at float64) int {
	const tol = 2
	switch {
	case lo >= at-tol:
		return 1
	case hi <= at+tol:
		return -1
	}
	return 0
}

// svgSide is the side implied by an SVG text-anchor or dominant-baseline
// value in y-down coordinates.
var svgSide = map[string]int{
	"start":            1,
	"middle":           0,
	"end":              -1,
	"text-before-edge": 1,
	"central":          0,
	"text-after-edge":  -1,
}

// TestLabelAnchorsMatchPrimaryRaster places one label per alignment pair on
// the reference canvas and checks that the interactive text anchors put the
// text on the same side of its point as the primary raster does, with and
// without a mirrored x axis.
func TestLabelAnchorsMatchPrimaryRaster(t *testing.T) {
	const (
		ra, dec = 120.0, 10.0
		size    = 40.0
	)
	vas := []string{"top", "center", "bottom", "baseline"}
	has := []string{"left", "center", "right"}

	for _, va := range vas {
		for _, ha := range has {
			for _, mirror := range []bool{false, true} {
				t.Run(fmt.Sprintf("%s/%s/mirror=%v", va, ha, mirror), func(t *testing.T) {
					proj, desc := Projection(), Canvas(1)
					canvas := primary.NewCanvas(proj, desc)
					rec := recorder.New(canvas, ir.New(proj, desc))
					res, err := rec.Text(primary.TextCall{
						Text:  "HIMEX",
						X:     ra,
						Y:     dec,
						Style: primary.Style{Color: "#ffffff", FontSize: size, VA: va, HA: ha},
						Layer: primary.Layer{Group: GroupLabels},
					})
					if err != nil || !res.Kept {
						t.Fatalf("Text = %+v, %v; want kept", res, err)
					}

					ink, ok := inkBounds(canvas.Image())
					if !ok {
						t.Fatal("no label ink on the primary raster")
					}
					px, py := proj.Rendered.Map(ir.Point{X: ra, Y: dec}, Width, Height)
					x0, x1 := float64(ink.Min.X), float64(ink.Max.X)
					if mirror {
						x0, x1, px = Width-x1, Width-x0, Width-px
					}
					wantH := side(x0, x1, px)
					wantV := side(float64(ink.Min.Y), float64(ink.Max.Y), py)

					fig, err := interactive.New(interactive.WithMirrorX(mirror)).Render(context.Background(), rec.Finalize())
					if err != nil {
						t.Fatalf("Render: %v", err)
					}
					tr := fig.Traces[0]
					x, y := fig.Layout.Map(tr.X[0], tr.Y[0])
					if math.Abs(x-px) > 0.5 || math.Abs(y-py) > 0.5 {
						t.Errorf("interactive point = (%.1f, %.1f), want (%.1f, %.1f)", x, y, px, py)
					}
					anchor, baseline := style.SVGTextAnchor(tr.Text.YAnchor, tr.Text.XAnchor)
					if got := svgSide[anchor]; got != wantH {
						t.Errorf("text-anchor %s puts text on side %d, primary ink %v is on side %d of x=%.1f",
							anchor, got, ink, wantH, px)
					}
					if got := svgSide[baseline]; got != wantV {
						t.Errorf("dominant-baseline %s puts text on side %d, primary ink %v is on side %d of y=%.1f",
							baseline, got, ink, wantV, py)
					}
				})
			}
		}
	}
}
