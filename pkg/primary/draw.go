package primary

import (
	"image/color"
	"math"

	"github.com/fogleman/gg"

	"github.com/matzehuels/starbridge/pkg/style"
)

// traceShape appends the outline of shape at (x, y) with radius r.
func traceShape(dc *gg.Context, s style.Shape, x, y, r float64) {
	if s.Round() {
		if s.RX == s.RY {
			dc.DrawCircle(x, y, r*s.RX)
		} else {
			dc.DrawEllipse(x, y, r*s.RX, r*s.RY)
		}
		return
	}
	dc.NewSubPath()
	for i, p := range s.Outline {
		if i == 0 {
			dc.MoveTo(x+p.X*r, y+p.Y*r)
			continue
		}
		dc.LineTo(x+p.X*r, y+p.Y*r)
	}
	dc.ClosePath()
}

// drawMarker paints one marker. Hollow shapes are stroked with the fill
// colour at a width proportional to the radius.
func drawMarker(dc *gg.Context, s style.Shape, x, y, r float64, col color.Color) {
	dc.SetColor(col)
	if !s.Hollow {
		traceShape(dc, s, x, y, r)
		dc.Fill()
		return
	}

	dc.SetLineWidth(math.Max(1, r/4))
	if !s.Bare {
		traceShape(dc, s, x, y, r)
		dc.Stroke()
	}
	if s.Plus {
		dc.DrawLine(x-r, y, x+r, y)
		dc.DrawLine(x, y-r, x, y+r)
		dc.Stroke()
	}
	if s.Cross {
		d := r * math.Sqrt2 / 2
		dc.DrawLine(x-d, y-d, x+d, y+d)
		dc.DrawLine(x-d, y+d, x+d, y-d)
		dc.Stroke()
	}
	if s.Dot {
		dc.DrawCircle(x, y, math.Max(0.5, r/4))
		dc.Fill()
	}
}
