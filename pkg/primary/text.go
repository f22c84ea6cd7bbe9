package primary

import (
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/matzehuels/starbridge/pkg/ir"
	"github.com/matzehuels/starbridge/pkg/style"
)

var (
	fontsOnce   sync.Once
	regularFont *truetype.Font
	boldFont    *truetype.Font
)

func loadFonts() {
	fontsOnce.Do(func() {
		regularFont, _ = truetype.Parse(goregular.TTF)
		boldFont, _ = truetype.Parse(gobold.TTF)
	})
}

type faceKey struct {
	size float64
	bold bool
}

// fontCache holds faces per size and weight. Faces are not safe for
// concurrent use, so each canvas has its own cache.
type fontCache struct {
	faces map[faceKey]font.Face
}

func newFontCache() *fontCache {
	loadFonts()
	return &fontCache{faces: make(map[faceKey]font.Face)}
}

func (fc *fontCache) face(size float64, bold bool) font.Face {
	k := faceKey{size, bold}
	if f, ok := fc.faces[k]; ok {
		return f
	}
	f := regularFont
	if bold {
		f = boldFont
	}
	face := truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingNone})
	fc.faces[k] = face
	return face
}

// box is a label bounding box in raster pixels.
type box struct {
	x0, y0, x1, y1 float64
}

func (b box) overlaps(o box, pad float64) bool {
	return b.x0 < o.x1+pad && o.x0 < b.x1+pad && b.y0 < o.y1+pad && o.y0 < b.y1+pad
}

func (b box) inside(w, h float64) bool {
	return b.x0 >= 0 && b.y0 >= 0 && b.x1 <= w && b.y1 <= h
}

// Alignment factors for gg.DrawStringAnchored.
var (
	hFactor = map[ir.HAnchor]float64{ir.HAnchorLeft: 0, ir.HAnchorCenter: 0.5, ir.HAnchorRight: 1}
	vFactor = map[ir.VAnchor]float64{ir.VAnchorTop: 1, ir.VAnchorCenter: 0.5, ir.VAnchorBottom: 0, ir.VAnchorBaseline: 0}
)

// placement is one candidate label position: an anchor and a pixel offset.
type placement struct {
	anchor ir.Anchor
	dx, dy float64
}

// candidates lists placements in the order they are tried. The first is
// the requested one; retries move the label to the four diagonals.
func candidates(a ir.Anchor, retry bool, gap float64) []placement {
	out := []placement{{anchor: a}}
	if !retry {
		return out
	}
	return append(out,
		placement{ir.Anchor{V: ir.VAnchorBottom, H: ir.HAnchorLeft}, gap, -gap},
		placement{ir.Anchor{V: ir.VAnchorTop, H: ir.HAnchorLeft}, gap, gap},
		placement{ir.Anchor{V: ir.VAnchorBottom, H: ir.HAnchorRight}, -gap, -gap},
		placement{ir.Anchor{V: ir.VAnchorTop, H: ir.HAnchorRight}, -gap, gap},
	)
}

// Text implements Renderer. The label is kept at the first candidate
// placement that stays on the canvas and clears every kept label.
func (c *Canvas) Text(call TextCall) (TextResult, error) {
	if err := ir.ValidateGeometry(ir.TextLabel{Text: call.Text, At: ir.Point{X: call.X, Y: call.Y}}); err != nil {
		return TextResult{}, err
	}
	st := call.Style
	size := style.FontSize(st.FontSize) * c.scale
	bold := style.FontWeight(st.FontWeight) == "bold"
	face := c.fonts.face(size, bold)
	c.measure.SetFontFace(face)
	tw, th := c.measure.MeasureString(call.Text)

	anchor, _ := style.Anchor(st.VA, st.HA)
	x, y := c.px(ir.Point{X: call.X, Y: call.Y})

	for _, cand := range candidates(anchor, call.Retry, th/2) {
		px, py := x+cand.dx, y+cand.dy
		ax, ay := hFactor[cand.anchor.H], vFactor[cand.anchor.V]
		b := box{x0: px - ax*tw, y0: py - (1-ay)*th, x1: px + (1-ax)*tw, y1: py + ay*th}
		if c.collisions && !call.AllowOverlap && !c.free(b) {
			continue
		}

		c.labels = append(c.labels, b)
		hex, a, _ := style.Color(st.Color)
		if hex == "" {
			hex = style.FallbackColor
		}
		col := rgba(hex, style.Alpha(st.Alpha)*a)
		text := call.Text
		c.push(call.Layer.Z, func(dc *gg.Context) {
			dc.SetFontFace(face)
			dc.SetColor(col)
			dc.DrawStringAnchored(text, px, py, ax, ay)
		})
		c.tally(call.Layer.Group, 1)

		at := c.proj.Rendered.Unmap(px, py, c.w, c.h)
		return TextResult{
			Kept: true,
			X:    at.X,
			Y:    at.Y,
			HA:   string(cand.anchor.H),
			VA:   string(cand.anchor.V),
		}, nil
	}
	return TextResult{}, nil
}

func (c *Canvas) free(b box) bool {
	if !b.inside(c.w, c.h) {
		return false
	}
	pad := c.padding * c.scale
	for _, k := range c.labels {
		if b.overlaps(k, pad) {
			return false
		}
	}
	return true
}
