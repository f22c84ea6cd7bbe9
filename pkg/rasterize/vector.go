package rasterize

import (
	"bytes"
	"context"
	"image"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/matzehuels/starbridge/pkg/errors"
	"github.com/matzehuels/starbridge/pkg/interactive"
)

// Vector rasterizes the figure's SVG in-process. oksvg has no text support,
// so labels are missing from its output.
type Vector struct{}

// NewVector creates a Vector backend.
func NewVector() *Vector { return &Vector{} }

// Name implements Rasterizer.
func (*Vector) Name() string { return BackendVector }

// Rasterize implements Rasterizer.
func (*Vector) Rasterize(ctx context.Context, fig *interactive.Figure) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return SVGToImage(interactive.RenderSVG(fig), fig)
}

// SVGToImage draws svg at fig's raster size.
func SVGToImage(svg []byte, fig *interactive.Figure) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(svg), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse svg")
	}
	w, h := Size(fig)
	icon.SetTarget(0, 0, float64(w), float64(h))

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1)
	return img, nil
}
