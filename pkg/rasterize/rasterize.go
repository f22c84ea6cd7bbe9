// Package rasterize turns interactive figures into raster images so they can
// be compared with the primary renderer's output.
//
// Three backends are available:
//
//   - [Vector] draws the figure's SVG in-process with oksvg. It needs no
//     external tools but does not draw text labels.
//   - [RSVG] converts the SVG with the rsvg-convert binary from librsvg.
//   - [Browser] screenshots the HTML page in headless Chromium via go-rod.
//     It is the only backend that executes the page exactly as a viewer
//     would see it.
//
// All backends produce an image of Layout.Width×Layout.Height scaled by
// Layout.Scale, the same pixel size the primary renderer uses for the scene.
package rasterize

import (
	"context"
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/starbridge/pkg/errors"
	"github.com/matzehuels/starbridge/pkg/interactive"
)

// Backend names accepted by ByName.
const (
	BackendVector  = "vector"
	BackendRSVG    = "rsvg"
	BackendBrowser = "browser"
)

// Rasterizer draws a figure into an image.
type Rasterizer interface {
	Rasterize(ctx context.Context, fig *interactive.Figure) (image.Image, error)
	Name() string
}

// ByName returns the backend called name. Browser backends own a Chromium
// process; callers must Close them.
func ByName(name string) (Rasterizer, error) {
	switch name {
	case "", BackendVector:
		return NewVector(), nil
	case BackendRSVG:
		return NewRSVG(), nil
	case BackendBrowser:
		return NewBrowser(), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown rasterizer backend %q (want %s, %s or %s)",
		name, BackendVector, BackendRSVG, BackendBrowser)
}

// Size returns the pixel size of fig's raster.
func Size(fig *interactive.Figure) (int, int) {
	s := fig.Layout.Scale
	if s <= 0 {
		s = 1
	}
	return int(math.Round(float64(fig.Layout.Width) * s)), int(math.Round(float64(fig.Layout.Height) * s))
}

// Save writes img to path. The format follows the extension.
func Save(img image.Image, path string) error {
	if err := errors.ValidateOutputPath(path); err != nil {
		return err
	}
	if err := errors.ValidateExtension(path, ".png", ".jpg", ".jpeg"); err != nil {
		return err
	}
	if err := imaging.Save(img, path); err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, err, "save %s", path)
	}
	return nil
}

// fit resizes img to w×h when a backend produced a different size.
func fit(img image.Image, w, h int) image.Image {
	if b := img.Bounds(); b.Dx() == w && b.Dy() == h {
		return img
	}
	return imaging.Resize(img, w, h, imaging.Lanczos)
}
