package rasterize

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os/exec"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/starbridge/pkg/errors"
	"github.com/matzehuels/starbridge/pkg/interactive"
)

// RSVG converts the figure's SVG with rsvg-convert.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
type RSVG struct {
	bin string
}

// NewRSVG creates an RSVG backend using rsvg-convert from PATH.
func NewRSVG() *RSVG { return &RSVG{bin: "rsvg-convert"} }

// Name implements Rasterizer.
func (*RSVG) Name() string { return BackendRSVG }

// Available reports whether rsvg-convert can be found.
func (r *RSVG) Available() bool {
	_, err := exec.LookPath(r.bin)
	return err == nil
}

// Rasterize implements Rasterizer.
func (r *RSVG) Rasterize(ctx context.Context, fig *interactive.Figure) (image.Image, error) {
	w, h := Size(fig)
	data, err := r.convert(ctx, interactive.RenderSVG(fig), "png",
		"-w", fmt.Sprint(w), "-h", fmt.Sprint(h))
	if err != nil {
		return nil, err
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode rsvg-convert output")
	}
	return fit(img, w, h), nil
}

// PDF converts the figure's SVG to PDF.
func (r *RSVG) PDF(ctx context.Context, fig *interactive.Figure) ([]byte, error) {
	return r.convert(ctx, interactive.RenderSVG(fig), "pdf")
}

// convert shells out to rsvg-convert for format conversion.
func (r *RSVG) convert(ctx context.Context, svg []byte, format string, extraArgs ...string) ([]byte, error) {
	if !r.Available() {
		return nil, errors.New(errors.ErrCodeUnsupported, "%s export requires librsvg. Install with:\n  macOS:  brew install librsvg\n  Linux:  apt install librsvg2-bin", format)
	}

	args := append([]string{"-f", format}, extraArgs...)
	cmd := exec.CommandContext(ctx, r.bin, args...)
	cmd.Stdin = bytes.NewReader(svg)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeExportFailed, err, "rsvg-convert: %s", errBuf.String())
	}
	return out.Bytes(), nil
}
