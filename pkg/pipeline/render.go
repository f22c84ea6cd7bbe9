package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"time"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/starbridge/pkg/interactive"
	"github.com/matzehuels/starbridge/pkg/observability"
	"github.com/matzehuels/starbridge/pkg/rasterize"
)

// Export writes fig in every requested format.
func Export(ctx context.Context, fig *interactive.Figure, opts Options) (map[string][]byte, error) {
	opts.SetDefaults()
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		start := time.Now()
		data, err := exportFormat(ctx, fig, format, opts)
		observability.Render().OnExport(ctx, format, len(data), time.Since(start), err)
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func exportFormat(ctx context.Context, fig *interactive.Figure, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatHTML:
		return interactive.RenderHTML(fig,
			interactive.WithSize(opts.Width, opts.Height),
			interactive.WithEmbeddedFigure())
	case FormatSVG:
		return interactive.RenderSVG(fig, interactive.WithTooltips()), nil
	case FormatPNG:
		return renderPNG(ctx, fig, opts)
	case FormatJSON:
		return fig.JSON()
	}
	return nil, fmt.Errorf("unsupported format: %s", format)
}

func renderPNG(ctx context.Context, fig *interactive.Figure, opts Options) ([]byte, error) {
	img, err := Rasterize(ctx, fig, opts)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Rasterize draws fig with opts.Rasterizer, or with the backend named by
// opts.Backend. A backend created here is closed before returning.
func Rasterize(ctx context.Context, fig *interactive.Figure, opts Options) (image.Image, error) {
	opts.SetDefaults()
	r := opts.Rasterizer
	if r == nil {
		var err error
		if r, err = rasterize.ByName(opts.Backend); err != nil {
			return nil, err
		}
		if c, ok := r.(io.Closer); ok {
			defer c.Close()
		}
	}
	opts.Logger.Debug("rasterizing figure", "backend", r.Name())
	return r.Rasterize(ctx, fig)
}
