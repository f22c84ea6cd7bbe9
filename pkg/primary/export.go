package primary

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/jung-kurt/gofpdf"

	"github.com/matzehuels/starbridge/pkg/errors"
)

// Export implements Renderer. Supported extensions are .png and .pdf.
func (c *Canvas) Export(path string) error {
	if err := errors.ValidateOutputPath(path); err != nil {
		return err
	}
	if err := errors.ValidateExtension(path, ".png", ".pdf"); err != nil {
		return err
	}

	var buf bytes.Buffer
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		err = c.WritePDF(&buf)
	default:
		err = c.WritePNG(&buf)
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, err, "write %s", path)
	}
	return nil
}

// WritePNG encodes the raster as PNG.
func (c *Canvas) WritePNG(w io.Writer) error {
	if err := imaging.Encode(w, c.Image(), imaging.PNG); err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, err, "encode png")
	}
	return nil
}

// WritePDF writes a single-page PDF sized in points to the logical canvas
// with the raster embedded at full resolution.
func (c *Canvas) WritePDF(w io.Writer) error {
	var img bytes.Buffer
	if err := c.WritePNG(&img); err != nil {
		return err
	}

	pw, ph := float64(c.desc.Width), float64(c.desc.Height)
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: pw, Ht: ph},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	opt := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("scene", opt, &img)
	pdf.ImageOptions("scene", 0, 0, pw, ph, false, opt, 0, "")
	if err := pdf.Output(w); err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, err, "encode pdf")
	}
	return nil
}
