package interactive

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/matzehuels/starbridge/pkg/errors"
)

const viewerCSS = `
    body { margin: 0; font-family: -apple-system, "Segoe UI", Helvetica, Arial, sans-serif; background: %s; }
    .sb-figure { position: relative; display: inline-block; }
    .sb-figure svg { display: block; cursor: grab; touch-action: none; }
    .sb-figure svg:active { cursor: grabbing; }
    .sb-title { margin: 8px 12px; font-size: 16px; color: #333; }
    .sb-toolbar { position: absolute; top: 8px; right: 8px; }
    .sb-toolbar button { font-size: 12px; padding: 2px 8px; cursor: pointer; }
    .sb-legend { position: absolute; top: 40px; right: 8px; margin: 0; padding: 6px 10px; list-style: none;
      background: rgba(255,255,255,0.85); border: 1px solid #ccc; border-radius: 4px; font-size: 12px; }
    .sb-legend li { cursor: pointer; padding: 2px 0; user-select: none; }
    .sb-legend li.off { opacity: 0.35; }
    .sb-swatch { display: inline-block; width: 10px; height: 10px; margin-right: 6px; vertical-align: middle; }
    .sb-swatch.circle { border-radius: 50%%; }
    .sb-swatch.line { height: 2px; }
    .sb-tooltip { position: absolute; display: none; pointer-events: none; white-space: pre; font-size: 12px;
      padding: 4px 8px; background: rgba(0,0,0,0.8); color: #fff; border-radius: 3px; }`

const viewerJS = `
(function () {
  const root = document.querySelector('.sb-figure');
  const svg = root.querySelector('svg');
  const base = svg.viewBox.baseVal;
  const init = { x: base.x, y: base.y, w: base.width, h: base.height };
  let vb = Object.assign({}, init);
  let drag = null;
  function apply() { svg.setAttribute('viewBox', vb.x + ' ' + vb.y + ' ' + vb.w + ' ' + vb.h); }
  svg.addEventListener('wheel', e => {
    e.preventDefault();
    const r = svg.getBoundingClientRect();
    const mx = vb.x + (e.clientX - r.left) / r.width * vb.w;
    const my = vb.y + (e.clientY - r.top) / r.height * vb.h;
    const k = e.deltaY < 0 ? 0.8 : 1.25;
    vb.x = mx - (mx - vb.x) * k; vb.y = my - (my - vb.y) * k;
    vb.w *= k; vb.h *= k;
    apply();
  }, { passive: false });
  svg.addEventListener('pointerdown', e => {
    drag = { x: e.clientX, y: e.clientY, vx: vb.x, vy: vb.y };
    svg.setPointerCapture(e.pointerId);
  });
  svg.addEventListener('pointermove', e => {
    if (!drag) return;
    const r = svg.getBoundingClientRect();
    vb.x = drag.vx - (e.clientX - drag.x) / r.width * vb.w;
    vb.y = drag.vy - (e.clientY - drag.y) / r.height * vb.h;
    apply();
  });
  svg.addEventListener('pointerup', () => { drag = null; });
  const reset = root.querySelector('[data-action="reset"]');
  if (reset) reset.addEventListener('click', () => { vb = Object.assign({}, init); apply(); });
  root.querySelectorAll('.sb-legend li').forEach(li => li.addEventListener('click', () => {
    const off = li.classList.toggle('off');
    svg.querySelectorAll('.sb-trace').forEach(t => {
      if (t.dataset.group === li.dataset.group) t.style.display = off ? 'none' : '';
    });
  }));
  const tip = root.querySelector('.sb-tooltip');
  svg.addEventListener('mousemove', e => {
    const el = e.target.closest('[data-hover]');
    if (!el || drag) { tip.style.display = 'none'; return; }
    const r = root.getBoundingClientRect();
    tip.textContent = el.dataset.hover;
    tip.style.left = (e.clientX - r.left + 12) + 'px';
    tip.style.top = (e.clientY - r.top + 12) + 'px';
    tip.style.display = 'block';
  });
  svg.addEventListener('mouseleave', () => { tip.style.display = 'none'; });
})();`

// HTMLOption configures RenderHTML.
type HTMLOption func(*htmlRenderer)

type htmlRenderer struct {
	width, height int
	legend        bool
	embedFigure   bool
	static        bool
}

// WithSize sets the displayed size in CSS pixels. Zero keeps the figure size.
func WithSize(width, height int) HTMLOption {
	return func(r *htmlRenderer) { r.width, r.height = width, height }
}

// WithoutLegend omits the legend panel.
func WithoutLegend() HTMLOption { return func(r *htmlRenderer) { r.legend = false } }

// WithStatic drops the controls, the legend and the script so the page shows
// only the figure. It is meant for screenshots.
func WithStatic() HTMLOption {
	return func(r *htmlRenderer) { r.static, r.legend = true, false }
}

// WithEmbeddedFigure embeds the figure JSON in a script element with id
// "sb-figure".
func WithEmbeddedFigure() HTMLOption { return func(r *htmlRenderer) { r.embedFigure = true } }

// RenderHTML produces a self-contained page with pan, zoom, legend toggling
// and hover tooltips.
func RenderHTML(f *Figure, opts ...HTMLOption) ([]byte, error) {
	r := htmlRenderer{legend: true}
	for _, opt := range opts {
		opt(&r)
	}
	width, height := r.width, r.height
	if width <= 0 {
		width = f.Layout.Width
	}
	if height <= 0 {
		height = f.Layout.Height
	}

	svg := RenderSVG(f, withHoverData(), WithHiddenTraces())
	svg = bytes.Replace(svg,
		[]byte(fmt.Sprintf(`width="%d" height="%d">`, f.Layout.Width, f.Layout.Height)),
		[]byte(fmt.Sprintf(`width="%d" height="%d" preserveAspectRatio="xMidYMid meet">`, width, height)), 1)

	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&buf, "<title>%s</title>\n", esc(pageTitle(f)))
	fmt.Fprintf(&buf, "<style>%s\n</style>\n</head>\n<body>\n", fmt.Sprintf(viewerCSS, f.Layout.Paper))
	if f.Title != "" {
		fmt.Fprintf(&buf, "<div class=\"sb-title\">%s</div>\n", esc(f.Title))
	}
	buf.WriteString("<div class=\"sb-figure\">\n")
	buf.Write(svg)
	if !r.static {
		buf.WriteString("<div class=\"sb-toolbar\"><button data-action=\"reset\">Reset view</button></div>\n")
	}
	if r.legend && len(f.Legend) > 0 {
		renderLegend(&buf, f)
	}
	buf.WriteString("<div class=\"sb-tooltip\"></div>\n</div>\n")

	if r.embedFigure {
		data, err := f.JSON()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode figure")
		}
		// "</" inside a script element would end it early.
		data = bytes.ReplaceAll(data, []byte("</"), []byte(`<\/`))
		fmt.Fprintf(&buf, "<script type=\"application/json\" id=\"sb-figure\">%s</script>\n", data)
	}
	if !r.static {
		fmt.Fprintf(&buf, "<script>%s\n</script>\n", viewerJS)
	}
	buf.WriteString("</body>\n</html>\n")
	return buf.Bytes(), nil
}

func renderLegend(buf *bytes.Buffer, f *Figure) {
	buf.WriteString("<ul class=\"sb-legend\">\n")
	for _, e := range f.Legend {
		off := ""
		if len(e.Traces) > 0 && !f.Traces[e.Traces[0]].Visible {
			off = ` class="off"`
		}
		fmt.Fprintf(buf, `  <li data-group="%s"%s><span class="sb-swatch %s" style="background:%s"></span>%s</li>`+"\n",
			esc(e.Group), off, swatchClass(e.Symbol), e.Color, esc(e.Name))
	}
	buf.WriteString("</ul>\n")
}

func swatchClass(symbol string) string {
	switch {
	case symbol == "line":
		return "line"
	case strings.HasPrefix(symbol, "circle"):
		return "circle"
	}
	return "square"
}

func pageTitle(f *Figure) string {
	if f.Title != "" {
		return f.Title
	}
	return "starbridge " + f.Layout.Projection
}

// ExportHTML writes the interactive page for f to path.
func ExportHTML(f *Figure, path string, width, height int, opts ...HTMLOption) error {
	if err := errors.ValidateOutputPath(path); err != nil {
		return err
	}
	if err := errors.ValidateExtension(path, ".html", ".htm"); err != nil {
		return err
	}
	data, err := RenderHTML(f, append(opts, WithSize(width, height))...)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, err, "write %s", path)
	}
	return nil
}

// FigureFromJSON decodes a figure written by Figure.JSON.
func FigureFromJSON(data []byte) (*Figure, error) {
	var f Figure
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode figure")
	}
	return &f, nil
}
