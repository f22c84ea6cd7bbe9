package interactive

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/starbridge/pkg/errors"
	"github.com/matzehuels/starbridge/pkg/ir"
)

var testProjection = ir.ProjectionDescriptor{
	ID:       "cartesian",
	Domain:   ir.Extent{XMin: 0, XMax: 100, YMin: 0, YMax: 100},
	Rendered: ir.Extent{XMin: 0, XMax: 100, YMin: 0, YMax: 100},
}

var testCanvas = ir.CanvasDescriptor{Background: "#ffffff", Width: 200, Height: 200, Scale: 1}

func points(group string, z int, xs, ys, sizes []float64) ir.Command {
	colors := make([]string, len(xs))
	alphas := make([]float64, len(xs))
	for i := range xs {
		colors[i], alphas[i] = "#ff0000", 1
	}
	return ir.Command{
		Geometry: ir.PointCluster{X: xs, Y: ys, Sizes: sizes, Colors: colors, Alphas: alphas},
		Style:    ir.Style{Marker: ir.MarkerCircle},
		Group:    group,
		Z:        z,
	}
}

func recording(t *testing.T, cmds ...ir.Command) *ir.Recording {
	t.Helper()
	rec := ir.New(testProjection, testCanvas)
	for _, c := range cmds {
		if err := rec.Append(c); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	return rec
}

func render(t *testing.T, rec *ir.Recording, opts ...Option) *Figure {
	t.Helper()
	fig, err := New(opts...).Render(context.Background(), rec)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return fig
}

func TestRenderPointsAndLines(t *testing.T) {
	rec := recording(t,
		points("points", 1, []float64{10, 20}, []float64{30, 40}, []float64{100, 400}),
		ir.Command{
			Geometry: ir.LineBundle{Segments: [][]ir.Point{{{X: 0, Y: 0}, {X: 50, Y: 50}}}},
			Style:    ir.Style{Color: "#0000ff", Width: 1},
			Group:    "lines",
		},
	)
	fig := render(t, rec)

	if fig.Mode != ModeFull {
		t.Errorf("Mode = %q, want %q", fig.Mode, ModeFull)
	}
	if fig.RecordingID != rec.ID.String() {
		t.Errorf("RecordingID = %q, want %q", fig.RecordingID, rec.ID)
	}
	counts := fig.ElementCounts()
	if counts["points"] != 2 || counts["lines"] != 1 {
		t.Errorf("ElementCounts = %v, want points:2 lines:1", counts)
	}

	var markers *Trace
	for i := range fig.Traces {
		if fig.Traces[i].Type == TraceMarkers {
			markers = &fig.Traces[i]
		}
	}
	if markers == nil {
		t.Fatal("no markers trace")
	}
	r := markers.Marker.Radii
	if got := r[1] / r[0]; math.Abs(got-2) > 1e-9 {
		t.Errorf("radius ratio = %v, want 2", got)
	}
	if len(fig.Legend) != 2 {
		t.Errorf("legend entries = %d, want 2", len(fig.Legend))
	}
}

func TestRenderMergesLegendPerGroup(t *testing.T) {
	rec := recording(t,
		points("stars", 1, []float64{1}, []float64{1}, []float64{10}),
		points("stars", 1, []float64{2}, []float64{2}, []float64{10}),
		points("stars", 1, []float64{3}, []float64{3}, []float64{10}),
	)
	fig := render(t, rec)

	if len(fig.Traces) != 3 {
		t.Fatalf("traces = %d, want 3", len(fig.Traces))
	}
	if len(fig.Legend) != 1 {
		t.Fatalf("legend entries = %d, want 1", len(fig.Legend))
	}
	e := fig.Legend[0]
	if e.Name != "Stars" || len(e.Traces) != 3 {
		t.Errorf("legend entry = %+v", e)
	}
	for i, tr := range fig.Traces {
		if tr.ShowLegend != (i == 0) {
			t.Errorf("trace %d ShowLegend = %v", i, tr.ShowLegend)
		}
	}
}

func TestRenderStableOrder(t *testing.T) {
	rec := recording(t,
		points("a", 2, []float64{1}, []float64{1}, []float64{1}),
		points("b", 1, []float64{1}, []float64{1}, []float64{1}),
		points("c", 1, []float64{1}, []float64{1}, []float64{1}),
		points("d", 0, []float64{1}, []float64{1}, []float64{1}),
	)
	fig := render(t, rec, WithWorkers(4))

	var got []string
	for _, tr := range fig.Traces {
		got = append(got, tr.Group)
	}
	if strings.Join(got, ",") != "d,b,c,a" {
		t.Errorf("order = %v, want [d b c a]", got)
	}
	if fig.Traces[1].Order != 1 || fig.Traces[2].Order != 2 {
		t.Errorf("Order = %d,%d, want 1,2", fig.Traces[1].Order, fig.Traces[2].Order)
	}
}

func TestRenderIdempotent(t *testing.T) {
	rec := recording(t,
		points("stars", 1, []float64{10, 20, 30}, []float64{10, 20, 30}, []float64{4, 9, 16}),
		ir.Command{Geometry: ir.TextLabel{Text: "Vega", At: ir.Point{X: 10, Y: 10}}, Group: "labels", Z: 5},
	)
	r := New(WithWorkers(3))
	first, err := r.Render(context.Background(), rec)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	second, err := r.Render(context.Background(), rec)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	a, _ := first.JSON()
	b, _ := second.JSON()
	if !bytes.Equal(a, b) {
		t.Error("rendering the same recording twice produced different figures")
	}
}

func TestRenderUnsupportedProjection(t *testing.T) {
	for _, id := range []string{"", "hammer"} {
		rec := ir.New(ir.ProjectionDescriptor{ID: id}, testCanvas)
		_, err := New().Render(context.Background(), rec)
		if !errors.Is(err, errors.ErrCodeUnsupportedProjection) {
			t.Errorf("projection %q: err = %v, want UNSUPPORTED_PROJECTION", id, err)
		}
	}
}

func TestRenderRejectsInvalidCommands(t *testing.T) {
	cmds := []ir.Command{{Geometry: ir.Polyline{Points: []ir.Point{{X: 1, Y: 1}}}, Group: "lines"}}
	_, err := New().RenderCommands(context.Background(), cmds, testProjection, testCanvas)
	if !errors.Is(err, errors.ErrCodeInvalidCommand) {
		t.Errorf("err = %v, want INVALID_COMMAND", err)
	}
}

func TestLineBundleBreaks(t *testing.T) {
	seg := func(x float64) []ir.Point { return []ir.Point{{X: x, Y: 0}, {X: x, Y: 10}} }
	rec := recording(t, ir.Command{
		Geometry: ir.LineBundle{Segments: [][]ir.Point{seg(1), seg(2), seg(3)}},
		Style:    ir.Style{Color: "#cccccc", Width: 0.5, Dash: ir.DashDashed},
		Group:    "grid",
	})
	fig := render(t, rec)
	tr := fig.Traces[0]

	if tr.Elements != 3 {
		t.Errorf("Elements = %d, want 3", tr.Elements)
	}
	if len(tr.X) != 8 || tr.X.Breaks() != 2 {
		t.Errorf("len(X) = %d, breaks = %d, want 8 and 2", len(tr.X), tr.X.Breaks())
	}
	data, err := json.Marshal(tr.X)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if strings.Count(string(data), "null") != 2 {
		t.Errorf("JSON = %s, want two nulls", data)
	}
	if tr.Line.Dash != "dash" || tr.Line.DashArray == "" {
		t.Errorf("Line = %+v, want dashed", tr.Line)
	}

	svg := string(RenderSVG(fig))
	if n := strings.Count(svg, "M"); n < 3 {
		t.Errorf("SVG path has %d subpaths, want 3", n)
	}
}

func TestPolygonFillAndOutline(t *testing.T) {
	ring := []ir.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}}
	tests := []struct {
		name     string
		style    ir.Style
		wantFill bool
		wantLine string
	}{
		{"outline", ir.Style{Color: "#00ff00", Width: 1}, false, "#00ff00"},
		{"filled", ir.Style{FillColor: "#0000ff", Width: 1}, true, ""},
		{"filled with edge", ir.Style{FillColor: "#0000ff", EdgeColor: "#ff0000", Width: 2}, true, "#ff0000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fig := render(t, recording(t, ir.Command{Geometry: ir.Polygon{Ring: ring}, Style: tt.style, Group: "shapes"}))
			tr := fig.Traces[0]
			if (tr.Fill != nil) != tt.wantFill {
				t.Errorf("Fill = %+v, want fill %v", tr.Fill, tt.wantFill)
			}
			switch {
			case tt.wantLine == "" && tr.Line != nil:
				t.Errorf("Line = %+v, want none", tr.Line)
			case tt.wantLine != "" && (tr.Line == nil || tr.Line.Color != tt.wantLine):
				t.Errorf("Line = %+v, want color %s", tr.Line, tt.wantLine)
			}
			if len(tr.X) != 4 {
				t.Errorf("ring not closed: %d points", len(tr.X))
			}
		})
	}
}

func TestRenderDecimatesOverBudget(t *testing.T) {
	var xs, ys, sizes []float64
	var meta []ir.Record
	for i := 1; i <= 10; i++ {
		xs = append(xs, float64(i))
		ys = append(ys, float64(i))
		sizes = append(sizes, float64(i))
		meta = append(meta, ir.Record{"name": string(rune('a' + i - 1))})
	}
	cmd := points("stars", 1, xs, ys, sizes)
	cmd.Metadata = meta
	fig := render(t, recording(t, cmd), WithBudget(Budget{MaxElements: 5}))

	if fig.Mode != ModeDecimated {
		t.Fatalf("Mode = %q, want decimated", fig.Mode)
	}
	tr := fig.Traces[0]
	if tr.Elements != 5 || len(tr.Hover) != 5 {
		t.Fatalf("Elements = %d, hover = %d, want 5", tr.Elements, len(tr.Hover))
	}
	if tr.X[0] != 6 || tr.X[4] != 10 {
		t.Errorf("kept X = %v, want the five largest in order", tr.X)
	}
	if tr.Hover[0] != "f" {
		t.Errorf("Hover[0] = %q, want f", tr.Hover[0])
	}
}

func TestRenderTimeBudgetExceeded(t *testing.T) {
	var xs, ys, sizes []float64
	for i := 0; i < 100; i++ {
		xs = append(xs, float64(i))
		ys = append(ys, float64(i))
		sizes = append(sizes, 1)
	}
	rec := recording(t, points("stars", 1, xs, ys, sizes))

	_, err := New(WithBudget(Budget{MaxElements: 10, TimeBudget: time.Nanosecond})).Render(context.Background(), rec)
	if !errors.Is(err, errors.ErrCodeBudgetExceeded) {
		t.Errorf("err = %v, want BUDGET_EXCEEDED", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = New(WithBudget(Budget{TimeBudget: time.Nanosecond})).Render(ctx, rec)
	if errors.Is(err, errors.ErrCodeBudgetExceeded) || !stderrors.Is(err, context.Canceled) {
		t.Errorf("cancelled caller: err = %v, want context.Canceled", err)
	}
}

func TestColorAlpha(t *testing.T) {
	ring := []ir.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}}
	rec := recording(t,
		ir.Command{
			Geometry: ir.Polygon{Ring: ring},
			Style:    ir.Style{FillColor: "#ff000080", EdgeColor: "#00ff0040", Width: 1},
			Group:    "milky-way",
		},
		ir.Command{
			Geometry: ir.TextLabel{Text: "hidden", At: ir.Point{X: 5, Y: 5}},
			Style:    ir.Style{Color: "#ffffff00"},
			Group:    "labels",
		},
	)
	cmd := points("stars", 1, []float64{1, 2}, []float64{1, 2}, []float64{4, 4})
	cmd.Geometry.(ir.PointCluster).Colors[1] = "#ff000000"
	cmd.Style.EdgeColor, cmd.Style.EdgeWidth = "#0000ff80", 1
	if err := rec.Append(cmd); err != nil {
		t.Fatal(err)
	}
	fig := render(t, rec)

	near := func(got, want float64) bool { return math.Abs(got-want) < 1e-9 }
	poly := fig.Traces[0]
	if poly.Fill.Color != "#ff0000" || !near(poly.Fill.Opacity, 128.0/255) {
		t.Errorf("Fill = %+v, want #ff0000 at 128/255", poly.Fill)
	}
	if poly.Line.Color != "#00ff00" || !near(poly.Line.Opacity, 64.0/255) {
		t.Errorf("Line = %+v, want #00ff00 at 64/255", poly.Line)
	}
	if txt := fig.Traces[1].Text; txt.Color != "#ffffff" || txt.Opacity != 0 {
		t.Errorf("Text = %+v, want transparent white", txt)
	}
	m := fig.Traces[2].Marker
	if m.Opacities[0] != 1 || m.Opacities[1] != 0 || m.Colors[1] != "#ff0000" {
		t.Errorf("Marker colors = %v opacities = %v, want the second transparent", m.Colors, m.Opacities)
	}
	if m.EdgeColor != "#0000ff" || !near(m.EdgeOpacity, 128.0/255) {
		t.Errorf("Marker edge = %s at %v, want #0000ff at 128/255", m.EdgeColor, m.EdgeOpacity)
	}

	svg := string(RenderSVG(fig))
	for _, want := range []string{
		`fill="#ff0000" fill-opacity="0.502"`,
		`stroke="#00ff00" stroke-width="1.00" stroke-opacity="0.251"`,
		`fill="#ffffff" fill-opacity="0.000"`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("SVG missing %q:\n%s", want, svg)
		}
	}
}

func TestUncoloredLineIsNotStroked(t *testing.T) {
	rec := recording(t, ir.Command{
		Geometry: ir.Polyline{Points: []ir.Point{{X: 0, Y: 0}, {X: 10, Y: 10}}},
		Style:    ir.Style{Width: 4, EdgeColor: "#ff0000"},
		Group:    "ecliptic-line",
	})
	fig := render(t, rec)

	if tr := fig.Traces[0]; tr.Line != nil {
		t.Errorf("Line = %+v, want none", tr.Line)
	}
	svg := string(RenderSVG(fig))
	if !strings.Contains(svg, `fill="none" stroke="none"`) || strings.Contains(svg, `stroke="#ff0000"`) {
		t.Errorf("SVG strokes an uncoloured line:\n%s", svg)
	}
}

func TestLineBundleSegmentHover(t *testing.T) {
	rec := recording(t, ir.Command{
		Geometry: ir.LineBundle{Segments: [][]ir.Point{
			{{X: 10, Y: 10}, {X: 20, Y: 20}},
			{{X: 60, Y: 60}, {X: 70, Y: 80}},
		}},
		Metadata: []ir.Record{
			{"type": "constellation", "name": "Orion"},
			{"type": "constellation", "name": "Lyra"},
		},
		Style: ir.Style{Color: "#aaaaaa", Width: 1},
		Group: "constellations-line",
	})
	fig := render(t, rec)

	page, err := RenderHTML(fig)
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	html := string(page)
	for _, want := range []string{`data-hover="Orion"`, `data-hover="Lyra"`} {
		if !strings.Contains(html, want) {
			t.Errorf("HTML missing %q", want)
		}
	}
	if n := strings.Count(html, `class="sb-hit"`); n != 2 {
		t.Errorf("hit paths = %d, want 2", n)
	}

	svg := string(RenderSVG(fig, WithTooltips()))
	if !strings.Contains(svg, "<title>Orion</title>") || !strings.Contains(svg, "<title>Lyra</title>") {
		t.Errorf("SVG tooltips missing a segment:\n%s", svg)
	}
	if strings.Count(svg, `stroke="#aaaaaa"`) != 1 {
		t.Errorf("want the bundle drawn once:\n%s", svg)
	}
}

func TestRenderMirrorX(t *testing.T) {
	rec := recording(t, ir.Command{
		Geometry: ir.TextLabel{Text: "Polaris", At: ir.Point{X: 10, Y: 10}},
		Style:    ir.Style{Anchor: ir.Anchor{V: ir.VAnchorTop, H: ir.HAnchorLeft}},
		Group:    "labels",
	})
	fig := render(t, rec, WithMirrorX(true))

	if fig.Layout.XRange != [2]float64{100, 0} {
		t.Errorf("XRange = %v, want [100 0]", fig.Layout.XRange)
	}
	txt := fig.Traces[0].Text
	if txt.XAnchor != "right" || txt.YAnchor != "top" {
		t.Errorf("anchors = %s/%s, want right/top", txt.XAnchor, txt.YAnchor)
	}
	if x, _ := fig.Layout.Map(10, 10); math.Abs(x-180) > 1e-9 {
		t.Errorf("mirrored x = %v, want 180", x)
	}
}

func TestHover(t *testing.T) {
	tests := []struct {
		name string
		rec  ir.Record
		want []string
	}{
		{
			name: "star",
			rec:  ir.Record{"type": "star", "name": "Vega", "magnitude": 0.03, "ra": 279.2347, "dec": 38.7837, "constellation": "Lyra"},
			want: []string{"Vega", "Magnitude: 0.03", "RA: 18.6156h", "DEC: 38.7837°", "Constellation: Lyra"},
		},
		{
			name: "dso without name",
			rec:  ir.Record{"type": "dso", "object_type": "galaxy", "magnitude": 3.4},
			want: []string{"DSO", "Type: galaxy", "Magnitude: 3.4"},
		},
		{
			name: "unknown type",
			rec:  ir.Record{"type": "comet", "name": "Halley"},
			want: []string{"Halley"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Hover(tt.rec)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("Hover() = %q, missing %q", got, w)
				}
			}
			if strings.Contains(got, "\n\n") {
				t.Errorf("Hover() = %q has blank lines", got)
			}
		})
	}
	if got := Hover(ir.Record{"type": "comet"}); got != "" {
		t.Errorf("Hover(no fields) = %q, want empty", got)
	}
}

func TestSetGroupVisible(t *testing.T) {
	rec := recording(t,
		points("stars", 1, []float64{1}, []float64{1}, []float64{10}),
		points("stars", 1, []float64{2}, []float64{2}, []float64{10}),
		points("planets", 2, []float64{3}, []float64{3}, []float64{10}),
	)
	fig := render(t, rec)

	if !fig.SetGroupVisible("stars", false) {
		t.Fatal("SetGroupVisible(stars) = false")
	}
	if fig.SetGroupVisible("moons", false) {
		t.Error("SetGroupVisible(moons) = true for unknown group")
	}
	svg := string(RenderSVG(fig))
	if strings.Contains(svg, `data-group="stars"`) || !strings.Contains(svg, `data-group="planets"`) {
		t.Errorf("hidden group still drawn:\n%s", svg)
	}
	svg = string(RenderSVG(fig, WithHiddenTraces()))
	if strings.Count(svg, `style="display:none"`) != 2 {
		t.Errorf("want 2 hidden traces:\n%s", svg)
	}
}

func TestRenderSVG(t *testing.T) {
	cmd := points("stars", 1, []float64{50}, []float64{50}, []float64{100})
	cmd.Metadata = []ir.Record{{"type": "star", "name": "Sirius"}}
	rec := recording(t,
		ir.Command{
			Geometry: ir.GradientFill{Shape: ir.GradientLinear, Angle: 90, Stops: []ir.ColorStop{{Offset: 0, Color: "#000000"}, {Offset: 1, Color: "#202040"}}},
			Group:    "background",
			Z:        -1,
		},
		cmd,
	)
	fig := render(t, rec)
	svg := string(RenderSVG(fig, WithTooltips()))

	for _, want := range []string{
		`viewBox="0 0 200 200"`,
		`<linearGradient id="sb-grad-0"`,
		`fill="url(#sb-grad-0)"`,
		`<ellipse cx="100.00" cy="100.00" rx="5.00" ry="5.00"`,
		`<title>Sirius</title>`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("SVG missing %q:\n%s", want, svg)
		}
	}
}

func TestRenderHTML(t *testing.T) {
	cmd := points("stars", 1, []float64{50}, []float64{50}, []float64{100})
	cmd.Metadata = []ir.Record{{"type": "star", "name": "Sirius"}}
	fig := render(t, recording(t, cmd), WithTitle("Test </script> chart"))

	page, err := RenderHTML(fig, WithEmbeddedFigure(), WithSize(800, 600))
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	html := string(page)
	for _, want := range []string{
		`<ul class="sb-legend">`,
		`data-hover="Sirius"`,
		`width="800" height="600"`,
		`id="sb-figure"`,
		`data-action="reset"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("HTML missing %q", want)
		}
	}
	if strings.Count(html, "</script>") != 2 {
		t.Errorf("embedded figure breaks out of its script element")
	}
}

func TestExportHTML(t *testing.T) {
	fig := render(t, recording(t, points("stars", 1, []float64{50}, []float64{50}, []float64{100})))
	dir := t.TempDir()

	path := filepath.Join(dir, "scene.html")
	if err := ExportHTML(fig, path, 0, 0); err != nil {
		t.Fatalf("ExportHTML: %v", err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Fatalf("exported file missing or empty: %v", err)
	}

	if err := ExportHTML(fig, filepath.Join(dir, "scene.png"), 0, 0); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("wrong extension: err = %v, want INVALID_FORMAT", err)
	}
	if err := ExportHTML(fig, filepath.Join(dir, "missing", "scene.html"), 0, 0); !errors.Is(err, errors.ErrCodeExportFailed) {
		t.Errorf("missing directory: err = %v, want EXPORT_FAILED", err)
	}
}

func TestFigureJSONRoundTrip(t *testing.T) {
	rec := recording(t, ir.Command{
		Geometry: ir.LineBundle{Segments: [][]ir.Point{{{X: 0, Y: 0}, {X: 1, Y: 1}}, {{X: 2, Y: 2}, {X: 3, Y: 3}}}},
		Style:    ir.Style{Color: "#ffffff", Width: 1},
		Group:    "grid",
	})
	fig := render(t, rec)
	data, err := fig.JSON()
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	back, err := FigureFromJSON(data)
	if err != nil {
		t.Fatalf("FigureFromJSON: %v", err)
	}
	if back.Traces[0].X.Breaks() != 1 {
		t.Errorf("breaks after round trip = %d, want 1", back.Traces[0].X.Breaks())
	}
}
