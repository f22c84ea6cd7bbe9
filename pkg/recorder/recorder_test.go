package recorder

import (
	stderrors "errors"
	"testing"

	"github.com/matzehuels/starbridge/pkg/errors"
	"github.com/matzehuels/starbridge/pkg/ir"
	"github.com/matzehuels/starbridge/pkg/primary"
)

// spy is a primary renderer that counts forwarded calls.
type spy struct {
	calls   []string
	fail    error
	text    primary.TextResult
	exports []string
}

func (s *spy) Scatter(primary.ScatterCall) error {
	s.calls = append(s.calls, "scatter")
	return s.fail
}

func (s *spy) Plot(primary.PlotCall) error {
	s.calls = append(s.calls, "plot")
	return s.fail
}

func (s *spy) Polygon(primary.PolygonCall) error {
	s.calls = append(s.calls, "polygon")
	return s.fail
}

func (s *spy) Text(primary.TextCall) (primary.TextResult, error) {
	s.calls = append(s.calls, "text")
	return s.text, s.fail
}

func (s *spy) LineCollection(primary.LineCollectionCall) error {
	s.calls = append(s.calls, "lines")
	return s.fail
}

func (s *spy) Gradient(primary.GradientCall) error {
	s.calls = append(s.calls, "gradient")
	return s.fail
}

func (s *spy) Export(path string) error {
	s.exports = append(s.exports, path)
	return s.fail
}

func newRecorder(inner primary.Renderer) *Recorder {
	return New(inner, ir.New(ir.ProjectionDescriptor{ID: "cartesian"}, ir.CanvasDescriptor{Width: 100, Height: 100}))
}

func TestScatterForwardsThenRecords(t *testing.T) {
	s := &spy{}
	r := newRecorder(s)

	err := r.Scatter(primary.ScatterCall{
		X:      []float64{10, 20},
		Y:      []float64{30, 40},
		Sizes:  []float64{100, 400},
		Colors: []string{"#FF0000"},
		Alphas: []float64{0.5},
		Style:  primary.Style{Marker: "*"},
		Layer:  primary.Layer{Group: "stars", Z: 3},
		Meta:   []ir.Record{{"type": "star", "name": "A"}, {"type": "star", "name": "B"}},
	})
	if err != nil {
		t.Fatalf("Scatter: %v", err)
	}
	if len(s.calls) != 1 {
		t.Fatalf("forwarded %d calls, want 1", len(s.calls))
	}

	cmds := r.Recording().Commands()
	if len(cmds) != 1 {
		t.Fatalf("recorded %d commands, want 1", len(cmds))
	}
	cmd := cmds[0]
	pc := cmd.Geometry.(ir.PointCluster)
	if pc.Colors[1] != "#ff0000" || pc.Alphas[1] != 0.5 || pc.Sizes[1] != 400 {
		t.Errorf("broadcast = %v %v %v", pc.Colors, pc.Alphas, pc.Sizes)
	}
	if cmd.Group != "stars" || cmd.Z != 3 || cmd.Style.Marker != ir.MarkerStar {
		t.Errorf("command = %+v", cmd)
	}
}

func TestMismatchFailsBeforeForwarding(t *testing.T) {
	tests := []struct {
		name string
		call primary.ScatterCall
	}{
		{"sizes", primary.ScatterCall{X: []float64{1, 2, 3}, Y: []float64{1, 2, 3}, Sizes: []float64{1, 2}, Layer: primary.Layer{Group: "stars"}}},
		{"y", primary.ScatterCall{X: []float64{1, 2, 3}, Y: []float64{1, 2}, Layer: primary.Layer{Group: "stars"}}},
		{"metadata", primary.ScatterCall{X: []float64{1, 2}, Y: []float64{1, 2}, Meta: []ir.Record{{}}, Layer: primary.Layer{Group: "stars"}}},
		{"group", primary.ScatterCall{X: []float64{1}, Y: []float64{1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &spy{}
			r := newRecorder(s)
			err := r.Scatter(tt.call)
			if !errors.Is(err, errors.ErrCodeInvalidCommand) {
				t.Fatalf("Scatter = %v, want INVALID_COMMAND", err)
			}
			if len(s.calls) != 0 || r.Recording().Len() != 0 {
				t.Errorf("forwarded=%d recorded=%d, want 0 and 0", len(s.calls), r.Recording().Len())
			}
		})
	}
}

func TestInnerFailureIsNotRecorded(t *testing.T) {
	boom := stderrors.New("boom")
	s := &spy{fail: boom}
	r := newRecorder(s)

	err := r.Plot(primary.PlotCall{X: []float64{0, 1}, Y: []float64{0, 1}, Layer: primary.Layer{Group: "ecliptic-line"}})
	if !stderrors.Is(err, boom) {
		t.Fatalf("Plot = %v, want boom", err)
	}
	if r.Recording().Len() != 0 {
		t.Errorf("recorded %d commands after failure", r.Recording().Len())
	}
}

func TestTextRecordedOnlyWhenKept(t *testing.T) {
	s := &spy{}
	r := newRecorder(s)
	call := primary.TextCall{
		Text:  "Vega",
		X:     10,
		Y:     20,
		Style: primary.Style{HA: "center", VA: "center"},
		Layer: primary.Layer{Group: "labels"},
		Meta:  ir.Record{"type": "star", "name": "Vega"},
	}

	if res, err := r.Text(call); err != nil || res.Kept {
		t.Fatalf("Text = %+v, %v", res, err)
	}
	if r.Recording().Len() != 0 {
		t.Fatalf("dropped label was recorded")
	}

	s.text = primary.TextResult{Kept: true, X: 12, Y: 18, HA: "left", VA: "top"}
	if _, err := r.Text(call); err != nil {
		t.Fatal(err)
	}
	cmds := r.Recording().Commands()
	if len(cmds) != 1 {
		t.Fatalf("recorded %d labels, want 1", len(cmds))
	}
	label := cmds[0].Geometry.(ir.TextLabel)
	if label.At != (ir.Point{X: 12, Y: 18}) {
		t.Errorf("label recorded at %v, want final position", label.At)
	}
	if cmds[0].Style.Anchor != (ir.Anchor{V: ir.VAnchorTop, H: ir.HAnchorLeft}) {
		t.Errorf("label anchor = %+v, want final alignment", cmds[0].Style.Anchor)
	}
}

func TestRecordingOrderMatchesCallOrder(t *testing.T) {
	r := newRecorder(&spy{})
	layer := primary.Layer{Group: "scene"}

	steps := []func() error{
		func() error {
			return r.Gradient(primary.GradientCall{Shape: ir.GradientLinear, Stops: []ir.ColorStop{{Offset: 0, Color: "black"}, {Offset: 1, Color: "navy"}}, Layer: layer})
		},
		func() error {
			return r.Polygon(primary.PolygonCall{Points: []ir.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}, Layer: layer})
		},
		func() error {
			return r.LineCollection(primary.LineCollectionCall{Segments: [][]ir.Point{{{X: 0, Y: 0}, {X: 1, Y: 1}}}, Layer: layer})
		},
		func() error {
			return r.Scatter(primary.ScatterCall{X: []float64{1}, Y: []float64{1}, Layer: layer})
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			t.Fatal(err)
		}
	}

	want := []ir.Kind{ir.KindGradient, ir.KindPolygon, ir.KindLineBundle, ir.KindPoints}
	cmds := r.Recording().Commands()
	for i, k := range want {
		if cmds[i].Kind() != k {
			t.Errorf("command %d kind = %v, want %v", i, cmds[i].Kind(), k)
		}
	}
}

func TestStyleNormalization(t *testing.T) {
	r := newRecorder(&spy{})
	err := r.Plot(primary.PlotCall{
		X:     []float64{0, 1},
		Y:     []float64{0, 1},
		Style: primary.Style{Color: "#33669980", Alpha: 0.5, LineStyle: "wiggly", LineWidth: -3},
		Layer: primary.Layer{Group: "ecliptic-line"},
	})
	if err != nil {
		t.Fatal(err)
	}
	st := r.Recording().Commands()[0].Style
	if st.Color != "#33669980" {
		t.Errorf("Color = %q, want the colour alpha kept as a suffix", st.Color)
	}
	if st.Opacity != 0.5 {
		t.Errorf("Opacity = %v, want 0.5", st.Opacity)
	}
	if st.Dash != ir.DashSolid || st.Width != 1 {
		t.Errorf("fallbacks = %v %v", st.Dash, st.Width)
	}
}

func TestColorAlphaPerField(t *testing.T) {
	ring := []ir.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}
	tests := []struct {
		name  string
		style primary.Style
		want  ir.Style
	}{
		{"translucent fill", primary.Style{FillColor: "#ff000080"}, ir.Style{FillColor: "#ff000080"}},
		{"translucent edge", primary.Style{FillColor: "blue", EdgeColor: "#00ff0040"}, ir.Style{FillColor: "#0000ff", EdgeColor: "#00ff0040"}},
		{"transparent fill", primary.Style{FillColor: "#ffffff00"}, ir.Style{FillColor: "#ffffff00"}},
		{"opaque", primary.Style{FillColor: "#ff0000ff"}, ir.Style{FillColor: "#ff0000"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRecorder(&spy{})
			if err := r.Polygon(primary.PolygonCall{Points: ring, Style: tt.style, Layer: primary.Layer{Group: "milky-way"}}); err != nil {
				t.Fatal(err)
			}
			st := r.Recording().Commands()[0].Style
			if st.FillColor != tt.want.FillColor || st.EdgeColor != tt.want.EdgeColor {
				t.Errorf("fill = %q edge = %q, want %q and %q", st.FillColor, st.EdgeColor, tt.want.FillColor, tt.want.EdgeColor)
			}
			if st.Opacity != 0 {
				t.Errorf("Opacity = %v, want unset", st.Opacity)
			}
		})
	}
}

func TestGradientDefaultZ(t *testing.T) {
	stops := []ir.ColorStop{{Offset: 0, Color: "black"}, {Offset: 1, Color: "navy"}}
	tests := []struct {
		layer primary.Layer
		want  int
	}{
		{primary.Layer{Group: "background"}, primary.GradientZ},
		{primary.Layer{Group: "background", Z: -5}, -5},
		{primary.Layer{Group: "background", Z: 2}, 2},
	}
	for _, tt := range tests {
		r := newRecorder(&spy{})
		if err := r.Gradient(primary.GradientCall{Shape: ir.GradientLinear, Stops: stops, Layer: tt.layer}); err != nil {
			t.Fatal(err)
		}
		if z := r.Recording().Commands()[0].Z; z != tt.want {
			t.Errorf("layer z %d: recorded z = %d, want %d", tt.layer.Z, z, tt.want)
		}
	}
}

func TestFinalizeSnapshotsAndCaptureContinues(t *testing.T) {
	r := newRecorder(&spy{})
	call := primary.ScatterCall{X: []float64{1}, Y: []float64{1}, Layer: primary.Layer{Group: "stars"}}

	if err := r.Scatter(call); err != nil {
		t.Fatal(err)
	}
	snap := r.Finalize()
	if err := r.Scatter(call); err != nil {
		t.Fatal(err)
	}
	if snap.Len() != 1 || r.Recording().Len() != 2 {
		t.Errorf("snapshot=%d active=%d", snap.Len(), r.Recording().Len())
	}

	r.Recording().Finalize()
	if err := r.Scatter(call); !errors.Is(err, errors.ErrCodeRecordingFinalized) {
		t.Errorf("Scatter into frozen recording = %v", err)
	}

	r.Clear()
	if r.Recording().Len() != 0 || r.Recording().Finalized() {
		t.Error("Clear did not reset the recording")
	}
}

func TestExportDelegates(t *testing.T) {
	s := &spy{}
	r := newRecorder(s)
	if err := r.Export("out.png"); err != nil {
		t.Fatal(err)
	}
	if len(s.exports) != 1 || s.exports[0] != "out.png" {
		t.Errorf("exports = %v", s.exports)
	}
}

func TestConservationAgainstCanvas(t *testing.T) {
	proj := ir.ProjectionDescriptor{ID: "cartesian", Rendered: ir.Extent{XMin: 0, XMax: 100, YMin: 0, YMax: 100}}
	desc := ir.CanvasDescriptor{Width: 200, Height: 200, Scale: 1}
	canvas := primary.NewCanvas(proj, desc)
	r := New(canvas, ir.New(proj, desc))

	for i := 0; i < 3; i++ {
		if err := r.Scatter(primary.ScatterCall{
			X:     []float64{10, 20, 30, float64(40 + i)},
			Y:     []float64{10, 20, 30, 40},
			Layer: primary.Layer{Group: "stars"},
		}); err != nil {
			t.Fatal(err)
		}
	}
	for _, name := range []string{"Vega", "Vega", "Deneb"} {
		if _, err := r.Text(primary.TextCall{Text: name, X: 50, Y: 50, Layer: primary.Layer{Group: "labels"}}); err != nil {
			t.Fatal(err)
		}
	}

	recorded := r.Recording().ElementCounts()
	drawn := canvas.Drawn()
	for g, n := range drawn {
		if recorded[g] != n {
			t.Errorf("group %s: recorded %d, drawn %d", g, recorded[g], n)
		}
	}
	if recorded["stars"] != 12 || recorded["labels"] != 1 {
		t.Errorf("recorded = %v", recorded)
	}
}
