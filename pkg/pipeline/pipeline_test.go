package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/starbridge/pkg/cache"
	"github.com/matzehuels/starbridge/pkg/errors"
	"github.com/matzehuels/starbridge/pkg/interactive"
	"github.com/matzehuels/starbridge/pkg/ir"
	"github.com/matzehuels/starbridge/pkg/primary"
	"github.com/matzehuels/starbridge/pkg/recorder"
	"github.com/matzehuels/starbridge/pkg/refscene"
)

// memCache is an in-memory Cache that counts hits.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	hits int
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.data[key]
	if ok {
		c.hits++
	}
	return d, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

func scene(t *testing.T) (*primary.Canvas, *ir.Recording, map[string]int) {
	t.Helper()
	proj, desc := refscene.Projection(), refscene.Canvas(1)
	canvas := primary.NewCanvas(proj, desc)
	rec := recorder.New(canvas, ir.New(proj, desc))
	produced, err := refscene.Draw(rec, 120)
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	return canvas, rec.Finalize(), produced
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"html", false},
		{"svg", false},
		{"png", false},
		{"json", false},
		{"pdf", true},
		{"HTML", true},
		{"", true},
	}
	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateBackend(t *testing.T) {
	for _, b := range []string{"vector", "rsvg", "browser"} {
		if err := ValidateBackend(b); err != nil {
			t.Errorf("ValidateBackend(%q) = %v", b, err)
		}
	}
	if ValidateBackend("cairo") == nil {
		t.Error("unknown backend should fail")
	}
}

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatHTML {
		t.Errorf("Formats = %v", opts.Formats)
	}
	if opts.Backend != DefaultBackend || opts.Tolerance != DefaultTolerance || opts.Logger == nil {
		t.Errorf("defaults not applied: %+v", opts)
	}

	// Idempotent: a second call after mutation does not re-validate.
	opts.Formats = []string{"bogus"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("second call should be a no-op: %v", err)
	}
}

func TestOptionsInvalid(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"format", Options{Formats: []string{"gif"}}},
		{"backend", Options{Backend: "cairo"}},
		{"size", Options{Width: -1}},
		{"budget", Options{MaxElements: -5}},
		{"tolerance", Options{Tolerance: 1.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.ValidateAndSetDefaults(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	opts := Options{MirrorX: true, Width: 400, Backend: "browser"}
	if k := opts.ArtifactKeyOpts(FormatSVG); k.Backend != "" || !k.Figure.MirrorX || k.Width != 400 {
		t.Errorf("svg key opts = %+v", k)
	}
	if k := opts.ArtifactKeyOpts(FormatPNG); k.Backend != "browser" {
		t.Errorf("png key opts = %+v", k)
	}
}

func TestExecute(t *testing.T) {
	_, rec, _ := scene(t)
	mc := newMemCache()
	runner := NewRunner(mc, nil, nil)
	ctx := context.Background()
	opts := Options{Formats: []string{FormatHTML, FormatSVG, FormatPNG, FormatJSON}, Title: "Reference"}

	res, err := runner.Execute(ctx, rec, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.CacheInfo.FigureHit || res.CacheInfo.ExportHit {
		t.Errorf("first run should miss: %+v", res.CacheInfo)
	}
	if res.Stats.Commands != rec.Len() || res.Stats.Mode != interactive.ModeFull || res.Stats.Elements == 0 {
		t.Errorf("stats = %+v", res.Stats)
	}
	for _, f := range opts.Formats {
		if len(res.Artifacts[f]) == 0 {
			t.Errorf("artifact %s is empty", f)
		}
	}
	if !bytes.Contains(res.Artifacts[FormatHTML], []byte("<title>Reference</title>")) {
		t.Error("html artifact has no title")
	}
	img, err := png.Decode(bytes.NewReader(res.Artifacts[FormatPNG]))
	if err != nil {
		t.Fatalf("png artifact: %v", err)
	}
	if b := img.Bounds(); b.Dx() != refscene.Width || b.Dy() != refscene.Height {
		t.Errorf("png size = %v", b)
	}
	var fig interactive.Figure
	if err := json.Unmarshal(res.Artifacts[FormatJSON], &fig); err != nil || fig.RecordingID != rec.ID.String() {
		t.Errorf("json artifact: id=%q err=%v", fig.RecordingID, err)
	}

	again, err := runner.Execute(ctx, rec, opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !again.CacheInfo.FigureHit || !again.CacheInfo.ExportHit {
		t.Errorf("second run should hit: %+v", again.CacheInfo)
	}
	if again.RecordingHash != res.RecordingHash {
		t.Error("recording hash changed between runs")
	}
	if !bytes.Equal(again.Artifacts[FormatSVG], res.Artifacts[FormatSVG]) {
		t.Error("cached svg differs")
	}

	opts.Refresh = true
	fresh, err := runner.Execute(ctx, rec, opts)
	if err != nil {
		t.Fatalf("refresh Execute: %v", err)
	}
	if fresh.CacheInfo.FigureHit || fresh.CacheInfo.ExportHit {
		t.Errorf("refresh should bypass cache: %+v", fresh.CacheInfo)
	}
}

func TestExecuteUnsupportedProjection(t *testing.T) {
	rec := ir.New(ir.ProjectionDescriptor{ID: "hammer"}, ir.CanvasDescriptor{Width: 10, Height: 10})
	_, err := NewRunner(nil, nil, nil).Execute(context.Background(), rec.Finalize(), Options{})
	if !errors.Is(err, errors.ErrCodeUnsupportedProjection) {
		t.Errorf("err = %v, want UNSUPPORTED_PROJECTION", err)
	}
}

func TestLoadRecording(t *testing.T) {
	_, rec, _ := scene(t)
	runner := NewRunner(newMemCache(), cache.NewScopedKeyer(nil, "test:"), nil)
	ctx := context.Background()

	hash, err := runner.StoreRecording(ctx, rec)
	if err != nil {
		t.Fatalf("StoreRecording: %v", err)
	}
	if h, _ := RecordingHash(rec); h != hash {
		t.Errorf("hash = %s, want %s", hash, h)
	}
	got, err := runner.LoadRecording(ctx, hash)
	if err != nil {
		t.Fatalf("LoadRecording: %v", err)
	}
	if got.ID != rec.ID || got.Len() != rec.Len() || !got.Finalized() {
		t.Errorf("loaded recording: id=%v len=%d", got.ID, got.Len())
	}
	if _, err := runner.LoadRecording(ctx, "missing"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("missing err = %v", err)
	}
}

func TestVerify(t *testing.T) {
	canvas, rec, produced := scene(t)
	runner := NewRunner(nil, nil, nil)
	ctx := context.Background()

	v, err := runner.Verify(ctx, rec, canvas.Image(), Options{Expected: produced})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !v.Passed() {
		t.Errorf("Verify failed: %v", v.Err())
	}

	wrong := map[string]int{refscene.GroupStars: 1}
	v, err = runner.Verify(ctx, rec, canvas.Image(), Options{Expected: wrong})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if v.Passed() || !errors.Is(v.Err(), errors.ErrCodeStructureMismatch) {
		t.Errorf("wrong counts should fail with STRUCTURE_MISMATCH: %v", v.Err())
	}

	blank := image.NewNRGBA(image.Rect(0, 0, refscene.Width, refscene.Height))
	v, err = runner.Verify(ctx, rec, blank, Options{Exact: true})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if v.Compare.Passed || !errors.Is(v.Err(), errors.ErrCodeConsistencyFailed) {
		t.Errorf("blank image should fail exact check: %+v", v.Compare)
	}
}

func TestRecordingHashIgnoresID(t *testing.T) {
	_, a, _ := scene(t)
	_, b, _ := scene(t)
	if a.ID == b.ID {
		t.Fatal("scenes share an ID")
	}
	ha, err := RecordingHash(a)
	if err != nil {
		t.Fatalf("RecordingHash: %v", err)
	}
	if hb, _ := RecordingHash(b); hb != ha {
		t.Errorf("identical scenes hash %s and %s", ha, hb)
	}
	empty := ir.New(a.Projection, a.Canvas)
	if he, _ := RecordingHash(empty); he == ha {
		t.Error("empty recording hashes like the scene")
	}

	runner := NewRunner(newMemCache(), nil, nil)
	ctx := context.Background()
	opts := Options{Formats: []string{FormatSVG}}
	if _, err := runner.Execute(ctx, a, opts); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	res, err := runner.Execute(ctx, b, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !res.CacheInfo.FigureHit || !res.CacheInfo.ExportHit {
		t.Errorf("same content should hit: %+v", res.CacheInfo)
	}
	if res.Figure.RecordingID != b.ID.String() {
		t.Errorf("RecordingID = %s, want %s", res.Figure.RecordingID, b.ID)
	}
}
