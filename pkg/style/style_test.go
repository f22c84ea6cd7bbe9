package style

import (
	"math"
	"testing"

	"github.com/matzehuels/starbridge/pkg/ir"
)

func TestMarker(t *testing.T) {
	tests := []struct {
		token string
		want  ir.Marker
		ok    bool
	}{
		{"o", ir.MarkerCircle, true},
		{"point", ir.MarkerCircle, true},
		{"*", ir.MarkerStar, true},
		{"D", ir.MarkerDiamond, true},
		{"^", ir.MarkerTriangle, true},
		{"CIRCLE_DOT", ir.MarkerCircleDot, true},
		{"comet", ir.MarkerComet, true},
		{"hexagon", ir.MarkerCircle, false},
		{"", ir.MarkerCircle, false},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, ok := Marker(tt.token)
			if got != tt.want || ok != tt.ok {
				t.Errorf("Marker(%q) = %v, %v; want %v, %v", tt.token, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestSymbolCoversEveryMarker(t *testing.T) {
	markers := []ir.Marker{
		ir.MarkerCircle, ir.MarkerSquare, ir.MarkerStar, ir.MarkerStar4, ir.MarkerDiamond,
		ir.MarkerTriangle, ir.MarkerPlus, ir.MarkerCirclePlus, ir.MarkerCircleCross,
		ir.MarkerCircleDot, ir.MarkerComet, ir.MarkerEllipse,
	}
	for _, m := range markers {
		if _, ok := Symbol(m); !ok {
			t.Errorf("Symbol(%v) fell back", m)
		}
	}
	if s, ok := Symbol("blob"); s != DefaultSymbol || ok {
		t.Errorf("Symbol(blob) = %q, %v", s, ok)
	}
}

func TestDash(t *testing.T) {
	tests := []struct {
		token string
		want  ir.Dash
		name  string
		ok    bool
	}{
		{"-", ir.DashSolid, "solid", true},
		{"--", ir.DashDashed, "dash", true},
		{":", ir.DashDotted, "dot", true},
		{"-.", ir.DashDashDot, "dashdot", true},
		{"loosely dotted", ir.DashSolid, "solid", false},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, ok := Dash(tt.token)
			if got != tt.want || ok != tt.ok {
				t.Errorf("Dash(%q) = %v, %v", tt.token, got, ok)
			}
			if n, _ := DashName(got); n != tt.name {
				t.Errorf("DashName(%v) = %q, want %q", got, n, tt.name)
			}
		})
	}
}

func TestDashPatternScalesWithWidth(t *testing.T) {
	p1 := DashPattern(ir.DashDashed, 1)
	p2 := DashPattern(ir.DashDashed, 2)
	if len(p1) != 2 || p2[0] != 2*p1[0] || p2[1] != 2*p1[1] {
		t.Errorf("DashPattern = %v, %v", p1, p2)
	}
	if DashPattern(ir.DashSolid, 3) != nil || DashArray(ir.DashSolid, 3) != "" {
		t.Error("solid dash produced a pattern")
	}
	if got := DashArray(ir.DashDotted, 2); got != "2.00,3.30" {
		t.Errorf("DashArray(dotted, 2) = %q", got)
	}
}

func TestAnchor(t *testing.T) {
	tests := []struct {
		va, ha   string
		mirrored bool
		y, x     string
	}{
		{"top", "left", false, "top", "left"},
		{"top", "left", true, "top", "right"},
		{"bottom", "right", true, "bottom", "left"},
		{"center", "center", true, "middle", "center"},
		{"baseline", "center", false, "bottom", "center"},
		{"weird", "weird", false, "middle", "center"},
	}
	for _, tt := range tests {
		t.Run(tt.va+"/"+tt.ha, func(t *testing.T) {
			a, _ := Anchor(tt.va, tt.ha)
			y, x := TextAnchor(a, tt.mirrored)
			if y != tt.y || x != tt.x {
				t.Errorf("TextAnchor = (%s, %s), want (%s, %s)", y, x, tt.y, tt.x)
			}
		})
	}

	if _, ok := Anchor("", ""); !ok {
		t.Error("empty anchors reported as fallback")
	}
	if _, ok := Anchor("sideways", ""); ok {
		t.Error("unknown anchor not reported as fallback")
	}

	ta, db := SVGTextAnchor(AnchorTop, AnchorRight)
	if ta != "end" || db != "text-before-edge" {
		t.Errorf("SVGTextAnchor(top, right) = %s, %s", ta, db)
	}
}

func TestMarkerRadius(t *testing.T) {
	r100, r400 := MarkerRadius(100), MarkerRadius(400)
	if r400/r100 != 2 {
		t.Errorf("MarkerRadius(400)/MarkerRadius(100) = %v, want 2", r400/r100)
	}
	if r100 != 5 {
		t.Errorf("MarkerRadius(100) = %v, want 5", r100)
	}

	prev := 0.0
	for s := -10.0; s <= 2000; s += 0.5 {
		r := MarkerRadius(s)
		if r < prev {
			t.Fatalf("MarkerRadius not monotonic at %v: %v < %v", s, r, prev)
		}
		prev = r
	}

	for _, s := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if got := MarkerRadius(s); got != MinMarkerRadius {
			t.Errorf("MarkerRadius(%v) = %v, want %v", s, got, MinMarkerRadius)
		}
	}
}

func TestColor(t *testing.T) {
	tests := []struct {
		in    string
		hex   string
		alpha float64
		ok    bool
	}{
		{"#FFF", "#ffffff", 1, true},
		{"#336699", "#336699", 1, true},
		{"#33669980", "#336699", 128.0 / 255, true},
		{"red", "#ff0000", 1, true},
		{"Light Gray", "#d3d3d3", 1, true},
		{"k", "#000000", 1, true},
		{"none", "", 1, true},
		{"", "", 1, true},
		{"not-a-colour", FallbackColor, 1, false},
		{"#zzzzzz", FallbackColor, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			hex, alpha, ok := Color(tt.in)
			if hex != tt.hex || math.Abs(alpha-tt.alpha) > 1e-9 || ok != tt.ok {
				t.Errorf("Color(%q) = %q, %v, %v; want %q, %v, %v", tt.in, hex, alpha, ok, tt.hex, tt.alpha, tt.ok)
			}
		})
	}
}

func TestTransparency(t *testing.T) {
	if Opacity(0) != 0 || Opacity(-1) != 0 || Opacity(2) != 1 || Opacity(math.NaN()) != 1 || Opacity(0.25) != 0.25 {
		t.Error("Opacity")
	}
	if _, _, _, a := RGBA("#ff0000", 0); a != 0 {
		t.Errorf("RGBA alpha 0 = %d, want transparent", a)
	}
	if _, _, _, a := RGBA("#ff0000", 1); a != 255 {
		t.Errorf("RGBA alpha 1 = %d, want opaque", a)
	}

	tests := []struct {
		hex   string
		alpha float64
		want  string
	}{
		{"#ff0000", 1, "#ff0000"},
		{"#ff0000", 128.0 / 255, "#ff000080"},
		{"#ff0000", 0, "#ff000000"},
		{"", 0.5, ""},
	}
	for _, tt := range tests {
		got := HexAlpha(tt.hex, tt.alpha)
		if got != tt.want {
			t.Errorf("HexAlpha(%q, %v) = %q, want %q", tt.hex, tt.alpha, got, tt.want)
		}
		if hex, alpha, ok := Color(got); got != "" && (!ok || hex != tt.hex || math.Abs(alpha-tt.alpha) > 1e-9) {
			t.Errorf("Color(%q) = %q, %v, %v; want %q, %v", got, hex, alpha, ok, tt.hex, tt.alpha)
		}
	}
}

func TestScalars(t *testing.T) {
	if FontSize(0) != DefaultFontSize || FontSize(12) != 12 {
		t.Error("FontSize fallback")
	}
	if FontWeight("700") != "bold" || FontWeight("Heavy") != "bold" || FontWeight("light") != "normal" {
		t.Error("FontWeight")
	}
	if LineWidth(-1) != DefaultLineWidth || LineWidth(0) != 0 || LineWidth(2.5) != 2.5 {
		t.Error("LineWidth")
	}
	if Alpha(0) != 1 || Alpha(2) != 1 || Alpha(0.3) != 0.3 {
		t.Error("Alpha")
	}
}

func TestLegendName(t *testing.T) {
	tests := map[string]string{
		"stars":               "Stars",
		"constellations-line": "Constellations",
		"dso_open_cluster":    "Open Clusters",
		"comet-tail":          "Comet Tail",
		"my_custom_layer":     "My Custom Layer",
	}
	for group, want := range tests {
		if got := LegendName(group); got != want {
			t.Errorf("LegendName(%q) = %q, want %q", group, got, want)
		}
	}
}

func TestMarkerShape(t *testing.T) {
	if s := MarkerShape(ir.MarkerCircle); !s.Round() || s.RX != 1 {
		t.Errorf("circle shape = %+v", s)
	}
	if s := MarkerShape(ir.MarkerStar); len(s.Outline) != 10 {
		t.Errorf("star outline has %d points, want 10", len(s.Outline))
	}
	if s := MarkerShape(ir.MarkerDiamond); len(s.Outline) != 4 || s.Outline[0].Y >= 0 {
		t.Errorf("diamond outline = %v, want first point on top", s.Outline)
	}
	if s := MarkerShape(ir.MarkerPlus); !s.Bare || !s.Plus {
		t.Errorf("plus shape = %+v", s)
	}
	if s := MarkerShape("unknown"); !s.Round() {
		t.Errorf("unknown marker shape = %+v, want circle", s)
	}
}
