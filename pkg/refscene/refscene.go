// Package refscene draws a fixed synthetic sky chart. Its coordinates are
// already projected (right ascension and declination in degrees on an
// equirectangular plane), so the scene needs no astronomy. It is used for
// the calibration regression tests, the cross-renderer check and the CLI
// demo.
package refscene

import (
	"fmt"
	"math"

	"github.com/matzehuels/starbridge/pkg/ir"
	"github.com/matzehuels/starbridge/pkg/primary"
)

// Size of the reference canvas in logical pixels.
const (
	Width  = 800
	Height = 600
)

// Group ids used by the scene.
const (
	GroupBackground     = "background"
	GroupMilkyWay       = "milky-way"
	GroupGridlines      = "gridlines"
	GroupConstellations = "constellations-line"
	GroupEcliptic       = "ecliptic-line"
	GroupStars          = "stars"
	GroupPlanets        = "planet-marker"
	GroupLabels         = "constellations-label-name"
)

// DefaultStars is the number of stars in the default scene.
const DefaultStars = 400

// Projection returns the scene projection. Right ascension grows to the
// left, so the rendered x extent is inverted.
func Projection() ir.ProjectionDescriptor {
	ext := ir.Extent{XMin: 360, XMax: 0, YMin: -90, YMax: 90}
	return ir.ProjectionDescriptor{ID: "equirectangular", Domain: ext, Rendered: ext}
}

// Canvas returns the scene canvas at scale.
func Canvas(scale float64) ir.CanvasDescriptor {
	return ir.CanvasDescriptor{
		Background:       "#0b1026",
		FigureBackground: "#0b1026",
		Width:            Width,
		Height:           Height,
		Scale:            scale,
	}
}

// Star is one synthetic catalogue entry.
type Star struct {
	Name          string
	RA, Dec       float64
	Magnitude     float64
	Constellation string
}

var names = []string{
	"Sirius", "Canopus", "Arcturus", "Vega", "Capella", "Rigel", "Procyon", "Betelgeuse",
	"Altair", "Aldebaran", "Antares", "Spica", "Pollux", "Fomalhaut", "Deneb", "Regulus",
}

var constellations = []string{"Ori", "CMa", "Lyr", "Cyg", "Aql", "Tau", "Sco", "Vir", "Gem", "Leo"}

// Stars returns n stars laid out on low-discrepancy sequences. The first
// len(names) stars are the brightest and carry names.
func Stars(n int) []Star {
	out := make([]Star, n)
	for i := range out {
		f := float64(i + 1)
		mag := 6.5 * frac(f*0.5698402910)
		if i < len(names) {
			mag = -1.4 + 0.2*float64(i)
		}
		out[i] = Star{
			RA:            360 * frac(f*0.6180339887),
			Dec:           math.Asin(2*frac(f*0.7548776662)-1) * 180 / math.Pi * 0.9,
			Magnitude:     mag,
			Constellation: constellations[i%len(constellations)],
		}
		if i < len(names) {
			out[i].Name = names[i]
		}
	}
	return out
}

func frac(v float64) float64 { return v - math.Floor(v) }

// MarkerArea converts a magnitude to a marker area; brighter stars are
// larger.
func MarkerArea(mag float64) float64 {
	return math.Pow(math.Max(7-mag, 0.5), 2) * 1.2
}

var starColors = []string{"#ffffff", "#cad7ff", "#fff4e8", "#ffd2a1"}

// Draw issues the full scene on r and returns the per-group element counts
// the scene produced. Label counts include only labels r kept.
func Draw(r primary.Renderer, stars int) (map[string]int, error) {
	produced := make(map[string]int)
	steps := []func(primary.Renderer, map[string]int) error{
		drawBackground,
		drawMilkyWay,
		drawGridlines,
		drawEcliptic,
		drawConstellations,
		func(r primary.Renderer, p map[string]int) error { return drawStars(r, p, Stars(stars)) },
		drawPlanets,
		func(r primary.Renderer, p map[string]int) error { return drawLabels(r, p, Stars(stars)) },
	}
	for _, step := range steps {
		if err := step(r, produced); err != nil {
			return nil, err
		}
	}
	return produced, nil
}

func drawBackground(r primary.Renderer, produced map[string]int) error {
	produced[GroupBackground]++
	return r.Gradient(primary.GradientCall{
		Shape: ir.GradientLinear,
		Angle: 0,
		Stops: []ir.ColorStop{{Offset: 0, Color: "#05081a"}, {Offset: 1, Color: "#283a78"}},
		Layer: primary.Layer{Group: GroupBackground, Z: primary.GradientZ},
	})
}

func drawMilkyWay(r primary.Renderer, produced map[string]int) error {
	var ring []ir.Point
	for ra := 0.0; ra <= 360; ra += 15 {
		ring = append(ring, ir.Point{X: ra, Y: 25*math.Sin(ra*math.Pi/180) + 12})
	}
	for ra := 360.0; ra >= 0; ra -= 15 {
		ring = append(ring, ir.Point{X: ra, Y: 25*math.Sin(ra*math.Pi/180) - 12})
	}
	produced[GroupMilkyWay]++
	return r.Polygon(primary.PolygonCall{
		Points: ring,
		Style:  primary.Style{FillColor: "#94a3c8", Alpha: 0.15},
		Layer:  primary.Layer{Group: GroupMilkyWay, Z: 0},
	})
}

func drawGridlines(r primary.Renderer, produced map[string]int) error {
	var segs [][]ir.Point
	for ra := 30.0; ra < 360; ra += 30 {
		segs = append(segs, []ir.Point{{X: ra, Y: -90}, {X: ra, Y: 90}})
	}
	for dec := -60.0; dec <= 60; dec += 30 {
		segs = append(segs, []ir.Point{{X: 0, Y: dec}, {X: 360, Y: dec}})
	}
	produced[GroupGridlines] += len(segs)
	return r.LineCollection(primary.LineCollectionCall{
		Segments: segs,
		Style:    primary.Style{Color: "#6b7fa8", LineWidth: 0.5, LineStyle: ":", Alpha: 0.6},
		Layer:    primary.Layer{Group: GroupGridlines, Z: 1},
	})
}

func drawEcliptic(r primary.Renderer, produced map[string]int) error {
	var xs, ys []float64
	for ra := 0.0; ra <= 360; ra += 5 {
		xs = append(xs, ra)
		ys = append(ys, 23.44*math.Sin(ra*math.Pi/180))
	}
	produced[GroupEcliptic]++
	return r.Plot(primary.PlotCall{
		X: xs, Y: ys,
		Style: primary.Style{Color: "#e0b050", LineWidth: 1, LineStyle: "--"},
		Layer: primary.Layer{Group: GroupEcliptic, Z: 2},
		Meta:  ir.Record{ir.FieldType: "ecliptic", ir.FieldName: "Ecliptic"},
	})
}

// drawConstellations links consecutive named stars pairwise.
func drawConstellations(r primary.Renderer, produced map[string]int) error {
	stars := Stars(len(names))
	var segs [][]ir.Point
	var meta []ir.Record
	for i := 0; i+1 < len(stars); i += 2 {
		a, b := stars[i], stars[i+1]
		if math.Abs(a.RA-b.RA) > 180 {
			continue
		}
		segs = append(segs, []ir.Point{{X: a.RA, Y: a.Dec}, {X: b.RA, Y: b.Dec}})
		meta = append(meta, ir.Record{ir.FieldType: "constellation", ir.FieldName: a.Constellation, ir.FieldIAU: a.Constellation})
	}
	produced[GroupConstellations] += len(segs)
	return r.LineCollection(primary.LineCollectionCall{
		Segments: segs,
		Style:    primary.Style{Color: "#8fb3ff", LineWidth: 1.2, Alpha: 0.8},
		Layer:    primary.Layer{Group: GroupConstellations, Z: 3},
		Meta:     meta,
	})
}

// drawStars splits the catalogue into two calls sharing one group, the
// way a chart draws bright and faint stars separately.
func drawStars(r primary.Renderer, produced map[string]int, stars []Star) error {
	bright, faint := stars[:min(len(names), len(stars))], stars[min(len(names), len(stars)):]
	for _, batch := range [][]Star{bright, faint} {
		if len(batch) == 0 {
			continue
		}
		call := primary.ScatterCall{
			Style: primary.Style{Marker: "o", EdgeColor: "#0b1026", EdgeWidth: 0.3},
			Layer: primary.Layer{Group: GroupStars, Z: 5},
		}
		for i, s := range batch {
			call.X = append(call.X, s.RA)
			call.Y = append(call.Y, s.Dec)
			call.Sizes = append(call.Sizes, MarkerArea(s.Magnitude))
			call.Colors = append(call.Colors, starColors[i%len(starColors)])
			call.Meta = append(call.Meta, ir.Record{
				ir.FieldType:          "star",
				ir.FieldName:          s.Name,
				ir.FieldRA:            s.RA,
				ir.FieldDec:           s.Dec,
				ir.FieldMagnitude:     s.Magnitude,
				ir.FieldConstellation: s.Constellation,
			})
		}
		call.Alphas = []float64{1}
		if err := r.Scatter(call); err != nil {
			return err
		}
		produced[GroupStars] += len(batch)
	}
	return nil
}

var planets = []struct {
	name    string
	ra, dec float64
	mag     float64
	color   string
}{
	{"Mars", 84, 23, 0.8, "#e0603a"},
	{"Jupiter", 212, -11, -2.3, "#f0d9a0"},
	{"Saturn", 331, -12, 0.9, "#d8c080"},
}

func drawPlanets(r primary.Renderer, produced map[string]int) error {
	call := primary.ScatterCall{
		Style: primary.Style{Marker: "D", Alpha: 0.9},
		Layer: primary.Layer{Group: GroupPlanets, Z: 6},
	}
	for _, p := range planets {
		call.X = append(call.X, p.ra)
		call.Y = append(call.Y, p.dec)
		call.Colors = append(call.Colors, p.color)
		call.Meta = append(call.Meta, ir.Record{
			ir.FieldType: "planet", ir.FieldName: p.name,
			ir.FieldRA: p.ra, ir.FieldDec: p.dec, ir.FieldMagnitude: p.mag,
		})
	}
	call.Sizes = []float64{160}
	produced[GroupPlanets] += len(planets)
	return r.Scatter(call)
}

// drawLabels labels every named star and keeps count of the labels the
// renderer accepted.
func drawLabels(r primary.Renderer, produced map[string]int, stars []Star) error {
	for _, s := range stars {
		if s.Name == "" {
			continue
		}
		res, err := r.Text(primary.TextCall{
			Text:  s.Name,
			X:     s.RA,
			Y:     s.Dec,
			Style: primary.Style{Color: "#e8ecf8", FontSize: 9, HA: "left", VA: "bottom"},
			Layer: primary.Layer{Group: GroupLabels, Z: 7},
			Meta:  ir.Record{ir.FieldType: "star", ir.FieldName: s.Name},
			Retry: true,
		})
		if err != nil {
			return fmt.Errorf("label %s: %w", s.Name, err)
		}
		if res.Kept {
			produced[GroupLabels]++
		}
	}
	return nil
}
