package interactive

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Mode reports how a figure was rendered.
type Mode string

const (
	ModeFull      Mode = "full"
	ModeDecimated Mode = "decimated"
)

// TraceType is the drawing primitive of a trace.
type TraceType string

const (
	TraceMarkers  TraceType = "markers"
	TraceLine     TraceType = "line"
	TracePolygon  TraceType = "polygon"
	TraceText     TraceType = "text"
	TraceGradient TraceType = "gradient"
)

// Coords is a coordinate series. NaN entries are path breaks and encode as
// JSON null.
type Coords []float64

// MarshalJSON implements json.Marshaler.
func (c Coords) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, v := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			buf.WriteString("null")
			continue
		}
		buf.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Coords) UnmarshalJSON(b []byte) error {
	var raw []*float64
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(Coords, len(raw))
	for i, v := range raw {
		if v == nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = *v
	}
	*c = out
	return nil
}

// Breaks counts the NaN path breaks in c.
func (c Coords) Breaks() int {
	n := 0
	for _, v := range c {
		if math.IsNaN(v) {
			n++
		}
	}
	return n
}

// =============================================================================
// Figure
// =============================================================================

// Figure is the rendered interactive scene.
type Figure struct {
	RecordingID string        `json:"recording_id"`
	Title       string        `json:"title,omitempty"`
	Layout      Layout        `json:"layout"`
	Traces      []Trace       `json:"traces"`
	Legend      []LegendEntry `json:"legend"`
	Mode        Mode          `json:"mode"`
}

// Layout holds the figure-wide settings. Ranges run from the left/bottom
// edge to the right/top edge and may be descending.
type Layout struct {
	Projection string     `json:"projection"`
	Width      int        `json:"width"`
	Height     int        `json:"height"`
	Scale      float64    `json:"scale"`
	XRange     [2]float64 `json:"x_range"`
	YRange     [2]float64 `json:"y_range"`
	MirrorX    bool       `json:"mirror_x,omitempty"`
	Background string     `json:"background"`
	Paper      string     `json:"paper"`
}

// Map converts a scene coordinate to logical pixels, origin top-left.
func (l Layout) Map(x, y float64) (float64, float64) {
	w, h := float64(l.Width), float64(l.Height)
	px, py := w/2, h/2
	if dx := l.XRange[1] - l.XRange[0]; dx != 0 {
		px = (x - l.XRange[0]) / dx * w
	}
	if dy := l.YRange[1] - l.YRange[0]; dy != 0 {
		py = h - (y-l.YRange[0])/dy*h
	}
	return px, py
}

// Trace is one rendered command.
type Trace struct {
	Type       TraceType     `json:"type"`
	Group      string        `json:"group"`
	Name       string        `json:"name"`
	ShowLegend bool          `json:"show_legend"`
	Visible    bool          `json:"visible"`
	Z          int           `json:"z"`
	Order      int           `json:"order"`
	X          Coords        `json:"x"`
	Y          Coords        `json:"y"`
	Elements   int           `json:"elements"`
	Marker     *MarkerSpec   `json:"marker,omitempty"`
	Line       *LineSpec     `json:"line,omitempty"`
	Fill       *FillSpec     `json:"fill,omitempty"`
	Text       *TextSpec     `json:"text,omitempty"`
	Gradient   *GradientSpec `json:"gradient,omitempty"`
	Hover      []string      `json:"hover,omitempty"`
}

// MarkerSpec styles a markers trace. Radii are in logical pixels.
type MarkerSpec struct {
	Symbol      string    `json:"symbol"`
	Radii       []float64 `json:"radii"`
	Colors      []string  `json:"colors"`
	Opacities   []float64 `json:"opacities"`
	EdgeColor   string    `json:"edge_color,omitempty"`
	EdgeWidth   float64   `json:"edge_width,omitempty"`
	EdgeOpacity float64   `json:"edge_opacity,omitempty"`
}

// LineSpec styles a stroke.
type LineSpec struct {
	Color     string  `json:"color"`
	Width     float64 `json:"width"`
	Dash      string  `json:"dash"`
	DashArray string  `json:"dash_array,omitempty"`
	Opacity   float64 `json:"opacity"`
}

// FillSpec styles a polygon area.
type FillSpec struct {
	Color   string  `json:"color"`
	Opacity float64 `json:"opacity"`
}

// TextSpec styles a label.
type TextSpec struct {
	Text    string  `json:"text"`
	Size    float64 `json:"size"`
	Color   string  `json:"color"`
	Opacity float64 `json:"opacity"`
	Family  string  `json:"family,omitempty"`
	Weight  string  `json:"weight,omitempty"`
	XAnchor string  `json:"x_anchor"`
	YAnchor string  `json:"y_anchor"`
}

// GradientSpec describes a background ramp.
type GradientSpec struct {
	Shape string     `json:"shape"`
	Angle float64    `json:"angle"`
	Stops []StopSpec `json:"stops"`
}

// StopSpec is one gradient stop.
type StopSpec struct {
	Offset float64 `json:"offset"`
	Color  string  `json:"color"`
}

// LegendEntry is one togglable group. Traces lists trace indices in the
// figure's draw order.
type LegendEntry struct {
	Group  string `json:"group"`
	Name   string `json:"name"`
	Symbol string `json:"symbol,omitempty"`
	Color  string `json:"color,omitempty"`
	Traces []int  `json:"traces"`
}

// =============================================================================
// Figure methods
// =============================================================================

// ElementCounts sums trace element counts per group.
func (f *Figure) ElementCounts() map[string]int {
	out := make(map[string]int)
	for _, t := range f.Traces {
		out[t.Group] += t.Elements
	}
	return out
}

// Entry returns the legend entry of group.
func (f *Figure) Entry(group string) (LegendEntry, bool) {
	for _, e := range f.Legend {
		if e.Group == group {
			return e, true
		}
	}
	return LegendEntry{}, false
}

// SetGroupVisible shows or hides every trace of group and reports whether
// the group exists.
func (f *Figure) SetGroupVisible(group string, visible bool) bool {
	e, ok := f.Entry(group)
	if !ok {
		return false
	}
	for _, i := range e.Traces {
		f.Traces[i].Visible = visible
	}
	return true
}

// JSON encodes the figure.
func (f *Figure) JSON() ([]byte, error) {
	return json.Marshal(f)
}
