package ir

import (
	"encoding/json"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/matzehuels/starbridge/pkg/errors"
)

// =============================================================================
// Descriptors
// =============================================================================

// Extent is an axis-aligned range. XMin may exceed XMax (and likewise for Y)
// when an axis runs backwards, as on sky charts where east is left.
type Extent struct {
	XMin float64 `json:"x_min"`
	XMax float64 `json:"x_max"`
	YMin float64 `json:"y_min"`
	YMax float64 `json:"y_max"`
}

// Width returns the signed x span.
func (e Extent) Width() float64 { return e.XMax - e.XMin }

// Height returns the signed y span.
func (e Extent) Height() float64 { return e.YMax - e.YMin }

// Empty reports whether either span is zero.
func (e Extent) Empty() bool { return e.Width() == 0 || e.Height() == 0 }

// Map converts p from this extent to pixel space of a w×h canvas with the
// origin top-left and y growing downwards.
func (e Extent) Map(p Point, w, h float64) (float64, float64) {
	px, py := w/2, h/2
	if dx := e.Width(); dx != 0 {
		px = (p.X - e.XMin) / dx * w
	}
	if dy := e.Height(); dy != 0 {
		py = h - (p.Y-e.YMin)/dy*h
	}
	return px, py
}

// Unmap is the inverse of Map.
func (e Extent) Unmap(px, py, w, h float64) Point {
	p := Point{X: e.XMin, Y: e.YMin}
	if w != 0 {
		p.X = e.XMin + px/w*e.Width()
	}
	if h != 0 {
		p.Y = e.YMin + (h-py)/h*e.Height()
	}
	return p
}

// ProjectionDescriptor names the projection and the extents of the scene.
type ProjectionDescriptor struct {
	ID       string `json:"id"`
	Domain   Extent `json:"domain"`
	Rendered Extent `json:"rendered"`
}

// CanvasDescriptor describes the output surface of the primary renderer.
type CanvasDescriptor struct {
	Background       string  `json:"background,omitempty"`
	FigureBackground string  `json:"figure_background,omitempty"`
	Width            int     `json:"width"`
	Height           int     `json:"height"`
	Scale            float64 `json:"scale,omitempty"`
}

// PixelSize returns the raster size at the descriptor's scale.
func (c CanvasDescriptor) PixelSize() (int, int) {
	s := c.Scale
	if s <= 0 {
		s = 1
	}
	return int(float64(c.Width)*s + 0.5), int(float64(c.Height)*s + 0.5)
}

// =============================================================================
// Recording
// =============================================================================

// Recording is the ordered list of commands captured for one scene.
type Recording struct {
	ID         uuid.UUID
	Projection ProjectionDescriptor
	Canvas     CanvasDescriptor

	mu        sync.RWMutex
	commands  []Command
	finalized bool
}

// New creates an empty, writable recording.
func New(proj ProjectionDescriptor, canvas CanvasDescriptor) *Recording {
	return &Recording{
		ID:         uuid.New(),
		Projection: proj,
		Canvas:     canvas,
	}
}

// Append validates cmd and appends it. It fails with RECORDING_FINALIZED on a
// frozen recording and INVALID_COMMAND when cmd breaks an invariant.
func (r *Recording) Append(cmd Command) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finalized {
		return errors.New(errors.ErrCodeRecordingFinalized, "recording %s is finalized", r.ID)
	}
	r.commands = append(r.commands, cmd)
	return nil
}

// Commands returns a copy of the command list in recording order.
func (r *Recording) Commands() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.commands)
}

// Len returns the number of commands.
func (r *Recording) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}

// Finalize freezes the recording in place and returns it.
func (r *Recording) Finalize() *Recording {
	r.mu.Lock()
	r.finalized = true
	r.mu.Unlock()
	return r
}

// Finalized reports whether the recording is frozen.
func (r *Recording) Finalized() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.finalized
}

// Snapshot returns a frozen copy sharing the ID and descriptors. The
// receiver stays writable.
func (r *Recording) Snapshot() *Recording {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return &Recording{
		ID:         r.ID,
		Projection: r.Projection,
		Canvas:     r.Canvas,
		commands:   slices.Clone(r.commands),
		finalized:  true,
	}
}

// Clear drops every command, assigns a fresh ID and makes the recording
// writable again.
func (r *Recording) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = nil
	r.finalized = false
	r.ID = uuid.New()
}

// Groups returns the group ids in order of first appearance.
func (r *Recording) Groups() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	seen := make(map[string]bool)
	for _, c := range r.commands {
		if !seen[c.Group] {
			seen[c.Group] = true
			out = append(out, c.Group)
		}
	}
	return out
}

// ElementCounts sums element counts per group across all commands.
func (r *Recording) ElementCounts() map[string]int {
	return r.CountsWhere(nil)
}

// CountsWhere sums element counts per group over commands whose kind is in
// kinds. A nil kinds slice counts every command.
func (r *Recording) CountsWhere(kinds []Kind) map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]int)
	for _, c := range r.commands {
		if kinds != nil && !slices.Contains(kinds, c.Kind()) {
			continue
		}
		out[c.Group] += c.Len()
	}
	return out
}

type recordingJSON struct {
	ID         uuid.UUID            `json:"id"`
	Projection ProjectionDescriptor `json:"projection"`
	Canvas     CanvasDescriptor     `json:"canvas"`
	Commands   []Command            `json:"commands"`
}

// MarshalJSON encodes the recording.
func (r *Recording) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordingJSON{
		ID:         r.ID,
		Projection: r.Projection,
		Canvas:     r.Canvas,
		Commands:   r.Commands(),
	})
}

// UnmarshalJSON decodes a recording and validates every command. The result
// is writable; callers that replay it should Finalize it.
func (r *Recording) UnmarshalJSON(b []byte) error {
	var aux recordingJSON
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	for i, c := range aux.Commands {
		if err := c.Validate(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "command %d", i)
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ID = aux.ID
	r.Projection = aux.Projection
	r.Canvas = aux.Canvas
	r.commands = aux.Commands
	r.finalized = false
	return nil
}
