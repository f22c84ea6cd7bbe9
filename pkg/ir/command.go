package ir

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/starbridge/pkg/errors"
)

// Command is one recorded primitive emission.
type Command struct {
	Geometry Geometry
	Style    Style
	Metadata []Record
	Z        int
	Group    string
}

// Kind returns the geometry kind, or KindPoints for a command without geometry.
func (c Command) Kind() Kind {
	if c.Geometry == nil {
		return KindPoints
	}
	return c.Geometry.Kind()
}

// Len returns the command's element count.
func (c Command) Len() int {
	if c.Geometry == nil {
		return 0
	}
	return c.Geometry.Len()
}

// RecordAt returns the metadata record of element i, or nil when the command
// carries no metadata.
func (c Command) RecordAt(i int) Record {
	if i < 0 || i >= len(c.Metadata) {
		return nil
	}
	return c.Metadata[i]
}

// Validate checks the command invariants.
func (c Command) Validate() error {
	if c.Geometry == nil {
		return errors.New(errors.ErrCodeInvalidCommand, "command has no geometry")
	}
	if err := errors.ValidateGroupID(c.Group); err != nil {
		return err
	}
	if err := c.Geometry.validate(); err != nil {
		return err
	}
	if n := len(c.Metadata); n != 0 && n != c.Len() {
		return errors.Mismatch(c.Kind().String(), "metadata", n, c.Len())
	}
	return nil
}

// =============================================================================
// JSON
// =============================================================================

type commandJSON struct {
	Kind     Kind            `json:"kind"`
	Group    string          `json:"group"`
	Z        int             `json:"z"`
	Style    Style           `json:"style"`
	Metadata []Record        `json:"metadata,omitempty"`
	Geometry json.RawMessage `json:"geometry"`
}

// MarshalJSON encodes the command with an explicit kind tag.
func (c Command) MarshalJSON() ([]byte, error) {
	if c.Geometry == nil {
		return nil, fmt.Errorf("command %q has no geometry", c.Group)
	}
	geom, err := json.Marshal(c.Geometry)
	if err != nil {
		return nil, err
	}
	return json.Marshal(commandJSON{
		Kind:     c.Kind(),
		Group:    c.Group,
		Z:        c.Z,
		Style:    c.Style,
		Metadata: c.Metadata,
		Geometry: geom,
	})
}

// UnmarshalJSON decodes a command, selecting the geometry type by kind.
func (c *Command) UnmarshalJSON(b []byte) error {
	var aux commandJSON
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	var g Geometry
	var err error
	switch aux.Kind {
	case KindPoints:
		g, err = decodeGeometry[PointCluster](aux.Geometry)
	case KindPolyline:
		g, err = decodeGeometry[Polyline](aux.Geometry)
	case KindPolygon:
		g, err = decodeGeometry[Polygon](aux.Geometry)
	case KindText:
		g, err = decodeGeometry[TextLabel](aux.Geometry)
	case KindLineBundle:
		g, err = decodeGeometry[LineBundle](aux.Geometry)
	case KindGradient:
		g, err = decodeGeometry[GradientFill](aux.Geometry)
	default:
		return fmt.Errorf("unknown kind %v", aux.Kind)
	}
	if err != nil {
		return fmt.Errorf("decode %s geometry: %w", aux.Kind, err)
	}
	*c = Command{
		Geometry: g,
		Style:    aux.Style,
		Metadata: aux.Metadata,
		Z:        aux.Z,
		Group:    aux.Group,
	}
	return nil
}

func decodeGeometry[T Geometry](raw json.RawMessage) (Geometry, error) {
	var g T
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, err
	}
	return g, nil
}
