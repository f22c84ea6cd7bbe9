package ir

import "fmt"

// Kind identifies the geometry variant of a command.
type Kind uint8

const (
	KindPoints     Kind = iota // point cluster (scatter)
	KindPolyline               // connected line
	KindPolygon                // closed ring
	KindText                   // text label
	KindLineBundle             // disjoint segments, one style
	KindGradient               // background gradient
)

var kindNames = [...]string{
	KindPoints:     "points",
	KindPolyline:   "polyline",
	KindPolygon:    "polygon",
	KindText:       "text",
	KindLineBundle: "line_bundle",
	KindGradient:   "gradient",
}

// Kinds lists every geometry kind in declaration order.
var Kinds = []Kind{KindPoints, KindPolyline, KindPolygon, KindText, KindLineBundle, KindGradient}

// String returns the wire name of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if int(k) >= len(kindNames) {
		return nil, fmt.Errorf("unknown kind %d", k)
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	for i, name := range kindNames {
		if name == string(b) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown kind %q", b)
}
