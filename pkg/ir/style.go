package ir

// Marker is a renderer-independent marker shape.
type Marker string

const (
	MarkerCircle      Marker = "circle"
	MarkerSquare      Marker = "square"
	MarkerStar        Marker = "star"
	MarkerStar4       Marker = "star4"
	MarkerDiamond     Marker = "diamond"
	MarkerTriangle    Marker = "triangle"
	MarkerPlus        Marker = "plus"
	MarkerCirclePlus  Marker = "circle_plus"
	MarkerCircleCross Marker = "circle_cross"
	MarkerCircleDot   Marker = "circle_dot"
	MarkerComet       Marker = "comet"
	MarkerEllipse     Marker = "ellipse"
)

// Dash is a renderer-independent stroke pattern.
type Dash string

const (
	DashSolid   Dash = "solid"
	DashDashed  Dash = "dashed"
	DashDotted  Dash = "dotted"
	DashDashDot Dash = "dashdot"
)

// VAnchor is the vertical alignment of a label relative to its anchor point.
type VAnchor string

const (
	VAnchorTop      VAnchor = "top"
	VAnchorCenter   VAnchor = "center"
	VAnchorBottom   VAnchor = "bottom"
	VAnchorBaseline VAnchor = "baseline"
)

// HAnchor is the horizontal alignment of a label relative to its anchor point.
type HAnchor string

const (
	HAnchorLeft   HAnchor = "left"
	HAnchorCenter HAnchor = "center"
	HAnchorRight  HAnchor = "right"
)

// Anchor pairs the two label alignments.
type Anchor struct {
	V VAnchor `json:"v,omitempty"`
	H HAnchor `json:"h,omitempty"`
}

// Font describes label typography. Size is in points.
type Font struct {
	Size   float64 `json:"size,omitempty"`
	Weight string  `json:"weight,omitempty"`
	Family string  `json:"family,omitempty"`
}

// Style is the normalized attribute set of a command. Colours are "#rrggbb",
// "#rrggbbaa" when the colour carries its own opacity, or empty for none.
// Widths are in points. Opacity is the style-wide alpha applied on top of
// each colour's own; zero means unset and is treated as fully opaque by
// [Style.Alpha].
type Style struct {
	Color     string  `json:"color,omitempty"`
	EdgeColor string  `json:"edge_color,omitempty"`
	FillColor string  `json:"fill_color,omitempty"`
	Width     float64 `json:"width,omitempty"`
	EdgeWidth float64 `json:"edge_width,omitempty"`
	Dash      Dash    `json:"dash,omitempty"`
	Opacity   float64 `json:"opacity,omitempty"`
	Marker    Marker  `json:"marker,omitempty"`
	Font      Font    `json:"font,omitzero"`
	Anchor    Anchor  `json:"anchor,omitzero"`
}

// Alpha returns the effective opacity in (0, 1].
func (s Style) Alpha() float64 {
	if s.Opacity <= 0 || s.Opacity > 1 {
		return 1
	}
	return s.Opacity
}

// Filled reports whether the style asks for an area fill.
func (s Style) Filled() bool { return s.FillColor != "" }
