package style

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// FallbackColor replaces colours that cannot be parsed.
const FallbackColor = "#000000"

// shortColors are the primary renderer's single-letter colour codes.
var shortColors = map[string]string{
	"b": "#0000ff",
	"g": "#008000",
	"r": "#ff0000",
	"c": "#00bfbf",
	"m": "#bf00bf",
	"y": "#bfbf00",
	"k": "#000000",
	"w": "#ffffff",
}

// Color normalizes a colour string to lowercase "#rrggbb" plus the alpha
// carried by 8-digit hex codes (1 otherwise). It accepts hex codes (#rgb,
// #rrggbb, #rrggbbaa), CSS/SVG colour names and single-letter codes. The
// empty string and "none" normalize to "" (no colour). Anything else
// yields [FallbackColor] and ok=false.
func Color(s string) (hex string, alpha float64, ok bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "none", "transparent":
		return "", 1, true
	}
	if c, found := shortColors[s]; found {
		return c, 1, true
	}
	if strings.HasPrefix(s, "#") {
		alpha = 1
		if len(s) == 9 {
			a, err := strconv.ParseUint(s[7:], 16, 8)
			if err != nil {
				return FallbackColor, 1, false
			}
			alpha = float64(a) / 255
			s = s[:7]
		}
		c, err := colorful.Hex(s)
		if err != nil {
			return FallbackColor, 1, false
		}
		return c.Hex(), alpha, true
	}
	if rgba, found := colornames.Map[strings.ReplaceAll(s, " ", "")]; found {
		c, _ := colorful.MakeColor(rgba)
		return c.Hex(), 1, true
	}
	return FallbackColor, 1, false
}

// Colors normalizes a slice of colours. Failed entries become
// [FallbackColor]; ok is false if any entry fell back.
func Colors(in []string) ([]string, bool) {
	out := make([]string, len(in))
	all := true
	for i, s := range in {
		hex, _, ok := Color(s)
		if hex == "" {
			hex = FallbackColor
		}
		out[i] = hex
		all = all && ok
	}
	return out, all
}

// HexAlpha appends alpha to a "#rrggbb" colour as a two-digit suffix when
// it is below one, so the result parses back through [Color]. The empty
// colour stays empty.
func HexAlpha(hex string, alpha float64) string {
	if hex == "" || !(alpha < 1) {
		return hex
	}
	return fmt.Sprintf("%s%02x", hex, uint8(Opacity(alpha)*255+0.5))
}

// RGBA parses a normalized "#rrggbb" colour into 8-bit channels. Empty or
// malformed strings return black. alpha is a resolved opacity: zero is
// fully transparent.
func RGBA(hex string, alpha float64) (r, g, b, a uint8) {
	c, err := colorful.Hex(hex)
	if err != nil {
		c = colorful.Color{}
	}
	r, g, b = c.Clamped().RGB255()
	return r, g, b, uint8(Opacity(alpha)*255 + 0.5)
}
