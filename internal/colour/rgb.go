// Package colour provides dominant colour extraction and palette variation generation.
package colour

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// FallbackHex is the neutral accent applied whenever extraction cannot produce a colour.
const FallbackHex = "#808080"

var (
	hexPattern = regexp.MustCompile(`^#?[0-9a-fA-F]{6}$`)
	rgbPattern = regexp.MustCompile(`^rgb\(\s*(\d+(?:\.\d+)?)\s*,\s*(\d+(?:\.\d+)?)\s*,\s*(\d+(?:\.\d+)?)\s*\)$`)
)

// RGB represents a color in RGB format.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// String returns the RGB color as a string in the format "rgb(r, g, b)".
func (rgb RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", rgb.R, rgb.G, rgb.B)
}

// Hex returns the RGB color as a lowercase hex string (e.g., "#1a2b3c").
func (rgb RGB) Hex() string {
	return rgb.colorful().Hex()
}

// Brightness returns the mean of the three channels.
func (rgb RGB) Brightness() float64 {
	return (float64(rgb.R) + float64(rgb.G) + float64(rgb.B)) / 3
}

// Spread returns max(r,g,b) - min(r,g,b), the cheap saturation measure used
// when classifying samples.
func (rgb RGB) Spread() int {
	hi := max(rgb.R, rgb.G, rgb.B)
	lo := min(rgb.R, rgb.G, rgb.B)
	return int(hi) - int(lo)
}

func (rgb RGB) colorful() colorful.Color {
	return colorful.Color{
		R: float64(rgb.R) / 255.0,
		G: float64(rgb.G) / 255.0,
		B: float64(rgb.B) / 255.0,
	}
}

// Gray returns an RGB with all three channels set to v.
func Gray(v uint8) RGB {
	return RGB{R: v, G: v, B: v}
}

// ParseHex decodes a six digit hex colour with or without the leading '#'.
func ParseHex(s string) (RGB, error) {
	if !hexPattern.MatchString(s) {
		return RGB{}, fmt.Errorf("invalid hex colour: %q", s)
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(strings.ToLower(s))
	if err != nil {
		return RGB{}, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return RGB{R: r, G: g, B: b}, nil
}

// ParseColour decodes either textual form a palette entry can take:
// "#rrggbb" or "rgb(r, g, b)". Both forms of the same colour decode identically.
func ParseColour(s string) (RGB, error) {
	s = strings.TrimSpace(s)
	if m := rgbPattern.FindStringSubmatch(strings.ToLower(s)); m != nil {
		var channels [3]uint8
		for i, part := range m[1:] {
			v, err := strconv.ParseFloat(part, 64)
			if err != nil {
				return RGB{}, fmt.Errorf("invalid channel %q: %w", part, err)
			}
			if v > 255 {
				return RGB{}, fmt.Errorf("channel out of range: %s", part)
			}
			channels[i] = uint8(math.Round(v))
		}
		return RGB{R: channels[0], G: channels[1], B: channels[2]}, nil
	}
	return ParseHex(s)
}

// clampChannel rounds v and clamps it into [0,255].
func clampChannel(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
