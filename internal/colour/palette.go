package colour

import (
	"encoding/json"
	"fmt"
)

// Accent is a dominant colour together with the palette derived from it.
type Accent struct {
	Hex        string     `json:"hex"`
	RGB        RGB        `json:"rgb"`
	Contrast   float64    `json:"contrast_with_white"`
	Variations Variations `json:"variations"`
}

// NewAccent builds an Accent for a hex colour. Unparseable input falls back
// to FallbackHex for the RGB and contrast fields while keeping the original
// text as the base variation.
func NewAccent(hex string) Accent {
	rgb, err := ParseHex(hex)
	if err != nil {
		rgb, _ = ParseHex(FallbackHex)
	}
	return Accent{
		Hex:        hex,
		RGB:        rgb,
		Contrast:   ContrastWithWhite(rgb),
		Variations: GenerateVariations(hex),
	}
}

// ToJSON converts the accent to indented JSON.
func (a Accent) ToJSON() ([]byte, error) {
	return json.MarshalIndent(a, "", "  ")
}

// String returns a human-readable representation of the accent and its variations.
func (a Accent) String() string {
	result := fmt.Sprintf("%s (%s, contrast %.2f:1)\n", a.Hex, a.RGB.String(), a.Contrast)
	return result + a.Variations.String()
}
