package colour

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Variation names. Grayscale bases yield light, dark, medium and contrast;
// chromatic bases yield light, dark, saturated and vibrant.
const (
	VariantBase      = "base"
	VariantLight     = "light"
	VariantDark      = "dark"
	VariantMedium    = "medium"
	VariantContrast  = "contrast"
	VariantSaturated = "saturated"
	VariantVibrant   = "vibrant"
)

var variantOrder = []string{
	VariantBase,
	VariantLight,
	VariantDark,
	VariantMedium,
	VariantContrast,
	VariantSaturated,
	VariantVibrant,
}

// Variations maps a variant name to a colour string in "#rrggbb" or
// "rgb(r, g, b)" form.
type Variations map[string]string

// Keys returns the variant names present, base first.
func (v Variations) Keys() []string {
	keys := make([]string, 0, len(v))
	for _, k := range variantOrder {
		if _, ok := v[k]; ok {
			keys = append(keys, k)
		}
	}
	return keys
}

// Values returns the colours in Keys order.
func (v Variations) Values() []string {
	keys := v.Keys()
	values := make([]string, len(keys))
	for i, k := range keys {
		values[i] = v[k]
	}
	return values
}

// IsGrayscale reports whether the palette was derived from a grayscale base.
func (v Variations) IsGrayscale() bool {
	_, ok := v[VariantContrast]
	return ok
}

// String renders one "name: colour" line per variant.
func (v Variations) String() string {
	var sb strings.Builder
	for _, k := range v.Keys() {
		fmt.Fprintf(&sb, "%-10s %s\n", k+":", v[k])
	}
	return sb.String()
}

// ToJSON converts the variations to indented JSON.
func (v Variations) ToJSON() ([]byte, error) {
	return json.MarshalIndent(map[string]string(v), "", "  ")
}

// GenerateVariations derives a small palette from base. Every derived entry
// stays dark enough to carry white text. A base that is not a six digit hex
// colour yields {"base": base} unchanged.
func GenerateVariations(base string) Variations {
	rgb, err := ParseHex(base)
	if err != nil {
		return Variations{VariantBase: base}
	}

	if isNearGray(rgb) {
		gray := math.Min(100, float64(rgb.R))
		return Variations{
			VariantBase:     base,
			VariantLight:    Gray(clampChannel(math.Min(120, gray+40))).String(),
			VariantDark:     Gray(clampChannel(math.Max(0, gray-40))).String(),
			VariantMedium:   Gray(clampChannel(math.Min(100, math.Round(gray*0.8+20)))).String(),
			VariantContrast: Gray(60).String(),
		}
	}

	capR := math.Min(140, float64(rgb.R))
	capG := math.Min(140, float64(rgb.G))
	capB := math.Min(140, float64(rgb.B))

	return Variations{
		VariantBase: base,
		VariantLight: RGB{
			R: clampChannel(math.Min(160, capR+30)),
			G: clampChannel(math.Min(160, capG+30)),
			B: clampChannel(math.Min(160, capB+30)),
		}.String(),
		VariantDark: RGB{
			R: clampChannel(math.Max(0, capR-40)),
			G: clampChannel(math.Max(0, capG-40)),
			B: clampChannel(math.Max(0, capB-40)),
		}.String(),
		VariantSaturated: RGB{
			R: clampChannel(math.Min(140, capR*1.2)),
			G: clampChannel(math.Max(0, capG*0.8)),
			B: clampChannel(math.Max(0, capB*0.8)),
		}.String(),
		VariantVibrant: RGB{
			R: clampChannel(math.Min(140, math.Max(capR, 80))),
			G: clampChannel(math.Min(140, math.Max(capG, 80))),
			B: clampChannel(math.Min(140, math.Max(capB, 80))),
		}.String(),
	}
}

// isNearGray uses a looser test than extraction: it only looks at the chosen
// base colour, not at image samples.
func isNearGray(rgb RGB) bool {
	return absDiff(rgb.R, rgb.G) < 10 && absDiff(rgb.G, rgb.B) < 10
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
