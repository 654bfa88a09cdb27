package colour

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestGenerateVariations(t *testing.T) {
	tests := []struct {
		name string
		base string
		want Variations
	}{
		{
			name: "mid gray",
			base: "#808080",
			want: Variations{
				"base":     "#808080",
				"light":    "rgb(120, 120, 120)",
				"dark":     "rgb(60, 60, 60)",
				"medium":   "rgb(100, 100, 100)",
				"contrast": "rgb(60, 60, 60)",
			},
		},
		{
			name: "dark gray",
			base: "#282828",
			want: Variations{
				"base":     "#282828",
				"light":    "rgb(80, 80, 80)",
				"dark":     "rgb(0, 0, 0)",
				"medium":   "rgb(52, 52, 52)",
				"contrast": "rgb(60, 60, 60)",
			},
		},
		{
			name: "near gray within tolerance",
			base: "#504a46",
			want: Variations{
				"base":     "#504a46",
				"light":    "rgb(120, 120, 120)",
				"dark":     "rgb(40, 40, 40)",
				"medium":   "rgb(84, 84, 84)",
				"contrast": "rgb(60, 60, 60)",
			},
		},
		{
			name: "pure red",
			base: "#ff0000",
			want: Variations{
				"base":      "#ff0000",
				"light":     "rgb(160, 30, 30)",
				"dark":      "rgb(100, 0, 0)",
				"saturated": "rgb(140, 0, 0)",
				"vibrant":   "rgb(140, 80, 80)",
			},
		},
		{
			name: "extracted accent",
			base: "#a01919",
			want: Variations{
				"base":      "#a01919",
				"light":     "rgb(160, 55, 55)",
				"dark":      "rgb(100, 0, 0)",
				"saturated": "rgb(140, 20, 20)",
				"vibrant":   "rgb(140, 80, 80)",
			},
		},
		{
			name: "uppercase without hash",
			base: "3C64A0",
			want: Variations{
				"base":      "3C64A0",
				"light":     "rgb(90, 130, 160)",
				"dark":      "rgb(20, 60, 100)",
				"saturated": "rgb(72, 80, 112)",
				"vibrant":   "rgb(80, 100, 140)",
			},
		},
		{
			name: "malformed",
			base: "not-a-color",
			want: Variations{"base": "not-a-color"},
		},
		{
			name: "short hex is malformed",
			base: "#fff",
			want: Variations{"base": "#fff"},
		},
		{
			name: "empty",
			base: "",
			want: Variations{"base": ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateVariations(tt.base)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("GenerateVariations(%q) mismatch (-want +got):\n%s", tt.base, diff)
			}
		})
	}
}

func TestGenerateVariationsChannelBounds(t *testing.T) {
	for r := 0; r < 256; r += 17 {
		for g := 0; g < 256; g += 17 {
			for b := 0; b < 256; b += 17 {
				base := RGB{R: uint8(r), G: uint8(g), B: uint8(b)}.Hex()
				v := GenerateVariations(base)
				for _, key := range v.Keys() {
					// ParseColour rejects channels above 255.
					if _, err := ParseColour(v[key]); err != nil {
						t.Fatalf("GenerateVariations(%s)[%s] = %q: %v", base, key, v[key], err)
					}
				}
				if len(v) != 5 {
					t.Fatalf("GenerateVariations(%s) has %d entries, want 5", base, len(v))
				}
			}
		}
	}
}

func TestGenerateVariationsVibrantFloor(t *testing.T) {
	for _, base := range []string{"#ff0000", "#00ff00", "#0000ff", "#102030", "#8a2be2"} {
		v := GenerateVariations(base)
		if v.IsGrayscale() {
			t.Fatalf("%s classified as grayscale", base)
		}
		vibrant, err := ParseColour(v[VariantVibrant])
		if err != nil {
			t.Fatalf("ParseColour(%s) error = %v", v[VariantVibrant], err)
		}
		for _, ch := range []uint8{vibrant.R, vibrant.G, vibrant.B} {
			if ch < 80 || ch > 140 {
				t.Errorf("%s vibrant channel %d outside [80,140]", base, ch)
			}
		}
		if _, ok := v[VariantSaturated]; !ok {
			t.Errorf("%s missing saturated variant", base)
		}
	}
}

func TestGenerateVariationsIdempotent(t *testing.T) {
	for _, base := range []string{"#808080", "#ff0000", "#a05000", "garbage"} {
		a, err := GenerateVariations(base).ToJSON()
		if err != nil {
			t.Fatalf("ToJSON() error = %v", err)
		}
		b, err := GenerateVariations(base).ToJSON()
		if err != nil {
			t.Fatalf("ToJSON() error = %v", err)
		}
		if !bytes.Equal(a, b) {
			t.Errorf("GenerateVariations(%s) not stable:\n%s\n%s", base, a, b)
		}
	}
}

func TestVariationsKeysOrder(t *testing.T) {
	tests := []struct {
		base string
		want []string
	}{
		{"#808080", []string{"base", "light", "dark", "medium", "contrast"}},
		{"#ff0000", []string{"base", "light", "dark", "saturated", "vibrant"}},
		{"nope", []string{"base"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, GenerateVariations(tt.base).Keys()); diff != "" {
			t.Errorf("Keys(%s) mismatch (-want +got):\n%s", tt.base, diff)
		}
	}

	values := GenerateVariations("#808080").Values()
	if values[0] != "#808080" || values[4] != "rgb(60, 60, 60)" {
		t.Errorf("Values() = %v", values)
	}
}
