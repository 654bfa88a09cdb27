package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jvsvault/jorgevs/internal/colour"
)

func newVariationsCmd(global *globalOptions) *cobra.Command {
	format := newEnumFlag("text", "text", "json", "css")
	var preview bool

	cmd := &cobra.Command{
		Use:   "variations <colour>",
		Short: "Derive the accent palette for a colour",
		Long: `Derive the accent palette for a colour given as #rrggbb, rrggbb or rgb(r, g, b).

Grayscale colours produce light, dark, medium and contrast variants;
chromatic colours produce light, dark, saturated and vibrant variants.
Every variant stays dark enough to carry white text.

Examples:
  jvs variations '#3c64a0'
  jvs variations --format css 'rgb(60, 100, 160)'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := global.logger(cmd.ErrOrStderr())

			base := args[0]
			if rgb, err := colour.ParseColour(base); err == nil {
				base = rgb.Hex()
			} else {
				logger.Warn("not a recognised colour, palette will only contain the base", "colour", base, "error", err)
			}

			return writeVariations(cmd.OutOrStdout(), colour.GenerateVariations(base), format.String(), preview && colour.SupportsANSIColours())
		},
	}

	cmd.Flags().VarP(format, "format", "f", format.usage("output format"))
	cmd.Flags().BoolVar(&preview, "preview", false, "show colour previews in terminal")
	return cmd
}

func writeVariations(w io.Writer, v colour.Variations, format string, preview bool) error {
	switch format {
	case "json":
		data, err := v.ToJSON()
		if err != nil {
			return fmt.Errorf("failed to encode variations: %w", err)
		}
		fmt.Fprintln(w, string(data))
	case "css":
		fmt.Fprint(w, variationsCSS(v))
	default:
		writeVariationsText(w, v, preview)
	}
	return nil
}

func writeVariationsText(w io.Writer, v colour.Variations, preview bool) {
	for _, k := range v.Keys() {
		fmt.Fprintln(w, colour.FormatColourWithLabel(k, v[k], preview))
	}
}

// variationsCSS renders the palette as the custom properties the site reads.
func variationsCSS(v colour.Variations) string {
	var sb strings.Builder
	sb.WriteString(":root {\n")
	for _, k := range v.Keys() {
		name := "--accent-" + k
		if k == colour.VariantBase {
			name = "--accent-color"
		}
		fmt.Fprintf(&sb, "  %s: %s;\n", name, v[k])
	}
	sb.WriteString("}\n")
	return sb.String()
}
