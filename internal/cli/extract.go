package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jvsvault/jorgevs/internal/colour"
	"github.com/jvsvault/jorgevs/internal/image"
	"github.com/jvsvault/jorgevs/internal/util/imagecache"
)

type extractOptions struct {
	format     *enumFlag
	variations bool
	preview    bool
	size       int
	fallback   bool
	cacheDir   string
}

func newExtractCmd(global *globalOptions) *cobra.Command {
	opts := &extractOptions{format: newEnumFlag("hex", "hex", "rgb", "json")}

	cmd := &cobra.Command{
		Use:   "extract <image|directory|url>",
		Short: "Extract the accent colour of an image",
		Long: `Extract the dominant accent colour of an image.

The image is reduced to a small square raster and sampled at thirteen fixed
points. Strongly coloured samples win over gray ones; the result is boosted
and then capped so white text stays readable on it. Images with nothing
usable yield the neutral fallback #808080.

A directory argument picks a random image inside it. http(s) URLs are
fetched, and kept under --cache-dir when one is given.

Supported image formats: JPEG, PNG, GIF, WebP

Examples:
  # Print the accent as hex
  jvs extract assets/images/bg-geo/01.jpg

  # Accent plus derived palette with terminal swatches
  jvs extract --variations --preview assets/images/bg-geo/01.jpg

  # Full JSON description
  jvs extract --format json https://example.com/wallpaper.png

  # Never fail; print the fallback colour instead
  jvs extract --fallback broken.jpg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, global, opts, args[0])
		},
	}

	cmd.Flags().VarP(opts.format, "format", "f", opts.format.usage("output format"))
	cmd.Flags().BoolVar(&opts.variations, "variations", false, "also print the derived palette")
	cmd.Flags().BoolVar(&opts.preview, "preview", false, "show colour previews in terminal")
	cmd.Flags().IntVar(&opts.size, "size", colour.DefaultSampleSize, "side of the sampling raster in pixels")
	cmd.Flags().BoolVar(&opts.fallback, "fallback", false, "print "+colour.FallbackHex+" instead of failing")
	cmd.Flags().StringVar(&opts.cacheDir, "cache-dir", "", "directory to keep downloaded images in")
	return cmd
}

func runExtract(cmd *cobra.Command, global *globalOptions, opts *extractOptions, arg string) error {
	logger := global.logger(cmd.ErrOrStderr())

	size := opts.size
	if !changed(cmd.Flags(), "size") {
		if cfg, err := global.loadConfig(); err == nil {
			size = cfg.SampleSize
		} else {
			logger.Debug("config not loaded, using defaults", "error", err)
		}
	}
	exCfg := colour.ExtractorConfig{SampleSize: size}
	if err := exCfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	path, err := image.ResolveImagePath(arg)
	if err != nil {
		return fmt.Errorf("invalid image path: %w", err)
	}
	if !image.IsURL(path) {
		if err := image.ValidateImagePath(path); err != nil && !opts.fallback {
			return fmt.Errorf("invalid image path: %w", err)
		}
	}
	logger.Debug("extracting accent", "path", path, "size", size)

	loader, err := newLoader(opts.cacheDir)
	if err != nil {
		return err
	}

	ex := colour.NewExtractor(
		colour.WithSampleSize(exCfg.SampleSize),
		colour.WithLogger(logger.Named("extract")),
	)

	hex, err := ex.ExtractFile(cmd.Context(), loader, path)
	if err != nil {
		if !opts.fallback {
			return fmt.Errorf("failed to extract accent: %w", err)
		}
		logger.Warn("extraction failed, using fallback", "path", path, "error", err)
		hex = colour.FallbackHex
	}

	return writeAccent(cmd.OutOrStdout(), hex, opts)
}

func newLoader(cacheDir string) (*image.SmartLoader, error) {
	if cacheDir == "" {
		return image.NewSmartLoader(), nil
	}
	cache, err := imagecache.New(cacheDir)
	if err != nil {
		return nil, err
	}
	return image.NewCachingLoader(cache), nil
}

func writeAccent(w io.Writer, hex string, opts *extractOptions) error {
	accent := colour.NewAccent(hex)
	preview := opts.preview && colour.SupportsANSIColours()

	switch opts.format.String() {
	case "json":
		data, err := accent.ToJSON()
		if err != nil {
			return fmt.Errorf("failed to encode accent: %w", err)
		}
		fmt.Fprintln(w, string(data))
		return nil
	case "rgb":
		fmt.Fprintln(w, accent.RGB.String())
	default:
		if preview {
			fmt.Fprintln(w, colour.ColourPreviewWithText(accent.RGB, hex, 10))
		} else {
			fmt.Fprintln(w, hex)
		}
	}

	if opts.variations {
		writeVariationsText(w, accent.Variations, preview)
	}
	return nil
}
