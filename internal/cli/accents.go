package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jvsvault/jorgevs/internal/colour"
	"github.com/jvsvault/jorgevs/internal/config"
	"github.com/jvsvault/jorgevs/internal/image"
	"github.com/jvsvault/jorgevs/internal/theme"
)

func newAccentsCmd(global *globalOptions) *cobra.Command {
	var (
		root      string
		workers   int
		cacheFile string
	)

	cmd := &cobra.Command{
		Use:   "accents",
		Short: "Precompute accent colours for every background image",
		Long: `Extract the accent colour of every image in the bg-geo directory and store
the results in a JSON cache file. Theme generation and the development
server read this cache instead of decoding images on every request.

Images already present in the cache are skipped. Images that cannot be
decoded are reported and left out of the cache.

Examples:
  jvs accents --root ./site
  jvs accents --workers 8 --cache-file /tmp/accents.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := global.logger(cmd.ErrOrStderr())

			cfg, err := global.loadConfig()
			if err != nil {
				return err
			}
			if root != "" {
				cfg.Root = root
			}
			if changed(cmd.Flags(), "workers") {
				cfg.Workers = workers
			}
			if cacheFile != "" {
				cfg.AccentCacheFile = cacheFile
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			dir := cfg.BgGeoPath()
			names, err := image.ListImages(dir)
			if err != nil {
				return err
			}
			paths := make([]string, len(names))
			for i, name := range names {
				paths[i] = filepath.Join(dir, name)
			}

			cachePath := cfg.AccentCachePath()
			cache := theme.NewAccentCache()
			if err := cache.Load(cachePath); err != nil {
				logger.Warn("ignoring unreadable accent cache", "path", cachePath, "error", err)
			}

			ex := colour.NewExtractor(
				colour.WithSampleSize(cfg.SampleSize),
				colour.WithLogger(logger.Named("extract")),
			)
			stats, err := cache.Precompute(cmd.Context(), ex, image.NewFileLoader(), paths, cfg.Workers, logger.Named("accents"))
			if err != nil {
				return fmt.Errorf("precompute interrupted: %w", err)
			}
			if err := cache.Save(cachePath); err != nil {
				return err
			}

			table := NewTable([]string{"Image", "Accent", "Palette"})
			for i, p := range paths {
				a, ok := cache.Get(p)
				if !ok {
					table.AddRow([]string{names[i], "-", "failed"})
					continue
				}
				kind := "chromatic"
				if a.Variations.IsGrayscale() {
					kind = "grayscale"
				}
				table.AddRow([]string{names[i], a.Base, kind})
			}
			fmt.Fprint(cmd.OutOrStdout(), table.Render())

			logger.Info("accent cache updated",
				"path", cachePath,
				"extracted", stats.Extracted,
				"cached", stats.Cached,
				"failed", stats.Failed)
			return nil
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "site root directory (default from config)")
	cmd.Flags().IntVar(&workers, "workers", 4, "number of concurrent extractions")
	cmd.Flags().StringVar(&cacheFile, "cache-file", "", "accent cache file (default: <root>/"+config.AccentCacheFileName+")")
	return cmd
}
