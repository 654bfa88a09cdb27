package cli

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jvsvault/jorgevs/internal/colour"
	"github.com/jvsvault/jorgevs/internal/config"
	"github.com/jvsvault/jorgevs/internal/image"
	"github.com/jvsvault/jorgevs/internal/theme"
	"github.com/jvsvault/jorgevs/internal/theme/seed"
)

// defaultSessionFile is used by --session when the config names no session file.
const defaultSessionFile = ".jvs-session.json"

type themeOptions struct {
	format   *enumFlag
	root     string
	seedMode string
	seed     int64
	session  bool
	reset    bool
	headings int
	metadata int
}

func newThemeCmd(global *globalOptions) *cobra.Command {
	opts := &themeOptions{format: newEnumFlag("css", "css", "json")}

	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Generate a randomized theme for the site",
		Long: `Generate a randomized theme from the images under the site root.

A background and a geometry texture are drawn from the bg-geo directory and
a profile picture from the profile directory. The accent colour comes from
the chosen background and drives the palette and decoration colours.

Seed modes:
  random    different theme every run (default)
  content   same theme while the set of images is unchanged
  filepath  same theme for the same site root
  manual    seed given with --seed

Examples:
  jvs theme --root ./site
  jvs theme --format json --h2 4 --dd 3
  jvs theme --seed 42
  jvs theme --session`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTheme(cmd, global, opts)
		},
	}

	cmd.Flags().VarP(opts.format, "format", "f", opts.format.usage("output format"))
	cmd.Flags().StringVar(&opts.root, "root", "", "site root directory (default from config)")
	cmd.Flags().StringVar(&opts.seedMode, "seed-mode", "", "seed mode (content, filepath, manual, random)")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "seed value; implies --seed-mode manual")
	cmd.Flags().BoolVar(&opts.session, "session", false, "reuse the previous selection while it is fresh")
	cmd.Flags().BoolVar(&opts.reset, "reset-session", false, "discard the stored selection before generating")
	cmd.Flags().IntVar(&opts.headings, "h2", 0, "number of section headings to decorate")
	cmd.Flags().IntVar(&opts.metadata, "dd", 0, "number of metadata values to decorate")
	return cmd
}

func runTheme(cmd *cobra.Command, global *globalOptions, opts *themeOptions) error {
	logger := global.logger(cmd.ErrOrStderr())

	cfg, err := global.loadConfig()
	if err != nil {
		return err
	}
	if opts.root != "" {
		cfg.Root = opts.root
	}
	if opts.seedMode != "" {
		mode, err := seed.ParseMode(opts.seedMode)
		if err != nil {
			return err
		}
		cfg.SeedMode = string(mode)
	}
	if changed(cmd.Flags(), "seed") {
		cfg.Seed = &opts.seed
		if opts.seedMode == "" {
			cfg.SeedMode = string(seed.ModeManual)
		}
	}
	if opts.session && cfg.SessionFile == "" {
		cfg.SessionFile = filepath.Join(cfg.Root, defaultSessionFile)
	}
	if !opts.session && !opts.reset {
		cfg.SessionFile = ""
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if opts.reset {
		if cfg.SessionFile == "" {
			cfg.SessionFile = filepath.Join(cfg.Root, defaultSessionFile)
		}
		if err := theme.NewSessionCache(cfg.SessionFile, cfg.SessionTTL, logger).Clear(); err != nil {
			return err
		}
		logger.Debug("session cleared", "path", cfg.SessionFile)
	}

	catalog, err := theme.LoadCatalog(cfg.BgGeoPath(), cfg.ProfilePath())
	if err != nil {
		return err
	}

	r, err := newRandomizer(cfg, catalog, logger)
	if err != nil {
		return err
	}

	t, err := r.Generate(cmd.Context(), catalog, theme.GenerateOptions{
		Headings: opts.headings,
		Metadata: opts.metadata,
	})
	if errors.Is(err, theme.ErrEmptyCatalog) {
		logger.Warn("no background images found, using fallback theme", "dir", cfg.BgGeoPath())
		t = theme.Fallback()
	} else if err != nil {
		return err
	}
	if t.AccentErr != "" {
		logger.Warn("accent extraction failed, using fallback", "error", t.AccentErr)
	}

	saveAccents(r.Accents(), cfg, logger)
	return writeTheme(cmd.OutOrStdout(), t, opts.format.String())
}

// newRandomizer wires a theme.Randomizer from cfg: seed, extractor, file
// loader, the persisted accent cache and the optional session file.
func newRandomizer(cfg config.Config, catalog theme.Catalog, logger hclog.Logger) (*theme.Randomizer, error) {
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root: %w", err)
	}

	seedCfg := seed.Config{Mode: seed.Mode(cfg.SeedMode), Value: cfg.Seed}
	s, err := seed.Calculate(catalog.Names(), root, seedCfg)
	if err != nil {
		if seedCfg.Mode != seed.ModeContent {
			return nil, fmt.Errorf("failed to calculate seed: %w", err)
		}
		logger.Debug("empty catalog, falling back to a random seed")
		s = seed.GenerateRandomSeed()
	}
	logger.Debug("theme seed", "mode", cfg.SeedMode, "seed", s)

	accents := theme.NewAccentCache()
	if err := accents.Load(cfg.AccentCachePath()); err != nil {
		logger.Warn("ignoring unreadable accent cache", "path", cfg.AccentCachePath(), "error", err)
	}

	var session *theme.SessionCache
	if cfg.SessionFile != "" {
		session = theme.NewSessionCache(cfg.SessionFile, cfg.SessionTTL, logger.Named("session"))
	}

	return theme.NewRandomizer(theme.Options{
		Seed:     s,
		BgGeoDir: cfg.BgGeoPath(),
		Extractor: colour.NewExtractor(
			colour.WithSampleSize(cfg.SampleSize),
			colour.WithLogger(logger.Named("extract")),
		),
		Loader:  image.NewFileLoader(),
		Accents: accents,
		Session: session,
		Logger:  logger.Named("theme"),
	}), nil
}

func saveAccents(accents *theme.AccentCache, cfg config.Config, logger hclog.Logger) {
	if accents.Len() == 0 {
		return
	}
	if err := accents.Save(cfg.AccentCachePath()); err != nil {
		logger.Warn("failed to save accent cache", "path", cfg.AccentCachePath(), "error", err)
	}
}

func writeTheme(w io.Writer, t theme.Theme, format string) error {
	if format == "json" {
		data, err := jsonIndent(t)
		if err != nil {
			return fmt.Errorf("failed to encode theme: %w", err)
		}
		fmt.Fprintln(w, string(data))
		return nil
	}
	fmt.Fprint(w, t.CSS())
	return nil
}
