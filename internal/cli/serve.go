package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jvsvault/jorgevs/internal/config"
	"github.com/jvsvault/jorgevs/internal/server"
	"github.com/jvsvault/jorgevs/internal/theme"
)

func newServeCmd(global *globalOptions) *cobra.Command {
	cacheMode := newEnumFlag(config.CacheNone, config.CacheNone, config.CacheImages)
	var (
		addr  string
		root  string
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local development server",
		Long: `Serve the site root over HTTP for local development.

Endpoints:
  /api/images  image names in the bg-geo and profile directories
  /api/theme   a freshly generated theme (JSON, or CSS with ?format=css)
  /            static files, with / mapped to /index.html

Cache modes:
  none    every response is sent with no-store headers (default)
  images  images may be cached for an hour, everything else stays fresh

With --watch, accent colours cached for an image are dropped as soon as
the file changes on disk.

Examples:
  jvs serve --root ./site
  jvs serve --addr :3000 --cache-mode images --watch`,
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
			if addr != "" {
				cfg.Addr = addr
			}
			if changed(cmd.Flags(), "cache-mode") {
				cfg.CacheMode = cacheMode.String()
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			catalog, err := theme.LoadCatalog(cfg.BgGeoPath(), cfg.ProfilePath())
			if err != nil {
				return err
			}
			r, err := newRandomizer(cfg, catalog, logger)
			if err != nil {
				return err
			}

			srv, err := server.New(server.Options{
				Root:       cfg.Root,
				BgGeoDir:   cfg.BgGeoPath(),
				ProfileDir: cfg.ProfilePath(),
				CacheMode:  cfg.CacheMode,
				Randomizer: r,
				Logger:     logger.Named("server"),
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return srv.ListenAndServe(gctx, cfg.Addr)
			})
			if watch {
				g.Go(func() error {
					return server.Watch(gctx, r.Accents(), logger.Named("watch"), cfg.BgGeoPath(), cfg.ProfilePath())
				})
			}

			err = g.Wait()
			saveAccents(r.Accents(), cfg, logger)
			return err
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&root, "root", "", "site root directory (default from config)")
	cmd.Flags().Var(cacheMode, "cache-mode", cacheMode.usage("cache mode"))
	cmd.Flags().BoolVar(&watch, "watch", false, "invalidate cached accents when images change")
	return cmd
}
