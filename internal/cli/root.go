// Package cli provides the command-line interface for jvs.
package cli

import (
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jvsvault/jorgevs/internal/config"
	"github.com/jvsvault/jorgevs/internal/version"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	verbose    bool
	quiet      bool
	configPath string
}

// NewRootCmd builds the jvs command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "jvs",
		Short: "Randomized theming toolkit for a static personal site",
		Long: `jvs extracts accent colours from background images, derives small
palettes that stay readable under white text, and generates randomized
themes for the site: background and texture picks, profile frame shapes,
decoration geometry and CSS custom properties.

It also ships the local development server used while editing the site.`,
		Version:      version.Short(),
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default: <root>/"+config.FileName+")")

	rootCmd.SetVersionTemplate(version.String() + "\n")

	rootCmd.AddCommand(
		newVersionCmd(),
		newExtractCmd(opts),
		newVariationsCmd(opts),
		newThemeCmd(opts),
		newAccentsCmd(opts),
		newServeCmd(opts),
	)
	return rootCmd
}

// logger returns the CLI logger writing to w.
func (o *globalOptions) logger(w io.Writer) hclog.Logger {
	level := hclog.Info
	switch {
	case o.verbose:
		level = hclog.Debug
	case o.quiet:
		level = hclog.Error
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "jvs",
		Output: w,
		Level:  level,
	})
}

// loadConfig loads and validates the layered configuration.
func (o *globalOptions) loadConfig() (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newVersionCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including build date, commit hash, and Go version.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !asJSON {
				fmt.Fprintln(cmd.OutOrStdout(), version.String())
				return nil
			}
			data, err := jsonIndent(version.GetInfo())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print version information as JSON")
	return cmd
}
