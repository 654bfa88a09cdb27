// Package config loads site and server settings from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jvsvault/jorgevs/internal/colour"
)

// FileName is the config file looked up in the site root when no explicit path is given.
const FileName = "jvs.yaml"

// AccentCacheFileName is the accent cache kept in the site root when none is configured.
const AccentCacheFileName = ".jvs-accents.json"

// Cache modes for the development server.
const (
	// CacheNone serves every response with no-store headers.
	CacheNone = "none"
	// CacheImages lets browsers cache images for an hour; everything else stays fresh.
	CacheImages = "images"
)

// Seed modes mirror theme/seed; duplicated here to keep config free of theme imports.
var validSeedModes = []string{"content", "filepath", "manual", "random"}

// Config holds every tunable of the toolkit.
type Config struct {
	// Root is the site directory served by the dev server.
	Root string `yaml:"root"`
	// Addr is the listen address of the dev server.
	Addr string `yaml:"addr"`
	// BgGeoDir holds background/geometry textures, relative to Root.
	BgGeoDir string `yaml:"bg_geo_dir"`
	// ProfileDir holds profile pictures, relative to Root.
	ProfileDir string `yaml:"profile_dir"`
	// CacheMode is CacheNone or CacheImages.
	CacheMode string `yaml:"cache_mode"`
	// SessionTTL bounds how long a theme selection is reused.
	SessionTTL time.Duration `yaml:"session_ttl"`
	// SessionFile stores the last selection; empty disables session reuse.
	SessionFile string `yaml:"session_file"`
	// SampleSize is the raster side used by the colour extractor.
	SampleSize int `yaml:"sample_size"`
	// SeedMode selects how theme randomness is seeded.
	SeedMode string `yaml:"seed_mode"`
	// Seed is used when SeedMode is "manual".
	Seed *int64 `yaml:"seed,omitempty"`
	// AccentCacheFile persists extracted accents between runs; empty means <root>/.jvs-accents.json.
	AccentCacheFile string `yaml:"accent_cache_file"`
	// Workers bounds concurrent accent extraction.
	Workers int `yaml:"workers"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Root:       ".",
		Addr:       ":8080",
		BgGeoDir:   filepath.Join("assets", "images", "bg-geo"),
		ProfileDir: filepath.Join("assets", "images", "profile"),
		CacheMode:  CacheNone,
		SessionTTL: 30 * time.Minute,
		SampleSize: 100,
		SeedMode:   "random",
		Workers:    4,
	}
}

// Load builds a Config from defaults, then the YAML file at path (or
// <root>/jvs.yaml when path is empty and the file exists), then JVS_*
// environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		if root := os.Getenv("JVS_ROOT"); root != "" {
			cfg.Root = root
		}
		path = filepath.Join(cfg.Root, FileName)
	}

	fileCfg, err := loadFile(path)
	switch {
	case err == nil:
		cfg = merge(cfg, fileCfg)
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// Optional.
	default:
		return Config{}, fmt.Errorf("error loading config from %s: %w", path, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string) (Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 - config path chosen by the user
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return cfg, nil
}

// merge overlays the non-zero fields of override onto base.
func merge(base, override Config) Config {
	if override.Root != "" {
		base.Root = override.Root
	}
	if override.Addr != "" {
		base.Addr = override.Addr
	}
	if override.BgGeoDir != "" {
		base.BgGeoDir = override.BgGeoDir
	}
	if override.ProfileDir != "" {
		base.ProfileDir = override.ProfileDir
	}
	if override.CacheMode != "" {
		base.CacheMode = override.CacheMode
	}
	if override.SessionTTL != 0 {
		base.SessionTTL = override.SessionTTL
	}
	if override.SessionFile != "" {
		base.SessionFile = override.SessionFile
	}
	if override.SampleSize != 0 {
		base.SampleSize = override.SampleSize
	}
	if override.SeedMode != "" {
		base.SeedMode = override.SeedMode
	}
	if override.Seed != nil {
		base.Seed = override.Seed
	}
	if override.AccentCacheFile != "" {
		base.AccentCacheFile = override.AccentCacheFile
	}
	if override.Workers != 0 {
		base.Workers = override.Workers
	}
	return base
}

func applyEnv(cfg *Config) error {
	strVars := map[string]*string{
		"JVS_ROOT":         &cfg.Root,
		"JVS_ADDR":         &cfg.Addr,
		"JVS_BG_GEO_DIR":   &cfg.BgGeoDir,
		"JVS_PROFILE_DIR":  &cfg.ProfileDir,
		"JVS_CACHE_MODE":   &cfg.CacheMode,
		"JVS_SESSION_FILE": &cfg.SessionFile,
		"JVS_SEED_MODE":    &cfg.SeedMode,
		"JVS_ACCENT_CACHE": &cfg.AccentCacheFile,
	}
	for key, dst := range strVars {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("JVS_SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid JVS_SESSION_TTL %q: %w", v, err)
		}
		cfg.SessionTTL = d
	}
	if v := os.Getenv("JVS_SAMPLE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid JVS_SAMPLE_SIZE %q: %w", v, err)
		}
		cfg.SampleSize = n
	}
	if v := os.Getenv("JVS_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid JVS_WORKERS %q: %w", v, err)
		}
		cfg.Workers = n
	}
	if v := os.Getenv("JVS_SEED"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid JVS_SEED %q: %w", v, err)
		}
		cfg.Seed = &n
		if os.Getenv("JVS_SEED_MODE") == "" {
			cfg.SeedMode = "manual"
		}
	}
	return nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Root == "" {
		return fmt.Errorf("root cannot be empty")
	}
	if c.CacheMode != CacheNone && c.CacheMode != CacheImages {
		return fmt.Errorf("invalid cache mode: %s (valid: %s, %s)", c.CacheMode, CacheNone, CacheImages)
	}
	if !slices.Contains(validSeedModes, c.SeedMode) {
		return fmt.Errorf("invalid seed mode: %s (valid: content, filepath, manual, random)", c.SeedMode)
	}
	if c.SeedMode == "manual" && c.Seed == nil {
		return fmt.Errorf("seed value is required for manual seed mode")
	}
	if err := (colour.ExtractorConfig{SampleSize: c.SampleSize}).Validate(); err != nil {
		return err
	}
	if c.SessionTTL < 0 {
		return fmt.Errorf("session ttl cannot be negative")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	return nil
}

// BgGeoPath returns the absolute directory of background images.
func (c Config) BgGeoPath() string {
	return c.resolve(c.BgGeoDir)
}

// ProfilePath returns the directory of profile images.
func (c Config) ProfilePath() string {
	return c.resolve(c.ProfileDir)
}

// AccentCachePath returns the accent cache file, defaulting to one in the site root.
func (c Config) AccentCachePath() string {
	if c.AccentCacheFile == "" {
		return c.resolve(AccentCacheFileName)
	}
	return c.AccentCacheFile
}

// resolve returns dir as an absolute path, relative dirs taken from Root.
// Accent cache keys are built from these paths, so they must not depend on
// the working directory.
func (c Config) resolve(dir string) string {
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(c.Root, dir)
	}
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}
