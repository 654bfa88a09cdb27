package theme

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/jvsvault/jorgevs/internal/colour"
)

// CachedAccent is an extracted accent together with its palette.
type CachedAccent struct {
	Base       string            `json:"baseColor"`
	Variations colour.Variations `json:"variations"`
}

// AccentCache memoises accent extraction per image path. It is safe for concurrent use.
type AccentCache struct {
	mu      sync.RWMutex
	entries map[string]CachedAccent
}

// NewAccentCache creates an empty cache.
func NewAccentCache() *AccentCache {
	return &AccentCache{entries: make(map[string]CachedAccent)}
}

// Get returns the cached accent for path.
func (c *AccentCache) Get(path string) (CachedAccent, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.entries[path]
	return a, ok
}

// Set stores the accent for path, deriving its variations.
func (c *AccentCache) Set(path, base string) CachedAccent {
	a := CachedAccent{Base: base, Variations: colour.GenerateVariations(base)}
	c.mu.Lock()
	c.entries[path] = a
	c.mu.Unlock()
	return a
}

// Delete forgets the accent for path.
func (c *AccentCache) Delete(path string) {
	c.mu.Lock()
	delete(c.entries, path)
	c.mu.Unlock()
}

// Len returns the number of cached accents.
func (c *AccentCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Load merges entries from a JSON file. A missing file is not an error.
func (c *AccentCache) Load(path string) error {
	data, err := os.ReadFile(path) // #nosec G304 - cache path chosen by the user
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read accent cache: %w", err)
	}

	var entries map[string]CachedAccent
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to parse accent cache: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range entries {
		c.entries[k] = v
	}
	return nil
}

// Save writes all entries to a JSON file.
func (c *AccentCache) Save(path string) error {
	c.mu.RLock()
	data, err := json.MarshalIndent(c.entries, "", "  ")
	c.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to encode accent cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { // #nosec G301 - cache directory needs standard permissions
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { // #nosec G306 - cache files need standard read permissions
		return fmt.Errorf("failed to write accent cache: %w", err)
	}
	return nil
}

// PrecomputeStats summarises a Precompute run.
type PrecomputeStats struct {
	Extracted int
	Cached    int
	Failed    int
}

// Precompute extracts accents for every path not already cached, running at
// most workers extractions at once. Extraction failures are logged and left
// uncached; only context cancellation aborts the run.
func (c *AccentCache) Precompute(ctx context.Context, ex *colour.Extractor, loader colour.Loader, paths []string, workers int, logger hclog.Logger) (PrecomputeStats, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if workers < 1 {
		workers = 1
	}

	var extracted, cached, failed atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, path := range paths {
		if _, ok := c.Get(path); ok {
			cached.Add(1)
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			hex, err := ex.ExtractFile(ctx, loader, path)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				failed.Add(1)
				logger.Warn("accent extraction failed", "path", path, "error", err)
				return nil
			}
			c.Set(path, hex)
			extracted.Add(1)
			logger.Debug("accent cached", "path", path, "colour", hex)
			return nil
		})
	}

	err := g.Wait()
	stats := PrecomputeStats{
		Extracted: int(extracted.Load()),
		Cached:    int(cached.Load()),
		Failed:    int(failed.Load()),
	}
	return stats, err
}
