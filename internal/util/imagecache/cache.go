// Package imagecache keeps local copies of remote images so repeated
// extractions of the same URL do not refetch it.
package imagecache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"

	httputil "github.com/jvsvault/jorgevs/internal/util/http"
)

// Cache stores downloaded images under Dir.
type Cache struct {
	Dir string
	// Refresh forces a download even when a cached copy exists.
	Refresh bool

	fetch func(ctx context.Context, url string) ([]byte, error)
}

// New creates a Cache rooted at dir. An empty dir uses DefaultDir.
func New(dir string) (*Cache, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	return &Cache{
		Dir: dir,
		fetch: func(ctx context.Context, url string) ([]byte, error) {
			return httputil.Fetch(ctx, url, httputil.FetchOptions{})
		},
	}, nil
}

// DefaultDir returns the per-user cache directory for downloaded images.
func DefaultDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to determine cache directory: %w", err)
		}
		return filepath.Join(home, ".cache", "jvs", "images"), nil
	}
	return filepath.Join(cacheDir, "jvs", "images"), nil
}

// Filename derives a stable file name for rawURL: a hash of the URL plus the
// extension of its path, defaulting to .jpg.
func Filename(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))

	ext := ".jpg"
	if u, err := url.Parse(rawURL); err == nil {
		if e := path.Ext(u.Path); e != "" && len(e) <= 5 {
			ext = e
		}
	}
	return fmt.Sprintf("%x%s", sum[:16], ext)
}

// Path returns where rawURL is stored in the cache.
func (c *Cache) Path(rawURL string) string {
	return filepath.Join(c.Dir, Filename(rawURL))
}

// Get returns the local path of rawURL, downloading it first when needed.
func (c *Cache) Get(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("invalid URL: must start with http:// or https://")
	}

	cached := c.Path(rawURL)
	if !c.Refresh {
		if _, err := os.Stat(cached); err == nil {
			return cached, nil
		}
	}

	if err := os.MkdirAll(c.Dir, 0o755); err != nil { // #nosec G301 - Cache directory needs standard permissions
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := c.fetch(ctx, rawURL)
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}

	// Write then rename so concurrent readers never see a partial file.
	tmp, err := os.CreateTemp(c.Dir, ".download-*")
	if err != nil {
		return "", fmt.Errorf("failed to write cached image: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write cached image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write cached image: %w", err)
	}
	if err := os.Rename(tmp.Name(), cached); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write cached image: %w", err)
	}
	return cached, nil
}
