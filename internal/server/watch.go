package server

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-hclog"

	"github.com/jvsvault/jorgevs/internal/image"
	"github.com/jvsvault/jorgevs/internal/theme"
)

// Watch invalidates cached accents when images in dirs change. It blocks
// until ctx is cancelled. Directories that do not exist are skipped.
func Watch(ctx context.Context, cache *theme.AccentCache, logger hclog.Logger, dirs ...string) error {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	watched := 0
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
			logger.Debug("skipping missing directory", "dir", dir)
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		watched++
	}
	logger.Info("watching image directories", "count", watched)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !image.IsImageFile(event.Name) || event.Op == fsnotify.Chmod {
				continue
			}
			cache.Delete(event.Name)
			logger.Debug("image changed, accent invalidated", "path", event.Name, "op", event.Op.String())
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)
		}
	}
}
