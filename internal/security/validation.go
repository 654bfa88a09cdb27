// Package security provides path and input guards for files and downloads
// handled by jvs.
package security

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ErrPathEscape is returned when a requested path resolves outside its base directory.
var ErrPathEscape = errors.New("path escapes base directory")

// ErrSizeLimit is returned by LimitedReader once the limit is exhausted.
var ErrSizeLimit = errors.New("size limit exceeded")

// ContainedPath joins the slash-separated request path onto baseDir and
// returns the resulting file path. The result must be baseDir itself or
// lie below it; anything else yields ErrPathEscape.
func ContainedPath(baseDir, requestPath string) (string, error) {
	base, err := filepath.Abs(filepath.Clean(baseDir))
	if err != nil {
		return "", fmt.Errorf("invalid base directory: %w", err)
	}

	full := filepath.Join(base, filepath.FromSlash(requestPath))
	if full != base && !strings.HasPrefix(full, base+string(filepath.Separator)) {
		return "", ErrPathEscape
	}
	return full, nil
}

// LimitedReader wraps an io.Reader and fails once more than the allowed
// number of bytes would be read. Unlike io.LimitReader it reports the
// overflow instead of truncating silently.
type LimitedReader struct {
	R         io.Reader
	Remaining int64
}

// Read implements io.Reader with size limits.
func (l *LimitedReader) Read(p []byte) (int, error) {
	if l.Remaining < 0 {
		return 0, ErrSizeLimit
	}
	// Read one byte past the limit so an exact-size body still ends in io.EOF.
	if int64(len(p)) > l.Remaining+1 {
		p = p[:l.Remaining+1]
	}
	n, err := l.R.Read(p)
	l.Remaining -= int64(n)
	if l.Remaining < 0 {
		return n, ErrSizeLimit
	}
	return n, err
}

// NewLimitedReader creates a LimitedReader allowing at most maxBytes.
func NewLimitedReader(r io.Reader, maxBytes int64) *LimitedReader {
	return &LimitedReader{R: r, Remaining: maxBytes}
}
