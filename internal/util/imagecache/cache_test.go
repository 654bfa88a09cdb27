package imagecache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFilename(t *testing.T) {
	tests := []struct {
		url string
		ext string
	}{
		{"https://example.com/a/wall.png", ".png"},
		{"https://example.com/a/wall.webp?size=large", ".webp"},
		{"https://example.com/a/wall", ".jpg"},
		{"https://example.com/a/wall.verylongext", ".jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got := Filename(tt.url)
			if !strings.HasSuffix(got, tt.ext) {
				t.Errorf("Filename(%q) = %q, want suffix %q", tt.url, got, tt.ext)
			}
			if len(got) != 32+len(tt.ext) {
				t.Errorf("Filename(%q) = %q, want 32 hex chars before extension", tt.url, got)
			}
		})
	}

	if Filename("https://a/x.png") == Filename("https://b/x.png") {
		t.Error("different URLs must not share a cache file")
	}
}

func TestGetDownloadsOnce(t *testing.T) {
	calls := 0
	c := &Cache{
		Dir: filepath.Join(t.TempDir(), "images"),
		fetch: func(ctx context.Context, url string) ([]byte, error) {
			calls++
			return []byte("image-bytes"), nil
		},
	}

	url := "https://example.com/bg.png"
	for i := 0; i < 3; i++ {
		p, err := c.Get(context.Background(), url)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if p != c.Path(url) {
			t.Errorf("Get() = %q, want %q", p, c.Path(url))
		}
	}
	if calls != 1 {
		t.Errorf("fetch called %d times, want 1", calls)
	}

	data, err := os.ReadFile(c.Path(url))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "image-bytes" {
		t.Errorf("cached data = %q", data)
	}

	c.Refresh = true
	if _, err := c.Get(context.Background(), url); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("refresh should refetch, calls = %d", calls)
	}
}

func TestGetErrors(t *testing.T) {
	c := &Cache{
		Dir: t.TempDir(),
		fetch: func(ctx context.Context, url string) ([]byte, error) {
			return nil, errors.New("boom")
		},
	}

	if _, err := c.Get(context.Background(), "ftp://example.com/x.png"); err == nil {
		t.Error("expected error for non-http URL")
	}

	_, err := c.Get(context.Background(), "https://example.com/x.png")
	if err == nil || !strings.Contains(err.Error(), "failed to download image") {
		t.Errorf("Get() error = %v, want download failure", err)
	}
	if _, statErr := os.Stat(c.Path("https://example.com/x.png")); !os.IsNotExist(statErr) {
		t.Error("failed download must not leave a cache file")
	}
}
