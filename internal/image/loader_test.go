package image

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"sync/atomic"
	"testing"

	"github.com/jvsvault/jorgevs/internal/util/imagecache"
)

// writePNG writes a small solid PNG to dir/name and returns its path.
func writePNG(t *testing.T, dir, name string, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, c)
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
	return path
}

func TestFileLoaderLoad(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "red.png", color.RGBA{R: 255, A: 255})

	img, err := NewFileLoader().Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if img.Bounds().Dx() != 8 {
		t.Errorf("width = %d, want 8", img.Bounds().Dx())
	}

	bad := filepath.Join(dir, "bad.png")
	if err := os.WriteFile(bad, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"empty path", ""},
		{"missing file", filepath.Join(dir, "missing.png")},
		{"directory", dir},
		{"undecodable", bad},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewFileLoader().Load(context.Background(), tt.path); err == nil {
				t.Error("Load() error = nil, want error")
			}
		})
	}
}

func TestSmartLoaderURL(t *testing.T) {
	dir := t.TempDir()
	data, err := os.ReadFile(writePNG(t, dir, "blue.png", color.RGBA{B: 255, A: 255}))
	if err != nil {
		t.Fatal(err)
	}

	l := NewSmartLoader()
	l.fetch = func(ctx context.Context, url string) ([]byte, error) {
		if url != "https://example.com/blue.png" {
			return nil, errors.New("unexpected url " + url)
		}
		return data, nil
	}

	img, err := l.Load(context.Background(), "https://example.com/blue.png")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, _, b, _ := img.At(0, 0).RGBA(); b>>8 != 255 {
		t.Errorf("blue channel = %d, want 255", b>>8)
	}

	l.fetch = func(ctx context.Context, url string) ([]byte, error) { return []byte("junk"), nil }
	if _, err := l.Load(context.Background(), "http://example.com/x.png"); err == nil {
		t.Error("Load() of junk data error = nil, want error")
	}
}

func TestCachingLoaderFetchesOnce(t *testing.T) {
	data, err := os.ReadFile(writePNG(t, t.TempDir(), "green.png", color.RGBA{G: 255, A: 255}))
	if err != nil {
		t.Fatal(err)
	}

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	cache, err := imagecache.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	l := NewCachingLoader(cache)

	for i := 0; i < 2; i++ {
		img, err := l.Load(context.Background(), srv.URL+"/green.png")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if _, g, _, _ := img.At(0, 0).RGBA(); g>>8 != 255 {
			t.Errorf("green channel = %d, want 255", g>>8)
		}
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("server hit %d times, want 1", n)
	}
	if _, err := os.Stat(cache.Path(srv.URL + "/green.png")); err != nil {
		t.Errorf("cached file missing: %v", err)
	}
}

func TestListImages(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.JPG", "a.png", "c.webp", "notes.txt", "d.GIF"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.png"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := ListImages(dir)
	if err != nil {
		t.Fatalf("ListImages() error = %v", err)
	}
	want := []string{"a.png", "b.JPG", "c.webp", "d.GIF"}
	if !slices.Equal(got, want) {
		t.Errorf("ListImages() = %v, want %v", got, want)
	}

	missing, err := ListImages(filepath.Join(dir, "does-not-exist"))
	if err != nil {
		t.Fatalf("ListImages(missing) error = %v", err)
	}
	if missing == nil || len(missing) != 0 {
		t.Errorf("ListImages(missing) = %#v, want empty non-nil slice", missing)
	}
}

func TestScanDirectoryForImages(t *testing.T) {
	dir := t.TempDir()
	if _, err := ScanDirectoryForImages(dir); err == nil {
		t.Error("ScanDirectoryForImages(empty) error = nil, want error")
	}

	writePNG(t, dir, "one.png", color.White)
	paths, err := ScanDirectoryForImages(dir)
	if err != nil {
		t.Fatalf("ScanDirectoryForImages() error = %v", err)
	}
	if len(paths) != 1 || paths[0] != filepath.Join(dir, "one.png") {
		t.Errorf("ScanDirectoryForImages() = %v", paths)
	}
}

func TestResolveImagePath(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "only.png", color.Black)

	for _, in := range []string{dir, path} {
		got, err := ResolveImagePath(in)
		if err != nil {
			t.Fatalf("ResolveImagePath(%s) error = %v", in, err)
		}
		if got != path {
			t.Errorf("ResolveImagePath(%s) = %s, want %s", in, got, path)
		}
	}

	if got, _ := ResolveImagePath("https://example.com/a.jpg"); got != "https://example.com/a.jpg" {
		t.Errorf("URL not passed through: %s", got)
	}
}

func TestValidateImagePath(t *testing.T) {
	dir := t.TempDir()
	good := writePNG(t, dir, "ok.png", color.White)
	bad := filepath.Join(dir, "bad.png")
	if err := os.WriteFile(bad, []byte("nope"), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, ok := range []string{good, dir, "https://example.com/img.png"} {
		if err := ValidateImagePath(ok); err != nil {
			t.Errorf("ValidateImagePath(%s) error = %v", ok, err)
		}
	}
	for _, notOK := range []string{"", bad, filepath.Join(dir, "missing.png")} {
		if err := ValidateImagePath(notOK); err == nil {
			t.Errorf("ValidateImagePath(%q) error = nil, want error", notOK)
		}
	}
}

func TestSelectRandomImage(t *testing.T) {
	if _, err := SelectRandomImage(nil); err == nil {
		t.Error("SelectRandomImage(nil) error = nil, want error")
	}
	paths := []string{"a", "b", "c"}
	for i := 0; i < 20; i++ {
		got, err := SelectRandomImage(paths)
		if err != nil {
			t.Fatal(err)
		}
		if !slices.Contains(paths, got) {
			t.Errorf("SelectRandomImage() = %s not in list", got)
		}
	}
}
