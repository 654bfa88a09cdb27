// Package server implements the local development server: static files,
// the image listing endpoint and on-demand theme generation.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/jvsvault/jorgevs/internal/config"
	"github.com/jvsvault/jorgevs/internal/image"
	"github.com/jvsvault/jorgevs/internal/security"
	"github.com/jvsvault/jorgevs/internal/theme"
)

const shutdownTimeout = 5 * time.Second

var mimeTypes = map[string]string{
	".html":  "text/html",
	".css":   "text/css",
	".js":    "application/javascript",
	".json":  "application/json",
	".png":   "image/png",
	".jpg":   "image/jpeg",
	".jpeg":  "image/jpeg",
	".gif":   "image/gif",
	".webp":  "image/webp",
	".svg":   "image/svg+xml",
	".ico":   "image/x-icon",
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".ttf":   "font/ttf",
	".mp3":   "audio/mpeg",
	".wav":   "audio/wav",
	".mp4":   "video/mp4",
	".webm":  "video/webm",
}

var cacheableImages = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true, ".svg": true,
}

// Options configures a Server.
type Options struct {
	// Root is the directory static files are served from.
	Root string
	// BgGeoDir and ProfileDir are the filesystem directories listed by /api/images.
	BgGeoDir   string
	ProfileDir string
	// CacheMode is config.CacheNone or config.CacheImages.
	CacheMode string
	// Randomizer backs /api/theme. When nil a randomly seeded one is created.
	Randomizer *theme.Randomizer
	Logger     hclog.Logger
}

// Server is the development HTTP server.
type Server struct {
	root       string
	bgGeoDir   string
	profileDir string
	cacheMode  string
	randomizer *theme.Randomizer
	logger     hclog.Logger
	now        func() time.Time
	newETag    func() string
}

// New creates a Server.
func New(opts Options) (*Server, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root: %w", err)
	}
	if opts.CacheMode == "" {
		opts.CacheMode = config.CacheNone
	}
	if opts.CacheMode != config.CacheNone && opts.CacheMode != config.CacheImages {
		return nil, fmt.Errorf("invalid cache mode: %s", opts.CacheMode)
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	if opts.Randomizer == nil {
		opts.Randomizer = theme.NewRandomizer(theme.Options{
			Seed:     time.Now().UnixNano(),
			BgGeoDir: opts.BgGeoDir,
			Logger:   opts.Logger.Named("theme"),
		})
	}
	return &Server{
		root:       root,
		bgGeoDir:   opts.BgGeoDir,
		profileDir: opts.ProfileDir,
		cacheMode:  opts.CacheMode,
		randomizer: opts.Randomizer,
		logger:     opts.Logger,
		now:        time.Now,
		newETag:    uuid.NewString,
	}, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/images", s.handleImages)
	mux.HandleFunc("/api/theme", s.handleTheme)
	mux.HandleFunc("/", s.handleStatic)
	return s.logRequests(mux)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("development server running", "url", "http://"+ln.Addr().String(), "cache_mode", s.cacheMode)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	<-errCh
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Info("request", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleImages(w http.ResponseWriter, r *http.Request) {
	catalog, err := theme.LoadCatalog(s.bgGeoDir, s.profileDir)
	if err != nil {
		s.logger.Error("error reading image directories", "error", err)
		http.Error(w, "Error reading directories", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	writeJSON(w, catalog)
}

func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	catalog, err := theme.LoadCatalog(s.bgGeoDir, s.profileDir)
	if err != nil {
		s.logger.Error("error reading image directories", "error", err)
		http.Error(w, "Error reading directories", http.StatusInternalServerError)
		return
	}

	opts := theme.GenerateOptions{
		Headings: queryInt(r, "h2", 0),
		Metadata: queryInt(r, "dd", 0),
	}
	t, err := s.randomizer.Generate(r.Context(), catalog, opts)
	if err != nil {
		s.logger.Warn("theme generation failed, using fallback", "error", err)
		t = theme.Fallback()
	}

	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if r.URL.Query().Get("format") == "css" {
		w.Header().Set("Content-Type", "text/css")
		_, _ = w.Write([]byte(t.CSS()))
		return
	}
	writeJSON(w, t)
}

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	urlPath := r.URL.Path
	if urlPath == "/" {
		urlPath = "/index.html"
	}

	filePath, err := security.ContainedPath(s.root, urlPath)
	if err != nil {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	data, err := os.ReadFile(filePath) // #nosec G304 - confined to the site root above
	if err != nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	ext := strings.ToLower(filepath.Ext(filePath))
	mimeType, ok := mimeTypes[ext]
	if !ok {
		mimeType = "application/octet-stream"
	}

	h := w.Header()
	h.Set("Content-Type", mimeType)
	h.Set("X-Content-Type-Options", "nosniff")
	s.setCacheHeaders(h, ext, filePath)

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) setCacheHeaders(h http.Header, ext, filePath string) {
	if s.cacheMode == config.CacheImages {
		if cacheableImages[ext] {
			h.Set("Cache-Control", "public, max-age=3600")
			h.Set("ETag", strconv.Quote(strconv.FormatInt(s.now().UnixMilli(), 10)))
			return
		}
		h.Set("Cache-Control", "no-store, no-cache, must-revalidate")
		h.Set("Pragma", "no-cache")
		h.Set("Expires", "0")
		return
	}

	now := s.now()
	h.Set("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate, max-age=0, s-maxage=0")
	h.Set("Pragma", "no-cache")
	h.Set("Expires", "0")
	h.Set("Surrogate-Control", "no-store")
	h.Set("X-Timestamp", strconv.FormatInt(now.UnixMilli(), 10))
	h.Set("Last-Modified", now.UTC().Format(http.TimeFormat))
	h.Set("ETag", strconv.Quote(s.newETag()))
	if image.IsImageFile(filePath) {
		h.Set("X-Image-Refresh", "force")
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return min(n, 64)
}
