package colour

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"slices"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/image/draw"
)

// ErrDecode is returned (wrapped in an *ExtractionError) when no pixel data
// could be read from the source image.
var ErrDecode = errors.New("image could not be decoded")

// ExtractionError reports a failed extraction. Callers are expected to
// substitute FallbackHex and carry on rendering.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("extract dominant colour: %v", e.Err)
	}
	return fmt.Sprintf("extract dominant colour from %s: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Is reports decode failures as ErrDecode regardless of the underlying cause.
func (e *ExtractionError) Is(target error) bool { return target == ErrDecode }

// Point is a normalised sample location within the downscaled raster.
type Point struct {
	X, Y float64
}

// SamplePoints is the fixed sample pattern: a 3x3 grid plus four interior points.
var SamplePoints = [13]Point{
	{0.25, 0.25}, {0.5, 0.25}, {0.75, 0.25},
	{0.25, 0.5}, {0.5, 0.5}, {0.75, 0.5},
	{0.25, 0.75}, {0.5, 0.75}, {0.75, 0.75},
	{0.33, 0.33}, {0.67, 0.33},
	{0.33, 0.67}, {0.67, 0.67},
}

const (
	// DefaultSampleSize is the side of the square raster images are reduced to.
	DefaultSampleSize = 100

	minBrightness   = 20
	maxBrightness   = 235
	chromaticSpread = 30
	grayscaleSpread = 10
	topSamples      = 3
	saturationBoost = 1.8
	brightnessCeil  = 140
	channelCeil     = 160
	grayFloor       = 40
	grayCeil        = 100
)

// Sample is a single pixel read at one of the SamplePoints.
type Sample struct {
	RGB
	Brightness float64
	Saturation int
}

// ExtractorConfig holds configuration for dominant colour extraction.
type ExtractorConfig struct {
	// SampleSize is the side length of the downscaled raster.
	SampleSize int
}

// DefaultExtractorConfig returns the default extractor configuration.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{SampleSize: DefaultSampleSize}
}

// Validate validates the extractor configuration.
func (c ExtractorConfig) Validate() error {
	if c.SampleSize < 4 {
		return fmt.Errorf("sample size must be at least 4, got %d", c.SampleSize)
	}
	if c.SampleSize > 2048 {
		return fmt.Errorf("sample size too large: %d (maximum: 2048)", c.SampleSize)
	}
	return nil
}

// Extractor derives a single accent colour from an image.
// An Extractor holds no per-call state and is safe for concurrent use.
type Extractor struct {
	size   int
	scaler draw.Scaler
	logger hclog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithSampleSize sets the side of the square raster used for sampling.
func WithSampleSize(size int) Option {
	return func(e *Extractor) {
		if size > 0 {
			e.size = size
		}
	}
}

// WithScaler overrides the scaler used to downscale images.
func WithScaler(s draw.Scaler) Option {
	return func(e *Extractor) {
		if s != nil {
			e.scaler = s
		}
	}
}

// WithLogger sets the logger used for extraction diagnostics.
func WithLogger(l hclog.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewExtractor creates an Extractor with the given options applied over the defaults.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		size:   DefaultSampleSize,
		scaler: draw.BiLinear,
		logger: hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the dominant colour of img as a lowercase "#rrggbb" string.
func (e *Extractor) Extract(ctx context.Context, img image.Image) (hex string, err error) {
	if err := ctx.Err(); err != nil {
		return "", &ExtractionError{Err: err}
	}
	if img == nil {
		return "", &ExtractionError{Err: errors.New("nil image")}
	}
	if img.Bounds().Empty() {
		return "", &ExtractionError{Err: errors.New("image has no pixels")}
	}

	// Pixel access on foreign image.Image implementations may panic; treat
	// that the same as a decode failure.
	defer func() {
		if r := recover(); r != nil {
			hex = ""
			err = &ExtractionError{Err: fmt.Errorf("pixel access failed: %v", r)}
		}
	}()

	samples := e.sample(img)
	rgb, kind := Dominant(samples)
	hex = rgb.Hex()
	e.logger.Debug("extracted dominant colour", "colour", hex, "kind", kind)
	return hex, nil
}

// ExtractFile loads the image at path with loader and extracts its dominant colour.
func (e *Extractor) ExtractFile(ctx context.Context, loader Loader, path string) (string, error) {
	img, err := loader.Load(ctx, path)
	if err != nil {
		return "", &ExtractionError{Path: path, Err: err}
	}
	hex, err := e.Extract(ctx, img)
	if err != nil {
		var exErr *ExtractionError
		if errors.As(err, &exErr) {
			exErr.Path = path
		}
		return "", err
	}
	e.logger.Debug("extracted accent", "path", path, "colour", hex)
	return hex, nil
}

// ExtractOrFallback behaves like ExtractFile but always yields a usable colour:
// on failure it returns FallbackHex together with the error.
func (e *Extractor) ExtractOrFallback(ctx context.Context, loader Loader, path string) (string, error) {
	hex, err := e.ExtractFile(ctx, loader, path)
	if err != nil {
		e.logger.Warn("accent extraction failed, using fallback", "path", path, "error", err)
		return FallbackHex, err
	}
	return hex, nil
}

// Loader is the subset of an image loader the extractor needs.
type Loader interface {
	Load(ctx context.Context, path string) (image.Image, error)
}

// sample downscales img into a fresh raster and reads the fixed sample points.
// The raster is non-premultiplied so translucent pixels keep their colour.
func (e *Extractor) sample(img image.Image) []Sample {
	dst := image.NewNRGBA(image.Rect(0, 0, e.size, e.size))
	e.scaler.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)

	samples := make([]Sample, 0, len(SamplePoints))
	for _, p := range SamplePoints {
		x := int(math.Floor(p.X * float64(e.size)))
		y := int(math.Floor(p.Y * float64(e.size)))
		off := dst.PixOffset(x, y)
		rgb := RGB{R: dst.Pix[off], G: dst.Pix[off+1], B: dst.Pix[off+2]}
		samples = append(samples, Sample{
			RGB:        rgb,
			Brightness: rgb.Brightness(),
			Saturation: rgb.Spread(),
		})
	}
	return samples
}

// Kind records how a dominant colour was derived.
type Kind string

const (
	KindChromatic Kind = "chromatic"
	KindGrayscale Kind = "grayscale"
	KindFallback  Kind = "fallback"
)

// Dominant reduces samples to one accent colour.
// Samples that are near black or near white are ignored. Anything with a
// spread above 30 counts as chromatic, below 10 as grayscale; the band in
// between is dropped. A single chromatic sample makes the image chromatic.
func Dominant(samples []Sample) (RGB, Kind) {
	var chromatic, grayscale []Sample
	for _, s := range samples {
		if s.Brightness <= minBrightness || s.Brightness >= maxBrightness {
			continue
		}
		switch {
		case s.Saturation > chromaticSpread:
			chromatic = append(chromatic, s)
		case s.Saturation < grayscaleSpread:
			grayscale = append(grayscale, s)
		}
	}

	switch {
	case len(chromatic) > 0:
		return chromaticAccent(chromatic), KindChromatic
	case len(grayscale) > 0:
		return grayscaleAccent(grayscale), KindGrayscale
	default:
		fallback, _ := ParseHex(FallbackHex)
		return fallback, KindFallback
	}
}

func chromaticAccent(samples []Sample) RGB {
	sorted := slices.Clone(samples)
	slices.SortStableFunc(sorted, func(a, b Sample) int {
		return b.Saturation - a.Saturation
	})
	top := sorted[:min(topSamples, len(sorted))]

	var sumR, sumG, sumB float64
	for _, s := range top {
		sumR += float64(s.R)
		sumG += float64(s.G)
		sumB += float64(s.B)
	}
	n := float64(len(top))
	avgR := math.Round(sumR / n)
	avgG := math.Round(sumG / n)
	avgB := math.Round(sumB / n)

	lo := min(avgR, avgG, avgB)
	r := math.Round(lo + (avgR-lo)*saturationBoost)
	g := math.Round(lo + (avgG-lo)*saturationBoost)
	b := math.Round(lo + (avgB-lo)*saturationBoost)

	if brightness := (r + g + b) / 3; brightness > brightnessCeil {
		scale := brightnessCeil / brightness
		r = math.Round(r * scale)
		g = math.Round(g * scale)
		b = math.Round(b * scale)
	}

	if hi := max(r, g, b); hi > channelCeil {
		scale := channelCeil / hi
		r = math.Round(r * scale)
		g = math.Round(g * scale)
		b = math.Round(b * scale)
	}

	return RGB{R: clampChannel(r), G: clampChannel(g), B: clampChannel(b)}
}

func grayscaleAccent(samples []Sample) RGB {
	sorted := slices.Clone(samples)
	slices.SortStableFunc(sorted, func(a, b Sample) int {
		switch {
		case a.Brightness < b.Brightness:
			return -1
		case a.Brightness > b.Brightness:
			return 1
		}
		return 0
	})
	median := math.Round(sorted[len(sorted)/2].Brightness)
	return Gray(clampChannel(math.Min(grayCeil, math.Max(grayFloor, median))))
}
