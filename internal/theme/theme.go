package theme

import (
	"context"
	"fmt"
	"math/rand"
	"net/url"
	"path"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/jvsvault/jorgevs/internal/colour"
)

// Default URL prefixes the site serves images under.
const (
	DefaultBgGeoURL   = "/assets/images/bg-geo/"
	DefaultProfileURL = "/assets/images/profile/"
)

// Theme is one fully resolved randomization of the site.
type Theme struct {
	Background  string            `json:"background"`
	Geometry    string            `json:"geometry"`
	Profile     string            `json:"profile,omitempty"`
	Accent      string            `json:"accent"`
	Variations  colour.Variations `json:"variations"`
	Decorations Decorations       `json:"decorations"`
	// AccentErr is set when the accent fell back to the neutral gray.
	AccentErr string `json:"accentError,omitempty"`
}

// Options configures a Randomizer.
type Options struct {
	// Seed initialises the random source.
	Seed int64
	// BgGeoDir is the filesystem directory backgrounds are read from for extraction.
	BgGeoDir string
	// BgGeoURL and ProfileURL prefix the image names in the generated theme.
	BgGeoURL   string
	ProfileURL string

	Extractor *colour.Extractor
	Loader    colour.Loader
	Accents   *AccentCache
	// Session is optional; when set, selections are reused within its TTL.
	Session *SessionCache
	Logger  hclog.Logger
}

// Randomizer draws themes. It is safe for concurrent use.
type Randomizer struct {
	mu   sync.Mutex
	rng  *rand.Rand
	opts Options
	log  hclog.Logger
}

// NewRandomizer creates a Randomizer, filling unset options with defaults.
func NewRandomizer(opts Options) *Randomizer {
	if opts.BgGeoURL == "" {
		opts.BgGeoURL = DefaultBgGeoURL
	}
	if opts.ProfileURL == "" {
		opts.ProfileURL = DefaultProfileURL
	}
	if opts.Extractor == nil {
		opts.Extractor = colour.NewExtractor()
	}
	if opts.Accents == nil {
		opts.Accents = NewAccentCache()
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	return &Randomizer{
		rng:  rand.New(rand.NewSource(opts.Seed)), // #nosec G404 -- decorative randomness
		opts: opts,
		log:  opts.Logger,
	}
}

// Accents returns the accent cache used by the randomizer.
func (r *Randomizer) Accents() *AccentCache {
	return r.opts.Accents
}

// Select picks a background, geometry texture and profile image from catalog.
func (r *Randomizer) Select(catalog Catalog) (Selection, error) {
	bgs := catalog.backgrounds()
	geos := catalog.geometries()
	if len(bgs) == 0 || len(geos) == 0 {
		return Selection{}, ErrEmptyCatalog
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	sel := Selection{
		BgIndex:      r.rng.Intn(len(bgs)),
		GeoIndex:     r.rng.Intn(len(geos)),
		ProfileIndex: -1,
	}
	sel.Background = bgs[sel.BgIndex]
	sel.Geometry = geos[sel.GeoIndex]
	if len(catalog.Profile) > 0 {
		sel.ProfileIndex = r.rng.Intn(len(catalog.Profile))
		sel.Profile = catalog.Profile[sel.ProfileIndex]
	}
	return sel, nil
}

// Decorations draws decoration geometry with colours taken from palette.
func (r *Randomizer) Decorations(h2Count, metaCount int, palette colour.Variations) Decorations {
	r.mu.Lock()
	defer r.mu.Unlock()
	return newDecorations(r.rng, h2Count, metaCount, palette.Values())
}

// GenerateOptions controls the size of a generated theme.
type GenerateOptions struct {
	Headings int
	Metadata int
}

// Generate builds a theme from catalog. The accent comes from the selected
// background; extraction failure falls back to colour.FallbackHex and is
// reported in Theme.AccentErr rather than as an error.
func (r *Randomizer) Generate(ctx context.Context, catalog Catalog, opts GenerateOptions) (Theme, error) {
	sel, err := r.selection(catalog)
	if err != nil {
		return Theme{}, err
	}

	t := Theme{
		Background: imageURL(r.opts.BgGeoURL, sel.Background),
		Geometry:   imageURL(r.opts.BgGeoURL, sel.Geometry),
	}
	if sel.Profile != "" {
		t.Profile = imageURL(r.opts.ProfileURL, sel.Profile)
	}

	accent, accentErr := r.accent(ctx, sel.Background)
	t.Accent = accent.Base
	t.Variations = accent.Variations
	if accentErr != nil {
		t.AccentErr = accentErr.Error()
	}

	t.Decorations = r.Decorations(opts.Headings, opts.Metadata, t.Variations)

	r.log.Debug("generated theme", "background", t.Background, "geometry", t.Geometry, "profile", t.Profile, "accent", t.Accent)
	return t, nil
}

// selection reuses a still-valid session selection whose images are still
// in the catalog, and draws a new one otherwise.
func (r *Randomizer) selection(catalog Catalog) (Selection, error) {
	if s := r.opts.Session; s != nil {
		if sel, ok := s.Get(); ok &&
			slices.Contains(catalog.backgrounds(), sel.Background) &&
			slices.Contains(catalog.geometries(), sel.Geometry) &&
			(sel.Profile == "" || slices.Contains(catalog.Profile, sel.Profile)) {
			r.log.Debug("using cached session images")
			return sel, nil
		}
	}

	sel, err := r.Select(catalog)
	if err != nil {
		return Selection{}, err
	}
	if s := r.opts.Session; s != nil {
		if err := s.Save(sel); err != nil {
			r.log.Warn("error saving session state", "error", err)
		}
	}
	return sel, nil
}

func (r *Randomizer) accent(ctx context.Context, name string) (CachedAccent, error) {
	file := filepath.Join(r.opts.BgGeoDir, name)
	if a, ok := r.opts.Accents.Get(file); ok {
		r.log.Debug("using cached accent", "path", file, "colour", a.Base)
		return a, nil
	}
	if r.opts.Loader == nil {
		return CachedAccent{Base: colour.FallbackHex, Variations: colour.GenerateVariations(colour.FallbackHex)}, nil
	}

	hex, err := r.opts.Extractor.ExtractOrFallback(ctx, r.opts.Loader, file)
	if err != nil {
		return CachedAccent{Base: hex, Variations: colour.GenerateVariations(hex)}, err
	}
	return r.opts.Accents.Set(file, hex), nil
}

// Fallback is the theme used when nothing can be listed or extracted.
func Fallback() Theme {
	return Theme{
		Background: DefaultBgGeoURL + "01.jpg",
		Geometry:   DefaultBgGeoURL + "01.jpg",
		Accent:     colour.FallbackHex,
		Variations: colour.GenerateVariations(colour.FallbackHex),
	}
}

func imageURL(prefix, name string) string {
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix + url.PathEscape(path.Base(name))
}

// Variable is one CSS custom property.
type Variable struct {
	Name  string
	Value string
}

// CSSVariables returns the document-level custom properties for t, sorted by name.
func (t Theme) CSSVariables() []Variable {
	vars := map[string]string{
		"--bg-image":         fmt.Sprintf("url('%s')", t.Background),
		"--geometry-texture": fmt.Sprintf("url('%s')", t.Geometry),
		"--accent-color":     t.Accent,
	}
	for name, value := range t.Variations {
		if name == colour.VariantBase {
			continue
		}
		vars["--accent-"+name] = value
	}
	if t.Profile != "" {
		vars["--profile-image"] = fmt.Sprintf("url('%s')", t.Profile)
	}

	d := t.Decorations
	if d.Title.Animation != "" {
		vars["--title-width"] = px(d.Title.Width)
		vars["--title-height"] = px(d.Title.Height)
		vars["--title-animation"] = d.Title.Animation
		vars["--title-side"] = d.Title.Side
	}
	if d.Profile.Shape != "" {
		if d.Profile.ClipPath != "" {
			vars["--profile-shape"] = d.Profile.ClipPath
		}
		vars["--profile-radius"] = d.Profile.Radius
		vars["--profile-frame-width"] = strconv.Itoa(d.Profile.Width) + "%"
		vars["--profile-frame-height"] = strconv.Itoa(d.Profile.Height) + "%"
		vars["--profile-rotation"] = strconv.Itoa(d.Profile.Rotation) + "deg"
		if d.Profile.Colour != "" {
			vars["--profile-decoration-color"] = d.Profile.Colour
		}
	}

	out := make([]Variable, 0, len(vars))
	for name, value := range vars {
		out = append(out, Variable{Name: name, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// CSS renders t as a stylesheet: root custom properties plus one rule per
// decorated heading and metadata value, addressed by data-jvs-* index attributes.
func (t Theme) CSS() string {
	var sb strings.Builder
	sb.WriteString(":root {\n")
	for _, v := range t.CSSVariables() {
		fmt.Fprintf(&sb, "  %s: %s;\n", v.Name, v.Value)
	}
	sb.WriteString("}\n")

	for i, h := range t.Decorations.Headings {
		fmt.Fprintf(&sb, "[data-jvs-h2=\"%d\"] {\n", i)
		fmt.Fprintf(&sb, "  --shape-width: %s;\n  --shape-height: %s;\n", px(h.Width), px(h.Height))
		fmt.Fprintf(&sb, "  --h2-animation: %s;\n  --h2-offset: %s;\n", h.Animation, px(h.Offset))
		if h.Colour != "" {
			fmt.Fprintf(&sb, "  --decoration-color: %s;\n", h.Colour)
		}
		sb.WriteString("}\n")
	}
	for i, m := range t.Decorations.Metadata {
		fmt.Fprintf(&sb, "[data-jvs-dd=\"%d\"] {\n", i)
		fmt.Fprintf(&sb, "  --shape-width: %s;\n  --shape-offset: %s;\n", px(m.Width), px(m.Offset))
		fmt.Fprintf(&sb, "  --dd-animation: %s;\n", m.Animation)
		if m.Colour != "" {
			fmt.Fprintf(&sb, "  --decoration-color: %s;\n", m.Colour)
		}
		sb.WriteString("}\n")
	}
	return sb.String()
}

func px(v int) string {
	return strconv.Itoa(v) + "px"
}
