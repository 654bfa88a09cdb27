package theme

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/image/draw"

	"github.com/jvsvault/jorgevs/internal/colour"
	jvsimage "github.com/jvsvault/jorgevs/internal/image"
)

func writeSolidPNG(t *testing.T, dir, name string, c color.RGBA) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	p := filepath.Join(dir, name)
	f, err := os.Create(p)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return p
}

func newSite(t *testing.T) (root string, catalog Catalog) {
	t.Helper()
	root = t.TempDir()
	bgGeo := filepath.Join(root, "bg-geo")
	profile := filepath.Join(root, "profile")
	for _, d := range []string{bgGeo, profile} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	writeSolidPNG(t, bgGeo, "red.png", color.RGBA{R: 255, A: 255})
	writeSolidPNG(t, bgGeo, "gray.png", color.RGBA{R: 128, G: 128, B: 128, A: 255})
	writeSolidPNG(t, profile, "me.png", color.RGBA{R: 90, G: 60, B: 40, A: 255})

	catalog, err := LoadCatalog(bgGeo, profile)
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	return root, catalog
}

func TestLoadCatalog(t *testing.T) {
	_, catalog := newSite(t)
	if diff := cmp.Diff([]string{"gray.png", "red.png"}, catalog.BgGeo); diff != "" {
		t.Errorf("BgGeo mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(catalog.BgGeo, catalog.Background); diff != "" {
		t.Errorf("Background should mirror BgGeo:\n%s", diff)
	}
	if diff := cmp.Diff([]string{"me.png"}, catalog.Profile); diff != "" {
		t.Errorf("Profile mismatch (-want +got):\n%s", diff)
	}

	empty, err := LoadCatalog(filepath.Join(t.TempDir(), "a"), filepath.Join(t.TempDir(), "b"))
	if err != nil {
		t.Fatalf("LoadCatalog(missing) error = %v", err)
	}
	if empty.BgGeo == nil || len(empty.BgGeo) != 0 {
		t.Errorf("missing dir should give empty list, got %#v", empty.BgGeo)
	}
}

func TestSelectDeterministicWithSeed(t *testing.T) {
	catalog := NewCatalog([]string{"01.jpg", "02.jpg", "03.jpg", "04.jpg"}, []string{"a.jpg", "b.jpg"})
	a, err := NewRandomizer(Options{Seed: 99}).Select(catalog)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewRandomizer(Options{Seed: 99}).Select(catalog)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same seed, different selection:\n%s", diff)
	}
	if catalog.BgGeo[a.BgIndex] != a.Background || catalog.Profile[a.ProfileIndex] != a.Profile {
		t.Errorf("indices do not match names: %+v", a)
	}
}

func TestSelectEmptyCatalog(t *testing.T) {
	_, err := NewRandomizer(Options{}).Select(NewCatalog(nil, []string{"me.jpg"}))
	if err != ErrEmptyCatalog {
		t.Errorf("Select() error = %v, want ErrEmptyCatalog", err)
	}

	sel, err := NewRandomizer(Options{}).Select(NewCatalog([]string{"bg.jpg"}, nil))
	if err != nil {
		t.Fatal(err)
	}
	if sel.Profile != "" || sel.ProfileIndex != -1 {
		t.Errorf("no profiles should leave profile empty, got %+v", sel)
	}
}

func TestDecorationRanges(t *testing.T) {
	palette := colour.GenerateVariations("#a00000")
	r := NewRandomizer(Options{Seed: 1})
	for i := 0; i < 200; i++ {
		d := r.Decorations(3, 2, palette)

		inRange := func(name string, v int, rg Range) {
			if v < rg.Min || v >= rg.Max {
				t.Fatalf("%s = %d outside [%d,%d)", name, v, rg.Min, rg.Max)
			}
		}
		inRange("title width", d.Title.Width, TitleWidth)
		inRange("title height", d.Title.Height, TitleHeight)
		if !slices.Contains(titleAnimations, d.Title.Animation) {
			t.Fatalf("title animation %q", d.Title.Animation)
		}
		if d.Title.Side != "left" && d.Title.Side != "right" {
			t.Fatalf("title side %q", d.Title.Side)
		}

		if len(d.Headings) != 3 || len(d.Metadata) != 2 {
			t.Fatalf("got %d headings, %d metadata", len(d.Headings), len(d.Metadata))
		}
		for _, h := range d.Headings {
			inRange("heading width", h.Width, HeadingWidth)
			inRange("heading height", h.Height, HeadingHeight)
			inRange("heading offset", h.Offset, HeadingOffset)
			if !slices.Contains(palette.Values(), h.Colour) {
				t.Fatalf("heading colour %q not from palette", h.Colour)
			}
		}
		for _, m := range d.Metadata {
			inRange("metadata width", m.Width, MetaWidth)
			inRange("metadata offset", m.Offset, MetaOffset)
			if !slices.Contains(metadataAnimations, m.Animation) {
				t.Fatalf("metadata animation %q", m.Animation)
			}
		}

		p := d.Profile
		inRange("frame width", p.Width, FrameSize)
		inRange("frame height", p.Height, FrameSize)
		inRange("frame rotation", p.Rotation, FrameRotation)
		switch p.Shape {
		case ShapeCircle:
			if p.Radius != "50%" || p.ClipPath != "" {
				t.Fatalf("circle frame = %+v", p)
			}
		case ShapeSquare, ShapeTriangle:
			if p.Radius != "0" || p.ClipPath != ProfileShapes[p.Shape] {
				t.Fatalf("%s frame = %+v", p.Shape, p)
			}
		default:
			t.Fatalf("unknown shape %q", p.Shape)
		}
	}
}

func TestGenerate(t *testing.T) {
	root, catalog := newSite(t)
	catalog = NewCatalog([]string{"red.png"}, catalog.Profile)

	r := NewRandomizer(Options{
		Seed:      5,
		BgGeoDir:  filepath.Join(root, "bg-geo"),
		Extractor: colour.NewExtractor(colour.WithScaler(draw.NearestNeighbor)),
		Loader:    jvsimage.NewFileLoader(),
	})

	th, err := r.Generate(context.Background(), catalog, GenerateOptions{Headings: 2, Metadata: 1})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if th.Background != "/assets/images/bg-geo/red.png" || th.Geometry != "/assets/images/bg-geo/red.png" {
		t.Errorf("images = %s, %s", th.Background, th.Geometry)
	}
	if th.Profile != "/assets/images/profile/me.png" {
		t.Errorf("profile = %s", th.Profile)
	}
	if th.Accent != "#a00000" {
		t.Errorf("accent = %s, want #a00000", th.Accent)
	}
	if th.AccentErr != "" {
		t.Errorf("unexpected accent error %s", th.AccentErr)
	}
	if diff := cmp.Diff(colour.GenerateVariations("#a00000"), th.Variations); diff != "" {
		t.Errorf("variations mismatch:\n%s", diff)
	}
	if r.Accents().Len() != 1 {
		t.Errorf("accent cache has %d entries, want 1", r.Accents().Len())
	}
}

func TestGenerateFallsBackOnExtractionFailure(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "broken.jpg"), []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewRandomizer(Options{BgGeoDir: root, Loader: jvsimage.NewFileLoader()})
	th, err := r.Generate(context.Background(), NewCatalog([]string{"broken.jpg"}, nil), GenerateOptions{})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if th.Accent != colour.FallbackHex {
		t.Errorf("accent = %s, want fallback", th.Accent)
	}
	if th.AccentErr == "" {
		t.Error("AccentErr empty, want extraction error")
	}
	if !th.Variations.IsGrayscale() {
		t.Error("fallback palette should be grayscale")
	}
	if r.Accents().Len() != 0 {
		t.Error("failed extraction must not be cached")
	}
}

func TestGenerateUsesAccentCache(t *testing.T) {
	cache := NewAccentCache()
	cache.Set(filepath.Join("site", "x.jpg"), "#123456")

	r := NewRandomizer(Options{BgGeoDir: "site", Accents: cache, Loader: jvsimage.NewFileLoader()})
	th, err := r.Generate(context.Background(), NewCatalog([]string{"x.jpg"}, nil), GenerateOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if th.Accent != "#123456" {
		t.Errorf("accent = %s, want cached #123456", th.Accent)
	}
}

func TestGenerateReusesSession(t *testing.T) {
	dir := t.TempDir()
	session := NewSessionCache(filepath.Join(dir, "session.json"), time.Hour, nil)
	catalog := NewCatalog([]string{"1.jpg", "2.jpg", "3.jpg", "4.jpg", "5.jpg"}, []string{"p1.jpg", "p2.jpg"})

	first, err := NewRandomizer(Options{Seed: 1, Session: session}).Generate(context.Background(), catalog, GenerateOptions{})
	if err != nil {
		t.Fatal(err)
	}
	for seed := int64(2); seed < 10; seed++ {
		next, err := NewRandomizer(Options{Seed: seed, Session: session}).Generate(context.Background(), catalog, GenerateOptions{})
		if err != nil {
			t.Fatal(err)
		}
		if next.Background != first.Background || next.Geometry != first.Geometry || next.Profile != first.Profile {
			t.Fatalf("session not reused: %+v vs %+v", next, first)
		}
	}

	// A catalog without the cached images forces a new draw.
	other := NewCatalog([]string{"9.jpg"}, nil)
	th, err := NewRandomizer(Options{Session: session}).Generate(context.Background(), other, GenerateOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if th.Background != "/assets/images/bg-geo/9.jpg" {
		t.Errorf("background = %s", th.Background)
	}
}

func TestThemeCSS(t *testing.T) {
	th := Theme{
		Background: "/assets/images/bg-geo/01%202.jpg",
		Geometry:   "/assets/images/bg-geo/03.jpg",
		Accent:     "#808080",
		Variations: colour.GenerateVariations("#808080"),
		Decorations: Decorations{
			Title:    TitleDecoration{Width: 200, Height: 60, Animation: "fadeIn", Side: "left"},
			Headings: []HeadingDecoration{{Width: 250, Height: 20, Offset: -5, Animation: "fadeInUp", Colour: "rgb(60, 60, 60)"}},
			Metadata: []MetadataDecoration{{Width: 160, Offset: 3, Animation: "fadeIn"}},
			Profile:  ProfileFrame{Shape: ShapeCircle, Radius: "50%", Width: 110, Height: 120, Rotation: 10, Colour: "#808080"},
		},
	}

	vars := th.CSSVariables()
	names := make([]string, len(vars))
	for i, v := range vars {
		names[i] = v.Name
	}
	if !slices.IsSorted(names) {
		t.Errorf("variables not sorted: %v", names)
	}
	if slices.Contains(names, "--profile-shape") {
		t.Error("circle frame must not set --profile-shape")
	}

	css := th.CSS()
	for _, want := range []string{
		":root {\n",
		"  --bg-image: url('/assets/images/bg-geo/01%202.jpg');\n",
		"  --accent-color: #808080;\n",
		"  --accent-contrast: rgb(60, 60, 60);\n",
		"  --title-width: 200px;\n",
		"  --profile-radius: 50%;\n",
		"  --profile-rotation: 10deg;\n",
		"[data-jvs-h2=\"0\"] {\n",
		"  --h2-offset: -5px;\n",
		"  --decoration-color: rgb(60, 60, 60);\n",
		"[data-jvs-dd=\"0\"] {\n",
		"  --dd-animation: fadeIn;\n",
	} {
		if !strings.Contains(css, want) {
			t.Errorf("CSS() missing %q in:\n%s", want, css)
		}
	}
}

func TestFallbackTheme(t *testing.T) {
	th := Fallback()
	if th.Accent != colour.FallbackHex || th.Variations[colour.VariantContrast] != "rgb(60, 60, 60)" {
		t.Errorf("Fallback() = %+v", th)
	}
}
