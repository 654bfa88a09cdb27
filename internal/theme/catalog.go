// Package theme generates randomized site themes: texture and profile
// image selection, decoration geometry, and an accent palette extracted
// from the chosen background.
package theme

import (
	"errors"
	"fmt"

	"github.com/jvsvault/jorgevs/internal/image"
)

// ErrEmptyCatalog is returned when there are no background images to choose from.
var ErrEmptyCatalog = errors.New("no background images available")

// Catalog lists the image file names a theme can be built from.
// It is the payload of the dev server's /api/images endpoint.
type Catalog struct {
	BgGeo   []string `json:"bgGeo"`
	Profile []string `json:"profile"`
	// Background and Geometry are kept for older pages that read them
	// separately; both mirror BgGeo.
	Background []string `json:"background"`
	Geometry   []string `json:"geometry"`
}

// NewCatalog builds a Catalog where backgrounds and geometry textures share one set.
func NewCatalog(bgGeo, profile []string) Catalog {
	if bgGeo == nil {
		bgGeo = []string{}
	}
	if profile == nil {
		profile = []string{}
	}
	return Catalog{
		BgGeo:      bgGeo,
		Profile:    profile,
		Background: bgGeo,
		Geometry:   bgGeo,
	}
}

// LoadCatalog lists the images in the bg-geo and profile directories.
// Missing directories contribute empty lists.
func LoadCatalog(bgGeoDir, profileDir string) (Catalog, error) {
	bgGeo, err := image.ListImages(bgGeoDir)
	if err != nil {
		return Catalog{}, fmt.Errorf("list bg-geo images: %w", err)
	}
	profile, err := image.ListImages(profileDir)
	if err != nil {
		return Catalog{}, fmt.Errorf("list profile images: %w", err)
	}
	return NewCatalog(bgGeo, profile), nil
}

// Names returns every image name in the catalog, used for content seeding.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c.BgGeo)+len(c.Profile))
	names = append(names, c.BgGeo...)
	names = append(names, c.Profile...)
	return names
}

func (c Catalog) backgrounds() []string {
	if len(c.Background) > 0 {
		return c.Background
	}
	return c.BgGeo
}

func (c Catalog) geometries() []string {
	if len(c.Geometry) > 0 {
		return c.Geometry
	}
	return c.BgGeo
}
