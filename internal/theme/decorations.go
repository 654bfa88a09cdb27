package theme

import "math/rand"

// Profile frame shapes.
const (
	ShapeSquare   = "square"
	ShapeCircle   = "circle"
	ShapeTriangle = "triangle"
)

// ProfileShapes maps a frame shape to its CSS clip-path.
var ProfileShapes = map[string]string{
	ShapeSquare:   "polygon(0 0, 100% 0, 100% 100%, 0 100%)",
	ShapeCircle:   "circle(49% at 50% 50%)",
	ShapeTriangle: "polygon(50% 0%, 0% 100%, 100% 100%)",
}

var (
	shapeOrder         = []string{ShapeSquare, ShapeCircle, ShapeTriangle}
	titleAnimations    = []string{"fadeIn", "fadeInUp", "fadeInDown", "fadeInLeft", "fadeInRight"}
	headingAnimations  = []string{"fadeInLeft", "fadeInRight", "fadeInUp", "fadeInDown", "fadeIn"}
	metadataAnimations = []string{"fadeInLeft", "fadeInRight", "fadeIn"}
)

// Range is a half-open integer interval [Min, Max).
type Range struct {
	Min, Max int
}

func (r Range) pick(rng *rand.Rand) int {
	if r.Max <= r.Min {
		return r.Min
	}
	return rng.Intn(r.Max-r.Min) + r.Min
}

// Dimension ranges, in px unless noted.
var (
	TitleWidth    = Range{180, 280}
	TitleHeight   = Range{50, 90}
	HeadingWidth  = Range{200, 400}
	HeadingHeight = Range{15, 30}
	HeadingOffset = Range{-30, 30}
	MetaWidth     = Range{150, 270}
	MetaOffset    = Range{-20, 20}
	FrameSize     = Range{105, 125} // percent
	FrameRotation = Range{0, 45}    // degrees
)

// TitleDecoration is the block behind the page title.
type TitleDecoration struct {
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Animation string `json:"animation"`
	Side      string `json:"side"`
}

// HeadingDecoration is the bar behind one h2.
type HeadingDecoration struct {
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Offset    int    `json:"offset"`
	Animation string `json:"animation"`
	Colour    string `json:"colour"`
}

// MetadataDecoration is the bar behind one metadata value.
type MetadataDecoration struct {
	Width     int    `json:"width"`
	Offset    int    `json:"offset"`
	Animation string `json:"animation"`
	Colour    string `json:"colour"`
}

// ProfileFrame is the shape drawn behind the profile picture.
type ProfileFrame struct {
	Shape    string `json:"shape"`
	ClipPath string `json:"clipPath,omitempty"`
	Radius   string `json:"radius"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Rotation int    `json:"rotation"`
	Colour   string `json:"colour"`
}

// Decorations holds every randomized shape on the page.
type Decorations struct {
	Title    TitleDecoration      `json:"title"`
	Headings []HeadingDecoration  `json:"headings"`
	Metadata []MetadataDecoration `json:"metadata"`
	Profile  ProfileFrame         `json:"profile"`
}

func pickString(rng *rand.Rand, options []string) string {
	return options[rng.Intn(len(options))]
}

// newDecorations draws decoration geometry for h2Count headings and
// metaCount metadata values. Colours are drawn from palette when it is not empty.
func newDecorations(rng *rand.Rand, h2Count, metaCount int, palette []string) Decorations {
	colour := func() string {
		if len(palette) == 0 {
			return ""
		}
		return pickString(rng, palette)
	}

	d := Decorations{
		Title: TitleDecoration{
			Width:     TitleWidth.pick(rng),
			Height:    TitleHeight.pick(rng),
			Animation: pickString(rng, titleAnimations),
			Side:      pickString(rng, []string{"left", "right"}),
		},
		Headings: make([]HeadingDecoration, 0, max(h2Count, 0)),
		Metadata: make([]MetadataDecoration, 0, max(metaCount, 0)),
	}

	for i := 0; i < h2Count; i++ {
		d.Headings = append(d.Headings, HeadingDecoration{
			Width:     HeadingWidth.pick(rng),
			Height:    HeadingHeight.pick(rng),
			Offset:    HeadingOffset.pick(rng),
			Animation: pickString(rng, headingAnimations),
			Colour:    colour(),
		})
	}

	for i := 0; i < metaCount; i++ {
		d.Metadata = append(d.Metadata, MetadataDecoration{
			Width:     MetaWidth.pick(rng),
			Offset:    MetaOffset.pick(rng),
			Animation: pickString(rng, metadataAnimations),
			Colour:    colour(),
		})
	}

	shape := pickString(rng, shapeOrder)
	frame := ProfileFrame{
		Shape:    shape,
		Width:    FrameSize.pick(rng),
		Height:   FrameSize.pick(rng),
		Rotation: FrameRotation.pick(rng),
		Colour:   colour(),
	}
	// Circles use border-radius; the other shapes clip.
	if shape == ShapeCircle {
		frame.Radius = "50%"
	} else {
		frame.ClipPath = ProfileShapes[shape]
		frame.Radius = "0"
	}
	d.Profile = frame

	return d
}
