// Package ornament generates the decorative record/token motif drawn behind
// card content.
//
// Every style is a geometric construction centred on (size/2, size/2). The
// organic styles draw from the supplied random source; pass a seeded source
// for repeatable output.
package ornament

import (
	"fmt"
	"image/color"
	"math"
	"math/rand/v2"
	"time"

	"github.com/youruser/sonicstencil/internal/scene"
)

type Style string

const (
	StyleGlitch    Style = "glitch"
	StyleClassic   Style = "classic"
	StyleCassette  Style = "cassette"
	StyleSoundwave Style = "soundwave"
	StyleEqualizer Style = "equalizer"
	StyleSunburst  Style = "sunburst"
	StyleLissajous Style = "lissajous"
	StyleNebula    Style = "nebula"
	StyleGrid      Style = "grid"
	StyleNone      Style = "none"
)

// Styles lists every style in menu order.
var Styles = []Style{
	StyleGlitch, StyleClassic, StyleCassette, StyleSoundwave, StyleEqualizer,
	StyleSunburst, StyleLissajous, StyleNebula, StyleGrid, StyleNone,
}

func (s Style) Valid() bool {
	for _, v := range Styles {
		if s == v {
			return true
		}
	}
	return false
}

func ParseStyle(s string) (Style, error) {
	st := Style(s)
	if !st.Valid() {
		return "", fmt.Errorf("ornament: unknown style %q", s)
	}
	return st, nil
}

// Params carries the numeric knobs of all styles; each style reads only the
// fields it needs.
type Params struct {
	LineColor  color.Color
	LineWidth  float64
	LineGap    float64
	Glow       float64
	RingCount  int
	ClipMargin float64
	Neon       bool

	GlitchSegments int
	GlitchGapMin   float64
	GlitchGapMax   float64

	SoundwavePoints    int
	SoundwaveAmplitude float64 // percent of size
	SoundwaveFrequency float64

	EqualizerBars      int
	EqualizerMaxHeight float64 // percent of size

	SunburstLines int
	GridDensity   int
}

// NewSource returns a random source. A zero seed gives a time based,
// non-repeatable source.
func NewSource(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Generate draws style into a size x size scene. A nil rng gets a fresh
// unseeded source.
func Generate(style Style, p Params, size float64, rng *rand.Rand) *scene.Scene {
	s := scene.New(size, size)
	if size <= 0 {
		return s
	}
	if rng == nil {
		rng = NewSource(0)
	}
	if p.LineColor == nil {
		p.LineColor = color.Black
	}
	g := &gen{p: p, size: size, c: size / 2, rng: rng, out: s}

	switch style {
	case StyleGlitch:
		g.glitch()
	case StyleClassic:
		g.classic()
	case StyleCassette:
		g.cassette()
	case StyleSoundwave:
		g.soundwave()
	case StyleEqualizer:
		g.equalizer()
	case StyleSunburst:
		g.sunburst()
	case StyleLissajous:
		g.lissajous()
	case StyleNebula:
		g.nebula()
	case StyleGrid:
		g.grid()
	default:
		return s
	}
	if style != StyleCassette {
		g.label()
	}
	return s
}

type gen struct {
	p    Params
	size float64
	c    float64
	rng  *rand.Rand
	out  *scene.Scene
}

func (g *gen) randFloat(min, max float64) float64 {
	return min + g.rng.Float64()*(max-min)
}

func (g *gen) randInt(min, max int) int {
	if max <= min {
		return min
	}
	return min + g.rng.IntN(max-min+1)
}

func (g *gen) center() scene.Point {
	return scene.Point{X: g.c, Y: g.c}
}

// polar converts an angle in degrees clockwise from twelve o'clock.
func polar(cx, cy, r, deg float64) scene.Point {
	rad := (deg - 90) * math.Pi / 180
	return scene.Point{X: cx + r*math.Cos(rad), Y: cy + r*math.Sin(rad)}
}

// label is the paper label and spindle hole in the middle of the record.
func (g *gen) label() {
	g.out.Add(
		scene.Circle{Center: g.center(), R: g.size * 0.15, Style: scene.Style{Fill: color.White, Stroke: color.Black, LineWidth: 1}},
		scene.Circle{Center: g.center(), R: g.size * 0.02, Style: scene.Style{Fill: color.Black}},
	)
}
