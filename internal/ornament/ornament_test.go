package ornament

import (
	"image/color"
	"math"
	"reflect"
	"testing"

	"github.com/youruser/sonicstencil/internal/scene"
)

func testParams() Params {
	return Params{
		LineColor:          color.RGBA{0x22, 0x22, 0x22, 0xff},
		LineWidth:          1.5,
		LineGap:            10,
		RingCount:          13,
		GlitchSegments:     3,
		GlitchGapMin:       5,
		GlitchGapMax:       40,
		SoundwavePoints:    120,
		SoundwaveAmplitude: 10,
		SoundwaveFrequency: 20,
		EqualizerBars:      48,
		EqualizerMaxHeight: 12,
		SunburstLines:      60,
		GridDensity:        10,
	}
}

func count[T scene.Item](s *scene.Scene) int {
	n := 0
	s.Walk(func(it scene.Item) {
		if _, ok := it.(T); ok {
			n++
		}
	})
	return n
}

func TestGenerate_None(t *testing.T) {
	s := Generate(StyleNone, testParams(), 300, NewSource(1))
	if !s.Empty() {
		t.Fatalf("none should yield an empty scene, got %d items", len(s.Items))
	}
}

func TestGenerate_UnknownStyleIsEmpty(t *testing.T) {
	if s := Generate(Style("vaporwave"), testParams(), 300, nil); !s.Empty() {
		t.Fatal("unknown style should draw nothing")
	}
}

func TestGenerate_ClassicIsDeterministic(t *testing.T) {
	a := Generate(StyleClassic, testParams(), 300, NewSource(1))
	b := Generate(StyleClassic, testParams(), 300, NewSource(99))
	if !reflect.DeepEqual(a, b) {
		t.Fatal("classic grooves must not depend on the random source")
	}
	// 15 grooves plus label and spindle
	if got := count[scene.Circle](a); got != 17 {
		t.Errorf("classic circles = %d, want 17", got)
	}
	first := a.Items[0].(scene.Circle)
	if math.Abs(first.R-54) > 1e-9 {
		t.Errorf("innermost groove r = %v, want 0.18*300", first.R)
	}
}

func TestGenerate_CassetteHasNoLabel(t *testing.T) {
	s := Generate(StyleCassette, testParams(), 200, nil)
	if got := count[scene.Circle](s); got != 4 {
		t.Errorf("cassette circles = %d, want 4", got)
	}
	if got := count[scene.Line](s); got != 12 {
		t.Errorf("cassette spokes = %d, want 12", got)
	}
}

func TestGenerate_GlitchRingsAndGaps(t *testing.T) {
	p := testParams()
	s := Generate(StyleGlitch, p, 300, NewSource(7))
	arcs := 0
	for _, it := range s.Items {
		a, ok := it.(scene.Arc)
		if !ok {
			continue
		}
		arcs++
		span := a.End - a.Start
		if span < 120-p.GlitchGapMax-1e-9 || span > 120-p.GlitchGapMin+1e-9 {
			t.Errorf("segment span %v outside [%v,%v]", span, 120-p.GlitchGapMax, 120-p.GlitchGapMin)
		}
		if a.R <= 300*0.05 || a.R >= 150 {
			t.Errorf("ring radius %v outside (15,150)", a.R)
		}
	}
	if arcs != p.RingCount*p.GlitchSegments {
		t.Errorf("arcs = %d, want %d", arcs, p.RingCount*p.GlitchSegments)
	}
}

func TestGenerate_GlitchNeonAndGlow(t *testing.T) {
	p := testParams()
	p.Neon = true
	p.Glow = 6
	s := Generate(StyleGlitch, p, 300, NewSource(3))
	colors := map[color.Color]bool{}
	for _, it := range s.Items {
		if a, ok := it.(scene.Arc); ok {
			if a.Glow != 6 {
				t.Fatalf("glow = %v, want 6", a.Glow)
			}
			colors[a.Stroke] = true
		}
	}
	if len(colors) < 2 {
		t.Errorf("neon segments should carry independent hues, got %d distinct", len(colors))
	}
}

func TestGenerate_Soundwave(t *testing.T) {
	p := testParams()
	s := Generate(StyleSoundwave, p, 300, NewSource(5))
	pl, ok := s.Items[0].(scene.Polyline)
	if !ok {
		t.Fatalf("first item = %T, want Polyline", s.Items[0])
	}
	if !pl.Closed || len(pl.Points) != p.SoundwavePoints+1 {
		t.Errorf("closed=%v points=%d", pl.Closed, len(pl.Points))
	}
	maxAmp := 300 * p.SoundwaveAmplitude / 100
	for _, pt := range pl.Points {
		r := math.Hypot(pt.X-150, pt.Y-150)
		if r < 60-maxAmp-1e-6 || r > 60+maxAmp+1e-6 {
			t.Fatalf("radius %v outside base +/- amplitude", r)
		}
	}
}

func TestGenerate_EqualizerBars(t *testing.T) {
	p := testParams()
	s := Generate(StyleEqualizer, p, 300, NewSource(2))
	maxH := 300 * p.EqualizerMaxHeight / 100
	n := 0
	for _, it := range s.Items {
		if a, ok := it.(scene.Arc); ok {
			n++
			if a.LineWidth < maxH*0.1-1e-9 || a.LineWidth > maxH+1e-9 {
				t.Errorf("bar height %v outside [%v,%v]", a.LineWidth, maxH*0.1, maxH)
			}
		}
	}
	if n != p.EqualizerBars {
		t.Errorf("bars = %d, want %d", n, p.EqualizerBars)
	}
}

func TestGenerate_SunburstLengths(t *testing.T) {
	p := testParams()
	s := Generate(StyleSunburst, p, 200, NewSource(4))
	if got := count[scene.Line](s); got != p.SunburstLines {
		t.Fatalf("lines = %d, want %d", got, p.SunburstLines)
	}
	for _, it := range s.Items {
		if l, ok := it.(scene.Line); ok {
			in := math.Hypot(l.From.X-100, l.From.Y-100)
			out := math.Hypot(l.To.X-100, l.To.Y-100)
			if math.Abs(in-36) > 1e-6 || out < 60-1e-6 || out > 90+1e-6 {
				t.Errorf("line from r=%v to r=%v", in, out)
			}
		}
	}
}

func TestGenerate_Lissajous(t *testing.T) {
	s := Generate(StyleLissajous, testParams(), 300, nil)
	pl := s.Items[0].(scene.Polyline)
	if pl.Closed {
		t.Error("lissajous is an open curve")
	}
	if len(pl.Points) != 126 {
		t.Errorf("points = %d, want 126", len(pl.Points))
	}
	if p0 := pl.Points[0]; math.Abs(p0.X-270) > 1e-9 || math.Abs(p0.Y-150) > 1e-9 {
		t.Errorf("first point = %+v, want (270,150)", p0)
	}
}

func TestGenerate_NebulaIsBlurredGroup(t *testing.T) {
	s := Generate(StyleNebula, testParams(), 300, NewSource(8))
	g, ok := s.Items[0].(scene.Group)
	if !ok {
		t.Fatalf("first item = %T, want Group", s.Items[0])
	}
	if g.Blur != 20 || len(g.Items) != 5 {
		t.Errorf("blur=%v blobs=%d", g.Blur, len(g.Items))
	}
}

func TestGenerate_Grid(t *testing.T) {
	p := testParams()
	s := Generate(StyleGrid, p, 300, nil)
	if got := count[scene.Line](s); got != 2*(p.GridDensity+1) {
		t.Errorf("grid lines = %d, want %d", got, 2*(p.GridDensity+1))
	}
	if l := s.Items[0].(scene.Line); l.Opacity != 0.3 {
		t.Errorf("grid opacity = %v", l.Opacity)
	}
}

func TestGenerate_SeededIsRepeatable(t *testing.T) {
	for _, st := range Styles {
		a := Generate(st, testParams(), 240, NewSource(42))
		b := Generate(st, testParams(), 240, NewSource(42))
		if !reflect.DeepEqual(a, b) {
			t.Errorf("%s: same seed produced different scenes", st)
		}
	}
}

func TestParseStyle(t *testing.T) {
	if _, err := ParseStyle("glitch"); err != nil {
		t.Error(err)
	}
	if _, err := ParseStyle("Glitch"); err == nil {
		t.Error("styles are case sensitive")
	}
}
