package ornament

import (
	"image/color"
	"math"

	"github.com/youruser/sonicstencil/internal/scene"
)

var (
	grooveGray = color.RGBA{0xcc, 0xcc, 0xcc, 0xff}
	hubGray    = color.RGBA{0x99, 0x99, 0x99, 0xff}
)

func (g *gen) stroke(c color.Color) scene.Style {
	return scene.Style{Stroke: c, LineWidth: g.p.LineWidth, Glow: g.p.Glow}
}

// glitch: concentric rings cut into segments, each ring rotated at random and
// each segment shortened by a random gap.
func (g *gen) glitch() {
	rings := g.p.RingCount
	if rings < 1 {
		return
	}
	segments := g.p.GlitchSegments
	if segments < 1 {
		segments = 3
	}
	gapMin, gapMax := g.p.GlitchGapMin, g.p.GlitchGapMax
	if gapMin == 0 && gapMax == 0 {
		gapMin, gapMax = g.p.LineGap, g.p.LineGap
	}
	if gapMax < gapMin {
		gapMin, gapMax = gapMax, gapMin
	}

	maxRadius := g.size/2 - g.p.ClipMargin
	inner := g.size * 0.05
	step := (maxRadius - inner) / float64(rings)
	segAngle := 360 / float64(segments)

	for i := 0; i < rings; i++ {
		r := inner + step*(float64(i)+0.5)
		if r <= 0 {
			continue
		}
		cursor := g.rng.Float64() * 360
		for j := 0; j < segments; j++ {
			gap := g.randFloat(gapMin, gapMax)
			span := math.Max(0, segAngle-gap)
			start := cursor + float64(j)*segAngle
			c := g.p.LineColor
			if g.p.Neon {
				c = scene.HSL(float64(g.randInt(0, 360)), 1, 0.8)
			}
			g.out.Add(scene.Arc{Center: g.center(), R: r, Start: start, End: start + span, Style: g.stroke(c)})
		}
	}
}

func (g *gen) classic() {
	for i := 0; i < 15; i++ {
		r := g.size*0.18 + float64(i)*g.size*0.02
		g.out.Add(scene.Circle{Center: g.center(), R: r, Style: scene.Style{Stroke: grooveGray, LineWidth: 0.5}})
	}
}

func (g *gen) cassette() {
	for _, cx := range []float64{g.c - g.size*0.2, g.c + g.size*0.2} {
		hub := scene.Point{X: cx, Y: g.c}
		g.out.Add(
			scene.Circle{Center: hub, R: g.size * 0.15, Style: scene.Style{Stroke: hubGray, LineWidth: 3}},
			scene.Circle{Center: hub, R: g.size * 0.05, Style: scene.Style{Stroke: hubGray, LineWidth: 2}},
		)
		for i := 0; i < 6; i++ {
			a := float64(i) * 60 * math.Pi / 180
			g.out.Add(scene.Line{
				From:  scene.Point{X: cx + math.Cos(a)*g.size*0.05, Y: g.c + math.Sin(a)*g.size*0.05},
				To:    scene.Point{X: cx + math.Cos(a)*g.size*0.13, Y: g.c + math.Sin(a)*g.size*0.13},
				Style: scene.Style{Stroke: hubGray, LineWidth: 2},
			})
		}
	}
}

// soundwave: a closed outline whose radius follows a sine with a random
// amplitude at every sample.
func (g *gen) soundwave() {
	n := g.p.SoundwavePoints
	if n < 3 {
		n = 3
	}
	base := g.size * 0.2
	maxAmp := g.size * g.p.SoundwaveAmplitude / 100
	c := g.p.LineColor
	if g.p.Neon {
		c = scene.HSL(float64(g.randInt(0, 360)), 0.9, 0.7)
	}
	pts := make([]scene.Point, 0, n+1)
	for i := 0; i <= n; i++ {
		angle := float64(i) * 360 / float64(n)
		amp := maxAmp * g.rng.Float64()
		r := base + math.Sin(angle*0.1*math.Pi/180*g.p.SoundwaveFrequency)*amp
		pts = append(pts, polar(g.c, g.c, r, angle))
	}
	g.out.Add(scene.Polyline{Points: pts, Closed: true, Style: scene.Style{Stroke: c, LineWidth: g.p.LineWidth}})
}

func (g *gen) equalizer() {
	bars := g.p.EqualizerBars
	if bars < 1 {
		return
	}
	step := 360 / float64(bars)
	maxH := g.size * g.p.EqualizerMaxHeight / 100
	base := g.size * 0.25
	for i := 0; i < bars; i++ {
		start := float64(i) * step
		end := (float64(i) + 0.5) * step
		c := g.p.LineColor
		if g.p.Neon {
			hue := math.Mod(start/360*150+180, 360)
			c = scene.HSL(hue, 0.9, 0.7)
		}
		g.out.Add(scene.Arc{
			Center: g.center(), R: base, Start: start, End: end,
			Style: scene.Style{Stroke: c, LineWidth: maxH * g.randFloat(0.1, 1)},
		})
	}
}

func (g *gen) sunburst() {
	n := g.p.SunburstLines
	if n < 1 {
		return
	}
	for i := 0; i < n; i++ {
		angle := float64(i) * 360 / float64(n)
		c := g.p.LineColor
		if g.p.Neon {
			c = scene.HSL(angle, 0.8, 0.75)
		}
		g.out.Add(scene.Line{
			From:  polar(g.c, g.c, g.size*0.18, angle),
			To:    polar(g.c, g.c, g.size*g.randFloat(0.3, 0.45), angle),
			Style: scene.Style{Stroke: c, LineWidth: g.p.LineWidth},
		})
	}
}

// lissajous: x = sin(3t + pi/2), y = sin(2t), one open polyline.
func (g *gen) lissajous() {
	const a, b, delta = 3.0, 2.0, math.Pi / 2
	R := g.size * 0.4
	var pts []scene.Point
	for i := 0; ; i++ {
		t := float64(i) * 0.05
		if t > 2*math.Pi {
			break
		}
		pts = append(pts, scene.Point{X: g.c + R*math.Sin(a*t+delta), Y: g.c + R*math.Sin(b*t)})
	}
	g.out.Add(scene.Polyline{Points: pts, Style: scene.Style{Stroke: g.p.LineColor, LineWidth: g.p.LineWidth}})
}

func (g *gen) nebula() {
	blobs := make([]scene.Item, 0, 5)
	for i := 0; i < 5; i++ {
		r := g.size * g.randFloat(0.1, 0.3)
		x := g.c + g.randFloat(-g.size*0.2, g.size*0.2)
		y := g.c + g.randFloat(-g.size*0.2, g.size*0.2)
		c := scene.HSL(float64(g.randInt(180, 300)), 0.7, 0.6)
		blobs = append(blobs, scene.Circle{Center: scene.Point{X: x, Y: y}, R: r, Style: scene.Style{Fill: c, Opacity: 0.2}})
	}
	g.out.Add(scene.Group{Items: blobs, Blur: 20})
}

func (g *gen) grid() {
	n := g.p.GridDensity
	if n < 1 {
		return
	}
	step := g.size / float64(n)
	st := scene.Style{Stroke: g.p.LineColor, LineWidth: g.p.LineWidth, Opacity: 0.3}
	for i := 0; i <= n; i++ {
		v := float64(i) * step
		g.out.Add(
			scene.Line{From: scene.Point{X: v, Y: 0}, To: scene.Point{X: v, Y: g.size}, Style: st},
			scene.Line{From: scene.Point{X: 0, Y: v}, To: scene.Point{X: g.size, Y: v}, Style: st},
		)
	}
}
