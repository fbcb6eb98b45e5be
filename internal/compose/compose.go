// Package compose builds the scene of one card face from a record and a
// design configuration.
package compose

import (
	"image"
	"image/color"
	"math"
	"math/rand/v2"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/youruser/sonicstencil/internal/cards"
	"github.com/youruser/sonicstencil/internal/design"
	"github.com/youruser/sonicstencil/internal/ornament"
	"github.com/youruser/sonicstencil/internal/scene"
	"github.com/youruser/sonicstencil/internal/sheet"
)

const ptToPx = 96.0 / 72.0

var (
	placeholderFill   = color.RGBA{R: 0xf8, G: 0xd7, B: 0xda, A: 0xff}
	placeholderBorder = color.RGBA{R: 0xe0, G: 0x1e, B: 0x37, A: 0xff}
	placeholderText   = color.RGBA{R: 0x72, G: 0x1c, B: 0x24, A: 0xff}
)

// Options carries per-render inputs that are not part of the design.
type Options struct {
	// Rand drives the ornament. Nil uses a source built from the design's
	// vinyl seed.
	Rand *rand.Rand
	// Background is the decoded vinyl background image, if any.
	Background image.Image
}

// Compose returns the scene for one face of rec. Token mode ignores side and
// the record contents.
func Compose(rec cards.Record, cfg design.Config, side sheet.Side, opt Options) *scene.Scene {
	c := cfg.Card
	s := scene.New(c.Width, c.Height)
	s.CornerRadius = c.BorderRadius
	s.Add(scene.Rect{W: c.Width, H: c.Height, Radius: c.BorderRadius,
		Style: scene.Style{Fill: scene.MustColor(c.BackgroundColor, color.White)}})

	b := &builder{cfg: cfg, s: s, w: c.Width, h: c.Height}
	switch {
	case cfg.Mode == design.ModeToken:
		b.vinyl(opt)
		b.token()
		side = sheet.Front
	case side == sheet.Back:
		b.back(rec)
	default:
		b.vinyl(opt)
		b.front(rec)
	}
	b.border(side)
	return s
}

type builder struct {
	cfg  design.Config
	s    *scene.Scene
	w, h float64
}

func (b *builder) vinyl(opt Options) {
	v := b.cfg.Vinyl
	if opt.Background != nil {
		op := v.BackgroundOpacity
		if op <= 0 {
			op = 0.6
		}
		b.s.Add(scene.Image{W: b.w, H: b.h, Src: opt.Background, Opacity: op})
	}
	if !v.Enabled || v.Style == ornament.StyleNone {
		return
	}
	rng := opt.Rand
	if rng == nil {
		rng = ornament.NewSource(v.Seed)
	}
	orn := ornament.Generate(v.Style, OrnamentParams(v), b.w, rng)
	b.s.Embed(orn, 0, (b.h-b.w)/2)
}

// OrnamentParams maps the vinyl section onto generator parameters.
func OrnamentParams(v design.Vinyl) ornament.Params {
	return ornament.Params{
		LineColor:          scene.MustColor(v.LineColor, color.Black),
		LineWidth:          v.LineWidth,
		LineGap:            v.LineGap,
		Glow:               v.GlowIntensity,
		RingCount:          v.RingCount,
		ClipMargin:         v.ClipMargin,
		Neon:               v.Neon,
		GlitchSegments:     v.GlitchSegments,
		GlitchGapMin:       v.GlitchGapMin,
		GlitchGapMax:       v.GlitchGapMax,
		SoundwavePoints:    v.SoundwavePoints,
		SoundwaveAmplitude: v.SoundwaveAmplitude,
		SoundwaveFrequency: v.SoundwaveFrequency,
		EqualizerBars:      v.EqualizerBars,
		EqualizerMaxHeight: v.EqualizerMaxHeight,
		SunburstLines:      v.SunburstLines,
		GridDensity:        v.GridDensity,
	}
}

func (b *builder) border(side sheet.Side) {
	c := b.cfg.Card
	if !c.ShowBorder || c.BorderWidth <= 0 {
		return
	}
	if (side == sheet.Front && !c.BorderOnFront) || (side == sheet.Back && !c.BorderOnBack) {
		return
	}
	half := c.BorderWidth / 2
	b.s.Add(scene.Rect{X: half, Y: half, W: b.w - c.BorderWidth, H: b.h - c.BorderWidth,
		Radius: math.Max(c.BorderRadius-half, 0),
		Style:  scene.Style{Stroke: scene.MustColor(c.BorderColor, color.Black), LineWidth: c.BorderWidth}})
}

func (b *builder) token() {
	t := b.cfg.Token
	cx, cy := b.w/2, b.h/2
	if t.ShowFrame {
		b.s.Add(scene.Circle{Center: scene.Point{X: cx, Y: cy}, R: 0.35 * math.Min(b.w, b.h),
			Style: scene.Style{Stroke: scene.MustColor(t.FrameColor, color.Black), LineWidth: 2, Glow: t.FrameGlow}})
	}

	total := t.Text1Size
	if t.Text2 != "" {
		total += 4 + t.Text2Size
	}
	top := cy - total/2
	labels := []scene.Text{{
		Pos: scene.Point{X: cx, Y: top}, Text: t.Text1, Size: t.Text1Size, Weight: 900,
		Color: scene.MustColor(t.Text1Color, color.Black), AnchorX: 0.5,
	}}
	if t.Text2 != "" {
		labels = append(labels, scene.Text{
			Pos: scene.Point{X: cx, Y: top + t.Text1Size + 4}, Text: t.Text2, Size: t.Text2Size, Weight: 400,
			Color: scene.MustColor(t.Text2Color, color.Black), Opacity: 0.8, AnchorX: 0.5,
		})
	}
	for _, l := range labels {
		if t.TextStroke && t.StrokeWidth > 0 {
			b.s.Add(strokeCopies(l, t.StrokeWidth, scene.MustColor(t.StrokeColor, color.White))...)
		}
		b.s.Add(l)
	}
}

// strokeCopies outlines t with eight copies shifted radially by width.
func strokeCopies(t scene.Text, width float64, c color.Color) []scene.Item {
	out := make([]scene.Item, 0, 8)
	for i := range 8 {
		a := float64(i) * math.Pi / 4
		cp := t
		cp.Pos.X += math.Cos(a) * width
		cp.Pos.Y += math.Sin(a) * width
		cp.Color = c
		cp.Opacity = 0
		out = append(out, cp)
	}
	return out
}

func (b *builder) front(rec cards.Record) {
	f := b.cfg.Front
	if f.ShowArtist && rec.Artist != "" {
		b.s.Add(scene.Text{
			Pos: scene.Point{X: b.w / 2, Y: f.ArtistOffset * ptToPx}, Text: applyCase(rec.Artist, design.CaseUpper),
			Size: f.ArtistFontSize, Weight: 900, Color: scene.MustColor(f.ArtistColor, color.Black),
			AnchorX: 0.5, LetterSpacing: 0.05 * f.ArtistFontSize, MaxWidth: 0.8 * b.w,
		})
	}
	b.qr(rec.QRURL)
	if f.ShowTitle && rec.Title != "" {
		b.s.Add(scene.Text{
			Pos: scene.Point{X: b.w / 2, Y: b.h - f.TitleOffset*ptToPx}, Text: rec.Title,
			Size: f.TitleFontSize, Weight: 700, Color: scene.MustColor(f.TitleColor, color.Black),
			AnchorX: 0.5, AnchorY: 1, MaxWidth: 0.8 * b.w,
		})
	}
}

// QRBox returns the square occupied by the QR code of a front face, frame
// excluded.
func QRBox(cfg design.Config) (x, y, size float64) {
	q := cfg.QRCode
	size = q.Size / 100 * cfg.Card.Width
	cx := q.PositionX / 100 * cfg.Card.Width
	cy := q.PositionY / 100 * cfg.Card.Height
	return cx - size/2, cy - size/2, size
}

func (b *builder) qr(url string) {
	q := b.cfg.QRCode
	x, y, size := QRBox(b.cfg)
	if size <= 0 {
		return
	}
	if url == "" {
		b.s.Add(
			scene.Rect{X: x, Y: y, W: size, H: size, Style: scene.Style{Fill: placeholderFill, Stroke: placeholderBorder, LineWidth: 2}},
			scene.Text{Pos: scene.Point{X: x + size/2, Y: y + size/2}, Text: "QR Code Error: Missing URL",
				Size: 10, Weight: 700, Color: placeholderText, AnchorX: 0.5, AnchorY: 0.5, MaxWidth: size - 8},
		)
		return
	}
	if q.Frame {
		fw := q.FrameWidth
		b.s.Add(scene.Rect{X: x - fw, Y: y - fw, W: size + 2*fw, H: size + 2*fw, Radius: q.FrameBorderRadius,
			Style: scene.Style{Fill: scene.MustColor(q.FrameBgColor, color.White)}})
	}
	var bg color.Color
	if !q.BgTransparent {
		bg = scene.MustColor(q.BgColor, color.White)
	}
	b.s.Add(scene.QR{X: x, Y: y, Size: size, Payload: url,
		Foreground: scene.MustColor(q.Color, color.Black), Background: bg})
}

func (b *builder) back(rec cards.Record) {
	bk := b.cfg.Back
	const pad = 10
	yearH := 0.0
	if bk.Year.Show && rec.Year != "" {
		yearH = bk.Year.FontSize
	}
	mid := b.h / 2
	artistBottom := mid - yearH/2 - 5
	titleTop := mid + yearH/2 + 5

	if bk.Artist.Show && rec.Artist != "" {
		t := b.field(bk.Artist, rec.Artist)
		t.Pos, t.AnchorY = scene.Point{X: b.w / 2, Y: math.Max(artistBottom, pad)}, 1
		if bk.Artist.Offset > 0 {
			t.Pos.Y, t.AnchorY = bk.Artist.Offset, 0
		}
		b.s.Add(t)
	}
	if yearH > 0 {
		t := b.field(bk.Year, rec.Year)
		t.Pos, t.AnchorY = scene.Point{X: b.w / 2, Y: mid}, 0.5
		t.MaxWidth = 0
		b.s.Add(t)
	}
	if bk.Title.Show && rec.Title != "" {
		t := b.field(bk.Title, rec.Title)
		t.Pos = scene.Point{X: b.w / 2, Y: math.Min(titleTop, b.h-pad)}
		if bk.Title.Offset > 0 {
			t.Pos.Y, t.AnchorY = b.h-bk.Title.Offset, 1
		}
		b.s.Add(t)
	}
	if bk.ShowCodes {
		left, right := CodeAngles(bk.CodeRotation)
		b.code(rec.Code1, bk.CodeOffsetX+bk.CodeFontSize/2, left)
		b.code(rec.Code2, b.w-bk.CodeOffsetX-bk.CodeFontSize/2, right)
	}
}

func (b *builder) field(f design.TextField, value string) scene.Text {
	return scene.Text{
		Text:          applyCase(value, f.Case),
		Size:          f.FontSize,
		Weight:        f.Weight,
		Color:         scene.MustColor(f.Color, color.Black),
		AnchorX:       0.5,
		LetterSpacing: f.LetterSpacing * f.FontSize,
		MaxWidth:      0.85 * b.w,
	}
}

func (b *builder) code(text string, x, angle float64) {
	if text == "" {
		return
	}
	bk := b.cfg.Back
	b.s.Add(scene.Text{
		Pos: scene.Point{X: x, Y: b.h / 2}, Text: text, Size: bk.CodeFontSize, Weight: 400,
		Color: scene.MustColor(bk.CodeColor, color.Black), AnchorX: 0.5, AnchorY: 0.5, Rotate: angle,
	})
}

// CodeAngles returns the rotation of the left and right edge codes.
func CodeAngles(r design.CodeRotation) (left, right float64) {
	if r == design.RotationMirrored {
		return 90, -90
	}
	return -90, -90
}

func applyCase(s string, c design.CaseTransform) string {
	switch c {
	case design.CaseUpper:
		return cases.Upper(language.Und).String(s)
	case design.CaseLower:
		return cases.Lower(language.Und).String(s)
	case design.CaseCapitalize:
		return cases.Title(language.Und, cases.NoLower).String(s)
	}
	return s
}
