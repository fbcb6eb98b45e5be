// Package imagepkg turns recorded scenes into pixels and handles the image
// side concerns around them: QR codes, background images and page previews.
package imagepkg

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/font"

	"github.com/youruser/sonicstencil/internal/scene"
)

// MaxPixels bounds the size of a single raster.
const MaxPixels = 64 << 20

// Rasterizer plays a scene back at scale device pixels per scene unit.
type Rasterizer interface {
	Rasterize(ctx context.Context, s *scene.Scene, scale float64) (image.Image, error)
}

// GG rasterizes with fogleman/gg. Blur effects are applied with imaging.
type GG struct {
	Log logrus.FieldLogger
}

func NewRasterizer(log logrus.FieldLogger) *GG {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &GG{Log: log}
}

func (r *GG) Rasterize(ctx context.Context, s *scene.Scene, scale float64) (img image.Image, err error) {
	if s == nil {
		return nil, errors.New("rasterize: nil scene")
	}
	if scale <= 0 {
		scale = 1
	}
	w := int(math.Ceil(s.Width * scale))
	h := int(math.Ceil(s.Height * scale))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("rasterize: empty canvas %dx%d", w, h)
	}
	if w*h > MaxPixels {
		return nil, fmt.Errorf("rasterize: canvas %dx%d is too large", w, h)
	}
	defer func() {
		if rec := recover(); rec != nil {
			img, err = nil, fmt.Errorf("rasterize: %v", rec)
		}
	}()

	log := r.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	p := &painter{ctx: ctx, log: log, scale: scale, faces: map[faceKey]font.Face{}}
	dc := p.canvas(w, h)
	if err := p.paint(dc, s.Items, 0, 0); err != nil {
		return nil, err
	}
	if s.CornerRadius <= 0 {
		return dc.Image(), nil
	}
	return clipRounded(pixels(dc), s.CornerRadius*scale), nil
}

func clipRounded(src *image.RGBA, radius float64) *image.RGBA {
	b := src.Bounds()
	m := gg.NewContext(b.Dx(), b.Dy())
	m.DrawRoundedRectangle(0, 0, float64(b.Dx()), float64(b.Dy()), radius)
	m.Fill()
	out := image.NewRGBA(b)
	draw.DrawMask(out, b, src, b.Min, m.AsMask(), b.Min, draw.Over)
	return out
}

// pixels returns the backing image of a context built by gg.NewContext.
func pixels(dc *gg.Context) *image.RGBA {
	return dc.Image().(*image.RGBA)
}

// painter holds the state of one Rasterize call. Font faces keep glyph
// caches and are not safe for concurrent use, so each painter owns its own.
type painter struct {
	ctx   context.Context
	log   logrus.FieldLogger
	scale float64
	faces map[faceKey]font.Face
}

func (p *painter) canvas(w, h int) *gg.Context {
	dc := gg.NewContext(w, h)
	dc.SetLineCapButt()
	dc.SetLineJoinRound()
	return dc
}

func glowOf(it scene.Item) float64 {
	switch v := it.(type) {
	case scene.Circle:
		return v.Glow
	case scene.Arc:
		return v.Glow
	case scene.Line:
		return v.Glow
	case scene.Polyline:
		return v.Glow
	case scene.Rect:
		return v.Glow
	}
	return 0
}

// paint draws items in order. Consecutive items sharing a glow radius get one
// blurred halo layer underneath them.
func (p *painter) paint(dc *gg.Context, items []scene.Item, ox, oy float64) error {
	for i := 0; i < len(items); {
		if err := p.ctx.Err(); err != nil {
			return err
		}
		g := glowOf(items[i])
		j := i + 1
		if g > 0 {
			for j < len(items) && glowOf(items[j]) == g {
				j++
			}
			if err := p.halo(dc, items[i:j], g, ox, oy); err != nil {
				return err
			}
		}
		for _, it := range items[i:j] {
			if err := p.item(dc, it, ox, oy); err != nil {
				return err
			}
		}
		i = j
	}
	return nil
}

func (p *painter) halo(dc *gg.Context, items []scene.Item, glow, ox, oy float64) error {
	layer := p.canvas(dc.Width(), dc.Height())
	for _, it := range items {
		if err := p.item(layer, it, ox, oy); err != nil {
			return err
		}
	}
	blurred := imaging.Blur(layer.Image(), glow*p.scale/2)
	over(pixels(dc), blurred, image.Point{}, 1)
	over(pixels(dc), blurred, image.Point{}, 1)
	return nil
}

func (p *painter) item(dc *gg.Context, it scene.Item, ox, oy float64) error {
	s := p.scale
	dc.ClearPath()
	switch v := it.(type) {
	case scene.Circle:
		dc.DrawCircle((v.Center.X+ox)*s, (v.Center.Y+oy)*s, v.R*s)
		p.fillStroke(dc, v.Style)
	case scene.Arc:
		dc.DrawArc((v.Center.X+ox)*s, (v.Center.Y+oy)*s, v.R*s, clockRadians(v.Start), clockRadians(v.End))
		p.fillStroke(dc, v.Style)
	case scene.Line:
		dc.DrawLine((v.From.X+ox)*s, (v.From.Y+oy)*s, (v.To.X+ox)*s, (v.To.Y+oy)*s)
		st := v.Style
		st.Fill = nil
		p.fillStroke(dc, st)
	case scene.Polyline:
		if len(v.Points) < 2 {
			return nil
		}
		dc.MoveTo((v.Points[0].X+ox)*s, (v.Points[0].Y+oy)*s)
		for _, pt := range v.Points[1:] {
			dc.LineTo((pt.X+ox)*s, (pt.Y+oy)*s)
		}
		if v.Closed {
			dc.ClosePath()
		}
		p.fillStroke(dc, v.Style)
	case scene.Rect:
		x, y, w, h := (v.X+ox)*s, (v.Y+oy)*s, v.W*s, v.H*s
		if v.Radius > 0 {
			dc.DrawRoundedRectangle(x, y, w, h, v.Radius*s)
		} else {
			dc.DrawRectangle(x, y, w, h)
		}
		p.fillStroke(dc, v.Style)
	case scene.Text:
		return p.text(dc, v, ox, oy)
	case scene.Image:
		p.image(dc, v, ox, oy)
	case scene.QR:
		p.qr(dc, v, ox, oy)
	case scene.Group:
		return p.group(dc, v, ox, oy)
	default:
		return fmt.Errorf("rasterize: unsupported item %T", it)
	}
	return nil
}

// clockRadians converts degrees clockwise from twelve o'clock into gg's
// radians clockwise from three o'clock.
func clockRadians(deg float64) float64 {
	return gg.Radians(deg - 90)
}

func (p *painter) fillStroke(dc *gg.Context, st scene.Style) {
	a := st.Alpha()
	if st.Fill != nil {
		dc.SetColor(scene.WithAlpha(st.Fill, a))
		if st.Stroke != nil {
			dc.FillPreserve()
		} else {
			dc.Fill()
		}
	}
	if st.Stroke != nil {
		lw := st.LineWidth
		if lw <= 0 {
			lw = 1
		}
		dc.SetColor(scene.WithAlpha(st.Stroke, a))
		dc.SetLineWidth(lw * p.scale)
		dc.Stroke()
	}
	dc.ClearPath()
}

func (p *painter) text(dc *gg.Context, t scene.Text, ox, oy float64) error {
	if t.Text == "" || t.Color == nil {
		return nil
	}
	s := p.scale
	size := t.Size * s
	face, err := p.face(t.Weight, size)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)
	dc.SetColor(scene.WithAlpha(t.Color, t.Alpha()))

	px, py := (t.Pos.X+ox)*s, (t.Pos.Y+oy)*s
	lines := []string{t.Text}
	if t.MaxWidth > 0 {
		lines = dc.WordWrap(t.Text, t.MaxWidth*s)
	}
	step := size * 1.2
	total := size + step*float64(len(lines)-1)
	top := py - t.AnchorY*total

	if t.Rotate != 0 {
		dc.Push()
		defer dc.Pop()
		dc.RotateAbout(gg.Radians(t.Rotate), px, py)
	}
	spacing := t.LetterSpacing * s
	for i, line := range lines {
		w := measure(dc, line, spacing)
		x := px - t.AnchorX*w
		baseline := top + float64(i)*step + size
		if spacing == 0 {
			dc.DrawString(line, x, baseline)
			continue
		}
		for _, r := range line {
			g := string(r)
			dc.DrawString(g, x, baseline)
			gw, _ := dc.MeasureString(g)
			x += gw + spacing
		}
	}
	return nil
}

// measure returns the advance of line including letter spacing between
// glyphs.
func measure(dc *gg.Context, line string, spacing float64) float64 {
	if spacing == 0 {
		w, _ := dc.MeasureString(line)
		return w
	}
	var w float64
	n := 0
	for _, r := range line {
		gw, _ := dc.MeasureString(string(r))
		w += gw
		n++
	}
	if n > 1 {
		w += spacing * float64(n-1)
	}
	return w
}

func (p *painter) image(dc *gg.Context, im scene.Image, ox, oy float64) {
	if im.Src == nil {
		return
	}
	s := p.scale
	w, h := int(math.Round(im.W*s)), int(math.Round(im.H*s))
	if w <= 0 || h <= 0 {
		return
	}
	fitted := imaging.Fill(im.Src, w, h, imaging.Center, imaging.Lanczos)
	at := image.Pt(int(math.Round((im.X+ox)*s)), int(math.Round((im.Y+oy)*s)))
	over(pixels(dc), fitted, at, im.Alpha())
}

func (p *painter) qr(dc *gg.Context, q scene.QR, ox, oy float64) {
	s := p.scale
	size := int(math.Round(q.Size * s))
	at := image.Pt(int(math.Round((q.X+ox)*s)), int(math.Round((q.Y+oy)*s)))
	img, err := GenerateQRImage(q.Payload, QROptions{Size: size, Foreground: q.Foreground, Background: q.Background})
	if err != nil {
		p.log.WithError(err).WithField("payload", q.Payload).Warn("qr encode failed, drawing placeholder")
		dc.DrawRectangle(float64(at.X), float64(at.Y), float64(size), float64(size))
		dc.SetColor(color.RGBA{R: 0xff, A: 0xff})
		dc.SetLineWidth(2 * s)
		dc.Stroke()
		return
	}
	over(pixels(dc), img, at, 1)
}

func (p *painter) group(dc *gg.Context, g scene.Group, ox, oy float64) error {
	if len(g.Items) == 0 {
		return nil
	}
	if g.Blur <= 0 && g.Alpha() == 1 {
		return p.paint(dc, g.Items, ox+g.Offset.X, oy+g.Offset.Y)
	}
	layer := p.canvas(dc.Width(), dc.Height())
	if err := p.paint(layer, g.Items, ox+g.Offset.X, oy+g.Offset.Y); err != nil {
		return err
	}
	var img image.Image = layer.Image()
	if g.Blur > 0 {
		img = imaging.Blur(img, g.Blur*p.scale)
	}
	over(pixels(dc), img, image.Point{}, g.Alpha())
	return nil
}

// over composites src onto dst with its top-left corner at at.
func over(dst *image.RGBA, src image.Image, at image.Point, alpha float64) {
	sb := src.Bounds()
	r := image.Rectangle{Min: at, Max: at.Add(sb.Size())}
	if alpha >= 1 {
		draw.Draw(dst, r, src, sb.Min, draw.Over)
		return
	}
	mask := image.NewUniform(color.Alpha{A: uint8(math.Round(alpha * 255))})
	draw.DrawMask(dst, r, src, sb.Min, mask, image.Point{}, draw.Over)
}
