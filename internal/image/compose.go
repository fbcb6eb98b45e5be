package imagepkg

import (
	"image"
	"image/color"
	"io"
	"math"

	"github.com/disintegration/imaging"

	"github.com/youruser/sonicstencil/internal/layout"
)

// Placed is a card raster assigned to a grid cell.
type Placed struct {
	Row, Col int
	Img      image.Image
}

// ComposePage pastes card rasters onto a white sheet of the given geometry.
// pxPerMM sets the output resolution. Cards are resized to their cell size,
// keeping transparent corners.
func ComposePage(g layout.Geometry, cards []Placed, pxPerMM float64) *image.NRGBA {
	if pxPerMM <= 0 {
		pxPerMM = layout.PxPerMM
	}
	px := func(mm float64) int { return int(math.Round(mm * pxPerMM)) }

	canvas := imaging.New(px(g.Paper.Width), px(g.Paper.Height), color.White)
	cw, ch := px(g.CardW), px(g.CardH)
	if cw <= 0 || ch <= 0 {
		return canvas
	}
	for _, c := range cards {
		if c.Img == nil {
			continue
		}
		x, y := g.CellOrigin(c.Row, c.Col)
		img := c.Img
		if b := img.Bounds(); b.Dx() != cw || b.Dy() != ch {
			img = imaging.Resize(img, cw, ch, imaging.Lanczos)
		}
		canvas = imaging.Overlay(canvas, img, image.Pt(px(x), px(y)), 1)
	}
	return canvas
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	return imaging.Encode(w, img, imaging.PNG)
}
