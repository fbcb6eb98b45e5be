// Package layout computes how many cards fit on a printed sheet.
package layout

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// PxPerMM is the 96 DPI device pixel density: 1px = 1/96 inch.
const PxPerMM = 96 / 25.4

// PxToMM converts device pixels to millimetres.
func PxToMM(px float64) float64 {
	return px / PxPerMM
}

type PaperSize struct {
	Name   string
	Width  float64 // mm
	Height float64 // mm
}

var (
	A3 = PaperSize{Name: "A3", Width: 297, Height: 420}
	A4 = PaperSize{Name: "A4", Width: 210, Height: 297}
	A5 = PaperSize{Name: "A5", Width: 148, Height: 210}
)

var ErrUnknownFormat = errors.New("layout: unknown page format")

// Format looks up a paper size by name, case-insensitively.
func Format(name string) (PaperSize, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "A3":
		return A3, nil
	case "A4":
		return A4, nil
	case "A5":
		return A5, nil
	}
	return PaperSize{}, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// Request holds the inputs of Plan. Card geometry, gaps and padding are in
// device pixels.
type Request struct {
	Format             string
	CardWidth          float64
	CardHeight         float64
	GapX               float64
	GapY               float64
	Padding            float64
	AutoFit            bool
	ManualCardsPerPage int
}

// Layout is the tiling grid of one sheet.
type Layout struct {
	Columns      int  `json:"columns"`
	Rows         int  `json:"rows"`
	CardsPerPage int  `json:"cardsPerPage"`
	Oversized    bool `json:"oversized"` // the card does not fit the usable area
}

// Max is the largest number of cards the grid can hold.
func (l Layout) Max() int {
	return l.Columns * l.Rows
}

// Plan computes the grid. Columns and rows never drop below one, so a card
// larger than the page still yields a single-card sheet; Oversized tells the
// caller to warn about it.
func Plan(req Request) (Layout, error) {
	paper, err := Format(req.Format)
	if err != nil {
		return Layout{}, err
	}
	if req.CardWidth <= 0 || req.CardHeight <= 0 {
		return Layout{}, fmt.Errorf("layout: card size must be positive, got %vx%v", req.CardWidth, req.CardHeight)
	}
	if req.GapX < 0 || req.GapY < 0 || req.Padding < 0 {
		return Layout{}, errors.New("layout: gaps and padding must not be negative")
	}

	pad := PxToMM(req.Padding)
	usableW := paper.Width - 2*pad
	usableH := paper.Height - 2*pad
	cardW, cardH := PxToMM(req.CardWidth), PxToMM(req.CardHeight)
	gapX, gapY := PxToMM(req.GapX), PxToMM(req.GapY)

	cols := max(1, int(math.Floor(usableW/(cardW+gapX))))
	rows := max(1, int(math.Floor(usableH/(cardH+gapY))))

	l := Layout{
		Columns:   cols,
		Rows:      rows,
		Oversized: cardW > usableW || cardH > usableH,
	}
	l.CardsPerPage = l.Max()
	if !req.AutoFit {
		l.CardsPerPage = min(l.Max(), max(1, req.ManualCardsPerPage))
	}
	return l, nil
}

// Geometry converts the pixel request into page coordinates.
type Geometry struct {
	Paper   PaperSize
	Padding float64 // mm
	CardW   float64 // mm
	CardH   float64 // mm
	GapX    float64 // mm
	GapY    float64 // mm
}

func NewGeometry(req Request) (Geometry, error) {
	paper, err := Format(req.Format)
	if err != nil {
		return Geometry{}, err
	}
	return Geometry{
		Paper:   paper,
		Padding: PxToMM(req.Padding),
		CardW:   PxToMM(req.CardWidth),
		CardH:   PxToMM(req.CardHeight),
		GapX:    PxToMM(req.GapX),
		GapY:    PxToMM(req.GapY),
	}, nil
}

// CellOrigin returns the top-left corner, in mm, of the cell at row, col.
func (g Geometry) CellOrigin(row, col int) (x, y float64) {
	x = g.Padding + float64(col)*(g.CardW+g.GapX)
	y = g.Padding + float64(row)*(g.CardH+g.GapY)
	return x, y
}
