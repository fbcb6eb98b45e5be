// Package sheet splits card records into printable pages.
package sheet

import (
	"github.com/youruser/sonicstencil/internal/cards"
	"github.com/youruser/sonicstencil/internal/layout"
)

type Side string

const (
	Front Side = "front"
	Back  Side = "back"
)

// Cell is one occupied grid position on a page. Index is the record's
// position in the full input list.
type Cell struct {
	Row    int
	Col    int
	Index  int
	Record cards.Record
}

type Page struct {
	Number int // zero based, counted per side
	Side   Side
	Cells  []Cell
}

// Records returns the records of the page in cell order.
func (p Page) Records() []cards.Record {
	out := make([]cards.Record, len(p.Cells))
	for i, c := range p.Cells {
		out[i] = c.Record
	}
	return out
}

// PageCount is the number of pages needed for n records.
func PageCount(n int, l layout.Layout) int {
	per := perPage(l)
	if n <= 0 {
		return 0
	}
	return (n + per - 1) / per
}

func perPage(l layout.Layout) int {
	if l.CardsPerPage < 1 {
		return 1
	}
	return l.CardsPerPage
}

// Paginate chunks records into pages of l.CardsPerPage, filling cells left to
// right, top to bottom. With mirror set each row of a page is reversed so a
// sheet flipped along its vertical edge lines every back up with its front.
func Paginate(records []cards.Record, l layout.Layout, side Side, mirror bool) []Page {
	per := perPage(l)
	cols := max(1, l.Columns)

	var pages []Page
	for start := 0; start < len(records); start += per {
		end := min(start+per, len(records))
		order := make([]int, end-start)
		for i := range order {
			order[i] = start + i
		}
		if mirror {
			order = MirrorRow(order, cols)
		}

		p := Page{Number: len(pages), Side: side, Cells: make([]Cell, len(order))}
		for i, idx := range order {
			p.Cells[i] = Cell{Row: i / cols, Col: i % cols, Index: idx, Record: records[idx]}
		}
		pages = append(pages, p)
	}
	return pages
}

// MirrorRow reverses every row of a row-major cell list: cell (r, c) takes
// the value at (r, cols-1-c). On a short final row the mirrored position may
// not exist; such cells keep their own value.
func MirrorRow[T any](cells []T, cols int) []T {
	out := make([]T, len(cells))
	copy(out, cells)
	if cols < 1 {
		return out
	}
	for j := range cells {
		row, col := j/cols, j%cols
		m := row*cols + (cols - 1 - col)
		if m < len(cells) {
			out[j] = cells[m]
		}
	}
	return out
}
