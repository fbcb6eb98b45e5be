package sheet

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/youruser/sonicstencil/internal/cards"
	"github.com/youruser/sonicstencil/internal/layout"
)

func makeRecords(n int) []cards.Record {
	out := make([]cards.Record, n)
	for i := range out {
		out[i] = cards.Record{Artist: fmt.Sprintf("artist-%d", i), Title: "t", Year: "2000"}
	}
	return out
}

func indexes(p Page) []int {
	out := make([]int, len(p.Cells))
	for i, c := range p.Cells {
		out[i] = c.Index
	}
	return out
}

var grid4x6 = layout.Layout{Columns: 4, Rows: 6, CardsPerPage: 24}

func TestPaginate_FrontChunks(t *testing.T) {
	pages := Paginate(makeRecords(50), grid4x6, Front, false)
	if len(pages) != 3 {
		t.Fatalf("pages = %d, want 3", len(pages))
	}
	if len(pages[0].Cells) != 24 || len(pages[2].Cells) != 2 {
		t.Errorf("cells per page = %d,%d,%d", len(pages[0].Cells), len(pages[1].Cells), len(pages[2].Cells))
	}
	c := pages[1].Cells[5]
	if c.Index != 29 || c.Row != 1 || c.Col != 1 {
		t.Errorf("page 1 cell 5 = %+v, want index 29 at (1,1)", c)
	}
	if pages[2].Number != 2 || pages[2].Side != Front {
		t.Errorf("page meta = %d %s", pages[2].Number, pages[2].Side)
	}
}

func TestPaginate_TenRecordsScenario(t *testing.T) {
	recs := makeRecords(10)
	fronts := Paginate(recs, grid4x6, Front, false)
	backs := Paginate(recs, grid4x6, Back, true)
	if len(fronts) != 1 || len(backs) != 1 {
		t.Fatalf("fronts=%d backs=%d, want 1 and 1", len(fronts), len(backs))
	}
	if len(fronts[0].Cells) != 10 {
		t.Errorf("front cells = %d, want 10", len(fronts[0].Cells))
	}
	want := []int{3, 2, 1, 0, 7, 6, 5, 4, 8, 9}
	if got := indexes(backs[0]); !reflect.DeepEqual(got, want) {
		t.Errorf("mirrored back = %v, want %v", got, want)
	}
}

func TestPaginate_SingleRowMirror(t *testing.T) {
	recs := []cards.Record{{Artist: "A"}, {Artist: "B"}, {Artist: "C"}, {Artist: "D"}}
	l := layout.Layout{Columns: 4, Rows: 1, CardsPerPage: 4}
	back := Paginate(recs, l, Back, true)[0]
	var got string
	for _, r := range back.Records() {
		got += r.Artist
	}
	if got != "DCBA" {
		t.Errorf("back row = %s, want DCBA", got)
	}
	for i, c := range back.Cells {
		if c.Col != i {
			t.Errorf("cell %d placed in column %d", i, c.Col)
		}
	}
}

func TestPaginate_UnmirroredBacksKeepOrder(t *testing.T) {
	recs := makeRecords(7)
	f := Paginate(recs, grid4x6, Front, false)
	b := Paginate(recs, grid4x6, Back, false)
	if !reflect.DeepEqual(indexes(f[0]), indexes(b[0])) {
		t.Error("unmirrored backs must match front order")
	}
}

func TestMirrorRow_IsInvolutionOnFullRows(t *testing.T) {
	for cols := 1; cols <= 6; cols++ {
		for rows := 1; rows <= 4; rows++ {
			in := make([]int, cols*rows)
			for i := range in {
				in[i] = i
			}
			twice := MirrorRow(MirrorRow(in, cols), cols)
			if !reflect.DeepEqual(in, twice) {
				t.Errorf("cols=%d rows=%d: mirror twice = %v", cols, rows, twice)
			}
		}
	}
}

func TestMirrorRow_DoesNotAliasInput(t *testing.T) {
	in := []int{1, 2, 3}
	_ = MirrorRow(in, 3)
	if !reflect.DeepEqual(in, []int{1, 2, 3}) {
		t.Error("input was modified")
	}
}

func TestPageCount(t *testing.T) {
	tests := []struct{ n, want int }{{0, 0}, {1, 1}, {24, 1}, {25, 2}, {48, 2}}
	for _, tt := range tests {
		if got := PageCount(tt.n, grid4x6); got != tt.want {
			t.Errorf("PageCount(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
	if PageCount(3, layout.Layout{}) != 3 {
		t.Error("a zero layout falls back to one card per page")
	}
}

func TestPaginate_Empty(t *testing.T) {
	if pages := Paginate(nil, grid4x6, Front, false); len(pages) != 0 {
		t.Errorf("got %d pages for no records", len(pages))
	}
}
