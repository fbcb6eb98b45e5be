// Package deck assembles rendered card pages into a printable document.
//
// Export runs strictly page by page: fronts first, then backs. Every page
// is composed, rasterized and embedded before the next one starts, and a
// Progress value is emitted after each. The design is copied at entry and
// never re-read, so fronts and backs always agree.
package deck

import (
	"fmt"
	"image"
	"time"

	"github.com/sirupsen/logrus"

	imagepkg "github.com/youruser/sonicstencil/internal/image"
	"github.com/youruser/sonicstencil/internal/layout"
	"github.com/youruser/sonicstencil/internal/sheet"
)

// Filename is the download name of every exported document.
const Filename = "sonicstencil-cards.pdf"

// DefaultScale renders cards at twice their design size.
const DefaultScale = 2.0

type Progress struct {
	Percentage int    `json:"percentage"`
	Message    string `json:"message"`
}

// Options tunes one export. The zero value is usable.
type Options struct {
	Rasterizer imagepkg.Rasterizer
	// Scale is raster pixels per card pixel.
	Scale float64
	// Settle is waited before each page is captured.
	Settle     time.Duration
	OnProgress func(Progress)
	Log        logrus.FieldLogger
	// Background overrides loading vinyl.backgroundImage.
	Background image.Image
	// Now stamps the document metadata. Nil uses time.Now.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Rasterizer == nil {
		o.Rasterizer = imagepkg.NewRasterizer(o.Log)
	}
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	if o.OnProgress == nil {
		o.OnProgress = func(Progress) {}
	}
	if o.Log == nil {
		o.Log = logrus.StandardLogger()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// PageSummary describes one page of a finished document.
type PageSummary struct {
	Side    sheet.Side `json:"side"`
	Number  int        `json:"number"`
	Records []int      `json:"records"` // record indexes in cell order
}

// Document is a finished export.
type Document struct {
	Filename string        `json:"filename"`
	Bytes    []byte        `json:"-"`
	Layout   layout.Layout `json:"layout"`
	Pages    []PageSummary `json:"pages"`
	Hash     string        `json:"configHash"`
}

func (d *Document) PageCount() int {
	return len(d.Pages)
}

// PageCaptureError reports a page that could not be embedded. The export
// is abandoned and no document is produced.
type PageCaptureError struct {
	Side   sheet.Side
	Number int
	Err    error
}

func (e *PageCaptureError) Error() string {
	return fmt.Sprintf("capturing %s page %d: %v", e.Side, e.Number+1, e.Err)
}

func (e *PageCaptureError) Unwrap() error {
	return e.Err
}
