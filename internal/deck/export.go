package deck

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"math/rand/v2"
	"time"

	"github.com/disintegration/imaging"
	"github.com/go-pdf/fpdf"
	"github.com/sirupsen/logrus"

	"github.com/youruser/sonicstencil/internal/cards"
	"github.com/youruser/sonicstencil/internal/compose"
	"github.com/youruser/sonicstencil/internal/design"
	imagepkg "github.com/youruser/sonicstencil/internal/image"
	"github.com/youruser/sonicstencil/internal/layout"
	"github.com/youruser/sonicstencil/internal/ornament"
	"github.com/youruser/sonicstencil/internal/sheet"
)

var ErrNoRecords = errors.New("deck: no records to export")

var placeholderColor = color.NRGBA{R: 0xf8, G: 0xd7, B: 0xda, A: 0xff}

// TokenRecords builds n identical records standing in for tokens when a
// token design is exported without data.
func TokenRecords(cfg design.Config, n int) []cards.Record {
	out := make([]cards.Record, n)
	for i := range out {
		out[i] = cards.Record{Artist: cfg.Token.Text1, Title: cfg.Token.Text2}
	}
	return out
}

// Plan validates the inputs and paginates them without rendering anything.
func Plan(records []cards.Record, cfg design.Config) (layout.Layout, []sheet.Page, error) {
	if err := cfg.Validate(); err != nil {
		return layout.Layout{}, nil, err
	}
	l, err := layout.Plan(cfg.LayoutRequest())
	if err != nil {
		return layout.Layout{}, nil, err
	}
	src := records
	switch {
	case cfg.Mode == design.ModeToken && len(src) == 0:
		src = TokenRecords(cfg, l.CardsPerPage)
	case len(src) == 0:
		return l, nil, ErrNoRecords
	case cfg.Mode == design.ModeCard:
		if err := cards.Validate(src, false); err != nil {
			return l, nil, err
		}
	}
	pages := sheet.Paginate(src, l, sheet.Front, false)
	if cfg.Mode == design.ModeCard {
		pages = append(pages, sheet.Paginate(src, l, sheet.Back, cfg.Page.MirrorBacks)...)
	}
	return l, pages, nil
}

// Export renders records with cfg into a PDF.
func Export(ctx context.Context, records []cards.Record, cfg design.Config, opt Options) (*Document, error) {
	opt = opt.withDefaults()
	l, pages, err := Plan(records, cfg)
	if err != nil {
		return nil, err
	}
	geo, err := layout.NewGeometry(cfg.LayoutRequest())
	if err != nil {
		return nil, err
	}
	hash := cfg.Hash()
	log := opt.Log.WithField("config", hash[:12])
	if fit := cardScale(cfg.Card, opt.Scale); fit < opt.Scale {
		log.WithFields(logrus.Fields{"scale": opt.Scale, "fitted": fit}).Warn("card raster too large, lowering scale")
		opt.Scale = fit
	}
	if l.Oversized {
		log.Warn("card is larger than the printable area, placing one per page")
	}

	bg := opt.Background
	if bg == nil && cfg.Vinyl.BackgroundImage != "" {
		bg, err = imagepkg.LoadBackground(ctx, cfg.Vinyl.BackgroundImage)
		if err != nil {
			log.WithError(err).Warn("background image unavailable, rendering without it")
			bg = nil
		}
	}

	e := &exporter{
		ctx:  ctx,
		cfg:  cfg,
		hash: hash,
		geo:  geo,
		opt:  opt,
		bg:   bg,
		log:  log,
		pdf:  newPDF(geo.Paper, opt.Now()),
	}
	counts := map[sheet.Side]int{}
	for _, p := range pages {
		counts[p.Side]++
	}

	doc := &Document{Filename: Filename, Layout: l, Hash: e.hash}
	for i, p := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := e.page(p); err != nil {
			return nil, err
		}
		doc.Pages = append(doc.Pages, summarize(p))
		opt.OnProgress(Progress{
			Percentage: int(math.Round(float64(i+1) / float64(len(pages)) * 100)),
			Message:    fmt.Sprintf("Generating %s pages: %d/%d", p.Side, p.Number+1, counts[p.Side]),
		})
	}

	var out bytes.Buffer
	if err := e.pdf.Output(&out); err != nil {
		return nil, fmt.Errorf("deck: writing pdf: %w", err)
	}
	if err := verifyPDF(out.Bytes(), len(pages)); err != nil {
		return nil, err
	}
	doc.Bytes = out.Bytes()
	log.WithField("pages", len(pages)).Info("export finished")
	return doc, nil
}

// cardScale returns the largest scale not above want at which one card
// raster stays within imagepkg.MaxPixels.
func cardScale(c design.Card, want float64) float64 {
	px := func(s float64) float64 { return math.Ceil(c.Width*s) * math.Ceil(c.Height*s) }
	if c.Width <= 0 || c.Height <= 0 || px(want) <= imagepkg.MaxPixels {
		return want
	}
	s := math.Sqrt(imagepkg.MaxPixels/(c.Width*c.Height)) * 0.999
	for s > 0 && px(s) > imagepkg.MaxPixels {
		s *= 0.99
	}
	return s
}

func summarize(p sheet.Page) PageSummary {
	s := PageSummary{Side: p.Side, Number: p.Number, Records: make([]int, len(p.Cells))}
	for i, c := range p.Cells {
		s.Records[i] = c.Index
	}
	return s
}

type exporter struct {
	ctx  context.Context
	cfg  design.Config
	hash string
	geo  layout.Geometry
	opt  Options
	bg   image.Image
	log  logrus.FieldLogger
	pdf  *fpdf.Fpdf
}

type rendered struct {
	cell sheet.Cell
	img  image.Image
}

func (e *exporter) page(p sheet.Page) error {
	cardsOnPage := make([]rendered, 0, len(p.Cells))
	for _, c := range p.Cells {
		img, err := e.card(c, p.Side)
		if err != nil {
			return err
		}
		cardsOnPage = append(cardsOnPage, rendered{cell: c, img: img})
	}
	if e.opt.Settle > 0 {
		t := time.NewTimer(e.opt.Settle)
		select {
		case <-e.ctx.Done():
			t.Stop()
			return e.ctx.Err()
		case <-t.C:
		}
	}
	if err := e.capture(p, cardsOnPage); err != nil {
		return &PageCaptureError{Side: p.Side, Number: p.Number, Err: err}
	}
	return nil
}

// card rasterizes one cell. Rasterizer failures are logged and replaced by
// a placeholder; only cancellation is returned.
func (e *exporter) card(c sheet.Cell, side sheet.Side) (image.Image, error) {
	sc := compose.Compose(c.Record, e.cfg, side, compose.Options{Rand: e.cardRand(c.Index), Background: e.bg})
	img, err := e.opt.Rasterizer.Rasterize(e.ctx, sc, e.opt.Scale)
	if err == nil {
		return img, nil
	}
	if ctxErr := e.ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	e.log.WithFields(logrus.Fields{"record": c.Index, "side": side}).WithError(err).
		Warn("card raster failed, using placeholder")
	w := int(math.Ceil(e.cfg.Card.Width * e.opt.Scale))
	h := int(math.Ceil(e.cfg.Card.Height * e.opt.Scale))
	return imaging.New(w, h, placeholderColor), nil
}

// cardRand gives each card its own repeatable source when the design is
// seeded. Unseeded designs draw fresh randomness per card.
func (e *exporter) cardRand(index int) *rand.Rand {
	seed := e.cfg.Vinyl.Seed
	if seed == 0 {
		return nil
	}
	return ornament.NewSource(seed + uint64(index))
}

func (e *exporter) capture(p sheet.Page, cells []rendered) error {
	e.pdf.AddPage()
	for _, r := range cells {
		var buf bytes.Buffer
		if err := imagepkg.EncodePNG(&buf, r.img); err != nil {
			return err
		}
		name := fmt.Sprintf("%s-%d-%s", p.Side, r.cell.Index, e.hash[:12])
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		e.pdf.RegisterImageOptionsReader(name, opts, &buf)
		x, y := e.geo.CellOrigin(r.cell.Row, r.cell.Col)
		e.pdf.ImageOptions(name, x, y, e.geo.CardW, e.geo.CardH, false, opts, 0, "")
		if err := e.pdf.Error(); err != nil {
			return err
		}
	}
	return nil
}
