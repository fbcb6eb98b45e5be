package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/youruser/sonicstencil/internal/cards"
	"github.com/youruser/sonicstencil/internal/compose"
	"github.com/youruser/sonicstencil/internal/deck"
	"github.com/youruser/sonicstencil/internal/design"
	imagepkg "github.com/youruser/sonicstencil/internal/image"
	"github.com/youruser/sonicstencil/internal/layout"
	"github.com/youruser/sonicstencil/internal/sheet"
)

// Server carries the state shared by the handlers.
type Server struct {
	Session    *design.Session
	Store      *design.Store // nil disables the saved config routes
	Jobs       *Jobs
	Rasterizer imagepkg.Rasterizer
	Scale      float64
	Settle     time.Duration
	MaxRecords int
	Log        logrus.FieldLogger

	mu      sync.RWMutex
	records []cards.Record
}

func NewServer(session *design.Session, store *design.Store, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{
		Session:    session,
		Store:      store,
		Jobs:       NewJobs(30 * time.Minute),
		Rasterizer: imagepkg.NewRasterizer(log),
		Scale:      deck.DefaultScale,
		MaxRecords: 5000,
		Log:        log,
	}
}

func (s *Server) SetRecords(recs []cards.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = recs
}

func (s *Server) Records() []cards.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records
}

// designFrom decodes an inline config, falling back to the live session.
func (s *Server) designFrom(raw json.RawMessage) (design.Config, error) {
	if len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null" {
		return s.Session.Snapshot(), nil
	}
	return design.Load(raw)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// qr endpoint returns a PNG of a QR for "text" query param
func qrHandler(c *gin.Context) {
	text := c.Query("text")
	if text == "" {
		badRequest(c, errors.New("text is required"))
		return
	}
	size := 400
	if v, err := strconv.Atoi(c.Query("size")); err == nil && v > 0 && v <= 2048 {
		size = v
	}
	b, err := imagepkg.GenerateQRPNG(text, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", b)
}

func (s *Server) layoutHandler(c *gin.Context) {
	raw, _ := c.GetRawData()
	cfg, err := s.designFrom(raw)
	if err != nil {
		badRequest(c, err)
		return
	}
	req := cfg.LayoutRequest()
	l, err := layout.Plan(req)
	if err != nil {
		badRequest(c, err)
		return
	}
	g, _ := layout.NewGeometry(req)
	n := len(s.Records())
	c.JSON(http.StatusOK, gin.H{
		"layout":     l,
		"paper":      g.Paper,
		"cardWidth":  g.CardW,
		"cardHeight": g.CardH,
		"records":    n,
		"frontPages": sheet.PageCount(n, l),
	})
}

func parseSide(c *gin.Context) (sheet.Side, error) {
	switch side := sheet.Side(c.DefaultQuery("side", string(sheet.Front))); side {
	case sheet.Front, sheet.Back:
		return side, nil
	default:
		return "", errors.New("side must be front or back")
	}
}

func (s *Server) cardPreview(c *gin.Context) {
	side, err := parseSide(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	var req struct {
		Record *cards.Record   `json:"record"`
		Config json.RawMessage `json:"config"`
	}
	if err := bindOptional(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	cfg, err := s.designFrom(req.Config)
	if err != nil {
		badRequest(c, err)
		return
	}
	rec := cards.Sample
	if req.Record != nil {
		rec = *req.Record
	}
	ctx := c.Request.Context()
	bg, err := imagepkg.LoadBackground(ctx, cfg.Vinyl.BackgroundImage)
	if err != nil {
		s.Log.WithError(err).Warn("preview background unavailable")
	}
	sc := compose.Compose(rec, cfg, side, compose.Options{Background: bg})
	img, err := s.Rasterizer.Rasterize(ctx, sc, s.Scale)
	if err != nil {
		s.Log.WithError(err).Error("card preview failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "preview failed"})
		return
	}
	var buf bytes.Buffer
	if err := imagepkg.EncodePNG(&buf, img); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

type recordsRequest struct {
	Records []cards.Record       `json:"records"`
	Filter  *cards.FilterOptions `json:"filter"`
	Config  json.RawMessage      `json:"config"`
}

// source resolves the records of a request: inline records win, then the
// loaded set, optionally filtered.
func (s *Server) source(req recordsRequest) ([]cards.Record, error) {
	recs := req.Records
	if recs == nil {
		recs = s.Records()
	}
	if req.Filter != nil {
		recs = cards.Filter(recs, *req.Filter)
	}
	if len(recs) > s.MaxRecords {
		return nil, errors.New("too many records, max " + strconv.Itoa(s.MaxRecords))
	}
	return recs, nil
}

func (s *Server) pagePreview(c *gin.Context) {
	side, err := parseSide(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	num, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || num < 1 {
		badRequest(c, errors.New("page must be a positive number"))
		return
	}
	var req recordsRequest
	if err := bindOptional(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	cfg, err := s.designFrom(req.Config)
	if err != nil {
		badRequest(c, err)
		return
	}
	recs, err := s.source(req)
	if err != nil {
		badRequest(c, err)
		return
	}
	_, pages, err := deck.Plan(recs, cfg)
	if err != nil {
		badRequest(c, err)
		return
	}
	var page *sheet.Page
	for i := range pages {
		if pages[i].Side == side && pages[i].Number == num-1 {
			page = &pages[i]
			break
		}
	}
	if page == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such page"})
		return
	}

	ctx := c.Request.Context()
	bg, err := imagepkg.LoadBackground(ctx, cfg.Vinyl.BackgroundImage)
	if err != nil {
		s.Log.WithError(err).Warn("preview background unavailable")
	}
	placed := make([]imagepkg.Placed, 0, len(page.Cells))
	for _, cell := range page.Cells {
		sc := compose.Compose(cell.Record, cfg, side, compose.Options{Background: bg})
		img, err := s.Rasterizer.Rasterize(ctx, sc, s.Scale)
		if err != nil {
			s.Log.WithError(err).WithField("record", cell.Index).Warn("page preview card failed")
			continue
		}
		placed = append(placed, imagepkg.Placed{Row: cell.Row, Col: cell.Col, Img: img})
	}
	g, _ := layout.NewGeometry(cfg.LayoutRequest())
	var buf bytes.Buffer
	if err := imagepkg.EncodePNG(&buf, imagepkg.ComposePage(g, placed, s.Scale*layout.PxPerMM)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// bindOptional decodes a JSON body that may be absent.
func bindOptional(c *gin.Context, v any) error {
	raw, err := c.GetRawData()
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}

func (s *Server) uploadRecords(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, err)
		return
	}
	f, err := fh.Open()
	if err != nil {
		badRequest(c, err)
		return
	}
	defer f.Close()
	recs, err := cards.LoadRecordsCSV(f)
	if err != nil {
		badRequest(c, err)
		return
	}
	if c.Query("strict") == "true" {
		if err := cards.Validate(recs, true); err != nil {
			badRequest(c, err)
			return
		}
	}
	if len(recs) > s.MaxRecords {
		badRequest(c, errors.New("too many records, max "+strconv.Itoa(s.MaxRecords)))
		return
	}
	s.SetRecords(recs)
	s.Log.WithField("records", len(recs)).Info("records replaced from upload")
	c.JSON(http.StatusOK, gin.H{"count": len(recs), "records": recs})
}

func (s *Server) listRecords(c *gin.Context) {
	recs := s.Records()
	c.JSON(http.StatusOK, gin.H{"count": len(recs), "records": recs})
}

func (s *Server) filterHandler(c *gin.Context) {
	var opt cards.FilterOptions
	if err := c.ShouldBindJSON(&opt); err != nil {
		badRequest(c, err)
		return
	}
	out := cards.Filter(s.Records(), opt)
	c.JSON(http.StatusOK, gin.H{"count": len(out), "records": out})
}

func (s *Server) getDesign(c *gin.Context) {
	b, err := s.Session.Marshal()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json", b)
}

func (s *Server) putDesign(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := s.Session.Load(raw); err != nil {
		badRequest(c, err)
		return
	}
	s.getDesign(c)
}

// designSections maps a config section name to a decoder that merges a JSON
// object into that section of c.
var designSections = map[string]func(c design.Config, raw []byte) (design.Config, error){
	"mode":   section(func(c design.Config) design.Mode { return c.Mode }, design.Config.WithMode),
	"card":   section(func(c design.Config) design.Card { return c.Card }, design.Config.WithCard),
	"front":  section(func(c design.Config) design.Front { return c.Front }, design.Config.WithFront),
	"back":   section(func(c design.Config) design.Back { return c.Back }, design.Config.WithBack),
	"token":  section(func(c design.Config) design.Token { return c.Token }, design.Config.WithToken),
	"qrCode": section(func(c design.Config) design.QRCode { return c.QRCode }, design.Config.WithQRCode),
	"vinyl":  section(func(c design.Config) design.Vinyl { return c.Vinyl }, design.Config.WithVinyl),
	"page":   section(func(c design.Config) design.Page { return c.Page }, design.Config.WithPage),
}

func section[T any](get func(design.Config) T, with func(design.Config, T) design.Config) func(design.Config, []byte) (design.Config, error) {
	return func(c design.Config, raw []byte) (design.Config, error) {
		v := get(c)
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&v); err != nil {
			return c, err
		}
		return with(c, v), nil
	}
}

// putDesignSection updates one section of the live config. Fields missing
// from the body keep their current values.
func (s *Server) putDesignSection(c *gin.Context) {
	merge, ok := designSections[c.Param("section")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown design section"})
		return
	}
	raw, err := c.GetRawData()
	if err != nil {
		badRequest(c, err)
		return
	}
	var decodeErr error
	err = s.Session.Update(func(cfg design.Config) design.Config {
		next, err := merge(cfg, raw)
		if err != nil {
			decodeErr = err
		}
		return next
	})
	if decodeErr != nil {
		err = decodeErr
	}
	if err != nil {
		badRequest(c, err)
		return
	}
	s.getDesign(c)
}
