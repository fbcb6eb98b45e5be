package api

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/youruser/sonicstencil/internal/cards"
	"github.com/youruser/sonicstencil/internal/design"
	"github.com/youruser/sonicstencil/internal/scene"
)

type blankRasterizer struct{}

func (blankRasterizer) Rasterize(ctx context.Context, s *scene.Scene, scale float64) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
}

func newTestServer(t *testing.T) (*Server, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logrus.New()
	log.SetOutput(io.Discard)

	store, err := design.OpenStore(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	s := NewServer(design.NewSession(design.Default()), store, log)
	s.Scale = 0.25
	s.SetRecords([]cards.Record{
		{Artist: "Nina Simone", Title: "Feeling Good", Year: "1965", QRURL: "https://example.com/1"},
		{Artist: "Kraftwerk", Title: "The Model", Year: "1978", QRURL: "https://example.com/2"},
		{Artist: "Björk", Title: "Army of Me", Year: "1995"},
	})
	r := gin.New()
	RegisterRoutes(r, s)
	return s, r
}

func do(r http.Handler, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding %q: %v", w.Body.String(), err)
	}
}

func TestHealthAndQR(t *testing.T) {
	_, r := newTestServer(t)
	if w := do(r, http.MethodGet, "/api/health", nil, ""); w.Code != http.StatusOK {
		t.Errorf("health = %d", w.Code)
	}
	w := do(r, http.MethodGet, "/api/qr?text=hello&size=64", nil, "")
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("qr = %d %s", w.Code, w.Header().Get("Content-Type"))
	}
	if _, err := png.Decode(w.Body); err != nil {
		t.Error(err)
	}
	if w := do(r, http.MethodGet, "/api/qr", nil, ""); w.Code != http.StatusBadRequest {
		t.Errorf("missing text = %d", w.Code)
	}
}

func TestLayout(t *testing.T) {
	_, r := newTestServer(t)
	w := do(r, http.MethodPost, "/api/layout", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("layout = %d %s", w.Code, w.Body)
	}
	var got struct {
		Layout struct {
			Columns, Rows, CardsPerPage int
		}
		FrontPages int
	}
	decode(t, w, &got)
	if got.Layout.CardsPerPage < 1 || got.FrontPages != 1 {
		t.Errorf("got %+v", got)
	}

	w = do(r, http.MethodPost, "/api/layout", strings.NewReader(`{"page":{"pageFormat":"Letter"}}`), "application/json")
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad config = %d", w.Code)
	}
}

func TestCardPreview(t *testing.T) {
	_, r := newTestServer(t)
	body := `{"record":{"artist":"A","title":"T","year":"2001","qr_url":"https://x.y"}}`
	w := do(r, http.MethodPost, "/api/card/preview?side=front", strings.NewReader(body), "application/json")
	if w.Code != http.StatusOK {
		t.Fatalf("preview = %d %s", w.Code, w.Body)
	}
	img, err := png.Decode(w.Body)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 75 || b.Dy() != 75 {
		t.Errorf("bounds = %v, want 300px at 0.25", b)
	}
	if w := do(r, http.MethodPost, "/api/card/preview?side=top", nil, ""); w.Code != http.StatusBadRequest {
		t.Errorf("bad side = %d", w.Code)
	}
}

func TestPagePreview(t *testing.T) {
	s, r := newTestServer(t)
	s.Rasterizer = blankRasterizer{}
	w := do(r, http.MethodPost, "/api/page/preview?side=back&page=1", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("page preview = %d %s", w.Code, w.Body)
	}
	if w := do(r, http.MethodPost, "/api/page/preview?page=9", nil, ""); w.Code != http.StatusNotFound {
		t.Errorf("missing page = %d", w.Code)
	}
}

func TestUploadAndFilter(t *testing.T) {
	s, r := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "cards.csv")
	io.WriteString(fw, "Artist;Title;Year;QR\nABBA;Waterloo;1974;https://e.x/1\nQueen;Bohemian Rhapsody;1975;\n")
	mw.Close()

	w := do(r, http.MethodPost, "/api/records/upload", &buf, mw.FormDataContentType())
	if w.Code != http.StatusOK {
		t.Fatalf("upload = %d %s", w.Code, w.Body)
	}
	if n := len(s.Records()); n != 2 {
		t.Fatalf("records after upload = %d", n)
	}

	w = do(r, http.MethodPost, "/api/records/filter", strings.NewReader(`{"with_qr":true}`), "application/json")
	var got struct {
		Count   int
		Records []cards.Record
	}
	decode(t, w, &got)
	if got.Count != 1 || got.Records[0].Artist != "ABBA" {
		t.Errorf("filter = %+v", got)
	}
}

func TestUploadStrictRejectsMissingQR(t *testing.T) {
	s, r := newTestServer(t)
	before := len(s.Records())
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "cards.csv")
	io.WriteString(fw, "artist,title,year,qr_url\nA,B,2000,\n")
	mw.Close()
	w := do(r, http.MethodPost, "/api/records/upload?strict=true", &buf, mw.FormDataContentType())
	if w.Code != http.StatusBadRequest {
		t.Errorf("strict upload = %d", w.Code)
	}
	if len(s.Records()) != before {
		t.Error("rejected upload replaced the records")
	}
}

func TestDesignAndSavedConfigs(t *testing.T) {
	s, r := newTestServer(t)

	w := do(r, http.MethodPut, "/api/design", strings.NewReader(`{"mode":"token"}`), "application/json")
	if w.Code != http.StatusOK || s.Session.Snapshot().Mode != design.ModeToken {
		t.Fatalf("put design = %d %s", w.Code, w.Body)
	}
	if w := do(r, http.MethodPut, "/api/design", strings.NewReader(`{"mode":"poster"}`), "application/json"); w.Code != http.StatusBadRequest {
		t.Errorf("bad design = %d", w.Code)
	}

	if w := do(r, http.MethodPut, "/api/configs/tokens", nil, ""); w.Code != http.StatusOK {
		t.Fatalf("save = %d %s", w.Code, w.Body)
	}
	w = do(r, http.MethodGet, "/api/configs/tokens", nil, "")
	want, _ := design.Marshal(s.Session.Snapshot())
	if w.Code != http.StatusOK || !bytes.Equal(w.Body.Bytes(), want) {
		t.Errorf("get = %d %s", w.Code, w.Body)
	}

	w = do(r, http.MethodGet, "/api/configs", nil, "")
	var list struct {
		Configs []design.Saved
	}
	decode(t, w, &list)
	if len(list.Configs) != 1 || list.Configs[0].Name != "tokens" {
		t.Errorf("list = %+v", list)
	}

	if err := s.Session.Load([]byte(`{"mode":"card"}`)); err != nil {
		t.Fatal(err)
	}
	if w := do(r, http.MethodPost, "/api/configs/tokens/apply", nil, ""); w.Code != http.StatusOK || s.Session.Snapshot().Mode != design.ModeToken {
		t.Errorf("apply = %d", w.Code)
	}

	if w := do(r, http.MethodDelete, "/api/configs/tokens", nil, ""); w.Code != http.StatusNoContent {
		t.Errorf("delete = %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/configs/tokens", nil, ""); w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d", w.Code)
	}
}

// streamRecorder adds the close notification gin's Stream waits on.
type streamRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func (r *streamRecorder) CloseNotify() <-chan bool {
	return r.closed
}

func waitDone(t *testing.T, s *Server, id string) JobStatus {
	t.Helper()
	j, ok := s.Jobs.Get(id)
	if !ok {
		t.Fatalf("job %s not registered", id)
	}
	deadline := time.After(30 * time.Second)
	for {
		st, changed := j.Watch()
		if st.State != JobRunning {
			return st
		}
		select {
		case <-changed:
		case <-deadline:
			t.Fatal("export did not finish")
		}
	}
}

func TestExportFlow(t *testing.T) {
	s, r := newTestServer(t)
	s.Rasterizer = blankRasterizer{}

	w := do(r, http.MethodPost, "/api/exports", nil, "")
	if w.Code != http.StatusAccepted {
		t.Fatalf("start = %d %s", w.Code, w.Body)
	}
	var started JobStatus
	decode(t, w, &started)

	st := waitDone(t, s, started.ID)
	if st.State != JobDone || st.Progress.Percentage != 100 || st.Pages != 2 {
		t.Fatalf("status = %+v", st)
	}

	w = do(r, http.MethodGet, "/api/exports/"+started.ID+"/download", nil, "")
	if w.Code != http.StatusOK || !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")) {
		t.Fatalf("download = %d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "sonicstencil-cards.pdf") {
		t.Errorf("content disposition = %q", cd)
	}

	sw := &streamRecorder{httptest.NewRecorder(), make(chan bool, 1)}
	r.ServeHTTP(sw, httptest.NewRequest(http.MethodGet, "/api/exports/"+started.ID+"/events", nil))
	if !strings.Contains(sw.Body.String(), "event:progress") || !strings.Contains(sw.Body.String(), `"state":"done"`) {
		t.Errorf("events = %q", sw.Body.String())
	}

	w = do(r, http.MethodGet, "/api/exports/"+started.ID+"/manifest", nil, "")
	if !strings.Contains(w.Body.String(), "back 1: 2 1 3") {
		t.Errorf("manifest = %q", w.Body.String())
	}
}

func TestExportValidationIsSynchronous(t *testing.T) {
	_, r := newTestServer(t)
	body := `{"records":[{"artist":"A","title":"","year":"1"}]}`
	w := do(r, http.MethodPost, "/api/exports", strings.NewReader(body), "application/json")
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "row 0") {
		t.Errorf("got %d %s", w.Code, w.Body)
	}
	if w := do(r, http.MethodGet, "/api/exports/nope", nil, ""); w.Code != http.StatusNotFound {
		t.Errorf("unknown job = %d", w.Code)
	}
}

func TestJobPanicFailsJob(t *testing.T) {
	s, _ := newTestServer(t)
	j := s.Jobs.Start(func(ctx context.Context, j *Job) { panic("renderer blew up") })
	st := waitDone(t, s, j.ID())
	if st.State != JobFailed || st.Error != "export failed" {
		t.Errorf("status = %+v", st)
	}
}

func TestPutDesignSection(t *testing.T) {
	s, r := newTestServer(t)
	def := design.Default()

	w := do(r, http.MethodPut, "/api/design/qrCode", strings.NewReader(`{"size":40}`), "application/json")
	if w.Code != http.StatusOK {
		t.Fatalf("put section = %d %s", w.Code, w.Body)
	}
	got := s.Session.Snapshot()
	if got.QRCode.Size != 40 || got.QRCode.PositionX != def.QRCode.PositionX || got.Card != def.Card {
		t.Errorf("section merge wrong: %+v", got.QRCode)
	}
	if w := do(r, http.MethodPut, "/api/design/mode", strings.NewReader(`"token"`), "application/json"); w.Code != http.StatusOK {
		t.Errorf("put mode = %d %s", w.Code, w.Body)
	}

	rejects := []struct{ path, body string }{
		{"/api/design/card", `{"width":-5}`},
		{"/api/design/card", `{"colour":"red"}`},
		{"/api/design/vinyl", `{"style":"laser"}`},
	}
	for _, tt := range rejects {
		before := s.Session.Snapshot()
		if w := do(r, http.MethodPut, tt.path, strings.NewReader(tt.body), "application/json"); w.Code != http.StatusBadRequest {
			t.Errorf("%s %s = %d", tt.path, tt.body, w.Code)
		}
		if s.Session.Snapshot() != before {
			t.Errorf("%s %s changed the live config", tt.path, tt.body)
		}
	}
	if w := do(r, http.MethodPut, "/api/design/colors", strings.NewReader(`{}`), "application/json"); w.Code != http.StatusNotFound {
		t.Errorf("unknown section = %d", w.Code)
	}
}
