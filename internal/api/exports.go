package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/youruser/sonicstencil/internal/cards"
	"github.com/youruser/sonicstencil/internal/deck"
	"github.com/youruser/sonicstencil/internal/design"
)

// startExport validates synchronously, then renders in the background.
func (s *Server) startExport(c *gin.Context) {
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
	if _, _, err := deck.Plan(recs, cfg); err != nil {
		badRequest(c, err)
		return
	}

	job := s.Jobs.Start(func(ctx context.Context, j *Job) {
		log := s.Log.WithField("job", j.ID())
		doc, err := deck.Export(ctx, recs, cfg, deck.Options{
			Rasterizer: s.Rasterizer,
			Scale:      s.Scale,
			Settle:     s.Settle,
			OnProgress: j.report,
			Log:        log,
		})
		switch {
		case errors.Is(err, context.Canceled):
			log.Info("export canceled")
			j.fail(JobCanceled, "export canceled")
		case err != nil:
			log.WithError(err).Error("export failed")
			j.fail(JobFailed, publicError(err))
		default:
			j.succeed(doc)
		}
	})
	c.JSON(http.StatusAccepted, job.Status())
}

// publicError keeps input problems visible and hides internal causes.
func publicError(err error) string {
	var ve *cards.ValidationError
	var ce *design.ConfigError
	if errors.As(err, &ve) || errors.As(err, &ce) {
		return err.Error()
	}
	return "export failed"
}

func (s *Server) job(c *gin.Context) (*Job, bool) {
	j, ok := s.Jobs.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown export"})
	}
	return j, ok
}

func (s *Server) exportStatus(c *gin.Context) {
	if j, ok := s.job(c); ok {
		c.JSON(http.StatusOK, j.Status())
	}
}

func (s *Server) cancelExport(c *gin.Context) {
	if j, ok := s.job(c); ok {
		j.Cancel()
		c.JSON(http.StatusAccepted, j.Status())
	}
}

// exportEvents streams status changes as server-sent events until the job
// ends or the client goes away.
func (s *Server) exportEvents(c *gin.Context) {
	j, ok := s.job(c)
	if !ok {
		return
	}
	c.Stream(func(w io.Writer) bool {
		st, changed := j.Watch()
		c.SSEvent("progress", st)
		if st.State != JobRunning {
			return false
		}
		select {
		case <-changed:
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func (s *Server) downloadExport(c *gin.Context) {
	j, ok := s.job(c)
	if !ok {
		return
	}
	doc := j.Document()
	if doc == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "export not finished", "status": j.Status()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
	c.Data(http.StatusOK, "application/pdf", doc.Bytes)
}

func (s *Server) exportManifest(c *gin.Context) {
	j, ok := s.job(c)
	if !ok {
		return
	}
	doc := j.Document()
	if doc == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "export not finished", "status": j.Status()})
		return
	}
	c.String(http.StatusOK, deck.Manifest(doc))
}
