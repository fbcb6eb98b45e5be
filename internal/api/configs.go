package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/youruser/sonicstencil/internal/design"
)

func (s *Server) storeReady(c *gin.Context) bool {
	if s.Store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "config store disabled"})
		return false
	}
	return true
}

func (s *Server) listConfigs(c *gin.Context) {
	if !s.storeReady(c) {
		return
	}
	list, err := s.Store.List(c.Request.Context())
	if err != nil {
		s.Log.WithError(err).Error("listing configs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"configs": list})
}

func (s *Server) getConfig(c *gin.Context) {
	if !s.storeReady(c) {
		return
	}
	raw, err := s.Store.Raw(c.Request.Context(), c.Param("name"))
	if errors.Is(err, design.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		s.Log.WithError(err).Error("reading config")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "read failed"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+design.ConfigFilename+`"`)
	c.Data(http.StatusOK, "application/json", raw)
}

// putConfig saves the body under name, or the live design when the body is
// empty.
func (s *Server) putConfig(c *gin.Context) {
	if !s.storeReady(c) {
		return
	}
	raw, err := c.GetRawData()
	if err != nil {
		badRequest(c, err)
		return
	}
	cfg, err := s.designFrom(raw)
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := s.Store.Save(c.Request.Context(), c.Param("name"), cfg); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": c.Param("name"), "hash": cfg.Hash()})
}

func (s *Server) deleteConfig(c *gin.Context) {
	if !s.storeReady(c) {
		return
	}
	err := s.Store.Delete(c.Request.Context(), c.Param("name"))
	if errors.Is(err, design.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		s.Log.WithError(err).Error("deleting config")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

// applyConfig loads a saved config into the live session.
func (s *Server) applyConfig(c *gin.Context) {
	if !s.storeReady(c) {
		return
	}
	raw, err := s.Store.Raw(c.Request.Context(), c.Param("name"))
	if errors.Is(err, design.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "read failed"})
		return
	}
	if err := s.Session.Load(raw); err != nil {
		badRequest(c, err)
		return
	}
	s.getDesign(c)
}
