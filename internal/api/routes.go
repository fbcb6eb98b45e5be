package api

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.Engine, s *Server) {
	api := r.Group("/api")
	{
		api.GET("/health", health)
		api.GET("/qr", qrHandler)
		api.POST("/layout", s.layoutHandler)
		api.POST("/card/preview", s.cardPreview)
		api.POST("/page/preview", s.pagePreview)

		api.GET("/records", s.listRecords)
		api.POST("/records/upload", s.uploadRecords)
		api.POST("/records/filter", s.filterHandler)

		api.GET("/design", s.getDesign)
		api.PUT("/design", s.putDesign)
		api.PUT("/design/:section", s.putDesignSection)

		api.POST("/exports", s.startExport)
		api.GET("/exports/:id", s.exportStatus)
		api.DELETE("/exports/:id", s.cancelExport)
		api.GET("/exports/:id/events", s.exportEvents)
		api.GET("/exports/:id/download", s.downloadExport)
		api.GET("/exports/:id/manifest", s.exportManifest)

		api.GET("/configs", s.listConfigs)
		api.GET("/configs/:name", s.getConfig)
		api.PUT("/configs/:name", s.putConfig)
		api.DELETE("/configs/:name", s.deleteConfig)
		api.POST("/configs/:name/apply", s.applyConfig)
	}
}
