package http

import "github.com/gin-gonic/gin"

// registerV1Routes sets up the v1 API.
// Groups: /api/v1/analysis, /api/v1/classify, /api/v1/core
func (s *Server) registerV1Routes() {
	v1 := s.engine.Group("/api/v1")
	v1.Use(apiVersionMiddleware())

	// Daily analysis of every patient
	an := v1.Group("/analysis")
	{
		an.GET("", s.handleV1Analysis)
		an.GET("/summary", s.handleV1AnalysisSummary)
		an.GET("/export", s.handleV1AnalysisExport)
	}

	// Stateless classification of a single reading
	v1.POST("/classify", s.handleV1Classify)

	// Core endpoints - patient demographics
	core := v1.Group("/core")
	{
		core.GET("/patients", s.handleV1ListPatients)
		core.GET("/patients/:id", s.handleV1GetPatient)
	}
}

// apiVersionMiddleware tags every v1 response with X-API-Version.
func apiVersionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-API-Version", "v1")
		c.Next()
	}
}
