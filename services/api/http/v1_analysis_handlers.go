package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/02loveslollipop/patient-health-monitor/services/api/analysis"
	"github.com/02loveslollipop/patient-health-monitor/services/api/export"
	"github.com/02loveslollipop/patient-health-monitor/services/api/risk"
)

// parseAnalysisRequest reads ?date=YYYY-MM-DD (default today) and any
// number of ?gender= values.
func (s *Server) parseAnalysisRequest(c *gin.Context) (analysis.Request, error) {
	req := analysis.Request{Date: s.cfg.Today(), Genders: c.QueryArray("gender")}
	if v := strings.TrimSpace(c.Query("date")); v != "" {
		loc := s.cfg.Location
		if loc == nil {
			loc = time.UTC
		}
		day, err := time.ParseInLocation(analysis.DateLayout, v, loc)
		if err != nil {
			return req, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", v)
		}
		req.Date = day
	}
	return req, nil
}

// runAnalysis writes a 400 or 503 response itself and reports whether the
// caller should continue.
func (s *Server) runAnalysis(c *gin.Context) (analysis.Result, bool) {
	req, err := s.parseAnalysisRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return analysis.Result{}, false
	}

	res, err := s.analysis.Run(c.Request.Context(), req)
	if errors.Is(err, analysis.ErrStoreUnavailable) {
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, analysisEnvelope(res))
		return res, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return res, false
	}
	return res, true
}

func analysisEnvelope(res analysis.Result) gin.H {
	return gin.H{
		"data": res,
		"meta": gin.H{
			"count":   len(res.Rows),
			"run_id":  res.RunID,
			"date":    res.Date,
			"genders": res.Genders,
		},
	}
}

// handleV1Analysis returns the classified rows and summary for one day
// GET /api/v1/analysis?date=2024-05-01&gender=Female
func (s *Server) handleV1Analysis(c *gin.Context) {
	res, ok := s.runAnalysis(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, analysisEnvelope(res))
}

// handleV1AnalysisSummary returns only the dashboard aggregates
// GET /api/v1/analysis/summary
func (s *Server) handleV1AnalysisSummary(c *gin.Context) {
	res, ok := s.runAnalysis(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data": res.Summary,
		"meta": gin.H{
			"run_id":     res.RunID,
			"date":       res.Date,
			"diagnostic": res.Diagnostic,
		},
	})
}

// handleV1AnalysisExport streams the analysis as an xlsx workbook
// GET /api/v1/analysis/export
func (s *Server) handleV1AnalysisExport(c *gin.Context) {
	res, ok := s.runAnalysis(c)
	if !ok {
		return
	}

	data, err := export.Workbook(res)
	if err != nil {
		s.log.Error("export workbook", zap.String("run_id", res.RunID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build workbook"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", export.Filename(res.Date)))
	c.Data(http.StatusOK, export.ContentType, data)
}

// handleV1Classify classifies one posted reading without storing it.
// Unparseable vital values are labelled Error; only malformed JSON is a 400.
// POST /api/v1/classify
func (s *Server) handleV1Classify(c *gin.Context) {
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reading: " + err.Error()})
		return
	}

	classified := risk.Classify(req.reading())
	classified.PatientReading.ClearNonFinite()
	c.JSON(http.StatusOK, gin.H{
		"data": classified,
	})
}
