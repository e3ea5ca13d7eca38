package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/02loveslollipop/patient-health-monitor/services/api/db"
)

// handleV1ListPatients returns all patients
// GET /api/v1/core/patients
func (s *Server) handleV1ListPatients(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	patients, err := s.store.ListPatients(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": patients,
		"meta": gin.H{
			"count": len(patients),
		},
	})
}

// handleV1GetPatient returns one patient
// GET /api/v1/core/patients/:id
func (s *Server) handleV1GetPatient(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid patient id"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	patient, err := s.store.GetPatient(ctx, id)
	if errors.Is(err, db.ErrPatientNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "patient not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": patient,
	})
}
