package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchAnalysis(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/analysis", r.URL.Path)
		assert.Equal(t, "2024-05-01", r.URL.Query().Get("date"))
		assert.Equal(t, []string{"Female", "Male"}, r.URL.Query()["gender"])
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"run_id":"r1","date":"2024-05-01","rows":[
			{"patient_id":1,"first_name":"Ada","last_name":"Lovelace","gender":"Female",
			 "risks":{"bp_risk":"Normal","hr_risk":"Normal","o2_risk":"Normal","diabetes_risk":"No Data"},
			 "health_status":"Incomplete Data"}
		],"summary":{"total_patients":1}},"meta":{"count":1}}`))
	}))
	defer srv.Close()

	res, err := FetchAnalysis(context.Background(), srv.Client(), srv.URL, "2024-05-01", []string{"Female", "Male"})
	require.NoError(t, err)
	assert.Equal(t, "r1", res.RunID)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "Ada", res.Rows[0].FirstName)
	assert.Equal(t, "Incomplete Data", string(res.Rows[0].HealthStatus))
	assert.Equal(t, 1, res.Summary.TotalPatients)
}

func TestFetchAnalysisUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"data":{"rows":[],"summary":{"total_patients":0},
			"diagnostic":{"code":"store_unavailable","message":"database is down"}}}`))
	}))
	defer srv.Close()

	res, err := FetchAnalysis(context.Background(), srv.Client(), srv.URL, "2024-05-01", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "database is down")
	require.NotNil(t, res.Diagnostic)
	assert.Equal(t, "store_unavailable", res.Diagnostic.Code)
}

func TestFetchAnalysisBadRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid date"}`))
	}))
	defer srv.Close()

	_, err := FetchAnalysis(context.Background(), srv.Client(), srv.URL, "nope", nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "invalid date")
}

func TestFetchAnalysisBadPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	_, err := FetchAnalysis(context.Background(), srv.Client(), srv.URL, "2024-05-01", nil)
	assert.ErrorContains(t, err, "decode payload")
}
