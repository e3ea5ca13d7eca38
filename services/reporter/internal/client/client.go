// Package client fetches analyses from the health API.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/02loveslollipop/patient-health-monitor/services/api/analysis"
)

// ErrUnavailable is returned when the API reports that its store is down.
var ErrUnavailable = errors.New("analysis unavailable")

type envelope struct {
	Data  analysis.Result `json:"data"`
	Error string          `json:"error"`
}

// FetchAnalysis retrieves GET {baseURL}/api/v1/analysis for one date.
func FetchAnalysis(ctx context.Context, client *http.Client, baseURL, date string, genders []string) (analysis.Result, error) {
	q := url.Values{}
	q.Set("date", date)
	for _, g := range genders {
		q.Add("gender", g)
	}
	endpoint := baseURL + "/api/v1/analysis?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return analysis.Result{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return analysis.Result{}, fmt.Errorf("request analysis: %w", err)
	}
	defer resp.Body.Close()

	var payload envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&payload)

	switch {
	case resp.StatusCode == http.StatusServiceUnavailable:
		msg := resp.Status
		if d := payload.Data.Diagnostic; decodeErr == nil && d != nil {
			msg = d.Message
		}
		return payload.Data, fmt.Errorf("%w: %s", ErrUnavailable, msg)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		if decodeErr == nil && payload.Error != "" {
			return analysis.Result{}, fmt.Errorf("unexpected status %s: %s", resp.Status, payload.Error)
		}
		return analysis.Result{}, fmt.Errorf("unexpected status %s", resp.Status)
	case decodeErr != nil:
		return analysis.Result{}, fmt.Errorf("decode payload: %w", decodeErr)
	}

	return payload.Data, nil
}
