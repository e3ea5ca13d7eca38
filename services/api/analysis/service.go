// Package analysis runs one dashboard analysis: a single store query for a
// calendar day, classification of every row, filtering and aggregation.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/02loveslollipop/patient-health-monitor/services/api/risk"
)

// ErrStoreUnavailable marks a run whose reading query failed.
var ErrStoreUnavailable = errors.New("store unavailable")

// Diagnostic codes.
const (
	CodeStoreUnavailable = "store_unavailable"
	CodeEmptyResult      = "empty_result"
)

// ReadingStore is the read side the pipeline needs.
type ReadingStore interface {
	ReadingsByDate(ctx context.Context, day time.Time) ([]risk.PatientReading, error)
}

// Request selects the analysis date and an optional gender filter.
type Request struct {
	Date    time.Time
	Genders []string
}

// Diagnostic explains an empty or degraded result.
type Diagnostic struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Result is the output of one run.
type Result struct {
	RunID       string                   `json:"run_id"`
	Date        string                   `json:"date"`
	GeneratedAt time.Time                `json:"generated_at"`
	Genders     []string                 `json:"genders,omitempty"`
	Rows        []risk.ClassifiedReading `json:"rows"`
	Summary     risk.Summary             `json:"summary"`
	Diagnostic  *Diagnostic              `json:"diagnostic,omitempty"`
}

// Service wires a store to the classifier.
type Service struct {
	store   ReadingStore
	timeout time.Duration
	log     *zap.Logger
	now     func() time.Time
}

// NewService returns a Service. A zero timeout disables the per-run deadline.
func NewService(store ReadingStore, timeout time.Duration, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, timeout: timeout, log: log, now: time.Now}
}

// DateLayout is the calendar day format used on every surface.
const DateLayout = "2006-01-02"

// Run performs exactly one store query. On failure the returned Result is a
// valid empty analysis carrying a diagnostic, and the error wraps
// ErrStoreUnavailable.
func (s *Service) Run(ctx context.Context, req Request) (Result, error) {
	genders := normalizeGenders(req.Genders)
	res := Result{
		RunID:       uuid.NewString(),
		Date:        req.Date.Format(DateLayout),
		GeneratedAt: s.now().UTC(),
		Genders:     genders,
		Rows:        []risk.ClassifiedReading{},
	}
	log := s.log.With(zap.String("run_id", res.RunID), zap.String("date", res.Date))

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	started := time.Now()
	readings, err := s.store.ReadingsByDate(ctx, req.Date)
	if err != nil {
		log.Error("reading query failed", zap.Error(err))
		res.Summary = risk.Summarize(res.Rows)
		res.Diagnostic = &Diagnostic{
			Code:    CodeStoreUnavailable,
			Message: "patient readings could not be retrieved; check the database connection",
		}
		return res, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	rows := risk.FilterByGender(risk.ClassifyAll(readings), genders)
	for i := range rows {
		rows[i].PatientReading.ClearNonFinite()
	}
	res.Rows = rows
	res.Summary = risk.Summarize(rows)
	if len(rows) == 0 {
		res.Diagnostic = &Diagnostic{
			Code:    CodeEmptyResult,
			Message: "no patients match the selected date and filters",
		}
	}

	log.Info("analysis complete",
		zap.Int("patients", len(readings)),
		zap.Int("rows", len(rows)),
		zap.Int("critical", res.Summary.Critical.Count),
		zap.Duration("elapsed", time.Since(started)),
	)
	return res, nil
}

func normalizeGenders(in []string) []string {
	var out []string
	for _, g := range in {
		for _, part := range strings.Split(g, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
