package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/02loveslollipop/patient-health-monitor/services/api/risk"
)

// ErrPatientNotFound is returned when a patient id does not exist.
var ErrPatientNotFound = errors.New("patient not found")

// Options tunes the Postgres store.
type Options struct {
	MaxConns int32
	MinConns int32
	// A1CColumn reports whether diabetes.a1c_level exists in the schema.
	A1CColumn bool
}

// Store wraps database access helpers.
type Store struct {
	pool        *pgxpool.Pool
	readingsSQL string
}

// New creates a Store backed by a pgx pool and verifies connectivity.
func New(ctx context.Context, databaseURL string, opts Options) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		cfg.MinConns = opts.MinConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool, readingsSQL: readingsByDateSQL(opts.A1CColumn)}, nil
}

// Close releases the pool resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ping checks that the database answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Patient is the demographic record of a patient.
type Patient struct {
	ID          int64      `json:"patient_id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Gender      string     `json:"gender"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	ContactInfo *string    `json:"contact_info,omitempty"`
}

const listPatientsSQL = `
    SELECT patient_id, first_name, last_name, gender, date_of_birth, contact_info
    FROM patients
    ORDER BY patient_id
`

// ListPatients returns all patients.
func (s *Store) ListPatients(ctx context.Context) ([]Patient, error) {
	rows, err := s.pool.Query(ctx, listPatientsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	patients := make([]Patient, 0)
	for rows.Next() {
		var p Patient
		if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Gender, &p.DateOfBirth, &p.ContactInfo); err != nil {
			return nil, err
		}
		patients = append(patients, p)
	}
	return patients, rows.Err()
}

const getPatientSQL = `
    SELECT patient_id, first_name, last_name, gender, date_of_birth, contact_info
    FROM patients
    WHERE patient_id = $1
`

// GetPatient returns one patient or ErrPatientNotFound.
func (s *Store) GetPatient(ctx context.Context, id int64) (*Patient, error) {
	var p Patient
	err := s.pool.QueryRow(ctx, getPatientSQL, id).
		Scan(&p.ID, &p.FirstName, &p.LastName, &p.Gender, &p.DateOfBirth, &p.ContactInfo)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPatientNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// readingsByDateSQL returns one row per patient. Each vital comes from a
// lateral subquery picking the most recent observation of the day, so a
// patient never appears twice and missing vitals come back as NULLs.
func readingsByDateSQL(a1cColumn bool) string {
	a1c := "NULL::double precision"
	if a1cColumn {
		a1c = "a1c_level::double precision"
	}

	var b strings.Builder
	b.WriteString(`
    SELECT p.patient_id, p.first_name, p.last_name, p.gender, p.date_of_birth, p.contact_info,
           bp.record_date, bp.systolic, bp.diastolic,
           hr.record_timestamp, hr.heart_rate,
           o2.record_timestamp, o2.oxygen_level,
           d.record_date, d.glucose_level, d.a1c_level
    FROM patients p
    LEFT JOIN LATERAL (
        SELECT record_date, systolic::double precision AS systolic, diastolic::double precision AS diastolic
        FROM bloodpressure
        WHERE patient_id = p.patient_id AND record_date = $1
        ORDER BY record_date DESC, record_id DESC
        LIMIT 1
    ) bp ON true
    LEFT JOIN LATERAL (
        SELECT record_timestamp, heart_rate::double precision AS heart_rate
        FROM heartrate
        WHERE patient_id = p.patient_id AND record_timestamp::date = $1
        ORDER BY record_timestamp DESC, record_id DESC
        LIMIT 1
    ) hr ON true
    LEFT JOIN LATERAL (
        SELECT record_timestamp, oxygen_level::double precision AS oxygen_level
        FROM oxygen
        WHERE patient_id = p.patient_id AND record_timestamp::date = $1
        ORDER BY record_timestamp DESC, record_id DESC
        LIMIT 1
    ) o2 ON true
    LEFT JOIN LATERAL (
        SELECT record_date, glucose_level::double precision AS glucose_level, `)
	b.WriteString(a1c)
	b.WriteString(` AS a1c_level
        FROM diabetes
        WHERE patient_id = p.patient_id AND record_date = $1
        ORDER BY record_date DESC, record_id DESC
        LIMIT 1
    ) d ON true
    ORDER BY p.patient_id
`)
	return b.String()
}

// ReadingsByDate runs the temporal join for one calendar day. A single
// pooled connection is held for the duration of the query.
func (s *Store) ReadingsByDate(ctx context.Context, day time.Time) ([]risk.PatientReading, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	date := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	rows, err := conn.Query(ctx, s.readingsSQL, date)
	if err != nil {
		return nil, fmt.Errorf("query readings: %w", err)
	}
	defer rows.Close()

	return scanReadings(rows, day)
}
