package db

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/02loveslollipop/patient-health-monitor/services/api/risk"
)

// BloodPressureRecord is a raw blood pressure observation.
type BloodPressureRecord struct {
	ID         int64     `json:"id"`
	PatientID  int64     `json:"patient_id"`
	ObservedAt time.Time `json:"observed_at"`
	Systolic   *float64  `json:"systolic"`
	Diastolic  *float64  `json:"diastolic"`
}

// HeartRateRecord is a raw heart rate observation.
type HeartRateRecord struct {
	ID         int64     `json:"id"`
	PatientID  int64     `json:"patient_id"`
	ObservedAt time.Time `json:"observed_at"`
	BPM        *float64  `json:"heart_rate"`
}

// OxygenRecord is a raw oxygen saturation observation.
type OxygenRecord struct {
	ID         int64     `json:"id"`
	PatientID  int64     `json:"patient_id"`
	ObservedAt time.Time `json:"observed_at"`
	Percent    *float64  `json:"oxygen_level"`
}

// GlucoseRecord is a raw diabetes observation.
type GlucoseRecord struct {
	ID          int64     `json:"id"`
	PatientID   int64     `json:"patient_id"`
	ObservedAt  time.Time `json:"observed_at"`
	GlucoseMgDL *float64  `json:"glucose_level"`
	A1C         *float64  `json:"a1c_level"`
}

func (r BloodPressureRecord) observation() (int64, time.Time, int64) { return r.PatientID, r.ObservedAt, r.ID }
func (r HeartRateRecord) observation() (int64, time.Time, int64)     { return r.PatientID, r.ObservedAt, r.ID }
func (r OxygenRecord) observation() (int64, time.Time, int64)        { return r.PatientID, r.ObservedAt, r.ID }
func (r GlucoseRecord) observation() (int64, time.Time, int64)       { return r.PatientID, r.ObservedAt, r.ID }

// Observation is implemented by every raw vital record.
type Observation interface {
	observation() (patientID int64, observedAt time.Time, id int64)
}

// Seed is the JSON document a MemoryStore is loaded from.
type Seed struct {
	Patients      []Patient             `json:"patients"`
	BloodPressure []BloodPressureRecord `json:"blood_pressure"`
	HeartRate     []HeartRateRecord     `json:"heart_rate"`
	Oxygen        []OxygenRecord        `json:"oxygen"`
	Glucose       []GlucoseRecord       `json:"glucose"`
}

// LoadSeedFile reads a Seed from a JSON file.
func LoadSeedFile(path string) (Seed, error) {
	var seed Seed
	data, err := os.ReadFile(path)
	if err != nil {
		return seed, fmt.Errorf("read seed file: %w", err)
	}
	if err := json.Unmarshal(data, &seed); err != nil {
		return seed, fmt.Errorf("parse seed file: %w", err)
	}
	return seed, nil
}

// SelectLatest picks, per patient, the most recent record observed on the
// calendar day of day (evaluated in loc). Ties on the timestamp go to the
// higher record id.
func SelectLatest[T Observation](records []T, day time.Time, loc *time.Location) map[int64]T {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := day.In(loc).Date()
	out := make(map[int64]T)
	for _, rec := range records {
		pid, at, id := rec.observation()
		ry, rm, rd := at.In(loc).Date()
		if ry != y || rm != m || rd != d {
			continue
		}
		cur, ok := out[pid]
		if !ok {
			out[pid] = rec
			continue
		}
		_, curAt, curID := cur.observation()
		if at.After(curAt) || (at.Equal(curAt) && id > curID) {
			out[pid] = rec
		}
	}
	return out
}

// MemoryStore serves readings from in-process data. It is read-only after
// construction and is used for local runs without Postgres and by tests.
type MemoryStore struct {
	seed Seed
	loc  *time.Location
}

// NewMemoryStore builds a store over seed; calendar days are evaluated in loc.
func NewMemoryStore(seed Seed, loc *time.Location) *MemoryStore {
	if loc == nil {
		loc = time.UTC
	}
	patients := append([]Patient(nil), seed.Patients...)
	sort.SliceStable(patients, func(i, j int) bool { return patients[i].ID < patients[j].ID })
	// first occurrence of a repeated id wins
	unique := patients[:0]
	for _, p := range patients {
		if n := len(unique); n > 0 && unique[n-1].ID == p.ID {
			continue
		}
		unique = append(unique, p)
	}
	seed.Patients = unique
	return &MemoryStore{seed: seed, loc: loc}
}

// Close is a no-op kept for symmetry with Store.
func (m *MemoryStore) Close() {}

// Ping only fails when ctx is done.
func (m *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// ListPatients returns all patients ordered by id.
func (m *MemoryStore) ListPatients(ctx context.Context) ([]Patient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append(make([]Patient, 0, len(m.seed.Patients)), m.seed.Patients...), nil
}

// GetPatient returns one patient or ErrPatientNotFound.
func (m *MemoryStore) GetPatient(ctx context.Context, id int64) (*Patient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, p := range m.seed.Patients {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, ErrPatientNotFound
}

// ReadingsByDate applies the same per-vital selection as the Postgres query.
func (m *MemoryStore) ReadingsByDate(ctx context.Context, day time.Time) ([]risk.PatientReading, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bp := SelectLatest(m.seed.BloodPressure, day, m.loc)
	hr := SelectLatest(m.seed.HeartRate, day, m.loc)
	o2 := SelectLatest(m.seed.Oxygen, day, m.loc)
	gl := SelectLatest(m.seed.Glucose, day, m.loc)

	out := make([]risk.PatientReading, 0, len(m.seed.Patients))
	for _, p := range m.seed.Patients {
		row := readingRow{
			PatientID:   p.ID,
			FirstName:   p.FirstName,
			LastName:    p.LastName,
			Gender:      p.Gender,
			DateOfBirth: p.DateOfBirth,
			ContactInfo: p.ContactInfo,
		}
		if rec, ok := bp[p.ID]; ok {
			date := m.dateOf(rec.ObservedAt)
			row.BPDate, row.Systolic, row.Diastolic = &date, rec.Systolic, rec.Diastolic
		}
		if rec, ok := hr[p.ID]; ok {
			at := rec.ObservedAt
			row.HRTime, row.HR = &at, rec.BPM
		}
		if rec, ok := o2[p.ID]; ok {
			at := rec.ObservedAt
			row.O2Time, row.O2 = &at, rec.Percent
		}
		if rec, ok := gl[p.ID]; ok {
			date := m.dateOf(rec.ObservedAt)
			row.DiabetesDate, row.Glucose, row.A1C = &date, rec.GlucoseMgDL, rec.A1C
		}
		out = append(out, row.toReading(day))
	}
	return out, nil
}

func (m *MemoryStore) dateOf(t time.Time) time.Time {
	y, mo, d := t.In(m.loc).Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, m.loc)
}
