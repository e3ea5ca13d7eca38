package db

import (
	"time"

	"github.com/02loveslollipop/patient-health-monitor/services/api/risk"
)

// rowScanner is the subset of pgx.Rows (and *sql.Rows) used for scanning.
type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// readingRow mirrors one result row of the readings query.
type readingRow struct {
	PatientID   int64
	FirstName   string
	LastName    string
	Gender      string
	DateOfBirth *time.Time
	ContactInfo *string

	BPDate    *time.Time
	Systolic  *float64
	Diastolic *float64

	HRTime *time.Time
	HR     *float64

	O2Time *time.Time
	O2     *float64

	DiabetesDate *time.Time
	Glucose      *float64
	A1C          *float64
}

func scanReadings(rows rowScanner, day time.Time) ([]risk.PatientReading, error) {
	out := make([]risk.PatientReading, 0)
	seen := make(map[int64]struct{})
	for rows.Next() {
		var r readingRow
		if err := rows.Scan(
			&r.PatientID,
			&r.FirstName,
			&r.LastName,
			&r.Gender,
			&r.DateOfBirth,
			&r.ContactInfo,
			&r.BPDate,
			&r.Systolic,
			&r.Diastolic,
			&r.HRTime,
			&r.HR,
			&r.O2Time,
			&r.O2,
			&r.DiabetesDate,
			&r.Glucose,
			&r.A1C,
		); err != nil {
			return nil, err
		}
		if _, dup := seen[r.PatientID]; dup {
			continue
		}
		seen[r.PatientID] = struct{}{}
		out = append(out, r.toReading(day))
	}
	return out, rows.Err()
}

// toReading keeps a vital only when its observation row exists (the
// lateral join returned a date or timestamp for it).
func (r readingRow) toReading(day time.Time) risk.PatientReading {
	reading := risk.PatientReading{
		PatientID:   r.PatientID,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Gender:      r.Gender,
		DateOfBirth: r.DateOfBirth,
		ContactInfo: r.ContactInfo,
	}
	if r.DateOfBirth != nil {
		age := risk.AgeAt(*r.DateOfBirth, day)
		reading.Age = &age
	}
	if r.BPDate != nil {
		reading.BloodPressure = &risk.BloodPressure{Systolic: r.Systolic, Diastolic: r.Diastolic, RecordDate: *r.BPDate}
	}
	if r.HRTime != nil {
		reading.HeartRate = &risk.HeartRate{BPM: r.HR, RecordedAt: *r.HRTime}
	}
	if r.O2Time != nil {
		reading.Oxygen = &risk.OxygenSaturation{Percent: r.O2, RecordedAt: *r.O2Time}
	}
	if r.DiabetesDate != nil {
		reading.Glucose = &risk.GlucoseReading{GlucoseMgDL: r.Glucose, A1C: r.A1C, RecordDate: *r.DiabetesDate}
	}
	return reading
}
