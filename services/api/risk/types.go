package risk

import (
	"math"
	"time"
)

// Label is the per-vital risk category.
type Label string

const (
	LabelNormal   Label = "Normal"
	LabelElevated Label = "Elevated"
	LabelAtRisk   Label = "At Risk"
	LabelHighRisk Label = "High Risk"
	LabelCrisis   Label = "Crisis"
	LabelCritical Label = "Critical"
	LabelLowRisk  Label = "Low Risk"
	LabelNoData   Label = "No Data"
	LabelError    Label = "Error"
)

// HealthStatus is the aggregate label over all four vitals of a patient.
type HealthStatus string

const (
	StatusNormal         HealthStatus = "Normal"
	StatusAtRisk         HealthStatus = "At Risk"
	StatusHighRisk       HealthStatus = "High Risk"
	StatusCritical       HealthStatus = "Critical"
	StatusIncompleteData HealthStatus = "Incomplete Data"
	StatusUnknown        HealthStatus = "Unknown"
)

// BloodPressure is the selected same-day blood pressure observation.
// Both values are required for classification.
type BloodPressure struct {
	Systolic   *float64  `json:"systolic"`
	Diastolic  *float64  `json:"diastolic"`
	RecordDate time.Time `json:"record_date"`
}

// HeartRate is the selected same-day heart rate observation.
type HeartRate struct {
	BPM        *float64  `json:"bpm"`
	RecordedAt time.Time `json:"recorded_at"`
}

// OxygenSaturation is the selected same-day SpO2 observation in percent.
type OxygenSaturation struct {
	Percent    *float64  `json:"percent"`
	RecordedAt time.Time `json:"recorded_at"`
}

// GlucoseReading holds the diabetes signals of a day. Either value may be
// missing independently.
type GlucoseReading struct {
	GlucoseMgDL *float64  `json:"glucose_mg_dl"`
	A1C         *float64  `json:"a1c"`
	RecordDate  time.Time `json:"record_date"`
}

// PatientReading is one patient's row for an analysis date. A nil vital
// means no observation exists for that day.
type PatientReading struct {
	PatientID   int64      `json:"patient_id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Gender      string     `json:"gender"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Age         *int       `json:"age,omitempty"`
	ContactInfo *string    `json:"contact_info,omitempty"`

	BloodPressure *BloodPressure    `json:"blood_pressure,omitempty"`
	HeartRate     *HeartRate        `json:"heart_rate,omitempty"`
	Oxygen        *OxygenSaturation `json:"oxygen,omitempty"`
	Glucose       *GlucoseReading   `json:"glucose,omitempty"`
}

// Risks carries the four per-vital labels.
type Risks struct {
	BloodPressure Label `json:"bp_risk"`
	HeartRate     Label `json:"hr_risk"`
	Oxygen        Label `json:"o2_risk"`
	Diabetes      Label `json:"diabetes_risk"`
}

// Labels returns the per-vital labels in a fixed order.
func (r Risks) Labels() []Label {
	return []Label{r.BloodPressure, r.HeartRate, r.Oxygen, r.Diabetes}
}

// ClassifiedReading is a PatientReading plus its derived labels.
type ClassifiedReading struct {
	PatientReading
	Risks        Risks        `json:"risks"`
	HealthStatus HealthStatus `json:"health_status"`
}

// AgeAt returns completed years between dob and day.
func AgeAt(dob, day time.Time) int {
	years := day.Year() - dob.Year()
	if day.Month() < dob.Month() || (day.Month() == dob.Month() && day.Day() < dob.Day()) {
		years--
	}
	return years
}

// ClearNonFinite nulls NaN and infinite measurements. Call it after
// classification so the Error labels are kept while the row stays
// JSON-encodable.
func (r *PatientReading) ClearNonFinite() {
	fields := make([]**float64, 0, 6)
	if bp := r.BloodPressure; bp != nil {
		fields = append(fields, &bp.Systolic, &bp.Diastolic)
	}
	if r.HeartRate != nil {
		fields = append(fields, &r.HeartRate.BPM)
	}
	if r.Oxygen != nil {
		fields = append(fields, &r.Oxygen.Percent)
	}
	if g := r.Glucose; g != nil {
		fields = append(fields, &g.GlucoseMgDL, &g.A1C)
	}
	for _, f := range fields {
		if v := *f; v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
			*f = nil
		}
	}
}
