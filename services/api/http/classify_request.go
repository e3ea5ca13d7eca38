package http

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/02loveslollipop/patient-health-monitor/services/api/risk"
)

// measurement decodes a vital value leniently: null or missing stays absent,
// numbers and numeric strings are kept, anything else becomes NaN so the
// classifier labels that vital Error without rejecting the reading.
type measurement struct {
	v *float64
}

func (m *measurement) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		m.v = nil
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		m.v = &n
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if n, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			m.v = &n
			return nil
		}
	}

	nan := math.NaN()
	m.v = &nan
	return nil
}

type classifyRequest struct {
	PatientID   int64      `json:"patient_id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Gender      string     `json:"gender"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	Age         *int       `json:"age"`

	BloodPressure *struct {
		Systolic  measurement `json:"systolic"`
		Diastolic measurement `json:"diastolic"`
	} `json:"blood_pressure"`
	HeartRate *struct {
		BPM measurement `json:"bpm"`
	} `json:"heart_rate"`
	Oxygen *struct {
		Percent measurement `json:"percent"`
	} `json:"oxygen"`
	Glucose *struct {
		GlucoseMgDL measurement `json:"glucose_mg_dl"`
		A1C         measurement `json:"a1c"`
	} `json:"glucose"`
}

func (r classifyRequest) reading() risk.PatientReading {
	out := risk.PatientReading{
		PatientID:   r.PatientID,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Gender:      r.Gender,
		DateOfBirth: r.DateOfBirth,
		Age:         r.Age,
	}
	if bp := r.BloodPressure; bp != nil {
		out.BloodPressure = &risk.BloodPressure{Systolic: bp.Systolic.v, Diastolic: bp.Diastolic.v}
	}
	if r.HeartRate != nil {
		out.HeartRate = &risk.HeartRate{BPM: r.HeartRate.BPM.v}
	}
	if r.Oxygen != nil {
		out.Oxygen = &risk.OxygenSaturation{Percent: r.Oxygen.Percent.v}
	}
	if g := r.Glucose; g != nil {
		out.Glucose = &risk.GlucoseReading{GlucoseMgDL: g.GlucoseMgDL.v, A1C: g.A1C.v}
	}
	return out
}
