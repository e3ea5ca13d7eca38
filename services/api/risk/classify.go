// Package risk classifies patient vital signs into per-vital risk labels
// and an aggregate health status. Everything here is pure: no I/O and no
// shared state, so rows may be classified in any order or in parallel.
package risk

import "math"

// Classify derives the four vital labels and the health status of a reading.
func Classify(reading PatientReading) ClassifiedReading {
	risks := Risks{
		BloodPressure: ClassifyBloodPressure(reading.BloodPressure),
		HeartRate:     ClassifyHeartRate(reading.HeartRate),
		Oxygen:        ClassifyOxygen(reading.Oxygen),
		Diabetes:      ClassifyDiabetes(reading.Glucose),
	}
	return ClassifiedReading{
		PatientReading: reading,
		Risks:          risks,
		HealthStatus:   Status(risks.Labels()...),
	}
}

// ClassifyAll classifies every row independently. Output order matches input.
func ClassifyAll(readings []PatientReading) []ClassifiedReading {
	out := make([]ClassifiedReading, 0, len(readings))
	for _, r := range readings {
		out = append(out, Classify(r))
	}
	return out
}

// ClassifyBloodPressure applies the hypertension staging thresholds.
// Either threshold crossing is enough ("or", not "and").
func ClassifyBloodPressure(bp *BloodPressure) Label {
	if bp == nil || bp.Systolic == nil || bp.Diastolic == nil {
		return LabelNoData
	}
	sys, dia := *bp.Systolic, *bp.Diastolic
	if malformed(sys) || malformed(dia) {
		return LabelError
	}
	switch {
	case sys >= 180 || dia >= 120:
		return LabelCrisis
	case sys >= 140 || dia >= 90:
		return LabelHighRisk
	case sys >= 120 || dia >= 80:
		return LabelElevated
	default:
		return LabelNormal
	}
}

// ClassifyHeartRate treats 60 and 120 bpm as Normal.
func ClassifyHeartRate(hr *HeartRate) Label {
	if hr == nil || hr.BPM == nil {
		return LabelNoData
	}
	bpm := *hr.BPM
	if malformed(bpm) {
		return LabelError
	}
	switch {
	case bpm > 120:
		return LabelHighRisk
	case bpm < 60:
		return LabelLowRisk
	default:
		return LabelNormal
	}
}

// ClassifyOxygen labels SpO2 below 90 as Critical and below 95 as At Risk.
func ClassifyOxygen(o2 *OxygenSaturation) Label {
	if o2 == nil || o2.Percent == nil {
		return LabelNoData
	}
	pct := *o2.Percent
	if malformed(pct) || pct > 100 {
		return LabelError
	}
	switch {
	case pct < 90:
		return LabelCritical
	case pct < 95:
		return LabelAtRisk
	default:
		return LabelNormal
	}
}

// ClassifyDiabetes combines glucose and A1C by taking the worse of the
// sub-risks that are present. A missing signal never downgrades the other.
func ClassifyDiabetes(g *GlucoseReading) Label {
	if g == nil || (g.GlucoseMgDL == nil && g.A1C == nil) {
		return LabelNoData
	}

	combined := LabelNormal
	if g.A1C != nil {
		a1c := *g.A1C
		if malformed(a1c) {
			return LabelError
		}
		combined = worse(combined, thresholdLabel(a1c, 8, 7))
	}
	if g.GlucoseMgDL != nil {
		glucose := *g.GlucoseMgDL
		if malformed(glucose) {
			return LabelError
		}
		combined = worse(combined, thresholdLabel(glucose, 200, 140))
	}
	return combined
}

// Status aggregates per-vital labels. The result does not depend on label order.
//
// Only Critical, High Risk, At Risk and Elevated escalate the status. Error
// counts as missing data. Crisis and Low Risk have no rule of their own: they
// land in Incomplete Data when a vital is missing and in Unknown otherwise.
func Status(labels ...Label) HealthStatus {
	var critical, high, atRisk, incomplete bool
	normal := 0
	for _, l := range labels {
		switch l {
		case LabelCritical:
			critical = true
		case LabelHighRisk:
			high = true
		case LabelAtRisk, LabelElevated:
			atRisk = true
		case LabelNormal:
			normal++
		case LabelNoData, LabelError:
			incomplete = true
		}
	}

	switch {
	case critical:
		return StatusCritical
	case high:
		return StatusHighRisk
	case atRisk:
		return StatusAtRisk
	case len(labels) > 0 && normal == len(labels):
		return StatusNormal
	case incomplete:
		return StatusIncompleteData
	default:
		return StatusUnknown
	}
}

func thresholdLabel(v, high, atRisk float64) Label {
	switch {
	case v > high:
		return LabelHighRisk
	case v > atRisk:
		return LabelAtRisk
	default:
		return LabelNormal
	}
}

var diabetesRank = map[Label]int{
	LabelNormal:   0,
	LabelAtRisk:   1,
	LabelHighRisk: 2,
}

func worse(a, b Label) Label {
	if diabetesRank[b] > diabetesRank[a] {
		return b
	}
	return a
}

// malformed rejects values no instrument can produce.
func malformed(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0) || v < 0
}
