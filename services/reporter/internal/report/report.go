// Package report turns a fetched analysis into files and log lines.
package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/02loveslollipop/patient-health-monitor/services/api/analysis"
	"github.com/02loveslollipop/patient-health-monitor/services/api/export"
	"github.com/02loveslollipop/patient-health-monitor/services/api/risk"
)

// WriteWorkbook renders res into dir and returns the written path.
func WriteWorkbook(res analysis.Result, dir string) (string, error) {
	data, err := export.Workbook(res)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, export.Filename(res.Date))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

// PatientLine summarizes one classified row for dry-run logging.
func PatientLine(r risk.ClassifiedReading) string {
	var sys, dia, hr, o2, glucose, a1c *float64
	if bp := r.BloodPressure; bp != nil {
		sys, dia = bp.Systolic, bp.Diastolic
	}
	if r.HeartRate != nil {
		hr = r.HeartRate.BPM
	}
	if r.Oxygen != nil {
		o2 = r.Oxygen.Percent
	}
	if g := r.Glucose; g != nil {
		glucose, a1c = g.GlucoseMgDL, g.A1C
	}
	return fmt.Sprintf("patient=%d name=%q status=%q bp=%s/%s (%s) hr=%s (%s) o2=%s (%s) glucose=%s a1c=%s (%s)",
		r.PatientID, r.FirstName+" "+r.LastName, r.HealthStatus,
		ValuePtrString(sys), ValuePtrString(dia), r.Risks.BloodPressure,
		ValuePtrString(hr), r.Risks.HeartRate,
		ValuePtrString(o2), r.Risks.Oxygen,
		ValuePtrString(glucose), ValuePtrString(a1c), r.Risks.Diabetes,
	)
}

// ValuePtrString prints pointer values for logging.
func ValuePtrString(v *float64) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%.1f", *v)
}
