// Package export renders analysis results as Excel workbooks.
package export

import (
	"fmt"
	"math"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/02loveslollipop/patient-health-monitor/services/api/analysis"
	"github.com/02loveslollipop/patient-health-monitor/services/api/risk"
)

// Sheet names.
const (
	PatientSheet = "Patient Health"
	SummarySheet = "Summary"
)

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// PatientHeader is the column layout of the patient sheet.
var PatientHeader = []string{
	"Health Status",
	"Patient ID",
	"First Name",
	"Last Name",
	"Gender",
	"Age",
	"Systolic",
	"Diastolic",
	"Heart Rate",
	"Oxygen Level",
	"Glucose Level",
	"A1C Level",
	"BP Risk",
	"HR Risk",
	"O2 Risk",
	"Diabetes Risk",
}

var patientColumnWidths = []float64{16, 11, 16, 16, 10, 7, 10, 10, 11, 13, 14, 11, 12, 12, 12, 14}

type statusColour struct {
	fill, font string
}

// StatusColours maps each health status to its cell fill and font colour.
var StatusColours = map[risk.HealthStatus]statusColour{
	risk.StatusNormal:         {"#28A745", "#FFFFFF"},
	risk.StatusAtRisk:         {"#FFC107", "#000000"},
	risk.StatusHighRisk:       {"#DC3545", "#FFFFFF"},
	risk.StatusCritical:       {"#721C24", "#FFFFFF"},
	risk.StatusIncompleteData: {"#6C757D", "#FFFFFF"},
	risk.StatusUnknown:        {"#17A2B8", "#FFFFFF"},
}

// Filename returns the download name for an analysis date.
func Filename(date string) string {
	return fmt.Sprintf("health-report-%s.xlsx", date)
}

// Workbook builds the two-sheet report. An empty result still yields a
// workbook with headers.
func Workbook(res analysis.Result) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(PatientSheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	statusStyles := make(map[risk.HealthStatus]int, len(StatusColours))
	for status, c := range StatusColours {
		id, err := f.NewStyle(&excelize.Style{
			Font:      &excelize.Font{Bold: true, Color: c.font},
			Fill:      excelize.Fill{Type: "pattern", Color: []string{c.fill}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "center"},
		})
		if err != nil {
			return nil, fmt.Errorf("create status style: %w", err)
		}
		statusStyles[status] = id
	}

	if err := writeRow(f, PatientSheet, 1, toAny(PatientHeader), headerStyle); err != nil {
		return nil, err
	}
	for i, width := range patientColumnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(PatientSheet, col, col, width); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}
	if err := f.SetPanes(PatientSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("freeze header: %w", err)
	}

	for i, r := range res.Rows {
		rowNum := i + 2
		if err := writeRow(f, PatientSheet, rowNum, patientValues(r), 0); err != nil {
			return nil, err
		}
		style, ok := statusStyles[r.HealthStatus]
		if !ok {
			style = statusStyles[risk.StatusUnknown]
		}
		cell, _ := excelize.CoordinatesToCellName(1, rowNum)
		if err := f.SetCellStyle(PatientSheet, cell, cell, style); err != nil {
			return nil, fmt.Errorf("set status style: %w", err)
		}
	}

	if err := writeSummary(f, res, headerStyle); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSummary(f *excelize.File, res analysis.Result, headerStyle int) error {
	s := res.Summary
	meta := [][]any{
		{"Analysis Date", res.Date},
		{"Run ID", res.RunID},
		{"Generated At", res.GeneratedAt.UTC().Format(time.RFC3339)},
		{"Total Patients", s.TotalPatients},
	}
	if s.MostCommonAgeGroup != nil {
		meta = append(meta, []any{"Most Common Age Group", *s.MostCommonAgeGroup})
	}
	if s.AverageGlucose != nil {
		meta = append(meta, []any{"Average Glucose", round1(*s.AverageGlucose)})
	}
	if res.Diagnostic != nil {
		meta = append(meta, []any{"Diagnostic", res.Diagnostic.Message})
	}

	row := 1
	for _, m := range meta {
		if err := writeRow(f, SummarySheet, row, m, 0); err != nil {
			return err
		}
		row++
	}
	row++

	if err := writeRow(f, SummarySheet, row, []any{"Metric", "Count", "Percent"}, headerStyle); err != nil {
		return err
	}
	row++
	metrics := []struct {
		name string
		v    risk.CountPct
	}{
		{"High Risk Blood Pressure", s.BPHighRisk},
		{"High Risk Heart Rate", s.HRHighRisk},
		{"Abnormal Oxygen Level", s.O2Abnormal},
		{"High Risk Diabetes", s.DiabetesHighRisk},
		{"Critical Patients", s.Critical},
		{"Incomplete Data", s.IncompleteData},
	}
	for _, m := range metrics {
		if err := writeRow(f, SummarySheet, row, []any{m.name, m.v.Count, round1(m.v.Percent)}, 0); err != nil {
			return err
		}
		row++
	}
	row++

	if err := writeRow(f, SummarySheet, row, []any{"Health Status", "Patients"}, headerStyle); err != nil {
		return err
	}
	row++
	for _, c := range s.StatusDistribution {
		if err := writeRow(f, SummarySheet, row, []any{c.Name, c.Count}, 0); err != nil {
			return err
		}
		row++
	}

	return f.SetColWidth(SummarySheet, "A", "A", 26)
}

func patientValues(r risk.ClassifiedReading) []any {
	vals := []any{
		string(r.HealthStatus),
		r.PatientID,
		r.FirstName,
		r.LastName,
		r.Gender,
		intValue(r.Age),
		nil, nil, nil, nil, nil, nil,
		string(r.Risks.BloodPressure),
		string(r.Risks.HeartRate),
		string(r.Risks.Oxygen),
		string(r.Risks.Diabetes),
	}
	if bp := r.BloodPressure; bp != nil {
		vals[6], vals[7] = floatValue(bp.Systolic), floatValue(bp.Diastolic)
	}
	if r.HeartRate != nil {
		vals[8] = floatValue(r.HeartRate.BPM)
	}
	if r.Oxygen != nil {
		vals[9] = floatValue(r.Oxygen.Percent)
	}
	if g := r.Glucose; g != nil {
		vals[10], vals[11] = floatValue(g.GlucoseMgDL), floatValue(g.A1C)
	}
	return vals
}

func writeRow(f *excelize.File, sheet string, row int, values []any, style int) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if v != nil {
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
		if style != 0 {
			if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
				return fmt.Errorf("set cell style %s: %w", cell, err)
			}
		}
	}
	return nil
}

// floatValue leaves non-finite values as text so the sheet stays readable.
func floatValue(v *float64) any {
	if v == nil {
		return nil
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		return fmt.Sprint(*v)
	}
	return *v
}

func intValue(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
