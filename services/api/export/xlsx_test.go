package export

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/02loveslollipop/patient-health-monitor/services/api/analysis"
	"github.com/02loveslollipop/patient-health-monitor/services/api/risk"
)

func f(v float64) *float64 { return &v }

func sampleResult() analysis.Result {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	age := 73
	readings := []risk.PatientReading{
		{
			PatientID: 1, FirstName: "Ada", LastName: "Lovelace", Gender: "Female", Age: &age,
			BloodPressure: &risk.BloodPressure{Systolic: f(185), Diastolic: f(95), RecordDate: day},
			HeartRate:     &risk.HeartRate{BPM: f(70), RecordedAt: day},
			Oxygen:        &risk.OxygenSaturation{Percent: f(85), RecordedAt: day},
			Glucose:       &risk.GlucoseReading{GlucoseMgDL: f(90), A1C: f(5.2), RecordDate: day},
		},
		{
			PatientID: 2, FirstName: "Alan", LastName: "Turing", Gender: "Male",
			HeartRate: &risk.HeartRate{BPM: f(math.NaN()), RecordedAt: day},
		},
	}
	rows := risk.ClassifyAll(readings)
	return analysis.Result{
		RunID:       "run-1",
		Date:        "2024-05-01",
		GeneratedAt: day.Add(8 * time.Hour),
		Rows:        rows,
		Summary:     risk.Summarize(rows),
	}
}

func open(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	wb, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = wb.Close() })
	return wb
}

func TestWorkbookPatientSheet(t *testing.T) {
	data, err := Workbook(sampleResult())
	require.NoError(t, err)

	wb := open(t, data)
	assert.Equal(t, []string{PatientSheet, SummarySheet}, wb.GetSheetList())

	rows, err := wb.GetRows(PatientSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, PatientHeader, rows[0])

	ada := rows[1]
	assert.Equal(t, "Critical", ada[0])
	assert.Equal(t, "1", ada[1])
	assert.Equal(t, "Lovelace", ada[3])
	assert.Equal(t, "73", ada[5])
	assert.Equal(t, "185", ada[6])
	assert.Equal(t, "5.2", ada[11])
	assert.Equal(t, "Crisis", ada[12])
	assert.Equal(t, "Normal", ada[15])

	alan := rows[2]
	assert.Equal(t, "Incomplete Data", alan[0])
	assert.Equal(t, "", alan[5])
	assert.Equal(t, "NaN", alan[8])
	assert.Equal(t, "Error", alan[13])

	critical, err := wb.GetCellStyle(PatientSheet, "A2")
	require.NoError(t, err)
	incomplete, err := wb.GetCellStyle(PatientSheet, "A3")
	require.NoError(t, err)
	assert.NotZero(t, critical)
	assert.NotEqual(t, critical, incomplete)
}

func TestWorkbookSummarySheet(t *testing.T) {
	data, err := Workbook(sampleResult())
	require.NoError(t, err)

	rows, err := open(t, data).GetRows(SummarySheet)
	require.NoError(t, err)

	assert.Equal(t, []string{"Analysis Date", "2024-05-01"}, rows[0])
	assert.Equal(t, []string{"Total Patients", "2"}, rows[3])

	var found bool
	for _, r := range rows {
		if len(r) == 3 && r[0] == "Critical Patients" {
			found = true
			assert.Equal(t, []string{"Critical Patients", "1", "50"}, r)
		}
	}
	assert.True(t, found, "critical metric row missing")
}

func TestWorkbookEmptyResult(t *testing.T) {
	res := analysis.Result{
		Date:       "2024-05-01",
		Rows:       []risk.ClassifiedReading{},
		Summary:    risk.Summarize(nil),
		Diagnostic: &analysis.Diagnostic{Code: analysis.CodeStoreUnavailable, Message: "database down"},
	}
	data, err := Workbook(res)
	require.NoError(t, err)

	wb := open(t, data)
	rows, err := wb.GetRows(PatientSheet)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, PatientHeader, rows[0])

	summary, err := wb.GetRows(SummarySheet)
	require.NoError(t, err)
	assert.Contains(t, summary, []string{"Diagnostic", "database down"})
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "health-report-2024-05-01.xlsx", Filename("2024-05-01"))
}

func TestStatusColoursCoverEveryStatus(t *testing.T) {
	for _, s := range []risk.HealthStatus{
		risk.StatusNormal, risk.StatusAtRisk, risk.StatusHighRisk,
		risk.StatusCritical, risk.StatusIncompleteData, risk.StatusUnknown,
	} {
		assert.Contains(t, StatusColours, s)
	}
}
