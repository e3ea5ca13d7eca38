package db

import (
	"database/sql/driver"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/02loveslollipop/patient-health-monitor/services/api/risk"
)

var readingColumns = []string{
	"patient_id", "first_name", "last_name", "gender", "date_of_birth", "contact_info",
	"record_date", "systolic", "diastolic",
	"record_timestamp", "heart_rate",
	"record_timestamp", "oxygen_level",
	"record_date", "glucose_level", "a1c_level",
}

func queryRows(t *testing.T, values ...[]driver.Value) *sqlmock.Rows {
	t.Helper()
	rows := sqlmock.NewRows(readingColumns)
	for _, v := range values {
		rows.AddRow(v...)
	}
	return rows
}

func TestScanReadings(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	dob := time.Date(1950, 5, 2, 0, 0, 0, 0, time.UTC)
	hrAt := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT p.patient_id`).WillReturnRows(queryRows(t,
		[]driver.Value{int64(1), "Ada", "Lovelace", "Female", dob, "ada@example.com",
			day, 150.0, 85.0, hrAt, 72.0, nil, nil, day, nil, 7.4},
		[]driver.Value{int64(2), "Alan", "Turing", "Male", nil, nil,
			day, 130.0, nil, nil, nil, nil, nil, nil, nil, nil},
		[]driver.Value{int64(1), "Ada", "Lovelace", "Female", dob, "ada@example.com",
			nil, nil, nil, nil, nil, nil, nil, nil, nil, nil},
	))

	rows, err := db.Query(readingsByDateSQL(true), day)
	require.NoError(t, err)
	defer rows.Close()

	got, err := scanReadings(rows, day)
	require.NoError(t, err)
	require.Len(t, got, 2, "duplicate patient rows are dropped")

	ada := got[0]
	assert.Equal(t, int64(1), ada.PatientID)
	require.NotNil(t, ada.Age)
	assert.Equal(t, 73, *ada.Age)
	require.NotNil(t, ada.BloodPressure)
	assert.Equal(t, 150.0, *ada.BloodPressure.Systolic)
	require.NotNil(t, ada.HeartRate)
	assert.Equal(t, hrAt, ada.HeartRate.RecordedAt)
	assert.Nil(t, ada.Oxygen)
	require.NotNil(t, ada.Glucose)
	assert.Nil(t, ada.Glucose.GlucoseMgDL)
	assert.Equal(t, 7.4, *ada.Glucose.A1C)

	alan := got[1]
	assert.Nil(t, alan.Age)
	require.NotNil(t, alan.BloodPressure)
	assert.Nil(t, alan.BloodPressure.Diastolic)
	assert.Nil(t, alan.HeartRate)
	assert.Nil(t, alan.Glucose)

	classified := risk.ClassifyAll(got)
	assert.Equal(t, risk.LabelHighRisk, classified[0].Risks.BloodPressure)
	assert.Equal(t, risk.LabelAtRisk, classified[0].Risks.Diabetes)
	assert.Equal(t, risk.LabelNoData, classified[1].Risks.BloodPressure)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScanReadingsEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT p.patient_id`).WillReturnRows(queryRows(t))

	rows, err := db.Query(readingsByDateSQL(true), time.Now())
	require.NoError(t, err)
	defer rows.Close()

	got, err := scanReadings(rows, time.Now())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestScanReadingsRowError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	rows := queryRows(t, []driver.Value{int64(1), "Ada", "Lovelace", "Female", nil, nil,
		nil, nil, nil, nil, nil, nil, nil, nil, nil, nil}).
		RowError(0, errors.New("connection reset"))
	mock.ExpectQuery(`SELECT p.patient_id`).WillReturnRows(rows)

	r, err := db.Query(readingsByDateSQL(false), day)
	require.NoError(t, err)
	defer r.Close()

	_, err = scanReadings(r, day)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestScanReadingsKeepsMalformedValues(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT p.patient_id`).WillReturnRows(queryRows(t,
		[]driver.Value{int64(5), "Grace", "Hopper", "Female", nil, nil,
			nil, nil, nil, day, math.NaN(), nil, nil, nil, nil, nil},
	))

	rows, err := db.Query(readingsByDateSQL(false), day)
	require.NoError(t, err)
	defer rows.Close()

	got, err := scanReadings(rows, day)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, risk.LabelError, risk.Classify(got[0]).Risks.HeartRate)
}

func TestReadingsByDateSQL(t *testing.T) {
	withA1C := readingsByDateSQL(true)
	assert.Contains(t, withA1C, "a1c_level::double precision AS a1c_level")
	assert.Equal(t, 4, strings.Count(withA1C, "LIMIT 1"))
	assert.Equal(t, 4, strings.Count(withA1C, "LEFT JOIN LATERAL"))
	assert.Contains(t, withA1C, "ORDER BY record_timestamp DESC, record_id DESC")

	withoutA1C := readingsByDateSQL(false)
	assert.Contains(t, withoutA1C, "NULL::double precision AS a1c_level")
	assert.NotContains(t, withoutA1C, "a1c_level::double precision")
}
