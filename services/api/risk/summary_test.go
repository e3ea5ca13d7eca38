package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int { return &v }

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)

	assert.Equal(t, 0, s.TotalPatients)
	assert.Equal(t, CountPct{}, s.BPHighRisk)
	assert.Equal(t, 0.0, s.Critical.Percent)
	assert.Equal(t, 0.0, s.IncompleteData.Percent)
	assert.Nil(t, s.AverageGlucose)
	assert.Nil(t, s.MostCommonAgeGroup)
	assert.Empty(t, s.Genders)
	require.Len(t, s.Correlation.Matrix, len(Indicators))
	for _, row := range s.Correlation.Matrix {
		for _, cell := range row {
			assert.Nil(t, cell)
		}
	}
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0.0, Percent(3, 0))
	assert.Equal(t, 25.0, Percent(1, 4))
}

func TestAgeGroup(t *testing.T) {
	assert.Equal(t, "", AgeGroup(0))
	assert.Equal(t, "0-18", AgeGroup(18))
	assert.Equal(t, "19-35", AgeGroup(19))
	assert.Equal(t, "51-65", AgeGroup(65))
	assert.Equal(t, "65+", AgeGroup(66))
	assert.Equal(t, "", AgeGroup(101))
}

func TestSummarize(t *testing.T) {
	rows := ClassifyAll([]PatientReading{
		{
			PatientID: 1, Gender: "Female", Age: intp(70),
			BloodPressure: bp(f(150), f(95)),
			HeartRate:     &HeartRate{BPM: f(130)},
			Oxygen:        &OxygenSaturation{Percent: f(97)},
			Glucose:       &GlucoseReading{GlucoseMgDL: f(220)},
		},
		{
			PatientID: 2, Gender: "Male", Age: intp(40),
			BloodPressure: bp(f(110), f(70)),
			HeartRate:     &HeartRate{BPM: f(70)},
			Oxygen:        &OxygenSaturation{Percent: f(85)},
			Glucose:       &GlucoseReading{GlucoseMgDL: f(100)},
		},
		{
			PatientID: 3, Gender: "Female", Age: intp(68),
			BloodPressure: bp(f(115), f(75)),
			HeartRate:     &HeartRate{BPM: f(65)},
		},
		{
			PatientID: 4, Gender: "Female", Age: intp(30),
			BloodPressure: bp(f(118), f(76)),
			HeartRate:     &HeartRate{BPM: f(80)},
			Oxygen:        &OxygenSaturation{Percent: f(99)},
			Glucose:       &GlucoseReading{GlucoseMgDL: f(90), A1C: f(5.2)},
		},
	})

	s := Summarize(rows)
	assert.Equal(t, 4, s.TotalPatients)
	assert.Equal(t, CountPct{Count: 1, Percent: 25}, s.BPHighRisk)
	assert.Equal(t, CountPct{Count: 1, Percent: 25}, s.HRHighRisk)
	assert.Equal(t, CountPct{Count: 2, Percent: 50}, s.O2Abnormal)
	assert.Equal(t, CountPct{Count: 1, Percent: 25}, s.DiabetesHighRisk)
	assert.Equal(t, CountPct{Count: 1, Percent: 25}, s.Critical)
	assert.Equal(t, CountPct{Count: 1, Percent: 25}, s.IncompleteData)

	assert.Equal(t, []NamedCount{{"Female", 3}, {"Male", 1}}, s.Genders)
	require.NotNil(t, s.MostCommonAgeGroup)
	assert.Equal(t, "65+", *s.MostCommonAgeGroup)
	assert.Equal(t, []NamedCount{
		{"Critical", 1}, {"High Risk", 1}, {"Incomplete Data", 1}, {"Normal", 1},
	}, s.StatusDistribution)

	require.NotNil(t, s.AverageGlucose)
	assert.InDelta(t, 136.67, *s.AverageGlucose, 0.01)

	sys, dia := 3, 4
	require.NotNil(t, s.Correlation.Matrix[sys][dia])
	assert.InDelta(t, *s.Correlation.Matrix[sys][dia], *s.Correlation.Matrix[dia][sys], 1e-12)
	assert.InDelta(t, 1.0, *s.Correlation.Matrix[sys][sys], 1e-9)
}

func TestFilterByGender(t *testing.T) {
	rows := []ClassifiedReading{
		{PatientReading: PatientReading{PatientID: 1, Gender: "Female"}},
		{PatientReading: PatientReading{PatientID: 2, Gender: "Male"}},
	}

	assert.Len(t, FilterByGender(rows, nil), 2)
	got := FilterByGender(rows, []string{"Male"})
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].PatientID)
	assert.Empty(t, FilterByGender(rows, []string{"Other"}))
}

func TestPearson(t *testing.T) {
	c, ok := pearson([]float64{1, 2, 3}, []float64{2, 4, 6})
	require.True(t, ok)
	assert.InDelta(t, 1.0, c, 1e-12)

	_, ok = pearson([]float64{1, 1, 1}, []float64{2, 4, 6})
	assert.False(t, ok)

	_, ok = pearson([]float64{1}, []float64{2})
	assert.False(t, ok)
}
