package risk

import (
	"math"
	"sort"
)

// CountPct is a count together with its share of all analysed patients.
type CountPct struct {
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// NamedCount is one bucket of a distribution.
type NamedCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Summary holds the dashboard aggregates of one analysis.
type Summary struct {
	TotalPatients    int      `json:"total_patients"`
	BPHighRisk       CountPct `json:"bp_high_risk"`
	HRHighRisk       CountPct `json:"hr_high_risk"`
	O2Abnormal       CountPct `json:"o2_abnormal"`
	DiabetesHighRisk CountPct `json:"diabetes_high_risk"`
	Critical         CountPct `json:"critical"`
	IncompleteData   CountPct `json:"incomplete_data"`

	Genders            []NamedCount `json:"genders"`
	AgeGroups          []NamedCount `json:"age_groups"`
	MostCommonAgeGroup *string      `json:"most_common_age_group,omitempty"`

	BPDistribution       []NamedCount `json:"bp_distribution"`
	HRDistribution       []NamedCount `json:"hr_distribution"`
	O2Distribution       []NamedCount `json:"o2_distribution"`
	DiabetesDistribution []NamedCount `json:"diabetes_distribution"`
	StatusDistribution   []NamedCount `json:"status_distribution"`

	AverageGlucose *float64    `json:"average_glucose,omitempty"`
	Correlation    Correlation `json:"correlation"`
}

// Correlation is a symmetric Pearson matrix over Indicators. A nil cell
// means fewer than two complete pairs or a constant series.
type Correlation struct {
	Indicators []string     `json:"indicators"`
	Matrix     [][]*float64 `json:"matrix"`
}

// Indicators lists the correlation matrix inputs in matrix order.
var Indicators = []string{"age", "glucose_level", "heart_rate", "systolic", "diastolic"}

type ageGroup struct {
	name      string
	low, high int // (low, high]
}

var ageGroups = []ageGroup{
	{"0-18", 0, 18},
	{"19-35", 18, 35},
	{"36-50", 35, 50},
	{"51-65", 50, 65},
	{"65+", 65, 100},
}

// Percent returns n as a percentage of total, or 0 when total is 0.
func Percent(n, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

// AgeGroup returns the dashboard bucket for an age, or "" when out of range.
func AgeGroup(age int) string {
	for _, g := range ageGroups {
		if age > g.low && age <= g.high {
			return g.name
		}
	}
	return ""
}

// FilterByGender keeps rows whose gender is listed. An empty list keeps all rows.
func FilterByGender(rows []ClassifiedReading, genders []string) []ClassifiedReading {
	if len(genders) == 0 {
		return rows
	}
	allowed := make(map[string]struct{}, len(genders))
	for _, g := range genders {
		allowed[g] = struct{}{}
	}
	out := make([]ClassifiedReading, 0, len(rows))
	for _, r := range rows {
		if _, ok := allowed[r.Gender]; ok {
			out = append(out, r)
		}
	}
	return out
}

// Summarize computes the dashboard aggregates. It is safe on an empty slice.
func Summarize(rows []ClassifiedReading) Summary {
	total := len(rows)
	s := Summary{TotalPatients: total}

	var bpHigh, hrHigh, o2Abnormal, diabetesHigh, critical, incomplete int
	genders := map[string]int{}
	groups := map[string]int{}
	bp, hr, o2, diabetes, status := map[string]int{}, map[string]int{}, map[string]int{}, map[string]int{}, map[string]int{}

	var glucoseSum float64
	var glucoseN int

	for _, r := range rows {
		if r.Risks.BloodPressure == LabelHighRisk {
			bpHigh++
		}
		if r.Risks.HeartRate == LabelHighRisk {
			hrHigh++
		}
		if r.Risks.Oxygen != LabelNormal {
			o2Abnormal++
		}
		if r.Risks.Diabetes == LabelHighRisk {
			diabetesHigh++
		}
		switch r.HealthStatus {
		case StatusCritical:
			critical++
		case StatusIncompleteData:
			incomplete++
		}

		genders[r.Gender]++
		if r.Age != nil {
			if g := AgeGroup(*r.Age); g != "" {
				groups[g]++
			}
		}
		bp[string(r.Risks.BloodPressure)]++
		hr[string(r.Risks.HeartRate)]++
		o2[string(r.Risks.Oxygen)]++
		diabetes[string(r.Risks.Diabetes)]++
		status[string(r.HealthStatus)]++

		if v := glucose(r.PatientReading); v != nil {
			glucoseSum += *v
			glucoseN++
		}
	}

	s.BPHighRisk = CountPct{bpHigh, Percent(bpHigh, total)}
	s.HRHighRisk = CountPct{hrHigh, Percent(hrHigh, total)}
	s.O2Abnormal = CountPct{o2Abnormal, Percent(o2Abnormal, total)}
	s.DiabetesHighRisk = CountPct{diabetesHigh, Percent(diabetesHigh, total)}
	s.Critical = CountPct{critical, Percent(critical, total)}
	s.IncompleteData = CountPct{incomplete, Percent(incomplete, total)}

	s.Genders = sortedCounts(genders)
	s.AgeGroups = make([]NamedCount, 0, len(ageGroups))
	for _, g := range ageGroups {
		s.AgeGroups = append(s.AgeGroups, NamedCount{Name: g.name, Count: groups[g.name]})
	}
	if top := sortedCounts(groups); len(top) > 0 {
		name := top[0].Name
		s.MostCommonAgeGroup = &name
	}

	s.BPDistribution = sortedCounts(bp)
	s.HRDistribution = sortedCounts(hr)
	s.O2Distribution = sortedCounts(o2)
	s.DiabetesDistribution = sortedCounts(diabetes)
	s.StatusDistribution = sortedCounts(status)

	if glucoseN > 0 {
		avg := glucoseSum / float64(glucoseN)
		s.AverageGlucose = &avg
	}
	s.Correlation = correlate(rows)
	return s
}

// sortedCounts orders buckets by count descending, then by name.
func sortedCounts(m map[string]int) []NamedCount {
	out := make([]NamedCount, 0, len(m))
	for k, v := range m {
		out = append(out, NamedCount{Name: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func glucose(r PatientReading) *float64 {
	if r.Glucose == nil || r.Glucose.GlucoseMgDL == nil || malformed(*r.Glucose.GlucoseMgDL) {
		return nil
	}
	return r.Glucose.GlucoseMgDL
}

// indicatorValues extracts the correlation inputs in Indicators order.
func indicatorValues(r PatientReading) []*float64 {
	vals := make([]*float64, len(Indicators))
	if r.Age != nil {
		age := float64(*r.Age)
		vals[0] = &age
	}
	vals[1] = glucose(r)
	if r.HeartRate != nil {
		vals[2] = finite(r.HeartRate.BPM)
	}
	if r.BloodPressure != nil {
		vals[3] = finite(r.BloodPressure.Systolic)
		vals[4] = finite(r.BloodPressure.Diastolic)
	}
	return vals
}

func finite(v *float64) *float64 {
	if v == nil || malformed(*v) {
		return nil
	}
	return v
}

func correlate(rows []ClassifiedReading) Correlation {
	n := len(Indicators)
	values := make([][]*float64, 0, len(rows))
	for _, r := range rows {
		values = append(values, indicatorValues(r.PatientReading))
	}

	matrix := make([][]*float64, n)
	for i := range matrix {
		matrix[i] = make([]*float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			var xs, ys []float64
			for _, v := range values {
				if v[i] != nil && v[j] != nil {
					xs = append(xs, *v[i])
					ys = append(ys, *v[j])
				}
			}
			if c, ok := pearson(xs, ys); ok {
				matrix[i][j] = &c
				matrix[j][i] = &c
			}
		}
	}
	return Correlation{Indicators: Indicators, Matrix: matrix}
}

// pearson uses pairwise-complete observations.
func pearson(xs, ys []float64) (float64, bool) {
	if len(xs) < 2 {
		return 0, false
	}
	var mx, my float64
	for i := range xs {
		mx += xs[i]
		my += ys[i]
	}
	mx /= float64(len(xs))
	my /= float64(len(ys))

	var cov, vx, vy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return 0, false
	}
	return cov / math.Sqrt(vx*vy), true
}
