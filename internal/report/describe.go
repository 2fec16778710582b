package report

import (
	"math"
	"sort"

	"github.com/couchcryptid/bike-rental-report/internal/domain"
)

// ColumnStats are descriptive statistics of one numeric column. Std is the
// sample standard deviation and quartiles use linear interpolation.
type ColumnStats struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	P25    float64 `json:"p25"`
	P50    float64 `json:"p50"`
	P75    float64 `json:"p75"`
	Max    float64 `json:"max"`
}

var describedColumns = []struct {
	name  string
	value func(domain.Record) float64
}{
	{"count", func(r domain.Record) float64 { return float64(r.Count) }},
	{"casual", func(r domain.Record) float64 { return float64(r.Casual) }},
	{"registered", func(r domain.Record) float64 { return float64(r.Registered) }},
	{"temperature", func(r domain.Record) float64 { return r.Temperature }},
	{"humidity", func(r domain.Record) float64 { return r.Humidity }},
	{"wind_speed", func(r domain.Record) float64 { return r.WindSpeed }},
}

// Describe returns descriptive statistics for the numeric columns of ds. An
// empty dataset yields an empty result.
func Describe(ds *Dataset) []ColumnStats {
	if ds.Len() == 0 {
		return []ColumnStats{}
	}

	out := make([]ColumnStats, 0, len(describedColumns))
	values := make([]float64, ds.Len())
	for _, col := range describedColumns {
		for i := range ds.records {
			values[i] = col.value(ds.records[i])
		}
		out = append(out, describe(col.name, values))
	}
	return out
}

func describe(name string, values []float64) ColumnStats {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(len(sorted))

	var std float64
	if len(sorted) > 1 {
		var sq float64
		for _, v := range sorted {
			sq += (v - mean) * (v - mean)
		}
		std = math.Sqrt(sq / float64(len(sorted)-1))
	}

	return ColumnStats{
		Column: name,
		Count:  len(sorted),
		Mean:   mean,
		Std:    std,
		Min:    sorted[0],
		P25:    quantile(sorted, 0.25),
		P50:    quantile(sorted, 0.5),
		P75:    quantile(sorted, 0.75),
		Max:    sorted[len(sorted)-1],
	}
}

// quantile expects sorted input.
func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
