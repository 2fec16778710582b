package report_test

import (
	"testing"
	"time"

	"github.com/couchcryptid/bike-rental-report/internal/domain"
	"github.com/couchcryptid/bike-rental-report/internal/report"
	"github.com/stretchr/testify/require"
)

type rawOpt func(*domain.RawRecord)

func withHour(h int) rawOpt { return func(r *domain.RawRecord) { r.Hour = h } }
func withCount(c int) rawOpt { return func(r *domain.RawRecord) { r.Count = c } }
func withYearCode(y int) rawOpt { return func(r *domain.RawRecord) { r.YearCode = y } }
func withMonth(m int) rawOpt { return func(r *domain.RawRecord) { r.Month = m } }
func withSeasonCode(s int) rawOpt { return func(r *domain.RawRecord) { r.SeasonCode = s } }
func withWeatherCode(w int) rawOpt { return func(r *domain.RawRecord) { r.WeatherCode = w } }

func makeRaw(instant int, opts ...rawOpt) domain.RawRecord {
	raw := domain.RawRecord{
		Instant:     instant,
		Date:        time.Date(2011, time.January, 1, 0, 0, 0, 0, time.UTC),
		Hour:        0,
		YearCode:    0,
		Month:       1,
		SeasonCode:  1,
		WeatherCode: 1,
		Temperature: 0.3,
		Humidity:    0.5,
		Count:       1,
	}
	for _, opt := range opts {
		opt(&raw)
	}
	return raw
}

func buildDataset(t *testing.T, raws ...domain.RawRecord) *report.Dataset {
	t.Helper()
	ds, err := report.BuildDataset(raws)
	require.NoError(t, err)
	return ds
}

func instants(ds *report.Dataset) []int {
	out := make([]int, 0, ds.Len())
	ds.Each(func(_ int, rec domain.Record) bool {
		out = append(out, rec.Instant)
		return true
	})
	return out
}

// mixedDataset spans both years, three seasons and three weather situations.
func mixedDataset(t *testing.T) *report.Dataset {
	t.Helper()
	return buildDataset(t,
		makeRaw(1, withYearCode(0), withMonth(1), withSeasonCode(1), withWeatherCode(1), withHour(8), withCount(10)),
		makeRaw(2, withYearCode(1), withMonth(1), withSeasonCode(1), withWeatherCode(2), withHour(13), withCount(40)),
		makeRaw(3, withYearCode(0), withMonth(7), withSeasonCode(3), withWeatherCode(1), withHour(17), withCount(100)),
		makeRaw(4, withYearCode(0), withMonth(1), withSeasonCode(1), withWeatherCode(3), withHour(22), withCount(4)),
		makeRaw(5, withYearCode(1), withMonth(7), withSeasonCode(3), withWeatherCode(1), withHour(18), withCount(200)),
		makeRaw(6, withYearCode(1), withMonth(4), withSeasonCode(2), withWeatherCode(2), withHour(9), withCount(60)),
	)
}
