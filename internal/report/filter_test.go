package report_test

import (
	"encoding/json"
	"testing"

	"github.com/couchcryptid/bike-rental-report/internal/domain"
	"github.com/couchcryptid/bike-rental-report/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestFilter(t *testing.T) {
	ds := mixedDataset(t)

	tests := []struct {
		name     string
		spec     report.FilterSpec
		expected []int
	}{
		{"by year", report.FilterSpec{Year: ptr(2011)}, []int{1, 3, 4}},
		{"by weather", report.FilterSpec{Weather: ptr(domain.Cloudy)}, []int{2, 6}},
		{"by season", report.FilterSpec{Season: ptr(domain.Fall)}, []int{3, 5}},
		{"conjunction", report.FilterSpec{Year: ptr(2012), Season: ptr(domain.Spring)}, []int{2}},
		{"all three", report.FilterSpec{Year: ptr(2011), Weather: ptr(domain.Clear), Season: ptr(domain.Fall)}, []int{3}},
		{"unknown year", report.FilterSpec{Year: ptr(2020)}, []int{}},
		{"absent label", report.FilterSpec{Weather: ptr(domain.HeavyRain)}, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, instants(report.Filter(ds, tt.spec)))
		})
	}
}

func TestFilter_EmptySpecIsIdentity(t *testing.T) {
	ds := mixedDataset(t)

	out := report.Filter(ds, report.FilterSpec{})
	assert.Same(t, ds, out)
	assert.Equal(t, ds.Records(), out.Records())
}

func TestFilter_Idempotent(t *testing.T) {
	ds := mixedDataset(t)
	spec := report.FilterSpec{Year: ptr(2012), Weather: ptr(domain.Cloudy)}

	once := report.Filter(ds, spec)
	twice := report.Filter(once, spec)

	assert.Equal(t, once.Records(), twice.Records())
}

func TestFilter_DoesNotMutateSource(t *testing.T) {
	ds := mixedDataset(t)
	before := ds.Records()

	_ = report.Filter(ds, report.FilterSpec{Season: ptr(domain.Fall)})

	assert.Equal(t, before, ds.Records())
	assert.Equal(t, []int{2011, 2012}, ds.Years())
}

func TestFilter_YearScenario(t *testing.T) {
	ds := buildDataset(t,
		makeRaw(10, withYearCode(1)),
		makeRaw(11, withYearCode(0)),
		makeRaw(12, withYearCode(1)),
		makeRaw(13, withYearCode(0)),
		makeRaw(14, withYearCode(0)),
	)

	out := report.Filter(ds, report.FilterSpec{Year: ptr(2011)})
	assert.Equal(t, []int{11, 13, 14}, instants(out))
	assert.Equal(t, []int{2011}, out.Years())
}

func TestParseFilterSpec(t *testing.T) {
	t.Run("all sentinels", func(t *testing.T) {
		spec, err := report.ParseFilterSpec("all", "", "ALL")
		require.NoError(t, err)
		assert.True(t, spec.IsEmpty())
	})

	t.Run("every dimension", func(t *testing.T) {
		spec, err := report.ParseFilterSpec("2012", "lightrain", "Winter")
		require.NoError(t, err)
		require.NotNil(t, spec.Year)
		require.NotNil(t, spec.Weather)
		require.NotNil(t, spec.Season)
		assert.Equal(t, 2012, *spec.Year)
		assert.Equal(t, domain.LightRain, *spec.Weather)
		assert.Equal(t, domain.Winter, *spec.Season)
	})

	t.Run("unknown but well-formed year", func(t *testing.T) {
		spec, err := report.ParseFilterSpec("1999", "", "")
		require.NoError(t, err)
		assert.Equal(t, 1999, *spec.Year)
	})

	tests := []struct {
		name                  string
		year, weather, season string
	}{
		{"bad year", "twenty", "", ""},
		{"bad weather", "", "Snow", ""},
		{"bad season", "", "", "Monsoon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := report.ParseFilterSpec(tt.year, tt.weather, tt.season)
			require.Error(t, err)
			assert.ErrorIs(t, err, report.ErrInvalidFilter)
		})
	}
}

func TestFilterSpec_Key(t *testing.T) {
	assert.Equal(t, "year=all|weather=all|season=all", report.FilterSpec{}.Key())
	assert.Equal(t, "year=2011|weather=Cloudy|season=Fall",
		report.FilterSpec{Year: ptr(2011), Weather: ptr(domain.Cloudy), Season: ptr(domain.Fall)}.Key())
}

func TestFilterSpec_JSON(t *testing.T) {
	spec := report.FilterSpec{Year: ptr(2012), Season: ptr(domain.Summer)}

	data, err := json.Marshal(spec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"year":2012,"season":"Summer"}`, string(data))

	var decoded report.FilterSpec
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, spec.Key(), decoded.Key())
}
