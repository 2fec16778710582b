package httpadapter_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/couchcryptid/bike-rental-report/internal/adapter/httpadapter"
	"github.com/couchcryptid/bike-rental-report/internal/domain"
	"github.com/couchcryptid/bike-rental-report/internal/observability"
	"github.com/couchcryptid/bike-rental-report/internal/report"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type staticData struct {
	ds *report.Dataset
}

func (s staticData) Dataset() *report.Dataset { return s.ds }

func testDataset(t *testing.T) *report.Dataset {
	t.Helper()
	raws := []domain.RawRecord{
		{Instant: 1, YearCode: 0, Month: 1, SeasonCode: 1, WeatherCode: 1, Hour: 8, Count: 10},
		{Instant: 2, YearCode: 1, Month: 1, SeasonCode: 1, WeatherCode: 2, Hour: 13, Count: 40},
		{Instant: 3, YearCode: 0, Month: 7, SeasonCode: 3, WeatherCode: 1, Hour: 17, Count: 100},
		{Instant: 4, YearCode: 0, Month: 1, SeasonCode: 1, WeatherCode: 3, Hour: 22, Count: 4},
		{Instant: 5, YearCode: 1, Month: 7, SeasonCode: 3, WeatherCode: 1, Hour: 18, Count: 200},
		{Instant: 6, YearCode: 1, Month: 4, SeasonCode: 2, WeatherCode: 2, Hour: 9, Count: 60},
	}
	ds, err := report.BuildDataset(raws)
	require.NoError(t, err)
	return ds
}

func newTestServer(t *testing.T, ds *report.Dataset, readyErr error) (*httpadapter.Server, *observability.Metrics) {
	t.Helper()
	metrics := observability.NewMetricsForTesting()
	srv := httpadapter.NewServer(httpadapter.Options{
		Addr:       ":0",
		Ready:      &mockReadiness{err: readyErr},
		Data:       staticData{ds: ds},
		Summarizer: report.NewSummarizer(ds),
		PageSize:   10,
		Metrics:    metrics,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return srv, metrics
}

func get(t *testing.T, srv http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealthzReturns200(t *testing.T) {
	srv, _ := newTestServer(t, testDataset(t), nil)
	rec := get(t, srv, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyz(t *testing.T) {
	srv, _ := newTestServer(t, testDataset(t), nil)
	assert.Equal(t, http.StatusOK, get(t, srv, "/readyz").Code)

	notReady, _ := newTestServer(t, testDataset(t), errors.New("dataset has not been loaded yet"))
	assert.Equal(t, http.StatusServiceUnavailable, get(t, notReady, "/readyz").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, testDataset(t), nil)
	rec := get(t, srv, "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestRecords_FilterAndPaginate(t *testing.T) {
	srv, metrics := newTestServer(t, testDataset(t), nil)
	rec := get(t, srv, "/api/records?year=2012&page_size=2")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	page := decode[httpadapter.RecordsPage](t, rec)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 2, page.PageSize)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.Pages)
	require.Len(t, page.Records, 2)
	assert.Equal(t, 2012, page.Records[0].Year)
	assert.Equal(t, 40, page.Records[0].Count)
	assert.Equal(t, 200, page.Records[1].Count)

	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Requests.WithLabelValues("records", "ok")), 0)
}

func TestRecords_SecondPage(t *testing.T) {
	srv, _ := newTestServer(t, testDataset(t), nil)
	page := decode[httpadapter.RecordsPage](t, get(t, srv, "/api/records?year=2012&page_size=2&page=2"))

	require.Len(t, page.Records, 1)
	assert.Equal(t, 60, page.Records[0].Count)
}

func TestRecords_AllSentinelIsIdentity(t *testing.T) {
	srv, _ := newTestServer(t, testDataset(t), nil)
	page := decode[httpadapter.RecordsPage](t, get(t, srv, "/api/records?year=all&weather=all&season=all"))

	assert.Equal(t, 6, page.Total)
	assert.Len(t, page.Records, 6)
}

func TestRecords_HugePageIsEmpty(t *testing.T) {
	srv, _ := newTestServer(t, testDataset(t), nil)
	rec := get(t, srv, "/api/records?page=4611686018427387905&page_size=4")

	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[httpadapter.RecordsPage](t, rec)
	assert.Equal(t, 6, page.Total)
	assert.Empty(t, page.Records)
}

func TestRecords_UnknownYearIsEmpty(t *testing.T) {
	srv, _ := newTestServer(t, testDataset(t), nil)
	rec := get(t, srv, "/api/records?year=1999")

	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[httpadapter.RecordsPage](t, rec)
	assert.Equal(t, 0, page.Total)
	assert.NotNil(t, page.Records)
	assert.Empty(t, page.Records)
}

func TestRecords_BadRequests(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"unknown weather", "/api/records?weather=Sunny"},
		{"unknown season", "/api/records?season=Monsoon"},
		{"malformed year", "/api/records?year=twenty"},
		{"zero page", "/api/records?page=0"},
		{"oversized page", "/api/records?page_size=5000"},
		{"non-numeric page size", "/api/records?page_size=ten"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, metrics := newTestServer(t, testDataset(t), nil)
			rec := get(t, srv, tt.target)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			body := decode[map[string]string](t, rec)
			assert.NotEmpty(t, body["error"])
			assert.InDelta(t, 1, testutil.ToFloat64(metrics.Requests.WithLabelValues("records", "bad_request")), 0)
		})
	}
}

func TestFilters(t *testing.T) {
	srv, _ := newTestServer(t, testDataset(t), nil)
	rec := get(t, srv, "/api/filters")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"sentinel": "all",
		"years": [2011, 2012],
		"weathers": ["Clear", "Cloudy", "LightRain"],
		"seasons": ["Spring", "Summer", "Fall"]
	}`, rec.Body.String())
}

func TestSummary(t *testing.T) {
	srv, _ := newTestServer(t, testDataset(t), nil)
	rec := get(t, srv, "/api/summary?season=Fall")

	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[report.Summary](t, rec)
	assert.Equal(t, 2, summary.Records)
	require.NotNil(t, summary.Filter.Season)
	assert.Equal(t, domain.Fall, *summary.Filter.Season)
	require.Len(t, summary.BySeason, 1)
	assert.Equal(t, "Fall", summary.BySeason[0].Label)
	assert.InDelta(t, 150, summary.BySeason[0].Mean, 1e-9)
}

func TestSummaryTable_TimeOfDay(t *testing.T) {
	srv, _ := newTestServer(t, testDataset(t), nil)
	rec := get(t, srv, "/api/summary/time_of_day?year=2011")

	require.Equal(t, http.StatusOK, rec.Code)

	var table struct {
		Table   string                  `json:"table"`
		Records int                     `json:"records"`
		Rows    []report.TimeOfDayTotal `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &table))

	assert.Equal(t, "time_of_day", table.Table)
	assert.Equal(t, 3, table.Records)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, "Morning", table.Rows[0].Label)
	assert.Equal(t, 10, table.Rows[0].Total)
	assert.Equal(t, "Evening", table.Rows[1].Label)
	assert.Equal(t, 100, table.Rows[1].Total)
	assert.Equal(t, "Night", table.Rows[2].Label)
	assert.Equal(t, 4, table.Rows[2].Total)
}

func TestSummaryTable_YearMonthOrdering(t *testing.T) {
	srv, _ := newTestServer(t, testDataset(t), nil)
	rec := get(t, srv, "/api/summary/year_month")

	var table struct {
		Rows []report.MonthlyMean `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &table))

	got := make([][2]int, 0, len(table.Rows))
	for _, row := range table.Rows {
		got = append(got, [2]int{row.Year, row.Month})
	}
	assert.Equal(t, [][2]int{{2011, 1}, {2011, 7}, {2012, 1}, {2012, 4}, {2012, 7}}, got)
}

func TestSummaryTable_Unknown(t *testing.T) {
	srv, metrics := newTestServer(t, testDataset(t), nil)
	rec := get(t, srv, "/api/summary/hourly")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Requests.WithLabelValues("summary_table", "not_found")), 0)
}

func TestDescribe(t *testing.T) {
	srv, _ := newTestServer(t, testDataset(t), nil)
	rec := get(t, srv, "/api/describe")

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[httpadapter.DescribeResponse](t, rec)
	assert.Equal(t, 6, resp.Records)
	require.NotEmpty(t, resp.Columns)
	assert.Equal(t, "count", resp.Columns[0].Column)
	assert.InDelta(t, 69, resp.Columns[0].Mean, 1e-9)
}

func TestDatasetNotLoaded(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	srv := httpadapter.NewServer(httpadapter.Options{
		Addr:       ":0",
		Ready:      &mockReadiness{},
		Data:       staticData{},
		Summarizer: report.NewSummarizer(report.NewDataset(nil)),
		PageSize:   10,
		Metrics:    metrics,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	for _, target := range []string{"/api/records", "/api/filters", "/api/summary", "/api/describe"} {
		rec := get(t, srv, target)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, target)
	}
}

func TestRateLimit(t *testing.T) {
	ds := testDataset(t)
	metrics := observability.NewMetricsForTesting()
	srv := httpadapter.NewServer(httpadapter.Options{
		Addr:           ":0",
		Ready:          &mockReadiness{},
		Data:           staticData{ds: ds},
		Summarizer:     report.NewSummarizer(ds),
		PageSize:       10,
		Metrics:        metrics,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		RateLimitRPS:   0.001,
		RateLimitBurst: 2,
	})

	assert.Equal(t, http.StatusOK, get(t, srv, "/api/filters").Code)
	assert.Equal(t, http.StatusOK, get(t, srv, "/api/filters").Code)

	rec := get(t, srv, "/api/filters")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Requests.WithLabelValues("api", "rate_limited")), 0)

	// Operational routes are never limited.
	assert.Equal(t, http.StatusOK, get(t, srv, "/healthz").Code)
}
