package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/couchcryptid/bike-rental-report/internal/domain"
	"github.com/couchcryptid/bike-rental-report/internal/report"
)

const maxPageSize = 1000

// Request outcomes recorded on the Requests metric.
const (
	outcomeOK          = "ok"
	outcomeBadRequest  = "bad_request"
	outcomeNotFound    = "not_found"
	outcomeUnavailable = "unavailable"
)

var errDatasetNotLoaded = errors.New("dataset not loaded")

// RecordsPage is one page of filtered records.
type RecordsPage struct {
	Filter   report.FilterSpec `json:"filter"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
	Pages    int               `json:"pages"`
	Total    int               `json:"total"`
	Records  []domain.Record   `json:"records"`
}

// FilterChoices lists the values each filter dimension accepts.
type FilterChoices struct {
	Sentinel string           `json:"sentinel"`
	Years    []int            `json:"years"`
	Weathers []domain.Weather `json:"weathers"`
	Seasons  []domain.Season  `json:"seasons"`
}

// SummaryTable is a single aggregation table for a filter.
type SummaryTable struct {
	Table   string            `json:"table"`
	Filter  report.FilterSpec `json:"filter"`
	Records int               `json:"records"`
	Rows    any               `json:"rows"`
}

// DescribeResponse holds descriptive statistics for a filtered view.
type DescribeResponse struct {
	Filter  report.FilterSpec    `json:"filter"`
	Records int                  `json:"records"`
	Columns []report.ColumnStats `json:"columns"`
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	const endpoint = "records"

	ds, ok := s.dataset(w, endpoint)
	if !ok {
		return
	}
	spec, ok := s.filterSpec(w, r, endpoint)
	if !ok {
		return
	}

	q := r.URL.Query()
	page, err := positiveParam(q.Get("page"), 1, 0)
	if err != nil {
		s.fail(w, endpoint, http.StatusBadRequest, outcomeBadRequest, fmt.Errorf("page: %w", err))
		return
	}
	size, err := positiveParam(q.Get("page_size"), s.pageSize, maxPageSize)
	if err != nil {
		s.fail(w, endpoint, http.StatusBadRequest, outcomeBadRequest, fmt.Errorf("page_size: %w", err))
		return
	}

	view := report.Filter(ds, spec)
	s.ok(w, endpoint, RecordsPage{
		Filter:   spec,
		Page:     page,
		PageSize: size,
		Pages:    view.PageCount(size),
		Total:    view.Len(),
		Records:  view.Page(size, page),
	})
}

func (s *Server) handleFilters(w http.ResponseWriter, _ *http.Request) {
	const endpoint = "filters"

	ds, ok := s.dataset(w, endpoint)
	if !ok {
		return
	}
	s.ok(w, endpoint, FilterChoices{
		Sentinel: report.AllSentinel,
		Years:    ds.Years(),
		Weathers: ds.Weathers(),
		Seasons:  ds.Seasons(),
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	const endpoint = "summary"

	if _, ok := s.dataset(w, endpoint); !ok {
		return
	}
	spec, ok := s.filterSpec(w, r, endpoint)
	if !ok {
		return
	}
	s.ok(w, endpoint, s.summarizer.Summarize(spec))
}

func (s *Server) handleSummaryTable(w http.ResponseWriter, r *http.Request) {
	const endpoint = "summary_table"

	if _, ok := s.dataset(w, endpoint); !ok {
		return
	}
	spec, ok := s.filterSpec(w, r, endpoint)
	if !ok {
		return
	}

	table := r.PathValue("table")
	summary := s.summarizer.Summarize(spec)

	var rows any
	switch table {
	case "season":
		rows = summary.BySeason
	case "weather":
		rows = summary.ByWeather
	case "time_of_day":
		rows = summary.ByTimeOfDay
	case "year_month":
		rows = summary.ByYearMonth
	default:
		s.fail(w, endpoint, http.StatusNotFound, outcomeNotFound, fmt.Errorf("unknown summary table %q", table))
		return
	}

	s.ok(w, endpoint, SummaryTable{
		Table:   table,
		Filter:  spec,
		Records: summary.Records,
		Rows:    rows,
	})
}

func (s *Server) handleDescribe(w http.ResponseWriter, r *http.Request) {
	const endpoint = "describe"

	ds, ok := s.dataset(w, endpoint)
	if !ok {
		return
	}
	spec, ok := s.filterSpec(w, r, endpoint)
	if !ok {
		return
	}

	start := time.Now()
	view := report.Filter(ds, spec)
	cols := report.Describe(view)
	s.metrics.AggregationDuration.WithLabelValues("describe").Observe(time.Since(start).Seconds())

	s.ok(w, endpoint, DescribeResponse{Filter: spec, Records: view.Len(), Columns: cols})
}

func (s *Server) dataset(w http.ResponseWriter, endpoint string) (*report.Dataset, bool) {
	ds := s.data.Dataset()
	if ds == nil {
		s.fail(w, endpoint, http.StatusServiceUnavailable, outcomeUnavailable, errDatasetNotLoaded)
		return nil, false
	}
	return ds, true
}

func (s *Server) filterSpec(w http.ResponseWriter, r *http.Request, endpoint string) (report.FilterSpec, bool) {
	q := r.URL.Query()
	spec, err := report.ParseFilterSpec(q.Get("year"), q.Get("weather"), q.Get("season"))
	if err != nil {
		s.fail(w, endpoint, http.StatusBadRequest, outcomeBadRequest, err)
		return report.FilterSpec{}, false
	}
	return spec, true
}

func (s *Server) ok(w http.ResponseWriter, endpoint string, v any) {
	s.metrics.Requests.WithLabelValues(endpoint, outcomeOK).Inc()
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) fail(w http.ResponseWriter, endpoint string, status int, outcome string, err error) {
	s.metrics.Requests.WithLabelValues(endpoint, outcome).Inc()
	s.logger.Warn("request rejected", "endpoint", endpoint, "status", status, "error", err)
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// positiveParam parses an optional positive integer query value. A max of 0
// means unbounded.
func positiveParam(raw string, def, maxValue int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || (maxValue > 0 && n > maxValue) {
		if maxValue > 0 {
			return 0, fmt.Errorf("must be an integer between 1 and %d, got %q", maxValue, raw)
		}
		return 0, fmt.Errorf("must be a positive integer, got %q", raw)
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
