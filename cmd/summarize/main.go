// Command summarize loads an hourly rental CSV, applies an optional filter,
// and prints the summary tables as JSON. With -check it instead runs the
// aggregation consistency checks and exits non-zero on failure.
//
// Usage:
//
//	go run ./cmd/summarize -data data/hour.csv -year 2012 -season Summer
//	go run ./cmd/summarize -data data/mock/hour_sample.csv -check
//	go run ./cmd/summarize -data data/hour.csv -xlsx summary.xlsx
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/couchcryptid/bike-rental-report/internal/adapter/csvsource"
	"github.com/couchcryptid/bike-rental-report/internal/adapter/xlsx"
	"github.com/couchcryptid/bike-rental-report/internal/domain"
	"github.com/couchcryptid/bike-rental-report/internal/report"
	"github.com/jonboulle/clockwork"
)

type options struct {
	dataPath string
	year     string
	weather  string
	season   string
	describe bool
	check    bool
	xlsxPath string
	at       string
}

func main() {
	var opts options
	flag.StringVar(&opts.dataPath, "data", "data/hour.csv", "path to the hourly rental CSV")
	flag.StringVar(&opts.year, "year", report.AllSentinel, "year filter, e.g. 2011")
	flag.StringVar(&opts.weather, "weather", report.AllSentinel, "weather filter: Clear, Cloudy, LightRain, HeavyRain")
	flag.StringVar(&opts.season, "season", report.AllSentinel, "season filter: Spring, Summer, Fall, Winter")
	flag.BoolVar(&opts.describe, "describe", false, "print descriptive statistics instead of the summary")
	flag.BoolVar(&opts.check, "check", false, "run consistency checks instead of printing")
	flag.StringVar(&opts.xlsxPath, "xlsx", "", "write the summary tables to this Excel workbook instead of stdout")
	flag.StringVar(&opts.at, "at", "", "fixed RFC3339 timestamp for generated_at, for reproducible output")
	flag.Parse()

	os.Exit(run(context.Background(), opts, os.Stdout, os.Stderr))
}

func run(ctx context.Context, opts options, stdout, stderr io.Writer) int {
	if opts.at != "" {
		at, err := time.Parse(time.RFC3339, opts.at)
		if err != nil {
			fmt.Fprintf(stderr, "FATAL: parse -at: %v\n", err)
			return 2
		}
		domain.SetClock(clockwork.NewFakeClockAt(at))
		defer domain.SetClock(nil)
	}

	spec, err := report.ParseFilterSpec(opts.year, opts.weather, opts.season)
	if err != nil {
		fmt.Fprintf(stderr, "FATAL: %v\n", err)
		return 2
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	raws, err := csvsource.NewSource(opts.dataPath, logger).Extract(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "FATAL: %v\n", err)
		return 1
	}
	ds, err := report.BuildDataset(raws)
	if err != nil {
		fmt.Fprintf(stderr, "FATAL: %v\n", err)
		return 1
	}

	if opts.check {
		return reportPhases(stdout, checkDataset(ds))
	}

	if opts.xlsxPath != "" {
		return writeWorkbook(opts.xlsxPath, report.Summarize(ds, spec), stderr)
	}

	var out any
	if opts.describe {
		out = report.Describe(report.Filter(ds, spec))
	} else {
		out = report.Summarize(ds, spec)
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(stderr, "FATAL: encode: %v\n", err)
		return 1
	}
	return 0
}

func writeWorkbook(path string, summary report.Summary, stderr io.Writer) int {
	f, err := os.Create(path)
	if err != nil {
		fmt.Fprintf(stderr, "FATAL: %v\n", err)
		return 1
	}
	return exportWorkbook(f, summary, stderr)
}

// exportWorkbook writes and closes w. A failed close means a truncated file.
func exportWorkbook(w io.WriteCloser, summary report.Summary, stderr io.Writer) int {
	if err := xlsx.WriteSummary(w, summary); err != nil {
		_ = w.Close()
		fmt.Fprintf(stderr, "FATAL: %v\n", err)
		return 1
	}
	if err := w.Close(); err != nil {
		fmt.Fprintf(stderr, "FATAL: close workbook: %v\n", err)
		return 1
	}
	return 0
}

// phase tracks pass/fail for a check phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func reportPhases(w io.Writer, phases []*phase) int {
	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = fmt.Sprintf("FAIL (%d errors)", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-36s %s\n", p.name, status)
	}
	for _, p := range phases {
		for i, e := range p.errors {
			fmt.Fprintf(w, "  %s [%d] %s\n", p.name, i+1, e)
		}
	}
	if allPassed {
		fmt.Fprintln(w, "All checks passed.")
		return 0
	}
	fmt.Fprintln(w, "Checks FAILED.")
	return 1
}

func checkDataset(ds *report.Dataset) []*phase {
	return []*phase{
		checkTimeOfDayConservation(ds),
		checkYearPartition(ds),
		checkFilterIdempotence(ds),
	}
}

// Time-of-day totals must add up to the dataset's total count.
func checkTimeOfDayConservation(ds *report.Dataset) *phase {
	p := &phase{name: "time-of-day totals conserve count"}

	var want int
	ds.Each(func(_ int, rec domain.Record) bool {
		want += rec.Count
		return true
	})

	var got int
	var share float64
	for _, row := range report.ByTimeOfDay(ds) {
		got += row.Total
		share += row.Share
	}
	if got != want {
		p.errorf("sum of buckets = %d, dataset total = %d", got, want)
	}
	if want > 0 && math.Abs(share-100) > 1e-6 {
		p.errorf("shares sum to %.6f, want 100", share)
	}
	return p
}

// Filtering by each distinct year must partition the dataset.
func checkYearPartition(ds *report.Dataset) *phase {
	p := &phase{name: "year filters partition dataset"}

	var total int
	for _, y := range ds.Years() {
		n := report.Filter(ds, report.FilterSpec{Year: &y}).Len()
		if n == 0 {
			p.errorf("year %d listed but matches no records", y)
		}
		total += n
	}
	if total != ds.Len() {
		p.errorf("partition covers %d records, dataset has %d", total, ds.Len())
	}
	return p
}

// Re-applying a filter must not change the result.
func checkFilterIdempotence(ds *report.Dataset) *phase {
	p := &phase{name: "filters are idempotent"}

	for _, w := range ds.Weathers() {
		spec := report.FilterSpec{Weather: &w}
		once := report.Filter(ds, spec)
		twice := report.Filter(once, spec)
		if once.Len() != twice.Len() {
			p.errorf("weather %s: %d records after one pass, %d after two", w, once.Len(), twice.Len())
		}
	}
	return p
}
