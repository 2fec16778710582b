package csvsource

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/bike-rental-report/internal/domain"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

const dateLayout = "2006-01-02"

// requiredColumns must be present in every source file.
var requiredColumns = []string{"dteday", "season", "yr", "mnth", "hr", "weathersit", "temp", "hum", "cnt"}

// ErrMissingColumn is returned when the header lacks a required column.
var ErrMissingColumn = errors.New("missing column")

var errNonFinite = errors.New("non-finite value")

// Source reads the hourly dataset from a CSV file.
// It implements pipeline.Extractor.
type Source struct {
	path   string
	logger *slog.Logger
}

// NewSource creates a Source for the CSV file at path.
func NewSource(path string, logger *slog.Logger) *Source {
	return &Source{path: path, logger: logger}
}

// Extract opens the file, reads it fully, and releases it before returning.
func (s *Source) Extract(ctx context.Context) ([]domain.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("close dataset file", "path", s.path, "error", err)
		}
	}()

	raws, err := ParseRecords(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	s.logger.Debug("dataset file read", "path", s.path, "rows", len(raws))
	return raws, nil
}

// ParseRecords reads hour.csv-shaped data into raw records. Every cell is read
// as text so conversion errors can name the row and column they came from.
// A file with a valid header and no data rows yields an empty slice.
func ParseRecords(r io.Reader) ([]domain.RawRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	df := dataframe.ReadCSV(bytes.NewReader(data),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		if header, ok := headerOnly(data); ok {
			if err := checkRequired(header); err != nil {
				return nil, err
			}
			return []domain.RawRecord{}, nil
		}
		return nil, fmt.Errorf("parse csv: %w", df.Err)
	}

	cols, err := columns(df)
	if err != nil {
		return nil, err
	}

	raws := make([]domain.RawRecord, df.Nrow())
	for i := range raws {
		raw, err := cols.record(i)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		raws[i] = raw
	}
	return raws, nil
}

// headerOnly reports whether data holds exactly one CSV row, returning it.
func headerOnly(data []byte) ([]string, bool) {
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil || len(rows) != 1 {
		return nil, false
	}
	return rows[0], true
}

func checkRequired(names []string) error {
	present := make(map[string]bool, len(names))
	for _, name := range names {
		present[strings.TrimSpace(name)] = true
	}
	for _, name := range requiredColumns {
		if !present[name] {
			return fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}
	return nil
}

type columnSet map[string][]string

func columns(df dataframe.DataFrame) (columnSet, error) {
	if err := checkRequired(df.Names()); err != nil {
		return nil, err
	}

	cols := make(columnSet, df.Ncol())
	for _, name := range df.Names() {
		cols[strings.TrimSpace(name)] = df.Col(name).Records()
	}
	return cols, nil
}

func (c columnSet) record(i int) (domain.RawRecord, error) {
	p := cellParser{cols: c, row: i}

	raw := domain.RawRecord{
		Instant:     p.optionalIntCell("instant"),
		Date:        p.dateCell("dteday"),
		Hour:        p.intCell("hr"),
		YearCode:    p.intCell("yr"),
		Month:       p.intCell("mnth"),
		SeasonCode:  p.intCell("season"),
		WeatherCode: p.intCell("weathersit"),
		Holiday:     p.optionalIntCell("holiday"),
		Weekday:     p.optionalIntCell("weekday"),
		WorkingDay:  p.optionalIntCell("workingday"),
		Temperature: p.floatCell("temp"),
		FeelsLike:   p.optionalFloatCell("atemp"),
		Humidity:    p.floatCell("hum"),
		WindSpeed:   p.optionalFloatCell("windspeed"),
		Casual:      p.optionalIntCell("casual"),
		Registered:  p.optionalIntCell("registered"),
		Count:       p.intCell("cnt"),
	}
	if p.err != nil {
		return domain.RawRecord{}, p.err
	}
	if raw.Instant == 0 {
		raw.Instant = i + 1
	}
	return raw, nil
}

// cellParser keeps the first conversion error so a row can be read in one pass.
type cellParser struct {
	cols columnSet
	row  int
	err  error
}

func (p *cellParser) cell(name string) (string, bool) {
	col, ok := p.cols[name]
	if !ok {
		return "", false
	}
	return strings.TrimSpace(col[p.row]), true
}

func (p *cellParser) fail(name, value string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("column %s: parse %q: %w", name, value, err)
	}
}

func (p *cellParser) intCell(name string) int {
	v, _ := p.cell(name)
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(name, v, err)
	}
	return n
}

func (p *cellParser) optionalIntCell(name string) int {
	if v, ok := p.cell(name); !ok || v == "" {
		return 0
	}
	return p.intCell(name)
}

func (p *cellParser) floatCell(name string) float64 {
	v, _ := p.cell(name)
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(name, v, err)
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		p.fail(name, v, errNonFinite)
		return 0
	}
	return f
}

func (p *cellParser) optionalFloatCell(name string) float64 {
	if v, ok := p.cell(name); !ok || v == "" {
		return 0
	}
	return p.floatCell(name)
}

func (p *cellParser) dateCell(name string) time.Time {
	v, _ := p.cell(name)
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		p.fail(name, v, err)
	}
	return t
}
