// Package report holds the in-memory working set of normalized rental records
// and the filter and aggregation primitives the reporting surface consumes.
//
// Every value in this package is immutable once built. Filtering and
// aggregation return new values and never touch the Dataset they read from,
// so a single Dataset can be shared by any number of concurrent readers.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/couchcryptid/bike-rental-report/internal/domain"
)

// Dataset is an ordered, read-only sequence of normalized records. Order is
// source order and only matters for paging.
type Dataset struct {
	records  []domain.Record
	years    []int
	weathers []domain.Weather
	seasons  []domain.Season
	loadedAt time.Time
}

// BuildDataset normalizes every raw row and fails on the first bad one. No
// partially normalized Dataset is ever returned.
func BuildDataset(raws []domain.RawRecord) (*Dataset, error) {
	records := make([]domain.Record, 0, len(raws))
	for i, raw := range raws {
		rec, err := domain.Normalize(raw)
		if err != nil {
			return nil, fmt.Errorf("build dataset: row %d: %w", i+1, err)
		}
		records = append(records, rec)
	}
	return newDataset(records, domain.Now()), nil
}

// NewDataset wraps already-normalized records. The slice is copied.
func NewDataset(records []domain.Record) *Dataset {
	owned := make([]domain.Record, len(records))
	copy(owned, records)
	return newDataset(owned, domain.Now())
}

func newDataset(records []domain.Record, loadedAt time.Time) *Dataset {
	ds := &Dataset{records: records, loadedAt: loadedAt}
	ds.indexLabels()
	return ds
}

// indexLabels caches the distinct years, weathers and seasons. Years are
// ascending; labels follow their canonical code order.
func (d *Dataset) indexLabels() {
	years := map[int]bool{}
	weathers := map[domain.Weather]bool{}
	seasons := map[domain.Season]bool{}
	for i := range d.records {
		years[d.records[i].Year] = true
		weathers[d.records[i].Weather] = true
		seasons[d.records[i].Season] = true
	}

	d.years = make([]int, 0, len(years))
	for y := range years {
		d.years = append(d.years, y)
	}
	sort.Ints(d.years)

	d.weathers = make([]domain.Weather, 0, len(weathers))
	for _, w := range domain.Weathers {
		if weathers[w] {
			d.weathers = append(d.weathers, w)
		}
	}

	d.seasons = make([]domain.Season, 0, len(seasons))
	for _, s := range domain.Seasons {
		if seasons[s] {
			d.seasons = append(d.seasons, s)
		}
	}
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.records)
}

// At returns the record at index i.
func (d *Dataset) At(i int) domain.Record {
	return d.records[i]
}

// Records returns a copy of the record sequence.
func (d *Dataset) Records() []domain.Record {
	out := make([]domain.Record, len(d.records))
	copy(out, d.records)
	return out
}

// Each calls fn for every record in order until fn returns false.
func (d *Dataset) Each(fn func(i int, rec domain.Record) bool) {
	for i := range d.records {
		if !fn(i, d.records[i]) {
			return
		}
	}
}

// LoadedAt is when the underlying source was normalized.
func (d *Dataset) LoadedAt() time.Time {
	return d.loadedAt
}

// Years returns the distinct years present, ascending.
func (d *Dataset) Years() []int {
	return append([]int(nil), d.years...)
}

// Weathers returns the distinct weather labels present, in code order.
func (d *Dataset) Weathers() []domain.Weather {
	return append([]domain.Weather(nil), d.weathers...)
}

// Seasons returns the distinct seasons present, in code order.
func (d *Dataset) Seasons() []domain.Season {
	return append([]domain.Season(nil), d.seasons...)
}

// Slice returns a copy of records in [from, to), clamped to the dataset bounds.
func (d *Dataset) Slice(from, to int) []domain.Record {
	from = clamp(from, 0, len(d.records))
	to = clamp(to, from, len(d.records))
	out := make([]domain.Record, to-from)
	copy(out, d.records[from:to])
	return out
}

// Page returns the 1-based page of the given size. Pages past the end are empty.
func (d *Dataset) Page(size, number int) []domain.Record {
	if size <= 0 || number < 1 || number-1 > len(d.records)/size {
		return []domain.Record{}
	}
	start := (number - 1) * size
	return d.Slice(start, start+size)
}

// PageCount is the highest page number a viewer may request. An exact
// multiple of size still leaves one trailing empty page, matching the
// dashboard's page selector.
func (d *Dataset) PageCount(size int) int {
	if size <= 0 {
		return 0
	}
	return len(d.records)/size + 1
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
