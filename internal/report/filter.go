package report

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/couchcryptid/bike-rental-report/internal/domain"
)

// AllSentinel is the selector value meaning "no constraint on this dimension".
const AllSentinel = "all"

// ErrInvalidFilter is returned when a filter value cannot be parsed.
var ErrInvalidFilter = errors.New("invalid filter")

// FilterSpec is a conjunction of optional equality constraints. A nil field
// places no constraint on that dimension.
type FilterSpec struct {
	Year    *int            `json:"year,omitempty"`
	Weather *domain.Weather `json:"weather,omitempty"`
	Season  *domain.Season  `json:"season,omitempty"`
}

// ParseFilterSpec builds a FilterSpec from selector strings. Empty strings and
// "all" leave a dimension unconstrained. A well-formed year that does not occur
// in the data is accepted and simply matches nothing.
func ParseFilterSpec(year, weather, season string) (FilterSpec, error) {
	var spec FilterSpec

	if v := strings.TrimSpace(year); !isAll(v) {
		y, err := strconv.Atoi(v)
		if err != nil {
			return FilterSpec{}, fmt.Errorf("%w: year %q", ErrInvalidFilter, year)
		}
		spec.Year = &y
	}
	if v := strings.TrimSpace(weather); !isAll(v) {
		w, err := domain.ParseWeather(v)
		if err != nil {
			return FilterSpec{}, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
		}
		spec.Weather = &w
	}
	if v := strings.TrimSpace(season); !isAll(v) {
		s, err := domain.ParseSeason(v)
		if err != nil {
			return FilterSpec{}, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
		}
		spec.Season = &s
	}

	return spec, nil
}

func isAll(v string) bool {
	return v == "" || strings.EqualFold(v, AllSentinel)
}

// IsEmpty reports whether no constraint is set.
func (f FilterSpec) IsEmpty() bool {
	return f.Year == nil && f.Weather == nil && f.Season == nil
}

// Key is a stable string form of the spec, suitable as a cache key.
func (f FilterSpec) Key() string {
	year, weather, season := AllSentinel, AllSentinel, AllSentinel
	if f.Year != nil {
		year = strconv.Itoa(*f.Year)
	}
	if f.Weather != nil {
		weather = f.Weather.String()
	}
	if f.Season != nil {
		season = f.Season.String()
	}
	return "year=" + year + "|weather=" + weather + "|season=" + season
}

// Match reports whether rec satisfies every set constraint.
func (f FilterSpec) Match(rec domain.Record) bool {
	if f.Year != nil && rec.Year != *f.Year {
		return false
	}
	if f.Weather != nil && rec.Weather != *f.Weather {
		return false
	}
	if f.Season != nil && rec.Season != *f.Season {
		return false
	}
	return true
}

// Filter returns the records of ds that match spec, in their original
// relative order. An empty spec returns ds itself.
func Filter(ds *Dataset, spec FilterSpec) *Dataset {
	if spec.IsEmpty() {
		return ds
	}

	matched := make([]domain.Record, 0, ds.Len())
	for i := range ds.records {
		if spec.Match(ds.records[i]) {
			matched = append(matched, ds.records[i])
		}
	}
	return newDataset(matched, ds.loadedAt)
}
