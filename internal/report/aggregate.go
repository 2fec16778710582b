package report

import (
	"sort"
	"time"

	"github.com/couchcryptid/bike-rental-report/internal/domain"
)

// CategoryMean is the mean hourly rental count of one category.
type CategoryMean struct {
	Label   string  `json:"label"`
	Mean    float64 `json:"mean"`
	Records int     `json:"records"`
}

// TimeOfDayTotal is the total rental volume of one time-of-day bucket and its
// share of the overall volume, in percent.
type TimeOfDayTotal struct {
	Label   string  `json:"label"`
	Total   int     `json:"total"`
	Share   float64 `json:"share"`
	Records int     `json:"records"`
}

// MonthlyMean is the mean hourly rental count of one (year, month) pair.
type MonthlyMean struct {
	Year    int     `json:"year"`
	Month   int     `json:"month"`
	Mean    float64 `json:"mean"`
	Records int     `json:"records"`
}

// Summary bundles every aggregation table for one filtered view.
type Summary struct {
	GeneratedAt time.Time        `json:"generated_at"`
	Filter      FilterSpec       `json:"filter"`
	Records     int              `json:"records"`
	BySeason    []CategoryMean   `json:"by_season"`
	ByWeather   []CategoryMean   `json:"by_weather"`
	ByTimeOfDay []TimeOfDayTotal `json:"by_time_of_day"`
	ByYearMonth []MonthlyMean    `json:"by_year_month"`
}

type accumulator struct {
	sum int
	n   int
}

func (a accumulator) mean() float64 {
	return float64(a.sum) / float64(a.n)
}

// meanByCategory groups records by key and averages their counts. Groups come
// out in the given canonical order; keys with no records are omitted.
func meanByCategory[K comparable](ds *Dataset, key func(domain.Record) K, order []K, label func(K) string) []CategoryMean {
	acc := make(map[K]accumulator, len(order))
	for i := range ds.records {
		k := key(ds.records[i])
		a := acc[k]
		a.sum += ds.records[i].Count
		a.n++
		acc[k] = a
	}

	out := make([]CategoryMean, 0, len(acc))
	for _, k := range order {
		a, ok := acc[k]
		if !ok {
			continue
		}
		out = append(out, CategoryMean{Label: label(k), Mean: a.mean(), Records: a.n})
	}
	return out
}

// BySeason is the mean count per season present in ds.
func BySeason(ds *Dataset) []CategoryMean {
	return meanByCategory(ds,
		func(r domain.Record) domain.Season { return r.Season },
		domain.Seasons,
		domain.Season.String,
	)
}

// ByWeather is the mean count per weather situation present in ds.
func ByWeather(ds *Dataset) []CategoryMean {
	return meanByCategory(ds,
		func(r domain.Record) domain.Weather { return r.Weather },
		domain.Weathers,
		domain.Weather.String,
	)
}

// ByTimeOfDay is the summed count per time-of-day bucket present in ds.
// Unlike the season and weather tables this is a sum: it answers how the total
// volume splits across the day, not how busy an average hour is.
func ByTimeOfDay(ds *Dataset) []TimeOfDayTotal {
	acc := map[domain.TimeOfDay]accumulator{}
	grand := 0
	for i := range ds.records {
		rec := ds.records[i]
		a := acc[rec.TimeOfDay]
		a.sum += rec.Count
		a.n++
		acc[rec.TimeOfDay] = a
		grand += rec.Count
	}

	out := make([]TimeOfDayTotal, 0, len(acc))
	for _, tod := range domain.TimesOfDay {
		a, ok := acc[tod]
		if !ok {
			continue
		}
		var share float64
		if grand > 0 {
			share = 100 * float64(a.sum) / float64(grand)
		}
		out = append(out, TimeOfDayTotal{Label: tod.String(), Total: a.sum, Share: share, Records: a.n})
	}
	return out
}

// ByYearMonth is the mean count per observed (year, month), ordered by year
// and then by month.
func ByYearMonth(ds *Dataset) []MonthlyMean {
	type yearMonth struct{ year, month int }

	acc := map[yearMonth]accumulator{}
	for i := range ds.records {
		k := yearMonth{ds.records[i].Year, ds.records[i].Month}
		a := acc[k]
		a.sum += ds.records[i].Count
		a.n++
		acc[k] = a
	}

	out := make([]MonthlyMean, 0, len(acc))
	for k, a := range acc {
		out = append(out, MonthlyMean{Year: k.year, Month: k.month, Mean: a.mean(), Records: a.n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}

// Summarize filters ds by spec and computes every aggregation table.
func Summarize(ds *Dataset, spec FilterSpec) Summary {
	view := Filter(ds, spec)
	return Summary{
		GeneratedAt: domain.Now(),
		Filter:      spec,
		Records:     view.Len(),
		BySeason:    BySeason(view),
		ByWeather:   ByWeather(view),
		ByTimeOfDay: ByTimeOfDay(view),
		ByYearMonth: ByYearMonth(view),
	}
}
