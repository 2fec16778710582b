// Command genmock writes the deterministic hourly rental fixture used by the
// csvsource and integration tests. The shape follows the public bike sharing
// hour.csv: four sample days, one per season, 24 rows each.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock/hour_sample.csv
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
)

var header = []string{
	"instant", "dteday", "season", "yr", "mnth", "hr", "holiday", "weekday",
	"workingday", "weathersit", "temp", "atemp", "hum", "windspeed",
	"casual", "registered", "cnt",
}

// firstDayCounts are the real hourly totals of 2011-01-01, scaled per day.
var firstDayCounts = [24]int{
	16, 40, 32, 13, 1, 1, 2, 3, 8, 14, 36, 56,
	84, 94, 106, 110, 93, 67, 35, 37, 36, 34, 28, 39,
}

type sampleDay struct {
	date       time.Time
	season     int
	weekday    int
	workingDay int
}

var days = []sampleDay{
	{date: time.Date(2011, time.January, 1, 0, 0, 0, 0, time.UTC), season: 1, weekday: 6, workingDay: 0},
	{date: time.Date(2011, time.July, 15, 0, 0, 0, 0, time.UTC), season: 3, weekday: 5, workingDay: 1},
	{date: time.Date(2012, time.April, 10, 0, 0, 0, 0, time.UTC), season: 2, weekday: 2, workingDay: 1},
	{date: time.Date(2012, time.October, 20, 0, 0, 0, 0, time.UTC), season: 4, weekday: 6, workingDay: 0},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the hourly CSV fixture")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	rows := generate()

	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("create %s: %w", *out, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}

	log.Printf("wrote %d rows to %s", len(rows), *out)
	return nil
}

func generate() [][]string {
	rows := make([][]string, 0, len(days)*24)
	for di, d := range days {
		for h := range 24 {
			cnt := firstDayCounts[h]*(di+1) + h%5
			casual := cnt / 5
			temp := round(0.2+0.15*float64(di)+0.01*float64(h), 2)

			rows = append(rows, []string{
				strconv.Itoa(di*24 + h + 1),
				d.date.Format("2006-01-02"),
				strconv.Itoa(d.season),
				strconv.Itoa(d.date.Year() - 2011),
				strconv.Itoa(int(d.date.Month())),
				strconv.Itoa(h),
				"0",
				strconv.Itoa(d.weekday),
				strconv.Itoa(d.workingDay),
				strconv.Itoa(weatherFor(di, h)),
				formatFloat(temp),
				formatFloat(round(temp*0.95, 4)),
				formatFloat(round(0.4+0.02*float64(h%10), 2)),
				formatFloat(round(0.1*float64(h%4), 4)),
				strconv.Itoa(casual),
				strconv.Itoa(cnt - casual),
				strconv.Itoa(cnt),
			})
		}
	}
	return rows
}

// weatherFor clears up overnight and worsens through the afternoon. One
// heavy-rain hour exercises the rarest category.
func weatherFor(day, hour int) int {
	switch {
	case day == 3 && hour == 3:
		return 4
	case hour < 10:
		return 1
	case hour < 16:
		return 2
	case hour < 22:
		return 3
	default:
		return 1
	}
}

func round(x float64, places int) float64 {
	v, _ := strconv.ParseFloat(strconv.FormatFloat(x, 'f', places, 64), 64)
	return v
}

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
