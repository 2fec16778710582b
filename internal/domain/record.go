package domain

import "time"

// RawRecord is one row of hour.csv exactly as ingested, before any code is
// mapped to a label.
type RawRecord struct {
	Instant     int
	Date        time.Time
	Hour        int
	YearCode    int
	Month       int
	SeasonCode  int
	WeatherCode int
	Holiday     int
	Weekday     int
	WorkingDay  int
	Temperature float64
	FeelsLike   float64
	Humidity    float64
	WindSpeed   float64
	Casual      int
	Registered  int
	Count       int
}

// Record is a normalized observation. It is produced once by [Normalize] and
// never modified afterwards.
type Record struct {
	Instant     int       `json:"instant"`
	Date        time.Time `json:"date"`
	Hour        int       `json:"hour"`
	Year        int       `json:"year"`
	Month       int       `json:"month"`
	Season      Season    `json:"season"`
	Weather     Weather   `json:"weather"`
	TimeOfDay   TimeOfDay `json:"time_of_day"`
	Holiday     bool      `json:"holiday"`
	Weekday     int       `json:"weekday"`
	WorkingDay  bool      `json:"working_day"`
	Temperature float64   `json:"temperature"`
	FeelsLike   float64   `json:"feels_like"`
	Humidity    float64   `json:"humidity"`
	WindSpeed   float64   `json:"wind_speed"`
	Casual      int       `json:"casual"`
	Registered  int       `json:"registered"`
	Count       int       `json:"count"`

	raw RawRecord
}

// Raw returns the source row the record was normalized from.
func (r Record) Raw() RawRecord {
	return r.raw
}
