package domain

import "fmt"

// Normalize maps a raw row's coded columns to labels and derives the time of
// day bucket. It fails with *UnmappedCodeError when yr, season or weathersit
// is outside its domain, and with *InvalidFieldError when hour, month or count
// break their range invariants.
func Normalize(raw RawRecord) (Record, error) {
	if err := validateRanges(raw); err != nil {
		return Record{}, err
	}

	year, err := YearFromCode(raw.YearCode)
	if err != nil {
		return Record{}, fmt.Errorf("normalize record %d: %w", raw.Instant, err)
	}
	season, err := SeasonFromCode(raw.SeasonCode)
	if err != nil {
		return Record{}, fmt.Errorf("normalize record %d: %w", raw.Instant, err)
	}
	weather, err := WeatherFromCode(raw.WeatherCode)
	if err != nil {
		return Record{}, fmt.Errorf("normalize record %d: %w", raw.Instant, err)
	}

	return Record{
		Instant:     raw.Instant,
		Date:        raw.Date,
		Hour:        raw.Hour,
		Year:        year,
		Month:       raw.Month,
		Season:      season,
		Weather:     weather,
		TimeOfDay:   TimeOfDayForHour(raw.Hour),
		Holiday:     raw.Holiday == 1,
		Weekday:     raw.Weekday,
		WorkingDay:  raw.WorkingDay == 1,
		Temperature: raw.Temperature,
		FeelsLike:   raw.FeelsLike,
		Humidity:    raw.Humidity,
		WindSpeed:   raw.WindSpeed,
		Casual:      raw.Casual,
		Registered:  raw.Registered,
		Count:       raw.Count,

		raw: raw,
	}, nil
}

func validateRanges(raw RawRecord) error {
	var bad *InvalidFieldError
	switch {
	case raw.Hour < 0 || raw.Hour > 23:
		bad = &InvalidFieldError{Field: "hr", Value: raw.Hour}
	case raw.Month < 1 || raw.Month > 12:
		bad = &InvalidFieldError{Field: "mnth", Value: raw.Month}
	case raw.Count < 0:
		bad = &InvalidFieldError{Field: "cnt", Value: raw.Count}
	default:
		return nil
	}
	return fmt.Errorf("normalize record %d: %w", raw.Instant, bad)
}
