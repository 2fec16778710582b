package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Season is the meteorological season of a record.
type Season int

const (
	Spring Season = iota + 1
	Summer
	Fall
	Winter
)

// Seasons lists every season in code order.
var Seasons = []Season{Spring, Summer, Fall, Winter}

var seasonLabels = map[Season]string{
	Spring: "Spring",
	Summer: "Summer",
	Fall:   "Fall",
	Winter: "Winter",
}

// SeasonFromCode maps the dataset's 1..4 season code to a Season.
func SeasonFromCode(code int) (Season, error) {
	s := Season(code)
	if _, ok := seasonLabels[s]; !ok {
		return 0, &UnmappedCodeError{Field: "season", Code: code}
	}
	return s, nil
}

// ParseSeason resolves a label such as "Fall" (case-insensitive).
func ParseSeason(label string) (Season, error) {
	for _, s := range Seasons {
		if strings.EqualFold(label, seasonLabels[s]) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown season %q", label)
}

func (s Season) String() string {
	if l, ok := seasonLabels[s]; ok {
		return l
	}
	return fmt.Sprintf("Season(%d)", int(s))
}

func (s Season) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Season) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return err
	}
	v, err := ParseSeason(label)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Weather is the weathersit situation of a record.
type Weather int

const (
	Clear Weather = iota + 1
	Cloudy
	LightRain
	HeavyRain
)

// Weathers lists every weather situation in code order.
var Weathers = []Weather{Clear, Cloudy, LightRain, HeavyRain}

var weatherLabels = map[Weather]string{
	Clear:     "Clear",
	Cloudy:    "Cloudy",
	LightRain: "LightRain",
	HeavyRain: "HeavyRain",
}

// WeatherFromCode maps the dataset's 1..4 weathersit code to a Weather.
func WeatherFromCode(code int) (Weather, error) {
	w := Weather(code)
	if _, ok := weatherLabels[w]; !ok {
		return 0, &UnmappedCodeError{Field: "weathersit", Code: code}
	}
	return w, nil
}

// ParseWeather resolves a label such as "LightRain" (case-insensitive).
func ParseWeather(label string) (Weather, error) {
	for _, w := range Weathers {
		if strings.EqualFold(label, weatherLabels[w]) {
			return w, nil
		}
	}
	return 0, fmt.Errorf("unknown weather %q", label)
}

func (w Weather) String() string {
	if l, ok := weatherLabels[w]; ok {
		return l
	}
	return fmt.Sprintf("Weather(%d)", int(w))
}

func (w Weather) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.String())
}

func (w *Weather) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return err
	}
	v, err := ParseWeather(label)
	if err != nil {
		return err
	}
	*w = v
	return nil
}

// TimeOfDay is the part of the day an hour falls into.
type TimeOfDay int

const (
	Morning TimeOfDay = iota + 1
	Midday
	Evening
	Night
)

// TimesOfDay lists every bucket in chronological order starting at Morning.
var TimesOfDay = []TimeOfDay{Morning, Midday, Evening, Night}

var timeOfDayLabels = map[TimeOfDay]string{
	Morning: "Morning",
	Midday:  "Midday",
	Evening: "Evening",
	Night:   "Night",
}

// TimeOfDayForHour buckets an hour of the day:
//   - [6,12) Morning
//   - [12,16) Midday
//   - [16,20) Evening
//   - anything else Night
func TimeOfDayForHour(hour int) TimeOfDay {
	switch {
	case hour >= 6 && hour < 12:
		return Morning
	case hour >= 12 && hour < 16:
		return Midday
	case hour >= 16 && hour < 20:
		return Evening
	default:
		return Night
	}
}

// ParseTimeOfDay resolves a label such as "Evening" (case-insensitive).
func ParseTimeOfDay(label string) (TimeOfDay, error) {
	for _, t := range TimesOfDay {
		if strings.EqualFold(label, timeOfDayLabels[t]) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown time of day %q", label)
}

func (t TimeOfDay) String() string {
	if l, ok := timeOfDayLabels[t]; ok {
		return l
	}
	return fmt.Sprintf("TimeOfDay(%d)", int(t))
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return err
	}
	v, err := ParseTimeOfDay(label)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// baseYear is the calendar year encoded by yr=0.
const baseYear = 2011

// YearFromCode maps the dataset's yr column (0 or 1) to a calendar year.
func YearFromCode(code int) (int, error) {
	if code != 0 && code != 1 {
		return 0, &UnmappedCodeError{Field: "yr", Code: code}
	}
	return baseYear + code, nil
}
