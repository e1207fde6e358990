package weather

import (
	"errors"
	"strings"
	"time"
)

// Display layouts for snapshot capture timestamps.
const (
	CaptureTimeLayout = "03:04 pm"
	CaptureDateLayout = "01/02/06"
)

// ErrInvalidUnit is returned for a temperature unit other than F or C.
var ErrInvalidUnit = errors.New("invalid unit")

// Unit selects which temperature variant is displayed.
type Unit string

const (
	Fahrenheit Unit = "F"
	Celsius    Unit = "C"
)

// ParseUnit accepts "f", "F", "c" or "C".
func ParseUnit(s string) (Unit, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "F":
		return Fahrenheit, nil
	case "C":
		return Celsius, nil
	default:
		return "", ErrInvalidUnit
	}
}

// Symbol returns the single letter used next to a degree sign.
func (u Unit) Symbol() string {
	return string(u)
}

func pick(u Unit, f, c string) string {
	if u == Celsius {
		return c
	}
	return f
}

// RawSnapshot is one verbatim provider response and the moment it was captured.
// Time and Date are display strings derived from CapturedAt.
type RawSnapshot struct {
	Body       []byte
	CapturedAt time.Time
	Time       string
	Date       string
}

// NewRawSnapshot stamps body with the display time and date of at.
func NewRawSnapshot(body []byte, at time.Time) RawSnapshot {
	return RawSnapshot{
		Body:       body,
		CapturedAt: at,
		Time:       at.Format(CaptureTimeLayout),
		Date:       at.Format(CaptureDateLayout),
	}
}

// Empty reports whether the snapshot carries no payload.
func (r RawSnapshot) Empty() bool {
	return len(strings.TrimSpace(string(r.Body))) == 0
}

// CurrentConditions is the observation at capture time.
type CurrentConditions struct {
	WeatherCode string `json:"weather_code"`
	TempF       string `json:"temp_f"`
	TempC       string `json:"temp_c"`
	FeelsLikeF  string `json:"feels_like_f"`
	FeelsLikeC  string `json:"feels_like_c"`
	Humidity    string `json:"humidity"`
	Pressure    string `json:"pressure"`
	UVIndex     string `json:"uv_index"`
	Visibility  string `json:"visibility"`

	Description string `json:"description"`
	Icon        string `json:"icon"`
}

func (c CurrentConditions) Temp(u Unit) string      { return pick(u, c.TempF, c.TempC) }
func (c CurrentConditions) FeelsLike(u Unit) string { return pick(u, c.FeelsLikeF, c.FeelsLikeC) }

// Astronomy holds the sun and moon data of a forecast day.
type Astronomy struct {
	MoonPhase string `json:"moon_phase"`
	Sunrise   string `json:"sunrise"`
	Sunset    string `json:"sunset"`
}

// ForecastHour is one slot of a day's hourly breakdown.
type ForecastHour struct {
	RawTime      string `json:"raw_time"`
	Time         string `json:"time"`
	TempF        string `json:"temp_f"`
	TempC        string `json:"temp_c"`
	FeelsLikeF   string `json:"feels_like_f"`
	FeelsLikeC   string `json:"feels_like_c"`
	ChanceOfRain string `json:"chance_of_rain"`
	ChanceOfSnow string `json:"chance_of_snow"`
	WeatherCode  string `json:"weather_code"`

	ChanceOfPrecip string `json:"chance_of_precip"`
	Description    string `json:"description"`
	Icon           string `json:"icon"`
}

func (h ForecastHour) Temp(u Unit) string      { return pick(u, h.TempF, h.TempC) }
func (h ForecastHour) FeelsLike(u Unit) string { return pick(u, h.FeelsLikeF, h.FeelsLikeC) }

// ForecastDay summarizes one calendar day. Astronomy and Hourly are never empty
// in a normalized model; the first astronomy entry is authoritative.
type ForecastDay struct {
	RawDate   string         `json:"raw_date"`
	Date      string         `json:"date"`
	MinTempF  string         `json:"min_temp_f"`
	AvgTempF  string         `json:"avg_temp_f"`
	MaxTempF  string         `json:"max_temp_f"`
	MinTempC  string         `json:"min_temp_c"`
	AvgTempC  string         `json:"avg_temp_c"`
	MaxTempC  string         `json:"max_temp_c"`
	UVIndex   string         `json:"uv_index"`
	Astronomy []Astronomy    `json:"astronomy"`
	Hourly    []ForecastHour `json:"hourly"`

	WeatherCode       string `json:"weather_code"`
	Description       string `json:"description"`
	Icon              string `json:"icon"`
	AvgChanceOfPrecip string `json:"avg_chance_of_precip"`
}

func (d ForecastDay) MinTemp(u Unit) string { return pick(u, d.MinTempF, d.MinTempC) }
func (d ForecastDay) AvgTemp(u Unit) string { return pick(u, d.AvgTempF, d.AvgTempC) }
func (d ForecastDay) MaxTemp(u Unit) string { return pick(u, d.MaxTempF, d.MaxTempC) }

func (d ForecastDay) Sunrise() string {
	if len(d.Astronomy) == 0 {
		return ""
	}
	return d.Astronomy[0].Sunrise
}

func (d ForecastDay) Sunset() string {
	if len(d.Astronomy) == 0 {
		return ""
	}
	return d.Astronomy[0].Sunset
}

// Model is the normalized, display-ready forecast.
type Model struct {
	TimeUpdated string            `json:"time_updated"`
	DateUpdated string            `json:"date_updated"`
	Current     CurrentConditions `json:"current"`
	Days        []ForecastDay     `json:"days"` // day 0 is today

	// FromCache is set when the fetch failed and the model was built from the
	// last stored snapshot; FetchError then holds the fetch classification.
	FromCache  bool          `json:"from_cache"`
	FetchError *RequestError `json:"fetch_error,omitempty"`
}

// Today returns day 0, or false when the model has no days.
func (m *Model) Today() (ForecastDay, bool) {
	if m == nil || len(m.Days) == 0 {
		return ForecastDay{}, false
	}
	return m.Days[0], true
}
