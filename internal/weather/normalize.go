package weather

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	rawDateLayout     = "2006-01-02"
	displayDateLayout = "Monday January _2, 2006"
	hourLayout12      = "03 PM"
	hourLayout24      = "15"
)

// payload mirrors the parts of a wttr.in format=j1 response that are used.
type payload struct {
	CurrentCondition []currentJSON `json:"current_condition"`
	Weather          []dayJSON     `json:"weather"`
}

type currentJSON struct {
	WeatherCode string `json:"weatherCode"`
	TempF       string `json:"temp_F"`
	TempC       string `json:"temp_C"`
	FeelsLikeF  string `json:"FeelsLikeF"`
	FeelsLikeC  string `json:"FeelsLikeC"`
	Humidity    string `json:"humidity"`
	Pressure    string `json:"pressure"`
	UVIndex     string `json:"uvIndex"`
	Visibility  string `json:"visibility"`
}

type astronomyJSON struct {
	MoonPhase string `json:"moon_phase"`
	Sunrise   string `json:"sunrise"`
	Sunset    string `json:"sunset"`
}

type hourJSON struct {
	Time         string `json:"time"`
	TempF        string `json:"tempF"`
	TempC        string `json:"tempC"`
	FeelsLikeF   string `json:"FeelsLikeF"`
	FeelsLikeC   string `json:"FeelsLikeC"`
	ChanceOfRain string `json:"chanceofrain"`
	ChanceOfSnow string `json:"chanceofsnow"`
	WeatherCode  string `json:"weatherCode"`
}

type dayJSON struct {
	Date      string          `json:"date"`
	AvgTempF  string          `json:"avgtempF"`
	MaxTempF  string          `json:"maxtempF"`
	MinTempF  string          `json:"mintempF"`
	AvgTempC  string          `json:"avgtempC"`
	MaxTempC  string          `json:"maxtempC"`
	MinTempC  string          `json:"mintempC"`
	UVIndex   string          `json:"uvIndex"`
	Astronomy []astronomyJSON `json:"astronomy"`
	Hourly    []hourJSON      `json:"hourly"`
}

// Normalizer turns a raw j1 payload into a display-ready Model.
type Normalizer struct {
	Icons  Icons
	Logger *zap.Logger
}

func NewNormalizer(icons Icons, logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{Icons: icons, Logger: logger}
}

// Normalize decodes raw once and derives every display field from it.
// capturedTime uses CaptureTimeLayout and drives the day/night choice for the
// current conditions and the daily descriptions. hour12 selects the hourly
// label format. Any failure returns no model.
func (n *Normalizer) Normalize(raw []byte, capturedTime, capturedDate string, hour12 bool) (*Model, error) {
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, &ParseError{What: "weather payload", Err: err}
	}

	if len(p.CurrentCondition) == 0 {
		return nil, &DerivationError{What: "current conditions", Reason: "current_condition is empty"}
	}
	if len(p.Weather) == 0 {
		return nil, &DerivationError{What: "forecast", Reason: "weather is empty"}
	}
	if len(p.Weather[0].Astronomy) == 0 {
		return nil, &DerivationError{What: "tonight's sunset", Reason: "first day has no astronomy"}
	}

	sunset := p.Weather[0].Astronomy[0].Sunset
	cur := p.CurrentCondition[0]
	current := CurrentConditions{
		WeatherCode: cur.WeatherCode,
		TempF:       cur.TempF,
		TempC:       cur.TempC,
		FeelsLikeF:  cur.FeelsLikeF,
		FeelsLikeC:  cur.FeelsLikeC,
		Humidity:    cur.Humidity,
		Pressure:    cur.Pressure,
		UVIndex:     cur.UVIndex,
		Visibility:  cur.Visibility,
	}
	night := IsNight(capturedTime, sunset, false)
	current.Description = n.Icons.Describe(cur.WeatherCode, night)
	current.Icon = n.Icons.Path(cur.WeatherCode, night)
	n.warnUnknown("current", cur.WeatherCode)

	days := make([]ForecastDay, 0, len(p.Weather))
	for i, d := range p.Weather {
		day, err := n.day(d, capturedTime, hour12)
		if err != nil {
			return nil, fmt.Errorf("day %d: %w", i, err)
		}
		days = append(days, day)
	}

	return &Model{
		TimeUpdated: capturedTime,
		DateUpdated: capturedDate,
		Current:     current,
		Days:        days,
	}, nil
}

func (n *Normalizer) day(d dayJSON, capturedTime string, hour12 bool) (ForecastDay, error) {
	if len(d.Astronomy) == 0 {
		return ForecastDay{}, &DerivationError{What: "sunset " + d.Date, Reason: "no astronomy entries"}
	}
	date, err := ReformatDate(d.Date)
	if err != nil {
		return ForecastDay{}, err
	}
	sunset := d.Astronomy[0].Sunset

	hours := make([]ForecastHour, 0, len(d.Hourly))
	for _, h := range d.Hourly {
		hour, err := n.hour(h, sunset, hour12)
		if err != nil {
			return ForecastDay{}, err
		}
		hours = append(hours, hour)
	}

	code, err := DailyCode(hours)
	if err != nil {
		return ForecastDay{}, err
	}
	avg, err := AveragePrecip(hours)
	if err != nil {
		return ForecastDay{}, err
	}
	n.warnUnknown("day "+d.Date, code)

	astro := make([]Astronomy, 0, len(d.Astronomy))
	for _, a := range d.Astronomy {
		astro = append(astro, Astronomy(a))
	}

	return ForecastDay{
		RawDate:           d.Date,
		Date:              date,
		MinTempF:          d.MinTempF,
		AvgTempF:          d.AvgTempF,
		MaxTempF:          d.MaxTempF,
		MinTempC:          d.MinTempC,
		AvgTempC:          d.AvgTempC,
		MaxTempC:          d.MaxTempC,
		UVIndex:           d.UVIndex,
		Astronomy:         astro,
		Hourly:            hours,
		WeatherCode:       code,
		Description:       n.Icons.Describe(code, IsNight(capturedTime, sunset, false)),
		Icon:              n.Icons.Path(code, IsNight(capturedTime, sunset, true)),
		AvgChanceOfPrecip: formatFloat(avg),
	}, nil
}

func (n *Normalizer) hour(h hourJSON, sunset string, hour12 bool) (ForecastHour, error) {
	at, err := n.hourOfDay(h.Time)
	if err != nil {
		return ForecastHour{}, err
	}
	label := at.Format(hourLayout24)
	if hour12 {
		label = at.Format(hourLayout12)
	}

	precip, err := PrecipChance(h.ChanceOfRain, h.ChanceOfSnow)
	if err != nil {
		return ForecastHour{}, err
	}

	night := IsNight(at.Format(CaptureTimeLayout), sunset, false)
	return ForecastHour{
		RawTime:        h.Time,
		Time:           label,
		TempF:          h.TempF,
		TempC:          h.TempC,
		FeelsLikeF:     h.FeelsLikeF,
		FeelsLikeC:     h.FeelsLikeC,
		ChanceOfRain:   h.ChanceOfRain,
		ChanceOfSnow:   h.ChanceOfSnow,
		WeatherCode:    h.WeatherCode,
		ChanceOfPrecip: formatFloat(precip),
		Description:    n.Icons.Describe(h.WeatherCode, night),
		Icon:           n.Icons.Path(h.WeatherCode, night),
	}, nil
}

// hourOfDay converts an hourly label such as "0", "300" or "2100" to a time
// of day. Labels past the end of the day fall back to midnight.
func (n *Normalizer) hourOfDay(label string) (time.Time, error) {
	v, err := strconv.Atoi(strings.TrimSpace(label))
	if err != nil {
		return time.Time{}, &ParseError{What: "hour label " + strconv.Quote(label), Err: err}
	}
	if v < 0 {
		return time.Time{}, &ParseError{What: "hour label " + strconv.Quote(label), Err: fmt.Errorf("negative hour")}
	}
	h := v / 100
	if h >= 24 {
		n.log().Warn("hourly label out of range, using midnight", zap.String("label", label))
		h = 0
	}
	return time.Date(0, time.January, 1, h, 0, 0, 0, time.UTC), nil
}

func (n *Normalizer) warnUnknown(where, code string) {
	if code != CodeNotAvailable && !KnownCode(code) {
		n.log().Warn("unknown weather code", zap.String("where", where), zap.String("code", code))
	}
}

func (n *Normalizer) log() *zap.Logger {
	if n.Logger == nil {
		return zap.NewNop()
	}
	return n.Logger
}

// ReformatDate turns "2024-07-04" into "Thursday July  4, 2024".
func ReformatDate(raw string) (string, error) {
	t, err := time.Parse(rawDateLayout, raw)
	if err != nil {
		return "", &ParseError{What: "forecast date " + strconv.Quote(raw), Err: err}
	}
	return t.Format(displayDateLayout), nil
}
