package weather

import "time"

const (
	clockLayout12 = "03:04 PM"
	clockLayout24 = "15:04"
	clockDate     = "Monday January _2 2006"
)

// View is a Model flattened for a single temperature unit, the shape a
// display client renders.
type View struct {
	Clock     string      `json:"clock"`
	Today     string      `json:"today"`
	Unit      string      `json:"unit"`
	FromCache bool        `json:"from_cache"`
	Warning   string      `json:"warning,omitempty"`
	Current   CurrentView `json:"current"`
	Daily     []DayView   `json:"daily"`
	Hourly    []HourView  `json:"hourly"`
}

type CurrentView struct {
	Temp        string `json:"temp"`
	FeelsLike   string `json:"feels_like"`
	Humidity    string `json:"humidity"`
	UVIndex     string `json:"uv_index"`
	Visibility  string `json:"visibility"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	UpdatedTime string `json:"updated_time"`
	UpdatedDate string `json:"updated_date"`
}

type DayView struct {
	Date        string `json:"date"`
	Max         string `json:"max"`
	Min         string `json:"min"`
	UVIndex     string `json:"uv_index"`
	Sunrise     string `json:"sunrise"`
	Sunset      string `json:"sunset"`
	Precip      string `json:"precip"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type HourView struct {
	Time        string `json:"time"`
	Temp        string `json:"temp"`
	FeelsLike   string `json:"feels_like"`
	Precip      string `json:"precip"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// BuildView selects the unit-specific fields of m. Hourly rows come from
// today only. now drives the clock and date line.
func BuildView(m *Model, unit Unit, hour12 bool, now time.Time) View {
	layout := clockLayout24
	if hour12 {
		layout = clockLayout12
	}
	v := View{
		Clock: now.Format(layout),
		Today: now.Format(clockDate),
		Unit:  unit.Symbol(),
	}
	if m == nil {
		return v
	}

	v.FromCache = m.FromCache
	if m.FetchError != nil {
		v.Warning = m.FetchError.Error()
	}
	v.Current = CurrentView{
		Temp:        m.Current.Temp(unit),
		FeelsLike:   m.Current.FeelsLike(unit),
		Humidity:    m.Current.Humidity,
		UVIndex:     m.Current.UVIndex,
		Visibility:  m.Current.Visibility,
		Description: m.Current.Description,
		Icon:        m.Current.Icon,
		UpdatedTime: m.TimeUpdated,
		UpdatedDate: m.DateUpdated,
	}

	v.Daily = make([]DayView, 0, len(m.Days))
	for _, d := range m.Days {
		v.Daily = append(v.Daily, DayView{
			Date:        d.Date,
			Max:         d.MaxTemp(unit),
			Min:         d.MinTemp(unit),
			UVIndex:     d.UVIndex,
			Sunrise:     d.Sunrise(),
			Sunset:      d.Sunset(),
			Precip:      d.AvgChanceOfPrecip,
			Description: d.Description,
			Icon:        d.Icon,
		})
	}

	if today, ok := m.Today(); ok {
		v.Hourly = make([]HourView, 0, len(today.Hourly))
		for _, h := range today.Hourly {
			v.Hourly = append(v.Hourly, HourView{
				Time:        h.Time,
				Temp:        h.Temp(unit),
				FeelsLike:   h.FeelsLike(unit),
				Precip:      h.ChanceOfPrecip,
				Description: h.Description,
				Icon:        h.Icon,
			})
		}
	}
	return v
}
