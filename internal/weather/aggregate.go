package weather

import (
	"math"
	"strconv"
	"strings"
)

// DailyCode picks the condition code that occurs most often among hours.
// On a tie the code whose count first reached the maximum wins, so the result
// only depends on hour order.
func DailyCode(hours []ForecastHour) (string, error) {
	if len(hours) == 0 {
		return "", &DerivationError{What: "daily weather code", Reason: "no hourly entries"}
	}

	counts := make(map[string]int, len(hours))
	bestCode := ""
	bestCount := 0
	for _, h := range hours {
		counts[h.WeatherCode]++
		if n := counts[h.WeatherCode]; n > bestCount {
			bestCount = n
			bestCode = h.WeatherCode
		}
	}
	return bestCode, nil
}

// PrecipChance sums the chance of rain and the chance of snow.
func PrecipChance(rain, snow string) (float64, error) {
	r, err := strconv.ParseFloat(strings.TrimSpace(rain), 64)
	if err != nil {
		return 0, &DerivationError{What: "chance of rain", Reason: err.Error()}
	}
	s, err := strconv.ParseFloat(strings.TrimSpace(snow), 64)
	if err != nil {
		return 0, &DerivationError{What: "chance of snow", Reason: err.Error()}
	}
	return r + s, nil
}

// AveragePrecip is the mean of the hourly precipitation sums, rounded to one
// decimal place.
func AveragePrecip(hours []ForecastHour) (float64, error) {
	if len(hours) == 0 {
		return 0, &DerivationError{What: "average chance of precipitation", Reason: "no hourly entries"}
	}
	var sum float64
	for _, h := range hours {
		p, err := PrecipChance(h.ChanceOfRain, h.ChanceOfSnow)
		if err != nil {
			return 0, err
		}
		sum += p
	}
	return math.Round(sum/float64(len(hours))*10) / 10, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
