package weather

import (
	"fmt"
	"path"
)

// CodeNotAvailable is the provider's placeholder for a missing condition code.
const CodeNotAvailable = "NA"

const iconNotAvailable = "wi-na.svg"

type condition struct {
	Text  string
	Day   string
	Night string
}

// conditions maps wttr.in (World Weather Online) condition codes to text and
// day/night icon files from the weather-icons set.
var conditions = map[string]condition{
	"113": {Text: "Sunny/Clear", Day: "wi-day-sunny.svg", Night: "wi-night-clear.svg"},
	"116": {Text: "Partly Cloudy", Day: "wi-day-cloudy.svg", Night: "wi-night-partly-cloudy.svg"},
	"119": {Text: "Cloudy", Day: "wi-day-cloudy.svg", Night: "wi-night-cloudy.svg"},
	"122": {Text: "Overcast", Day: "wi-day-sunny-overcast.svg", Night: "wi-night-cloudy.svg"},
	"143": {Text: "Mist", Day: "wi-day-haze.svg", Night: "wi-night-fog.svg"},
	"176": {Text: "Patchy rain nearby", Day: "wi-day-sprinkle.svg", Night: "wi-night-rain.svg"},
	"179": {Text: "Patchy snow nearby", Day: "wi-day-snow.svg", Night: "wi-night-snow.svg"},
	"182": {Text: "Patchy sleet nearby", Day: "wi-day-sleet.svg", Night: "wi-night-sleet.svg"},
	"185": {Text: "Patchy freezing drizzle nearby", Day: "wi-day-rain-mix.svg", Night: "wi-night-rain-mix.svg"},
	"200": {Text: "Thundery outbreaks nearby", Day: "wi-day-rain-mix.svg", Night: "wi-night-lightning.svg"},
	"227": {Text: "Blowing snow", Day: "wi-day-snow-wind.svg", Night: "wi-night-snow-wind.svg"},
	"230": {Text: "Blizzard", Day: "wi-day-snow-thunderstorm.svg", Night: "wi-night-snow-wind.svg"},
	"248": {Text: "Fog", Day: "wi-day-fog.svg", Night: "wi-night-fog.svg"},
	"260": {Text: "Freezing fog", Day: "wi-day-fog.svg", Night: "wi-night-fog.svg"},
	"263": {Text: "Patchy light drizzle", Day: "wi-day-sprinkle.svg", Night: "wi-night-rain.svg"},
	"266": {Text: "Light drizzle", Day: "wi-day-sprinkle.svg", Night: "wi-night-rain.svg"},
	"281": {Text: "Freezing drizzle", Day: "wi-day-rain-mix.svg", Night: "wi-night-rain-mix.svg"},
	"284": {Text: "Heavy freezing drizzle", Day: "wi-day-rain-mix.svg", Night: "wi-night-rain-mix.svg"},
	"293": {Text: "Patchy light rain", Day: "wi-day-sprinkle.svg", Night: "wi-night-rain.svg"},
	"296": {Text: "Light rain", Day: "wi-day-rain.svg", Night: "wi-night-rain.svg"},
	"299": {Text: "Moderate rain at times", Day: "wi-day-rain.svg", Night: "wi-night-rain.svg"},
	"302": {Text: "Moderate rain", Day: "wi-day-rain.svg", Night: "wi-night-rain.svg"},
	"305": {Text: "Heavy rain at times", Day: "wi-day-rain.svg", Night: "wi-night-storm-showers.svg"},
	"308": {Text: "Heavy rain", Day: "wi-day-rain.svg", Night: "wi-night-storm-showers.svg"},
	"311": {Text: "Light freezing rain", Day: "wi-day-rain-mix.svg", Night: "wi-night-rain-mix.svg"},
	"314": {Text: "Moderate or Heavy freezing rain", Day: "wi-day-rain-mix.svg", Night: "wi-night-rain-mix.svg"},
	"317": {Text: "Light sleet", Day: "wi-day-sleet.svg", Night: "wi-night-sleet.svg"},
	"320": {Text: "Moderate or heavy sleet", Day: "wi-day-sleet.svg", Night: "wi-night-sleet-storm.svg"},
	"323": {Text: "Patchy light snow", Day: "wi-day-snow.svg", Night: "wi-night-snow.svg"},
	"326": {Text: "Light snow", Day: "wi-day-snow.svg", Night: "wi-night-snow.svg"},
	"329": {Text: "Patchy moderate snow", Day: "wi-day-snow.svg", Night: "wi-night-snow.svg"},
	"332": {Text: "Moderate snow", Day: "wi-day-snow.svg", Night: "wi-night-snow.svg"},
	"335": {Text: "Patchy heavy snow", Day: "wi-day-snow-wind.svg", Night: "wi-night-snow.svg"},
	"338": {Text: "Heavy snow", Day: "wi-day-snow-wind.svg", Night: "wi-night-snow.svg"},
	"350": {Text: "Hail", Day: "wi-day-hail.svg", Night: "wi-night-hail.svg"},
	"353": {Text: "Light rain shower", Day: "wi-day-rain.svg", Night: "wi-night-hail.svg"},
	"356": {Text: "Moderate or heavy rain shower", Day: "wi-day-rain.svg", Night: "wi-night-snow-thunderstorm.svg"},
	"359": {Text: "Torrential rain shower", Day: "wi-day-thunderstorm.svg", Night: "wi-night-thunderstorm.svg"},
	"362": {Text: "Light sleet showers", Day: "wi-day-sleet.svg", Night: "wi-night-sleet.svg"},
	"365": {Text: "Moderate or heavy sleet showers", Day: "wi-day-sleet-storm.svg", Night: "wi-night-sleet-storm.svg"},
	"368": {Text: "Light snow showers", Day: "wi-day-snow.svg", Night: "wi-night-snow.svg"},
	"371": {Text: "Moderate or heavy snow showers", Day: "wi-day-snow-wind.svg", Night: "wi-night-snow.svg"},
	"374": {Text: "Light showers of hail", Day: "wi-day-hail.svg", Night: "wi-night-hail.svg"},
	"377": {Text: "Moderate or heavy showers of hail", Day: "wi-day-hail.svg", Night: "wi-night-hail.svg"},
	"386": {Text: "Patchy light rain in area with thunder", Day: "wi-day-rain.svg", Night: "wi-night-rain.svg"},
	"389": {Text: "Moderate or heavy rain in area with thunder", Day: "wi-day-thunderstorm.svg", Night: "wi-night-thunderstorm.svg"},
	"392": {Text: "Patchy light snow in area with thunder", Day: "wi-day-snow-thunderstorm.svg", Night: "wi-night-snow.svg"},
	"395": {Text: "Moderate or heavy snow in area with thunder", Day: "wi-day-thunderstorm.svg", Night: "wi-night-snow-thunderstorm.svg"},
}

// KnownCode reports whether code is in the condition table.
func KnownCode(code string) bool {
	_, ok := conditions[code]
	return ok
}

// Icons resolves condition codes to icon files under AssetDir.
type Icons struct {
	AssetDir string
}

// Describe returns the display text for code. Code 113 reads "Clear" at night.
// Unknown codes never produce an empty string.
func (Icons) Describe(code string, night bool) string {
	if code == CodeNotAvailable {
		return "Not available"
	}
	c, ok := conditions[code]
	if !ok {
		return fmt.Sprintf("Unknown weather code: %s", code)
	}
	if code == "113" && night {
		return "Clear"
	}
	return c.Text
}

// Path returns the icon path for code, picking the night art when night is set.
func (i Icons) Path(code string, night bool) string {
	file := iconNotAvailable
	if c, ok := conditions[code]; ok {
		file = c.Day
		if night {
			file = c.Night
		}
	}
	return path.Join(i.AssetDir, file)
}
