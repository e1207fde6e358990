package weather

import (
	"strings"
	"time"
)

const timeOfDayLayout = "3:04 PM"

// timeOfDay parses "07:45 PM" or "09:30 pm" into minutes after midnight.
// Anything else is treated as midnight.
func timeOfDay(s string) int {
	t, err := time.Parse(timeOfDayLayout, strings.ToUpper(strings.TrimSpace(s)))
	if err != nil {
		return 0
	}
	return t.Hour()*60 + t.Minute()
}

// IsNight reports whether observed is strictly later in the day than sunset.
// forceDay always yields false. A side that is midnight or unparseable makes
// the result false; the two cases cannot be told apart.
func IsNight(observed, sunset string, forceDay bool) bool {
	if forceDay {
		return false
	}
	at := timeOfDay(observed)
	dusk := timeOfDay(sunset)
	if at == 0 || dusk == 0 {
		return false
	}
	return at > dusk
}
