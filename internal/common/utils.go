package common

import "bytes"

// HasAny reports whether body contains any of the markers.
func HasAny(body []byte, markers ...string) bool {
	for _, m := range markers {
		if m != "" && bytes.Contains(body, []byte(m)) {
			return true
		}
	}
	return false
}
