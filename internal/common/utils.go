package common

import (
	"math"
	"strings"
)

// Round5 rounds v to 5 decimal places.
func Round5(v float64) float64 {
	return math.Round(v*1e5) / 1e5
}

// SplitList splits a comma separated list, trimming and lower-casing items and
// dropping empty ones.
func SplitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.ToLower(strings.TrimSpace(item))
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
