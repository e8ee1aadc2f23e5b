package common

import (
	"math"
	"strings"
)

// HasAny returns true if s contains any of the substrings.
func HasAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// RoundHalfUp rounds to the nearest integer, with halves rounded towards
// positive infinity (-2.5 becomes -2).
func RoundHalfUp(f float64) int {
	return int(math.Floor(f + 0.5))
}
