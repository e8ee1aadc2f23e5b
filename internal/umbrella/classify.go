// Package umbrella decides whether the current weather calls for an umbrella.
package umbrella

import (
	"strings"

	"github.com/Nenepo/weatherCo/internal/common"
	"github.com/Nenepo/weatherCo/internal/weather"
)

// Verdict is the outcome of an umbrella check.
type Verdict string

const (
	VerdictRainy Verdict = "rainy"
	VerdictSnowy Verdict = "snowy"
	VerdictNone  Verdict = "none"
)

var (
	rainKeywords = []string{"rain", "drizzle", "shower", "storm", "thunder"}
	snowKeywords = []string{"snow", "sleet", "blizzard"}
)

// Classify matches the condition and description texts against rain and snow
// keywords. Rain is checked first.
func Classify(main, description string) Verdict {
	main = strings.ToLower(main)
	description = strings.ToLower(description)

	switch {
	case common.HasAny(main, rainKeywords...) || common.HasAny(description, rainKeywords...):
		return VerdictRainy
	case common.HasAny(main, snowKeywords...) || common.HasAny(description, snowKeywords...):
		return VerdictSnowy
	default:
		return VerdictNone
	}
}

// ClassifySummary classifies a weather summary.
func ClassifySummary(s weather.Summary) Verdict {
	return Classify(s.Main, s.Description)
}

// Message is the human-readable advice for a verdict.
func (v Verdict) Message() string {
	switch v {
	case VerdictRainy:
		return "You'll need an umbrella today!"
	case VerdictSnowy:
		return "Bundle up! Snow expected today"
	default:
		return "No umbrella needed today!"
	}
}
