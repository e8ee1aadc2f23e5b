package umbrella

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Nenepo/weatherCo/internal/weather"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		main, description string
		want              Verdict
	}{
		{"Rain", "moderate rain", VerdictRainy},
		{"Snow", "light snow", VerdictSnowy},
		{"Clear", "clear sky", VerdictNone},
		{"", "rain and snow", VerdictRainy},
		{"Thunderstorm", "", VerdictRainy},
		{"", "Heavy SLEET", VerdictSnowy},
		{"Clouds", "overcast clouds", VerdictNone},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.main, tc.description), "%q/%q", tc.main, tc.description)
	}
}

func TestClassifySummary(t *testing.T) {
	s := weather.Summary{Main: "Drizzle", Description: "light intensity drizzle"}
	assert.Equal(t, VerdictRainy, ClassifySummary(s))
}

func TestVerdictMessage(t *testing.T) {
	assert.Equal(t, "You'll need an umbrella today!", VerdictRainy.Message())
	assert.Equal(t, "Bundle up! Snow expected today", VerdictSnowy.Message())
	assert.Equal(t, "No umbrella needed today!", VerdictNone.Message())
}
