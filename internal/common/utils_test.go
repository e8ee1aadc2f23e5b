package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasAny(t *testing.T) {
	assert.True(t, HasAny("light rain", "snow", "rain"))
	assert.False(t, HasAny("clear sky", "snow", "rain"))
	assert.False(t, HasAny("anything"))
}

func TestRoundHalfUp(t *testing.T) {
	cases := map[float64]int{
		26.4: 26,
		26.5: 27,
		-2.5: -2,
		-2.6: -3,
		0:    0,
	}
	for in, want := range cases {
		assert.Equal(t, want, RoundHalfUp(in), "RoundHalfUp(%v)", in)
	}
}
