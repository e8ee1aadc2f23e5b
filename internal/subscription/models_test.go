package subscription

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataMatches(t *testing.T) {
	m := Metadata{Lat: 6.52441, Lon: 3.37921}

	assert.True(t, m.Matches(6.5244, 3.3792, CoordinateTolerance))
	assert.False(t, m.Matches(6.6, 3.4, CoordinateTolerance))
	assert.False(t, m.Matches(6.5244, 3.4, CoordinateTolerance), "both axes must match")
}

func TestParseTimeOfDay(t *testing.T) {
	h, m, err := ParseTimeOfDay("06:00")
	require.NoError(t, err)
	assert.Equal(t, 6, h)
	assert.Equal(t, 0, m)

	h, m, err = ParseTimeOfDay("23:45")
	require.NoError(t, err)
	assert.Equal(t, 23, h)
	assert.Equal(t, 45, m)

	for _, bad := range []string{"", "24:00", "6am", "12:60"} {
		_, _, err := ParseTimeOfDay(bad)
		assert.True(t, errors.Is(err, ErrInvalidTime), "expected ErrInvalidTime for %q", bad)
	}
}
