package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nenepo/weatherCo/internal/subscription"
)

func sub(endpoint string) subscription.Subscription {
	return subscription.Subscription{
		Endpoint: endpoint,
		Keys:     subscription.Keys{P256dh: "p256dh", Auth: "auth"},
	}
}

func TestAddRejectsEmptyEndpoint(t *testing.T) {
	s := NewMemoryStore()

	err := s.Add(sub(""), nil)
	assert.True(t, errors.Is(err, subscription.ErrInvalidSubscription))
	assert.Equal(t, 0, s.Count())
}

// TestAddTwiceOverwrites verifies that re-subscribing replaces metadata and
// resets the preferred time instead of creating a second entry.
func TestAddTwiceOverwrites(t *testing.T) {
	s := NewMemoryStore()

	require.NoError(t, s.Add(sub("https://push.example/a"), &subscription.Metadata{Lat: 1, Lon: 2}))
	require.NoError(t, s.SetPreferredTime("https://push.example/a", "07:30"))
	require.NoError(t, s.Add(sub("https://push.example/a"), &subscription.Metadata{Lat: 3, Lon: 4}))

	assert.Equal(t, 1, s.Count())

	got, err := s.Get("https://push.example/a")
	require.NoError(t, err)
	require.NotNil(t, got.Meta)
	assert.Equal(t, 3.0, got.Meta.Lat)
	assert.Equal(t, 4.0, got.Meta.Lon)
	assert.Equal(t, subscription.DefaultPreferredTime, got.Preference.Time)
}

func TestFindByCoordinates(t *testing.T) {
	s := NewMemoryStore()

	require.NoError(t, s.Add(sub("https://push.example/far"), &subscription.Metadata{Lat: 6.6, Lon: 3.4}))
	require.NoError(t, s.Add(sub("https://push.example/near"), &subscription.Metadata{Lat: 6.52441, Lon: 3.37921}))
	require.NoError(t, s.Add(sub("https://push.example/nometa"), nil))

	got, err := s.FindByCoordinates(6.5244, 3.3792, subscription.CoordinateTolerance)
	require.NoError(t, err)
	assert.Equal(t, "https://push.example/near", got.Endpoint())

	_, err = s.FindByCoordinates(10, 10, subscription.CoordinateTolerance)
	assert.True(t, errors.Is(err, subscription.ErrNotFound))
}

func TestFindByCoordinatesFirstMatchWins(t *testing.T) {
	s := NewMemoryStore()
	meta := &subscription.Metadata{Lat: 6.5244, Lon: 3.3792}

	require.NoError(t, s.Add(sub("https://push.example/first"), meta))
	require.NoError(t, s.Add(sub("https://push.example/second"), meta))
	// Re-adding keeps the original position.
	require.NoError(t, s.Add(sub("https://push.example/first"), meta))

	got, err := s.FindByCoordinates(6.5244, 3.3792, subscription.CoordinateTolerance)
	require.NoError(t, err)
	assert.Equal(t, "https://push.example/first", got.Endpoint())

	require.NoError(t, s.Remove("https://push.example/first"))
	got, err = s.FindByCoordinates(6.5244, 3.3792, subscription.CoordinateTolerance)
	require.NoError(t, err)
	assert.Equal(t, "https://push.example/second", got.Endpoint())
}

func TestRemove(t *testing.T) {
	s := NewMemoryStore()

	err := s.Remove("https://push.example/unknown")
	assert.True(t, errors.Is(err, subscription.ErrNotFound))

	require.NoError(t, s.Add(sub("https://push.example/a"), nil))
	require.NoError(t, s.Remove("https://push.example/a"))
	assert.Equal(t, 0, s.Count())
	assert.Empty(t, s.List())

	_, err = s.Get("https://push.example/a")
	assert.True(t, errors.Is(err, subscription.ErrNotFound))
}

func TestSetPreferredTime(t *testing.T) {
	s := NewMemoryStore()

	err := s.SetPreferredTime("https://push.example/unknown", "07:00")
	assert.True(t, errors.Is(err, subscription.ErrNotFound))

	require.NoError(t, s.Add(sub("https://push.example/a"), nil))

	err = s.SetPreferredTime("https://push.example/a", "7 o'clock")
	assert.True(t, errors.Is(err, subscription.ErrInvalidTime))

	require.NoError(t, s.SetPreferredTime("https://push.example/a", "07:15"))
	got, err := s.Get("https://push.example/a")
	require.NoError(t, err)
	assert.Equal(t, "07:15", got.Preference.Time)
}

func TestReturnedMetadataIsACopy(t *testing.T) {
	s := NewMemoryStore()
	meta := &subscription.Metadata{Lat: 1, Lon: 1}
	require.NoError(t, s.Add(sub("https://push.example/a"), meta))

	meta.Lat = 50
	got, err := s.Get("https://push.example/a")
	require.NoError(t, err)
	got.Meta.Lon = 50

	again, err := s.Get("https://push.example/a")
	require.NoError(t, err)
	assert.Equal(t, 1.0, again.Meta.Lat)
	assert.Equal(t, 1.0, again.Meta.Lon)
}
