package subscription

import (
	"time"
)

// DefaultPreferredTime is the local time of day a new subscriber is notified at.
const DefaultPreferredTime = "06:00"

// CoordinateTolerance is the per-axis tolerance, in degrees, used when a
// subscriber is located by its coordinates.
const CoordinateTolerance = 1e-4

// Keys holds the client public key material of a push subscription.
type Keys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// Subscription is the browser PushSubscription as serialized by toJSON().
// Endpoint uniquely identifies a subscriber.
type Subscription struct {
	Endpoint       string `json:"endpoint"`
	ExpirationTime *int64 `json:"expirationTime,omitempty"`
	Keys           Keys   `json:"keys"`
}

// Metadata is the location a subscriber registered with.
type Metadata struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Matches reports whether both axes differ from (lat, lon) by less than tolerance.
func (m Metadata) Matches(lat, lon, tolerance float64) bool {
	return abs(m.Lat-lat) < tolerance && abs(m.Lon-lon) < tolerance
}

// Preference holds a subscriber's notification settings.
type Preference struct {
	Time string `json:"time"` // HH:MM, local to the scheduler's zone
}

// Subscriber is the stored view of one subscription.
// Meta is nil when the client did not send a location.
type Subscriber struct {
	Subscription Subscription `json:"subscription"`
	Meta         *Metadata    `json:"meta,omitempty"`
	Preference   Preference   `json:"preference"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// Endpoint returns the subscriber's primary key.
func (s Subscriber) Endpoint() string {
	return s.Subscription.Endpoint
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
