package subscription

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidSubscription is returned when a subscription has no endpoint.
	ErrInvalidSubscription = errors.New("invalid subscription")
	// ErrNotFound is returned when no subscriber matches a lookup.
	ErrNotFound = errors.New("subscription not found")
	// ErrInvalidTime is returned for preference times not in HH:MM form.
	ErrInvalidTime = errors.New("invalid time of day")
)

// Store is the contract the in-memory store (and any future persistent store) must satisfy.
// Subscriptions and their preferences are always written and deleted together.
type Store interface {
	Add(sub Subscription, meta *Metadata) error
	Remove(endpoint string) error
	Get(endpoint string) (Subscriber, error)
	FindByCoordinates(lat, lon, tolerance float64) (Subscriber, error)
	SetPreferredTime(endpoint, hhmm string) error
	List() []Subscriber
	Count() int
}

// ParseTimeOfDay splits an "HH:MM" string into hour and minute.
func ParseTimeOfDay(hhmm string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, hhmm)
	}
	return t.Hour(), t.Minute(), nil
}
