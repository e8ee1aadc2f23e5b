package weather

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// ErrUpstream wraps every failure of the external weather provider.
var ErrUpstream = errors.New("weather provider error")

// Service looks up current weather through a single configured provider.
// Failures are not retried here; callers decide whether they are fatal.
type Service struct {
	provider Provider
	timeout  time.Duration
}

// NewService creates a new Service. A zero timeout leaves the caller's deadline in charge.
func NewService(provider Provider, timeout time.Duration) *Service {
	return &Service{
		provider: provider,
		timeout:  timeout,
	}
}

// Current returns the current weather at (lat, lon).
func (s *Service) Current(ctx context.Context, lat, lon float64) (Summary, error) {
	if s.provider == nil {
		return Summary{}, fmt.Errorf("%w: no weather provider configured", ErrUpstream)
	}

	at := Coordinates{Lat: lat, Lon: lon}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	summary, err := s.provider.Fetch(ctx, at)
	if err != nil {
		log.Printf("provider %s fetch failed for %s: %v", s.provider.Name(), at.Key(), err)
		return Summary{}, fmt.Errorf("%w: %s: %v", ErrUpstream, s.provider.Name(), err)
	}

	if summary.Provider == "" {
		summary.Provider = s.provider.Name()
	}
	if summary.Timestamp.IsZero() {
		summary.Timestamp = time.Now().UTC()
	}
	return summary, nil
}
