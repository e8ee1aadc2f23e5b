package push

import (
	"context"
	"errors"
	"log"

	"github.com/Nenepo/weatherCo/internal/notify"
	"github.com/Nenepo/weatherCo/internal/subscription"
	"github.com/Nenepo/weatherCo/internal/umbrella"
	"github.com/Nenepo/weatherCo/internal/weather"
)

// Sender delivers a payload to one subscription.
type Sender interface {
	Send(ctx context.Context, sub subscription.Subscription, p notify.Payload) error
}

// WeatherLookup returns the current weather at a point.
type WeatherLookup interface {
	Current(ctx context.Context, lat, lon float64) (weather.Summary, error)
}

// Planner keeps a subscriber's daily notification timer in step with the store.
type Planner interface {
	Arm(endpoint string) error
	Cancel(endpoint string)
}

// UmbrellaCheck is the result of an on-demand umbrella check.
type UmbrellaCheck struct {
	Verdict umbrella.Verdict `json:"verdict"`
	Message string           `json:"message"`
	Weather weather.Summary  `json:"weather"`
}

// Service implements the subscriber-facing operations on top of the store,
// the dispatcher and the scheduler.
//
// Subscribers are located by coordinates for update-time, send and test: the
// browser only knows its own position, not its endpoint. Several subscribers
// at the same spot are indistinguishable; the earliest one wins.
type Service struct {
	store   subscription.Store
	sender  Sender
	weather WeatherLookup
	planner Planner
}

// NewService creates a new Service. The planner is attached later with
// SetPlanner because the scheduler itself depends on the store.
func NewService(store subscription.Store, sender Sender, lookup WeatherLookup) *Service {
	return &Service{
		store:   store,
		sender:  sender,
		weather: lookup,
		planner: noopPlanner{},
	}
}

// SetPlanner attaches the scheduler.
func (s *Service) SetPlanner(p Planner) {
	if p == nil {
		p = noopPlanner{}
	}
	s.planner = p
}

// Subscribe stores (or replaces) a subscription and arms its daily timer.
func (s *Service) Subscribe(sub subscription.Subscription, meta *subscription.Metadata) error {
	if err := s.store.Add(sub, meta); err != nil {
		return err
	}
	log.Printf("INFO: new subscription: %s", sub.Endpoint)

	if err := s.planner.Arm(sub.Endpoint); err != nil {
		log.Printf("ERROR: failed to schedule %s: %v", sub.Endpoint, err)
	}
	return nil
}

// Unsubscribe removes a subscriber and cancels its timer.
// It returns subscription.ErrNotFound for unknown endpoints.
func (s *Service) Unsubscribe(endpoint string) error {
	s.planner.Cancel(endpoint)
	if err := s.store.Remove(endpoint); err != nil {
		return err
	}
	log.Printf("INFO: unsubscribed: %s", endpoint)
	return nil
}

// UpdateTime changes the preferred notification time of the subscriber at
// (lat, lon) and re-arms its timer.
func (s *Service) UpdateTime(lat, lon float64, hhmm string) error {
	if _, _, err := subscription.ParseTimeOfDay(hhmm); err != nil {
		return err
	}

	target, err := s.store.FindByCoordinates(lat, lon, subscription.CoordinateTolerance)
	if err != nil {
		return err
	}
	if err := s.store.SetPreferredTime(target.Endpoint(), hhmm); err != nil {
		return err
	}
	log.Printf("INFO: updated time for %s: %s", target.Endpoint(), hhmm)

	if err := s.planner.Arm(target.Endpoint()); err != nil {
		log.Printf("ERROR: failed to reschedule %s: %v", target.Endpoint(), err)
	}
	return nil
}

// ErrEmptyMessage is returned by SendMessage when the subscriber exists but
// the message is blank.
var ErrEmptyMessage = errors.New("message is required")

// SendMessage pushes a caller-supplied message to the subscriber at (lat, lon).
// An unknown location is reported before a blank message.
func (s *Service) SendMessage(ctx context.Context, lat, lon float64, message string) error {
	target, err := s.locate(lat, lon)
	if err != nil {
		return err
	}
	if message == "" {
		return ErrEmptyMessage
	}
	return s.sendTo(ctx, target, notify.FromMessage(message))
}

// SendTest pushes the fixed test notification to the subscriber at (lat, lon).
func (s *Service) SendTest(ctx context.Context, lat, lon float64) error {
	target, err := s.locate(lat, lon)
	if err != nil {
		return err
	}
	return s.sendTo(ctx, target, notify.Test())
}

func (s *Service) locate(lat, lon float64) (subscription.Subscriber, error) {
	target, err := s.store.FindByCoordinates(lat, lon, subscription.CoordinateTolerance)
	if err != nil {
		log.Printf("no subscription found for lat: %v lon: %v", lat, lon)
		return subscription.Subscriber{}, err
	}
	return target, nil
}

func (s *Service) sendTo(ctx context.Context, target subscription.Subscriber, p notify.Payload) error {
	if err := s.sender.Send(ctx, target.Subscription, p); err != nil {
		if IsStale(err) {
			s.Drop(target.Endpoint())
		}
		return err
	}
	log.Printf("INFO: sent %q to %s", p.Title, target.Endpoint())
	return nil
}

// Drop removes a subscriber the push service reported as gone.
func (s *Service) Drop(endpoint string) {
	s.planner.Cancel(endpoint)
	if err := s.store.Remove(endpoint); err != nil && !errors.Is(err, subscription.ErrNotFound) {
		log.Printf("ERROR: failed to remove stale subscription %s: %v", endpoint, err)
		return
	}
	log.Printf("INFO: removed stale subscription: %s", endpoint)
}

// Count returns the number of active subscribers.
func (s *Service) Count() int {
	return s.store.Count()
}

// Weather returns the current weather at (lat, lon).
func (s *Service) Weather(ctx context.Context, lat, lon float64) (weather.Summary, error) {
	return s.weather.Current(ctx, lat, lon)
}

// CheckUmbrella looks up the weather at (lat, lon) and classifies it.
func (s *Service) CheckUmbrella(ctx context.Context, lat, lon float64) (UmbrellaCheck, error) {
	summary, err := s.weather.Current(ctx, lat, lon)
	if err != nil {
		return UmbrellaCheck{}, err
	}
	v := umbrella.ClassifySummary(summary)
	return UmbrellaCheck{
		Verdict: v,
		Message: v.Message(),
		Weather: summary,
	}, nil
}

type noopPlanner struct{}

func (noopPlanner) Arm(string) error { return nil }
func (noopPlanner) Cancel(string)    {}
