package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/Nenepo/weatherCo/internal/subscription"
)

// record pairs a subscription with its notification preference. Keeping both
// in one value means they cannot drift apart.
type record struct {
	sub        subscription.Subscription
	meta       *subscription.Metadata
	preference subscription.Preference
	createdAt  time.Time
}

// MemoryStore is a concurrency-safe in-memory implementation of subscription.Store.
// Lookups by coordinates scan subscribers in insertion order.
type MemoryStore struct {
	mu sync.RWMutex

	// key: endpoint
	data map[string]*record
	// endpoints in insertion order
	order []string

	now func() time.Time
}

var _ subscription.Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]*record),
		now:  time.Now,
	}
}

// Add inserts or overwrites a subscriber and resets its preferred time to the default.
// Overwriting keeps the subscriber's original position in the scan order.
func (s *MemoryStore) Add(sub subscription.Subscription, meta *subscription.Metadata) error {
	if sub.Endpoint == "" {
		return subscription.ErrInvalidSubscription
	}

	var metaCopy *subscription.Metadata
	if meta != nil {
		m := *meta
		metaCopy = &m
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[sub.Endpoint]; !ok {
		s.order = append(s.order, sub.Endpoint)
	}
	s.data[sub.Endpoint] = &record{
		sub:        sub,
		meta:       metaCopy,
		preference: subscription.Preference{Time: subscription.DefaultPreferredTime},
		createdAt:  s.now().UTC(),
	}
	return nil
}

// Remove deletes a subscriber and its preference.
func (s *MemoryStore) Remove(endpoint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[endpoint]; !ok {
		return fmt.Errorf("%w: %s", subscription.ErrNotFound, endpoint)
	}
	delete(s.data, endpoint)
	for i, e := range s.order {
		if e == endpoint {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Get returns the subscriber stored under endpoint.
func (s *MemoryStore) Get(endpoint string) (subscription.Subscriber, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.data[endpoint]
	if !ok {
		return subscription.Subscriber{}, fmt.Errorf("%w: %s", subscription.ErrNotFound, endpoint)
	}
	return rec.view(), nil
}

// FindByCoordinates returns the first subscriber, in insertion order, whose
// location is within tolerance of (lat, lon) on both axes. Subscribers without
// a location never match.
func (s *MemoryStore) FindByCoordinates(lat, lon, tolerance float64) (subscription.Subscriber, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, endpoint := range s.order {
		rec := s.data[endpoint]
		if rec.meta != nil && rec.meta.Matches(lat, lon, tolerance) {
			return rec.view(), nil
		}
	}
	return subscription.Subscriber{}, fmt.Errorf("%w: no subscriber near %.4f,%.4f", subscription.ErrNotFound, lat, lon)
}

// SetPreferredTime updates the notification time of an existing subscriber.
func (s *MemoryStore) SetPreferredTime(endpoint, hhmm string) error {
	if _, _, err := subscription.ParseTimeOfDay(hhmm); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.data[endpoint]
	if !ok {
		return fmt.Errorf("%w: %s", subscription.ErrNotFound, endpoint)
	}
	rec.preference.Time = hhmm
	return nil
}

// List returns a snapshot of all subscribers in insertion order.
func (s *MemoryStore) List() []subscription.Subscriber {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]subscription.Subscriber, 0, len(s.order))
	for _, endpoint := range s.order {
		result = append(result, s.data[endpoint].view())
	}
	return result
}

// Count returns the number of stored subscribers.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (r *record) view() subscription.Subscriber {
	var meta *subscription.Metadata
	if r.meta != nil {
		m := *r.meta
		meta = &m
	}
	return subscription.Subscriber{
		Subscription: r.sub,
		Meta:         meta,
		Preference:   r.preference,
		CreatedAt:    r.createdAt,
	}
}
