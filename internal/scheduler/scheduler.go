package scheduler

import (
	"container/heap"
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"

	"github.com/Nenepo/weatherCo/internal/notify"
	"github.com/Nenepo/weatherCo/internal/push"
	"github.com/Nenepo/weatherCo/internal/subscription"
	"github.com/Nenepo/weatherCo/internal/weather"
)

// WeatherLookup returns the current weather at a point.
type WeatherLookup interface {
	Current(ctx context.Context, lat, lon float64) (weather.Summary, error)
}

// Sender delivers a payload to one subscription.
type Sender interface {
	Send(ctx context.Context, sub subscription.Subscription, p notify.Payload) error
}

// Options tunes a Scheduler. Zero values fall back to defaults.
type Options struct {
	// Location is the zone preferred times are read in. Defaults to time.Local.
	Location *time.Location
	// DefaultCoordinates is used for subscribers that registered without a location.
	DefaultCoordinates weather.Coordinates
	// FireTimeout bounds the weather lookup and push of a single fire.
	FireTimeout time.Duration
	// ReconcileInterval is how often armed timers are checked against the store.
	// Zero disables the reconcile job.
	ReconcileInterval time.Duration
	// Now is the clock; defaults to time.Now.
	Now func() time.Time
}

// Scheduler sends every subscriber a weather notification once a day at its
// preferred local time.
//
// A single goroutine owns a min-heap of next fire times. Each subscriber moves
// Idle -> Armed -> Firing -> Armed, or ends Cancelled on unsubscribe or when the
// push service reports the subscription gone. Fires run concurrently, one
// goroutine each; a fire that is cancelled mid-flight still completes its one
// delivery attempt.
type Scheduler struct {
	store   subscription.Store
	weather WeatherLookup
	sender  Sender
	opts    Options

	mu      sync.Mutex
	entries map[string]*entry
	queue   fireQueue
	wake    chan struct{}

	cron     *gocron.Scheduler
	cancel   context.CancelFunc
	done     chan struct{}
	fires    sync.WaitGroup
	stopOnce sync.Once
}

// New creates a new Scheduler.
func New(store subscription.Store, lookup WeatherLookup, sender Sender, opts Options) *Scheduler {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.FireTimeout <= 0 {
		opts.FireTimeout = 30 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Scheduler{
		store:   store,
		weather: lookup,
		sender:  sender,
		opts:    opts,
		entries: make(map[string]*entry),
		wake:    make(chan struct{}, 1),
		cron:    gocron.NewScheduler(opts.Location),
	}
}

// NextFireTime returns the next instant strictly after now at which the local
// wall clock in loc reads hhmm.
func NextFireTime(now time.Time, hhmm string, loc *time.Location) (time.Time, error) {
	hour, minute, err := subscription.ParseTimeOfDay(hhmm)
	if err != nil {
		return time.Time{}, err
	}

	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	if !next.After(now) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, hour, minute, 0, 0, loc)
	}
	return next, nil
}

// Start arms a timer for every stored subscriber, then runs the dispatch loop
// and the periodic reconcile job in the background.
func (s *Scheduler) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	s.Bootstrap()

	if s.opts.ReconcileInterval > 0 {
		_, err := s.cron.Every(s.opts.ReconcileInterval).
			Tag("reconcile").
			SingletonMode().
			WaitForSchedule().
			Do(s.Reconcile)
		if err != nil {
			cancel()
			return err
		}
		s.cron.StartAsync()
	}

	go s.run(ctx)
	return nil
}

// Stop halts the loop and the reconcile job and waits for in-flight fires.
// Armed timers are discarded; nothing is persisted.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		if s.cron != nil {
			s.cron.Stop()
		}
		if s.cancel != nil {
			s.cancel()
			<-s.done
		}
		s.fires.Wait()
	})
}

// Bootstrap arms every subscriber currently in the store.
func (s *Scheduler) Bootstrap() {
	subs := s.store.List()
	armed := 0
	for _, sub := range subs {
		if err := s.Arm(sub.Endpoint()); err != nil {
			log.Printf("scheduler: failed to arm %s: %v", sub.Endpoint(), err)
			continue
		}
		armed++
	}
	log.Printf("scheduler: bootstrap armed %d of %d subscriptions", armed, len(subs))
}

// Reconcile arms stored subscribers that have no timer and cancels timers
// whose subscriber is gone.
func (s *Scheduler) Reconcile() {
	stored := s.store.List()
	present := make(map[string]struct{}, len(stored))
	var missing []string

	s.mu.Lock()
	for _, sub := range stored {
		present[sub.Endpoint()] = struct{}{}
		if _, ok := s.entries[sub.Endpoint()]; !ok {
			missing = append(missing, sub.Endpoint())
		}
	}
	var orphaned []string
	for endpoint, e := range s.entries {
		if _, ok := present[endpoint]; !ok && e.state == stateArmed {
			orphaned = append(orphaned, endpoint)
		}
	}
	s.mu.Unlock()

	for _, endpoint := range missing {
		if err := s.Arm(endpoint); err != nil && !errors.Is(err, subscription.ErrNotFound) {
			log.Printf("scheduler: reconcile failed to arm %s: %v", endpoint, err)
		}
	}
	for _, endpoint := range orphaned {
		s.Cancel(endpoint)
	}

	if len(missing)+len(orphaned) > 0 {
		log.Printf("scheduler: reconcile armed %d, cancelled %d", len(missing), len(orphaned))
	}
}

// Arm (re)computes the subscriber's next fire time from its stored preference.
// Arming a subscriber that is currently firing revokes a pending cancel; the
// new time is picked up when the fire completes.
func (s *Scheduler) Arm(endpoint string) error {
	sub, err := s.store.Get(endpoint)
	if err != nil {
		return err
	}
	next, err := NextFireTime(s.opts.Now(), sub.Preference.Time, s.opts.Location)
	if err != nil {
		return err
	}

	s.mu.Lock()
	e, ok := s.entries[endpoint]
	switch {
	case !ok:
		e = &entry{endpoint: endpoint, next: next, state: stateArmed, index: -1}
		s.entries[endpoint] = e
		heap.Push(&s.queue, e)
	case e.state == stateFiring:
		e.cancelled = false
	default:
		e.next = next
		heap.Fix(&s.queue, e.index)
	}
	s.mu.Unlock()

	s.poke()
	log.Printf("DEBUG: scheduler: %s armed for %s (in %s)", endpoint, next.Format(time.RFC3339), next.Sub(s.opts.Now()).Round(time.Second))
	return nil
}

// Cancel disarms a subscriber. A fire already in flight is allowed to finish
// but will not re-arm.
func (s *Scheduler) Cancel(endpoint string) {
	s.mu.Lock()
	e, ok := s.entries[endpoint]
	if !ok {
		s.mu.Unlock()
		return
	}
	if e.state == stateFiring {
		e.cancelled = true
		s.mu.Unlock()
		return
	}
	heap.Remove(&s.queue, e.index)
	e.state = stateCancelled
	delete(s.entries, endpoint)
	s.mu.Unlock()

	s.poke()
	log.Printf("DEBUG: scheduler: %s cancelled", endpoint)
}

// NextFire returns the armed fire time of a subscriber.
func (s *Scheduler) NextFire(endpoint string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[endpoint]
	if !ok || e.state != stateArmed {
		return time.Time{}, false
	}
	return e.next, true
}

// Len returns the number of subscribers with a live timer, firing included.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Scheduler) poke() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)

	for {
		var timerC <-chan time.Time
		var timer *time.Timer

		s.mu.Lock()
		if len(s.queue) > 0 {
			wait := s.queue[0].next.Sub(s.opts.Now())
			if wait < 0 {
				wait = 0
			}
			timer = time.NewTimer(wait)
			timerC = timer.C
		}
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-s.wake:
		case <-timerC:
		}
		if timer != nil {
			timer.Stop()
		}

		s.fireDue(ctx)
	}
}

// fireDue pops every entry whose time has come and fires each in its own goroutine.
func (s *Scheduler) fireDue(ctx context.Context) {
	now := s.opts.Now()

	s.mu.Lock()
	var due []string
	for len(s.queue) > 0 && !s.queue[0].next.After(now) {
		e := heap.Pop(&s.queue).(*entry)
		e.state = stateFiring
		due = append(due, e.endpoint)
	}
	s.mu.Unlock()

	for _, endpoint := range due {
		s.fires.Add(1)
		go func(endpoint string) {
			defer s.fires.Done()
			s.fire(ctx, endpoint)
		}(endpoint)
	}
}

func (s *Scheduler) fire(ctx context.Context, endpoint string) {
	fctx, cancel := context.WithTimeout(ctx, s.opts.FireTimeout)
	keep := s.deliver(fctx, uuid.NewString(), endpoint)
	cancel()
	s.finish(endpoint, keep)
}

// deliver runs lookup, compose and push for one subscriber. It reports whether
// the subscriber should be re-armed.
func (s *Scheduler) deliver(ctx context.Context, fireID, endpoint string) bool {
	log.Printf("scheduler[%s]: sending scheduled notification to %s", fireID, endpoint)

	sub, err := s.store.Get(endpoint)
	if err != nil {
		log.Printf("scheduler[%s]: %s no longer subscribed", fireID, endpoint)
		return false
	}

	at := s.opts.DefaultCoordinates
	if sub.Meta != nil {
		at = weather.Coordinates{Lat: sub.Meta.Lat, Lon: sub.Meta.Lon}
	}

	summary, err := s.weather.Current(ctx, at.Lat, at.Lon)
	if err != nil {
		log.Printf("ERROR: scheduler[%s]: weather lookup failed for %s: %v", fireID, endpoint, err)
		return true
	}

	if err := s.sender.Send(ctx, sub.Subscription, notify.FromWeather(summary)); err != nil {
		if push.IsStale(err) {
			if rmErr := s.store.Remove(endpoint); rmErr != nil && !errors.Is(rmErr, subscription.ErrNotFound) {
				log.Printf("ERROR: scheduler[%s]: failed to remove %s: %v", fireID, endpoint, rmErr)
			}
			log.Printf("scheduler[%s]: removed stale subscription: %s", fireID, endpoint)
			return false
		}
		log.Printf("ERROR: scheduler[%s]: notify error for %s: %v", fireID, endpoint, err)
		return true
	}

	log.Printf("INFO: scheduler[%s]: sent notification to %s for %s", fireID, endpoint, summary.Name)
	return true
}

// finish moves a fired entry back to Armed for the next day, or drops it.
func (s *Scheduler) finish(endpoint string, keep bool) {
	var next time.Time
	if keep {
		sub, err := s.store.Get(endpoint)
		if err == nil {
			next, err = NextFireTime(s.opts.Now(), sub.Preference.Time, s.opts.Location)
		}
		keep = err == nil
	}

	s.mu.Lock()
	e, ok := s.entries[endpoint]
	if !ok || e.state != stateFiring {
		s.mu.Unlock()
		return
	}
	if !keep || e.cancelled {
		e.state = stateCancelled
		delete(s.entries, endpoint)
		s.mu.Unlock()
		return
	}
	e.next = next
	e.state = stateArmed
	heap.Push(&s.queue, e)
	s.mu.Unlock()

	s.poke()
}
