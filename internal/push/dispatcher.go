package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/Nenepo/weatherCo/internal/notify"
	"github.com/Nenepo/weatherCo/internal/subscription"
)

var (
	// ErrStaleSubscription means the push service no longer knows the endpoint
	// (404 or 410). The subscriber must be removed.
	ErrStaleSubscription = errors.New("stale push subscription")
	// ErrTransient covers every other delivery failure. Nothing is retried.
	ErrTransient = errors.New("push delivery failed")
)

// IsStale reports whether err is a stale-subscription delivery failure.
func IsStale(err error) bool {
	return errors.Is(err, ErrStaleSubscription)
}

// VAPIDConfig holds the application server identity used to sign pushes.
type VAPIDConfig struct {
	PublicKey  string
	PrivateKey string
	Subject    string // contact e-mail or https URL
	TTL        int    // seconds the push service may hold an undelivered message
}

// Configured reports whether both halves of the key pair are present.
func (c VAPIDConfig) Configured() bool {
	return c.PublicKey != "" && c.PrivateKey != ""
}

// sendFunc matches webpush.SendNotificationWithContext.
type sendFunc func(ctx context.Context, message []byte, s *webpush.Subscription, options *webpush.Options) (*http.Response, error)

// Dispatcher delivers payloads to the push service with a single attempt.
// Success means the push service accepted the message, not that the device
// displayed it.
type Dispatcher struct {
	vapid  VAPIDConfig
	client webpush.HTTPClient
	send   sendFunc
}

// NewDispatcher creates a Dispatcher. A nil client uses http.DefaultClient.
func NewDispatcher(vapid VAPIDConfig, client *http.Client) *Dispatcher {
	d := &Dispatcher{
		vapid: vapid,
		send:  webpush.SendNotificationWithContext,
	}
	if client != nil {
		d.client = client
	}
	return d
}

// Send encodes p and delivers it to sub.
func (d *Dispatcher) Send(ctx context.Context, sub subscription.Subscription, p notify.Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("%w: encode payload: %v", ErrTransient, err)
	}

	opts := &webpush.Options{
		HTTPClient:      d.client,
		Subscriber:      strings.TrimPrefix(d.vapid.Subject, "mailto:"),
		VAPIDPublicKey:  d.vapid.PublicKey,
		VAPIDPrivateKey: d.vapid.PrivateKey,
		TTL:             d.vapid.TTL,
		Urgency:         webpush.UrgencyNormal,
	}

	resp, err := d.send(ctx, body, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.Keys.P256dh,
			Auth:   sub.Keys.Auth,
		},
	}, opts)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return classify(sub.Endpoint, resp.StatusCode)
}

func classify(endpoint string, status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusNotFound || status == http.StatusGone:
		log.Printf("push: subscription expired (%d): %s", status, endpoint)
		return fmt.Errorf("%w: status %d", ErrStaleSubscription, status)
	default:
		log.Printf("ERROR: push: unexpected status %d for %s", status, endpoint)
		return fmt.Errorf("%w: status %d", ErrTransient, status)
	}
}
