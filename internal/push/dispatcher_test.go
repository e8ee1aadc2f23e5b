package push

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nenepo/weatherCo/internal/notify"
	"github.com/Nenepo/weatherCo/internal/subscription"
)

type recordedSend struct {
	message []byte
	sub     *webpush.Subscription
	opts    *webpush.Options
}

func fakeTransport(status int, err error, rec *recordedSend) sendFunc {
	return func(ctx context.Context, message []byte, s *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
		if rec != nil {
			rec.message, rec.sub, rec.opts = message, s, options
		}
		if err != nil {
			return nil, err
		}
		return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(""))}, nil
	}
}

var testSub = subscription.Subscription{
	Endpoint: "https://push.example/abc",
	Keys:     subscription.Keys{P256dh: "key", Auth: "auth"},
}

func TestSendDeliversPayload(t *testing.T) {
	var rec recordedSend
	d := NewDispatcher(VAPIDConfig{PublicKey: "pub", PrivateKey: "priv", Subject: "mailto:admin@weatherco.com", TTL: 60}, nil)
	d.send = fakeTransport(http.StatusCreated, nil, &rec)

	err := d.Send(context.Background(), testSub, notify.FromMessage("Take your umbrella"))
	require.NoError(t, err)

	var got notify.Payload
	require.NoError(t, json.Unmarshal(rec.message, &got))
	assert.Equal(t, notify.FromMessage("Take your umbrella"), got)

	assert.Equal(t, "https://push.example/abc", rec.sub.Endpoint)
	assert.Equal(t, "key", rec.sub.Keys.P256dh)
	assert.Equal(t, "auth", rec.sub.Keys.Auth)
	assert.Equal(t, "admin@weatherco.com", rec.opts.Subscriber)
	assert.Equal(t, "pub", rec.opts.VAPIDPublicKey)
	assert.Equal(t, "priv", rec.opts.VAPIDPrivateKey)
	assert.Equal(t, 60, rec.opts.TTL)
}

func TestSendClassifiesStale(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusGone} {
		d := NewDispatcher(VAPIDConfig{}, nil)
		d.send = fakeTransport(status, nil, nil)

		err := d.Send(context.Background(), testSub, notify.Test())
		assert.True(t, IsStale(err), "status %d should be stale", status)
		assert.False(t, errors.Is(err, ErrTransient))
	}
}

func TestSendClassifiesTransient(t *testing.T) {
	d := NewDispatcher(VAPIDConfig{}, nil)

	d.send = fakeTransport(http.StatusTooManyRequests, nil, nil)
	err := d.Send(context.Background(), testSub, notify.Test())
	assert.True(t, errors.Is(err, ErrTransient))
	assert.False(t, IsStale(err))

	d.send = fakeTransport(0, errors.New("connection refused"), nil)
	err = d.Send(context.Background(), testSub, notify.Test())
	assert.True(t, errors.Is(err, ErrTransient))
}

func TestVAPIDConfigured(t *testing.T) {
	assert.False(t, VAPIDConfig{PublicKey: "pub"}.Configured())
	assert.True(t, VAPIDConfig{PublicKey: "pub", PrivateKey: "priv"}.Configured())
}
