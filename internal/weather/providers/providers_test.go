package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nenepo/weatherCo/internal/weather"
)

var lagos = weather.Coordinates{Lat: 6.5244, Lon: 3.3792}

func TestOpenWeatherFetch(t *testing.T) {
	var query map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		query = map[string]string{"lat": q.Get("lat"), "lon": q.Get("lon"), "units": q.Get("units"), "appid": q.Get("appid")}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"Lagos","dt":1700000000,"main":{"temp":26.4},"weather":[{"main":"Rain","description":"light rain"}]}`))
	}))
	defer srv.Close()

	p := NewOpenWeatherProvider(NewHTTPClientConfig(srv.Client(), 0), "secret")
	p.baseURL = srv.URL

	got, err := p.Fetch(context.Background(), lagos)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"lat": "6.5244", "lon": "3.3792", "units": "metric", "appid": "secret"}, query)
	assert.Equal(t, "Lagos", got.Name)
	assert.Equal(t, "Rain", got.Main)
	assert.Equal(t, "light rain", got.Description)
	assert.Equal(t, 26.4, got.TemperatureC)
	assert.Equal(t, weather.ConditionRain, got.Condition)
	assert.Equal(t, int64(1700000000), got.Timestamp.Unix())
}

func TestOpenWeatherRequiresKey(t *testing.T) {
	p := NewOpenWeatherProvider(NewHTTPClientConfig(http.DefaultClient, 0), "")

	_, err := p.Fetch(context.Background(), lagos)
	assert.Error(t, err)
}

// TestNon2xxIsNotRetried verifies the default configuration makes a single attempt.
func TestNon2xxIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := NewOpenWeatherProvider(NewHTTPClientConfig(srv.Client(), 0), "bad-key")
	p.baseURL = srv.URL

	_, err := p.Fetch(context.Background(), lagos)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errUnexpected))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestServerErrorIsRetriedWhenConfigured(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"name":"Lagos","main":{"temp":20},"weather":[{"main":"Clear","description":"clear sky"}]}`))
	}))
	defer srv.Close()

	cfg := NewHTTPClientConfig(srv.Client(), 1)
	cfg.Backoff.InitialInterval = 1
	p := NewOpenWeatherProvider(cfg, "secret")
	p.baseURL = srv.URL

	got, err := p.Fetch(context.Background(), lagos)
	require.NoError(t, err)
	assert.Equal(t, "clear sky", got.Description)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestWeatherAPIFetch(t *testing.T) {
	var q string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q = r.URL.Query().Get("q")
		_, _ = w.Write([]byte(`{"location":{"name":"Lagos","localtime_epoch":1700000000},"current":{"temp_c":27.1,"condition":{"text":"Patchy light drizzle"}}}`))
	}))
	defer srv.Close()

	p := NewWeatherAPIProvider(NewHTTPClientConfig(srv.Client(), 0), "secret")
	p.baseURL = srv.URL

	got, err := p.Fetch(context.Background(), lagos)
	require.NoError(t, err)

	assert.Equal(t, "6.524400,3.379200", q)
	assert.Equal(t, "Lagos", got.Name)
	assert.Equal(t, "Rain", got.Main)
	assert.Equal(t, "patchy light drizzle", got.Description)
	assert.Equal(t, weather.ConditionRain, got.Condition)
}

func TestOpenMeteoFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("current_weather"))
		_, _ = w.Write([]byte(`{"current_weather":{"temperature":-1.5,"time":"2026-01-10T06:00","weathercode":73}}`))
	}))
	defer srv.Close()

	p := NewOpenMeteoProvider(NewHTTPClientConfig(srv.Client(), 0), "")
	p.baseURL = srv.URL
	p.reverse = func(lat, lon float64) (string, error) { return "Oslo", nil }

	got, err := p.Fetch(context.Background(), weather.Coordinates{Lat: 59.91, Lon: 10.75})
	require.NoError(t, err)

	assert.Equal(t, "Oslo", got.Name)
	assert.Equal(t, "Snow", got.Main)
	assert.Equal(t, "moderate snow fall", got.Description)
	assert.Equal(t, weather.ConditionSnow, got.Condition)
	assert.Equal(t, "2026-01-10T06:00:00Z", got.Timestamp.Format("2006-01-02T15:04:05Z07:00"))
}

func TestOpenMeteoKeepsWeatherWhenGeocodingFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"current_weather":{"temperature":30,"time":"2026-01-10T12:00","weathercode":0}}`))
	}))
	defer srv.Close()

	p := NewOpenMeteoProvider(NewHTTPClientConfig(srv.Client(), 0), "")
	p.baseURL = srv.URL
	p.reverse = func(lat, lon float64) (string, error) { return "", errors.New("quota") }

	got, err := p.Fetch(context.Background(), lagos)
	require.NoError(t, err)
	assert.Empty(t, got.Name)
	assert.Equal(t, "clear sky", got.Description)
}

func TestNew(t *testing.T) {
	cfg := NewHTTPClientConfig(http.DefaultClient, 0)

	for name, want := range map[string]string{
		"":               "openweathermap",
		"openweathermap": "openweathermap",
		"weatherapi":     "weatherapi",
		"openmeteo":      "openmeteo",
	} {
		p, err := New(name, cfg, APIKeys{})
		require.NoError(t, err)
		assert.Equal(t, want, p.Name())
	}

	_, err := New("darksky", cfg, APIKeys{})
	assert.Error(t, err)
}
