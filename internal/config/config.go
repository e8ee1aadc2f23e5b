package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Nenepo/weatherCo/internal/weather"
)

type AppConfig struct {
	Port string

	// Web Push application server identity.
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	VAPIDSubject    string
	PushTTL         int

	// Weather provider selection and credentials.
	WeatherProvider   string
	OpenWeatherAPIKey string
	WeatherAPIKey     string
	GeocoderAPIKey    string

	// Outbound HTTP behaviour.
	HTTPTimeout       time.Duration
	WeatherMaxRetries int // 0 = single attempt

	// Scheduler.
	NotifyLocation     *time.Location
	DefaultCoordinates weather.Coordinates // used for subscribers without a location
	ReconcileInterval  time.Duration       // 0 disables the reconcile job
	FireTimeout        time.Duration

	CORSAllowOrigins string
}

// Load reads configuration from environment with sensible defaults.
// Call godotenv.Load first to pick up a .env file.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{}
	var err error

	cfg.Port = getenvDefault("PORT", "4000")

	cfg.VAPIDPublicKey = os.Getenv("VAPID_PUBLIC_KEY")
	cfg.VAPIDPrivateKey = os.Getenv("VAPID_PRIVATE_KEY")
	cfg.VAPIDSubject = getenvDefault("VAPID_SUBJECT", "mailto:admin@weatherco.com")
	if cfg.PushTTL, err = getenvInt("PUSH_TTL", 86400); err != nil {
		return nil, err
	}

	cfg.WeatherProvider = getenvDefault("WEATHER_PROVIDER", "openweathermap")
	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHERMAP_KEY")
	cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_API_KEY")
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.WeatherMaxRetries, err = getenvInt("WEATHER_MAX_RETRIES", 0); err != nil {
		return nil, err
	}
	if cfg.WeatherMaxRetries < 0 {
		return nil, fmt.Errorf("invalid WEATHER_MAX_RETRIES: must not be negative")
	}

	tz := getenvDefault("NOTIFY_TIMEZONE", "Local")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFY_TIMEZONE: %w", err)
	}
	cfg.NotifyLocation = loc

	// Lagos, as in the web client's fallback.
	if cfg.DefaultCoordinates.Lat, err = getenvFloat("DEFAULT_LAT", 6.5244); err != nil {
		return nil, err
	}
	if cfg.DefaultCoordinates.Lon, err = getenvFloat("DEFAULT_LON", 3.3792); err != nil {
		return nil, err
	}

	if cfg.ReconcileInterval, err = getenvDuration("SCHEDULER_RECONCILE_INTERVAL", "15m"); err != nil {
		return nil, err
	}
	if cfg.FireTimeout, err = getenvDuration("SCHEDULER_FIRE_TIMEOUT", "30s"); err != nil {
		return nil, err
	}

	cfg.CORSAllowOrigins = getenvDefault("CORS_ALLOW_ORIGINS", "*")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
