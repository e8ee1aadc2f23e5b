package providers

import (
	"fmt"

	"github.com/Nenepo/weatherCo/internal/weather"
)

// APIKeys carries the credentials of every supported provider.
type APIKeys struct {
	OpenWeather string
	WeatherAPI  string
	Geocoder    string
}

// New returns the provider registered under name.
func New(name string, cfg HTTPClientConfig, keys APIKeys) (weather.Provider, error) {
	switch name {
	case "", "openweathermap", "openweather":
		return NewOpenWeatherProvider(cfg, keys.OpenWeather), nil
	case "weatherapi":
		return NewWeatherAPIProvider(cfg, keys.WeatherAPI), nil
	case "openmeteo":
		return NewOpenMeteoProvider(cfg, keys.Geocoder), nil
	default:
		return nil, fmt.Errorf("unknown weather provider %q", name)
	}
}
