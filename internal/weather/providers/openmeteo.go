package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Nenepo/weatherCo/internal/weather"
	"github.com/kelvins/geocoder"
	"github.com/sony/gobreaker"
)

// OpenMeteoProvider implements the weather.Provider interface for Open-Meteo.
// Open-Meteo returns no place names, so the name is resolved by reverse
// geocoding when a Google API key is configured.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker

	// reverse resolves coordinates to a place name; nil disables naming.
	reverse func(lat, lon float64) (string, error)
}

func NewOpenMeteoProvider(cfg HTTPClientConfig, geocoderAPIKey string) *OpenMeteoProvider {
	p := &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: "https://api.open-meteo.com/v1/forecast",
		httpCfg: cfg,
		circuit: newCircuitBreaker("openmeteo"),
	}
	if geocoderAPIKey != "" {
		// geocoder only takes its key through this package-level variable.
		geocoder.ApiKey = geocoderAPIKey
		p.reverse = reverseGeocode
	}
	return p
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

func (p *OpenMeteoProvider) Fetch(ctx context.Context, at weather.Coordinates) (weather.Summary, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", strconv.FormatFloat(at.Lat, 'f', -1, 64))
		values.Set("longitude", strconv.FormatFloat(at.Lon, 'f', -1, 64))
		values.Set("current_weather", "true")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.Summary{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		CurrentWeather struct {
			Temperature float64 `json:"temperature"`
			Time        string  `json:"time"`
			WeatherCode int     `json:"weathercode"`
		} `json:"current_weather"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Summary{}, err
	}

	// current_weather.time is ISO8601 without seconds or zone, in GMT.
	ts, err := time.Parse("2006-01-02T15:04", payload.CurrentWeather.Time)
	if err != nil {
		ts = time.Now().UTC()
	}

	code := payload.CurrentWeather.WeatherCode
	cond := mapOpenMeteoCondition(code)

	summary := weather.Summary{
		Main:         conditionTitle(cond),
		Description:  describeOpenMeteoCode(code),
		TemperatureC: payload.CurrentWeather.Temperature,
		Condition:    cond,
		Provider:     p.name,
		Timestamp:    ts.UTC(),
	}

	if p.reverse != nil {
		name, err := p.reverse(at.Lat, at.Lon)
		if err != nil {
			// A missing name is cosmetic; keep the weather.
			log.Printf("openmeteo: reverse geocoding failed for %s: %v", at.Key(), err)
		} else {
			summary.Name = name
		}
	}

	return summary, nil
}

func reverseGeocode(lat, lon float64) (string, error) {
	addresses, err := geocoder.GeocodingReverse(geocoder.Location{Latitude: lat, Longitude: lon})
	if err != nil {
		return "", err
	}
	for _, a := range addresses {
		if a.City != "" {
			return a.City, nil
		}
	}
	if len(addresses) > 0 {
		return addresses[0].FormattedAddress, nil
	}
	return "", fmt.Errorf("no address for %f,%f", lat, lon)
}

func mapOpenMeteoCondition(code int) weather.Condition {
	// Mapping based on WMO weather interpretation codes (simplified).
	switch {
	case code == 0:
		return weather.ConditionClear
	case code >= 1 && code <= 3:
		return weather.ConditionCloudy
	case code == 45 || code == 48:
		return weather.ConditionMist
	case (code >= 51 && code <= 67) || (code >= 80 && code <= 82):
		return weather.ConditionRain
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return weather.ConditionSnow
	case code >= 95:
		return weather.ConditionStorm
	default:
		return weather.ConditionUnknown
	}
}

var openMeteoDescriptions = map[int]string{
	0:  "clear sky",
	1:  "mainly clear",
	2:  "partly cloudy",
	3:  "overcast",
	45: "fog",
	48: "depositing rime fog",
	51: "light drizzle",
	53: "moderate drizzle",
	55: "dense drizzle",
	56: "light freezing drizzle",
	57: "dense freezing drizzle",
	61: "slight rain",
	63: "moderate rain",
	65: "heavy rain",
	66: "light freezing rain",
	67: "heavy freezing rain",
	71: "slight snow fall",
	73: "moderate snow fall",
	75: "heavy snow fall",
	77: "snow grains",
	80: "slight rain showers",
	81: "moderate rain showers",
	82: "violent rain showers",
	85: "slight snow showers",
	86: "heavy snow showers",
	95: "thunderstorm",
	96: "thunderstorm with slight hail",
	99: "thunderstorm with heavy hail",
}

func describeOpenMeteoCode(code int) string {
	return openMeteoDescriptions[code]
}
