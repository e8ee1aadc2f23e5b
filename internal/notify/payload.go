package notify

import (
	"fmt"

	"github.com/Nenepo/weatherCo/internal/common"
	"github.com/Nenepo/weatherCo/internal/weather"
)

// Payload is the JSON document the service worker turns into a notification.
type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`
}

const (
	defaultURL         = "/"
	fallbackName       = "your area"
	fallbackDesc       = "Weather update"
	testNotifyTitle    = "Test Notification"
	testNotifyBody     = "This is a test notification from WeatherCo!"
	messageNotifyTitle = "Umbrella Check"
)

// FromMessage wraps a caller-supplied message.
func FromMessage(message string) Payload {
	return Payload{
		Title: messageNotifyTitle,
		Body:  message,
		URL:   defaultURL,
	}
}

// FromWeather builds the daily notification from a weather summary.
func FromWeather(s weather.Summary) Payload {
	name := s.Name
	if name == "" {
		name = fallbackName
	}
	desc := s.Description
	if desc == "" {
		desc = fallbackDesc
	}

	return Payload{
		Title: "Umbrella check: " + name,
		Body:  fmt.Sprintf("%s, %d°C. Have a great day!", desc, common.RoundHalfUp(s.TemperatureC)),
		URL:   defaultURL,
	}
}

// Test is the fixed payload used to check a subscription end to end.
func Test() Payload {
	return Payload{
		Title: testNotifyTitle,
		Body:  testNotifyBody,
		URL:   defaultURL,
	}
}
