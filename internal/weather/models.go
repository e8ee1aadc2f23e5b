package weather

import (
	"fmt"
	"time"
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
	ConditionMist    Condition = "mist"
)

// Coordinates is a point on the globe in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Key returns a canonical string key for logging.
func (c Coordinates) Key() string {
	return fmt.Sprintf("%.4f,%.4f", c.Lat, c.Lon)
}

// Summary is the normalized current-weather view for a location.
type Summary struct {
	Name         string    `json:"name"`        // location name as reported by the provider; may be empty
	Main         string    `json:"main"`        // primary condition text, e.g. "Rain"
	Description  string    `json:"description"` // e.g. "light rain"
	TemperatureC float64   `json:"temperatureC"`
	Condition    Condition `json:"condition"`
	Provider     string    `json:"provider"`
	Timestamp    time.Time `json:"timestamp"` // always UTC
}
