package httpapi

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/Nenepo/weatherCo/internal/subscription"
)

// metaBody is the client's position as sent in request bodies.
type metaBody struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `json:"lon" validate:"gte=-180,lte=180"`
}

func (m *metaBody) toMetadata() *subscription.Metadata {
	if m == nil {
		return nil
	}
	return &subscription.Metadata{Lat: m.Lat, Lon: m.Lon}
}

type keysBody struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

type subscriptionBody struct {
	Endpoint       string   `json:"endpoint" validate:"required"`
	ExpirationTime *int64   `json:"expirationTime"`
	Keys           keysBody `json:"keys"`
}

type subscribeRequest struct {
	Subscription *subscriptionBody `json:"subscription" validate:"required"`
	Meta         *metaBody         `json:"meta"`
}

func (r subscribeRequest) toSubscription() subscription.Subscription {
	return subscription.Subscription{
		Endpoint:       r.Subscription.Endpoint,
		ExpirationTime: r.Subscription.ExpirationTime,
		Keys: subscription.Keys{
			P256dh: r.Subscription.Keys.P256dh,
			Auth:   r.Subscription.Keys.Auth,
		},
	}
}

type unsubscribeRequest struct {
	Endpoint string `json:"endpoint" validate:"required"`
}

type updateTimeRequest struct {
	Time string    `json:"time" validate:"required"`
	Meta *metaBody `json:"meta"`
}

type sendNotificationRequest struct {
	Meta    *metaBody `json:"meta"`
	Message string    `json:"message"`
}

type testNotificationRequest struct {
	Meta *metaBody `json:"meta"`
}

// coordinatesQuery holds the lat/lon query parameters of the weather endpoints.
type coordinatesQuery struct {
	Lat float64 `validate:"gte=-90,lte=90"`
	Lon float64 `validate:"gte=-180,lte=180"`
}

var errMissingCoordinates = errors.New("missing lat/lon parameters")

func parseCoordinatesQuery(c *fiber.Ctx) (coordinatesQuery, error) {
	var q coordinatesQuery

	latStr, lonStr := c.Query("lat"), c.Query("lon")
	if latStr == "" || lonStr == "" {
		return q, errMissingCoordinates
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return q, errors.New("invalid lat")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return q, errors.New("invalid lon")
	}
	q.Lat, q.Lon = lat, lon

	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}
