package httpapi

import (
	"errors"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/Nenepo/weatherCo/internal/push"
	"github.com/Nenepo/weatherCo/internal/subscription"
)

var validate = validator.New()

// Options carries route settings that do not belong to the push service.
type Options struct {
	VAPIDPublicKey string
}

// ErrorHandler renders every error as {"error": message}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *push.Service, opts Options) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"ok":            true,
			"subscriptions": service.Count(),
			"timestamp":     time.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		})
	})

	app.Get("/vapid-public-key", func(c *fiber.Ctx) error {
		if opts.VAPIDPublicKey == "" {
			return fiber.NewError(fiber.StatusServiceUnavailable, "Push notifications are not configured")
		}
		return c.JSON(fiber.Map{"publicKey": opts.VAPIDPublicKey})
	})

	app.Post("/subscribe", func(c *fiber.Ctx) error {
		var req subscribeRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid subscription")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid subscription")
		}

		if err := service.Subscribe(req.toSubscription(), req.Meta.toMetadata()); err != nil {
			return toHTTPError(err, "Failed to subscribe")
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true})
	})

	app.Post("/unsubscribe", func(c *fiber.Ctx) error {
		var req unsubscribeRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Missing endpoint")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Missing endpoint")
		}

		// Unsubscribing is idempotent over HTTP.
		if err := service.Unsubscribe(req.Endpoint); err != nil && !errors.Is(err, subscription.ErrNotFound) {
			return toHTTPError(err, "Failed to unsubscribe")
		}
		return c.JSON(fiber.Map{"ok": true})
	})

	app.Post("/update-time", func(c *fiber.Ctx) error {
		var req updateTimeRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if req.Time == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Missing time")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid coordinates")
		}
		if req.Meta == nil {
			return fiber.NewError(fiber.StatusNotFound, "Subscription not found")
		}

		if err := service.UpdateTime(req.Meta.Lat, req.Meta.Lon, req.Time); err != nil {
			return toHTTPError(err, "Failed to update notification time")
		}
		return c.JSON(fiber.Map{"ok": true})
	})

	app.Post("/send-notification", func(c *fiber.Ctx) error {
		var req sendNotificationRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if req.Meta == nil {
			return fiber.NewError(fiber.StatusNotFound, "Subscription not found")
		}
		if err := validate.Struct(req.Meta); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid coordinates")
		}

		if err := service.SendMessage(c.UserContext(), req.Meta.Lat, req.Meta.Lon, req.Message); err != nil {
			log.Printf("ERROR: notification error: %v", err)
			return toHTTPError(err, "Failed to send notification")
		}
		return c.JSON(fiber.Map{"ok": true})
	})

	app.Post("/test-notification", func(c *fiber.Ctx) error {
		var req testNotificationRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid coordinates")
		}
		if req.Meta == nil {
			return fiber.NewError(fiber.StatusNotFound, "Subscription not found")
		}

		if err := service.SendTest(c.UserContext(), req.Meta.Lat, req.Meta.Lon); err != nil {
			log.Printf("ERROR: test notification error: %v", err)
			return toHTTPError(err, "Failed to send test notification")
		}
		return c.JSON(fiber.Map{"ok": true})
	})

	v1 := app.Group("/api/v1")

	v1.Get("/weather", func(c *fiber.Ctx) error {
		q, err := parseCoordinatesQuery(c)
		if err != nil {
			return coordinatesError(err)
		}

		summary, err := service.Weather(c.UserContext(), q.Lat, q.Lon)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch weather")
		}
		return c.JSON(summary)
	})

	v1.Get("/umbrella", func(c *fiber.Ctx) error {
		q, err := parseCoordinatesQuery(c)
		if err != nil {
			return coordinatesError(err)
		}

		check, err := service.CheckUmbrella(c.UserContext(), q.Lat, q.Lon)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch weather")
		}
		return c.JSON(check)
	})
}

func coordinatesError(err error) error {
	if errors.Is(err, errMissingCoordinates) {
		return fiber.NewError(fiber.StatusBadRequest, "Missing lat/lon parameters")
	}
	return fiber.NewError(fiber.StatusBadRequest, "Invalid coordinates")
}

// toHTTPError maps service errors onto status codes; anything unrecognised is
// a 500 with the given message.
func toHTTPError(err error, fallback string) error {
	switch {
	case errors.Is(err, subscription.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Subscription not found")
	case errors.Is(err, subscription.ErrInvalidSubscription):
		return fiber.NewError(fiber.StatusBadRequest, "Invalid subscription")
	case errors.Is(err, push.ErrEmptyMessage):
		return fiber.NewError(fiber.StatusBadRequest, "Message is required")
	case errors.Is(err, subscription.ErrInvalidTime):
		return fiber.NewError(fiber.StatusBadRequest, "Invalid time; use HH:MM")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, fallback)
	}
}
