package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	httpapi "github.com/Nenepo/weatherCo/internal/api/http"
	"github.com/Nenepo/weatherCo/internal/config"
	"github.com/Nenepo/weatherCo/internal/push"
	"github.com/Nenepo/weatherCo/internal/scheduler"
	"github.com/Nenepo/weatherCo/internal/store"
	"github.com/Nenepo/weatherCo/internal/weather"
	"github.com/Nenepo/weatherCo/internal/weather/providers"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound weather and push calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Subscribers live in memory only; a restart drops them.
	memStore := store.NewMemoryStore()

	provider, err := providers.New(cfg.WeatherProvider, providers.NewHTTPClientConfig(httpClient, cfg.WeatherMaxRetries), providers.APIKeys{
		OpenWeather: cfg.OpenWeatherAPIKey,
		WeatherAPI:  cfg.WeatherAPIKey,
		Geocoder:    cfg.GeocoderAPIKey,
	})
	if err != nil {
		log.Fatalf("failed to configure weather provider: %v", err)
	}
	weatherService := weather.NewService(provider, cfg.HTTPTimeout)

	vapid := push.VAPIDConfig{
		PublicKey:  cfg.VAPIDPublicKey,
		PrivateKey: cfg.VAPIDPrivateKey,
		Subject:    cfg.VAPIDSubject,
		TTL:        cfg.PushTTL,
	}
	if !vapid.Configured() {
		log.Println("WARN: Missing VAPID keys in env; push delivery will fail")
	}
	dispatcher := push.NewDispatcher(vapid, httpClient)

	service := push.NewService(memStore, dispatcher, weatherService)

	// Daily per-subscriber notifications.
	sched := scheduler.New(memStore, weatherService, dispatcher, scheduler.Options{
		Location:           cfg.NotifyLocation,
		DefaultCoordinates: cfg.DefaultCoordinates,
		FireTimeout:        cfg.FireTimeout,
		ReconcileInterval:  cfg.ReconcileInterval,
	})
	service.SetPlanner(sched)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weatherco-push",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSAllowOrigins}))

	httpapi.RegisterRoutes(app, service, httpapi.Options{VAPIDPublicKey: cfg.VAPIDPublicKey})

	go func() {
		log.Printf("WeatherCo push server listening on port %s", cfg.Port)
		log.Printf("Health check: http://localhost:%s/health", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
