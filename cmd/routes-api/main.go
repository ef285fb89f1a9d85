// Command routes-api serves the flight routes lookup API.
//
// It maps aircraft callsigns to inferred flight routes stored in Redis by
// an out-of-band inference pipeline, for consumption by flight-tracking
// front ends (tar1090-style). The service itself never computes routes.
//
// Configuration (environment):
//
//	REDIS_HOST       Backing store address (default: 127.0.0.1)
//	ALLOWED_ORIGINS  Comma-separated CORS origins (default: none)
//	PLANE_LIMIT      Maximum planes per routeset request (default: 100)
//	API_KEY          Shared secret for the admin endpoints (required)
//	PORT             HTTP listen port (default: 8000)
//	NATS_URL         Optional NATS feed of route updates (default: disabled)
//	NATS_SUBJECT     Subject for route updates (default: routes.update)
//
// API Endpoints:
//
//	POST /api/routeset               Batch callsign lookup (no auth).
//	OPTIONS /api/routeset            CORS pre-flight.
//	GET  /api/health                 Health check.
//	GET  /api/all_callsigns          All stored callsigns (auth).
//	GET  /api/plausible_callsigns    Callsigns with plausible routes (auth).
//	GET  /api/unplausible_callsigns  Callsigns with implausible routes (auth).
//	GET  /api/route/{callsign}       Single route lookup (auth).
//	POST /api/set_route              Store a route (auth).
//
// Authentication: admin endpoints require the shared secret in the
// "api_key" request header.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"flight_routes/internal/api"
	"flight_routes/internal/config"
	"flight_routes/internal/ingest"
	"flight_routes/internal/routes"
	"flight_routes/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run wires the service together. Keeping it separate from main ensures
// deferred cleanup (store pool, NATS drain) runs on every exit path.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.OpenRedis(ctx, storage.RedisConfig{Host: cfg.RedisHost})
	if err != nil {
		return fmt.Errorf("open redis: %w", err)
	}
	defer store.Close()

	resolver := routes.NewResolver(store)

	if cfg.NATSURL != "" {
		consumer, err := ingest.Connect(cfg.NATSURL, resolver)
		if err != nil {
			return fmt.Errorf("connect nats: %w", err)
		}
		defer consumer.Close()

		if err := consumer.Subscribe(cfg.NATSSubject); err != nil {
			return fmt.Errorf("subscribe %s: %w", cfg.NATSSubject, err)
		}
	}

	server := api.NewRouteServer(resolver, api.Config{
		Port:           cfg.Port,
		APIKey:         cfg.APIKey,
		PlaneLimit:     cfg.PlaneLimit,
		AllowedOrigins: cfg.Origins(),
	})

	if err := server.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}
