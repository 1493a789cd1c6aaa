// Package main provides the entrypoint for the trip planner worker. It warms
// the directions and geocoding caches on Pub/Sub jobs, or on a timer when no
// subscription is configured.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/smartmobility/tripplanner/internal/api/middleware"
	"github.com/smartmobility/tripplanner/internal/api/models"
	"github.com/smartmobility/tripplanner/internal/api/response"
	"github.com/smartmobility/tripplanner/internal/geocoding"
	"github.com/smartmobility/tripplanner/internal/googlemaps"
	"github.com/smartmobility/tripplanner/internal/provider/resilience"
	"github.com/smartmobility/tripplanner/internal/routing"
	"github.com/smartmobility/tripplanner/internal/telemetry"
	"github.com/smartmobility/tripplanner/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "tripplanner-worker"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().Str("build_time", BuildTime).Msg("starting trip planner worker")

	// Worker also exposes health endpoint for Cloud Run
	port := getEnvOrDefault("APP_PORT", "8080")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, err := telemetry.Init(ctx, telemetry.ConfigFromEnv(serviceName, Version))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = tp.Shutdown(shutdownCtx)
	}()

	registry := resilience.NewRegistry()
	mapsClient := googlemaps.NewClient(googlemaps.ClientConfig{
		APIKey:   os.Getenv("GOOGLE_MAPS_API_KEY"),
		BaseURL:  os.Getenv("GOOGLE_MAPS_BASE_URL"),
		Language: getEnvOrDefault("DIRECTIONS_LANGUAGE", googlemaps.DefaultLanguage),
		Registry: registry,
		Logger:   log,
	})

	routingService := routing.NewService(routing.ServiceConfig{
		Provider: mapsClient,
		Logger:   log,
		Meter:    tp.Meter,
	})

	// The geocoding cache is shared with the API through Redis; that is what
	// makes warming it here useful.
	geocodingCfg := geocoding.ServiceConfig{Provider: mapsClient, Logger: log}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("REDIS_PASSWORD")})
		defer func() { _ = redisClient.Close() }()
		geocodingCfg.Cache = geocoding.NewRedisCache(redisClient, 24*time.Hour)
	} else {
		log.Warn().Msg("REDIS_ADDR not set - warm-up only exercises the provider")
	}
	geocodingService := geocoding.NewService(geocodingCfg)

	warmJob := worker.NewWarmJob(worker.WarmJobConfig{
		Config:   worker.DefaultWarmConfig(),
		Planner:  routingService,
		Resolver: geocodingService,
		Logger:   log,
	})
	dispatcher := worker.NewDispatcher(warmJob, registry, log)

	// Health and job statistics endpoints.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		details := warmJob.MetricsSnapshot()
		details["directions_cache"] = routingService.CacheStats()
		response.JSON(w, r, http.StatusOK, models.Health{
			Status:  models.HealthStatusOK,
			Time:    models.Timestamp(time.Now()),
			Details: details,
		})
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health check server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	projectID := os.Getenv("PUBSUB_PROJECT_ID")
	subscription := os.Getenv("PUBSUB_SUBSCRIPTION")
	if projectID != "" && subscription != "" {
		handler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        projectID,
			SubscriptionName: subscription,
			Dispatcher:       dispatcher,
			Logger:           log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create pubsub handler")
		}
		defer func() { _ = handler.Close() }()

		go func() {
			if err := handler.Start(ctx); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("pubsub receive stopped")
				cancel()
			}
		}()
	} else {
		interval, err := time.ParseDuration(getEnvOrDefault("WARM_INTERVAL", "30m"))
		if err != nil {
			log.Fatal().Err(err).Msg("invalid WARM_INTERVAL")
		}
		log.Info().Dur("interval", interval).Msg("no pubsub subscription - warming on a timer")
		go runOnTimer(ctx, interval, warmJob)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}

func runOnTimer(ctx context.Context, interval time.Duration, job *worker.WarmJob) {
	job.Run(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			job.Run(ctx)
		}
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
