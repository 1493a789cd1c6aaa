// Package main provides the entrypoint for the trip planner API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/smartmobility/tripplanner/internal/api"
	"github.com/smartmobility/tripplanner/internal/api/handler"
	"github.com/smartmobility/tripplanner/internal/api/middleware"
	"github.com/smartmobility/tripplanner/internal/auth"
	"github.com/smartmobility/tripplanner/internal/database"
	"github.com/smartmobility/tripplanner/internal/destination"
	"github.com/smartmobility/tripplanner/internal/events"
	"github.com/smartmobility/tripplanner/internal/geocoding"
	"github.com/smartmobility/tripplanner/internal/googlemaps"
	"github.com/smartmobility/tripplanner/internal/provider/resilience"
	"github.com/smartmobility/tripplanner/internal/report"
	"github.com/smartmobility/tripplanner/internal/routing"
	"github.com/smartmobility/tripplanner/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "tripplanner-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting trip planner API")

	port := getEnvOrDefault("APP_PORT", "8080")
	ctx := context.Background()

	// Initialize OpenTelemetry
	telemetryCfg := telemetry.ConfigFromEnv(serviceName, Version)
	tp, err := telemetry.Init(ctx, telemetryCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()
	if telemetryCfg.Enabled {
		log.Info().
			Str("otlp_endpoint", telemetryCfg.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	metrics, err := middleware.NewMetrics(tp.Meter)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	var checks []handler.Check

	// Google Maps backs both directions and places.
	apiKey := os.Getenv("GOOGLE_MAPS_API_KEY")
	if apiKey == "" {
		log.Warn().Msg("GOOGLE_MAPS_API_KEY not set - provider calls will be denied")
	}
	registry := resilience.NewRegistry()
	mapsClient := googlemaps.NewClient(googlemaps.ClientConfig{
		APIKey:   apiKey,
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

	geocodingCfg := geocoding.ServiceConfig{
		Provider: mapsClient,
		Logger:   log,
		Language: getEnvOrDefault("DIRECTIONS_LANGUAGE", googlemaps.DefaultLanguage),
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		defer func() { _ = redisClient.Close() }()
		geocodingCfg.Cache = geocoding.NewRedisCache(redisClient, 24*time.Hour)
		checks = append(checks, handler.Check{Name: "redis", Fn: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}})
		log.Info().Str("addr", addr).Msg("geocoding cache uses redis")
	}
	geocodingService := geocoding.NewService(geocodingCfg)

	// Domain events fan out in-process and, when configured, to Pub/Sub.
	bus := events.NewBus(log)
	if projectID := os.Getenv("PUBSUB_PROJECT_ID"); projectID != "" {
		psClient, err := pubsub.NewClient(ctx, projectID)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create pubsub client")
		}
		defer func() { _ = psClient.Close() }()

		publisher := events.NewTopicPublisher(psClient, getEnvOrDefault("PUBSUB_EVENTS_TOPIC", "tripplanner-events"))
		defer publisher.Stop()
		detach := events.NewPubSubForwarder(publisher, 5*time.Second, log).Attach(bus)
		defer detach()
		log.Info().Str("project", projectID).Msg("forwarding domain events to pubsub")
	}

	var (
		reportRepo      report.Repository      = report.NewInMemoryRepository()
		destinationRepo destination.Repository = destination.NewInMemoryRepository()
	)
	if database.Enabled() {
		dbConfig := database.ConfigFromEnv()
		pool, err := database.Connect(ctx, dbConfig)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		if err := database.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("failed to apply schema")
		}
		log.Info().
			Str("host", dbConfig.Host).
			Int("port", dbConfig.Port).
			Str("database", dbConfig.Database).
			Msg("database connected")

		reportRepo = report.NewPostgresRepository(pool)
		destinationRepo = destination.NewPostgresRepository(pool)
		checks = append(checks, handler.Check{Name: "postgres", Fn: pool.Ping})
	} else {
		log.Warn().Msg("DB_HOST not set - reports and destinations are kept in memory")
	}

	reportService := report.NewService(report.ServiceConfig{
		Repository: reportRepo,
		Events:     bus,
		Logger:     log,
	})
	destinationService := destination.NewService(destination.ServiceConfig{
		Repository: destinationRepo,
		Events:     bus,
		Logger:     log,
	})

	// Tokens are issued by the identity service; the API only verifies them.
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		jwtSigningKey = "local-dev-signing-key-change-in-production"
		log.Warn().Msg("using default JWT signing key - not secure for production")
	}
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SigningKey: jwtSigningKey,
		Issuer:     os.Getenv("JWT_ISSUER"),
		Audience:   os.Getenv("JWT_AUDIENCE"),
	})

	router := api.NewRouter(api.RouterConfig{
		Version:         Version,
		BuildTime:       BuildTime,
		Logger:          log,
		ServiceName:     serviceName,
		Metrics:         metrics,
		TokenValidator:  jwtService,
		Planner:         routingService,
		Places:          geocodingService,
		Reports:         reportService,
		Destinations:    destinationService,
		Registry:        registry,
		ReadinessChecks: checks,
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return
	}

	log.Info().Msg("server stopped")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
