// Package api provides the HTTP API for the trip planner.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/smartmobility/tripplanner/internal/api/handler"
	"github.com/smartmobility/tripplanner/internal/api/middleware"
	"github.com/smartmobility/tripplanner/internal/provider/resilience"
)

// PlaceService geocodes free text and searches nearby places.
type PlaceService interface {
	handler.PlaceSearcher
	handler.PlaceResolver
}

// RouterConfig holds configuration for the router. Optional services left
// nil leave their endpoints unmounted.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics

	// TokenValidator verifies bearer tokens for user endpoints.
	TokenValidator middleware.TokenValidator

	Planner      handler.TripPlanner
	Places       PlaceService
	Reports      handler.ReportStore
	Destinations handler.DestinationStore

	Registry        *resilience.Registry
	ReadinessChecks []handler.Check
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "tripplanner-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type
	r.Use(middleware.RequireJSON)          // Reject non-JSON request bodies

	opsHandler := handler.NewOpsHandler(handler.OpsConfig{
		Version:   cfg.Version,
		BuildTime: cfg.BuildTime,
		Registry:  cfg.Registry,
		Checks:    cfg.ReadinessChecks,
	})

	authMiddleware := middleware.Auth(cfg.TokenValidator)

	providerRateLimit := middleware.RateLimitByIP(middleware.ProviderRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit) // 100 req/min
	userRateLimit := middleware.RateLimitByUser(middleware.StandardRateLimit)   // 100 req/min per user
	writeRateLimit := middleware.RateLimitByUser(middleware.WriteRateLimit)     // 10 req/min per user

	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.With(standardRateLimit).Get("/status", opsHandler.SystemStatus)
		})

		// Trip planning calls the directions provider on cache misses.
		if cfg.Planner != nil {
			var resolver handler.PlaceResolver
			if cfg.Places != nil {
				resolver = cfg.Places
			}
			tripHandler := handler.NewTripHandler(cfg.Planner, resolver)
			r.With(providerRateLimit).Post("/trips:plan", tripHandler.PlanTrip)
			r.With(standardRateLimit).Post("/trips:navigate", tripHandler.Navigate)
			r.With(standardRateLimit).Post("/trips:audio-check", tripHandler.AudioCheck)
		}

		if cfg.Places != nil {
			placeHandler := handler.NewPlaceHandler(cfg.Places)
			r.With(providerRateLimit).Get("/geocode", placeHandler.Geocode)
			r.With(providerRateLimit).Get("/places/nearby", placeHandler.Nearby)
		}

		// Map layers are computed locally; overlays are optional.
		var nearby handler.NearbySearcher
		if cfg.Places != nil {
			nearby = cfg.Places
		}
		var reportLister handler.ReportLister
		if cfg.Reports != nil {
			reportLister = cfg.Reports
		}
		mapHandler := handler.NewMapHandler(nearby, reportLister)
		r.With(standardRateLimit).Post("/map/layers", mapHandler.Layers)

		if cfg.Reports != nil {
			reportHandler := handler.NewReportHandler(cfg.Reports)
			r.Route("/reports", func(r chi.Router) {
				r.With(standardRateLimit).Get("/", reportHandler.ListReports)
				r.With(standardRateLimit).Get("/{reportId}", reportHandler.GetReport)

				r.Group(func(r chi.Router) {
					r.Use(authMiddleware)
					r.Use(writeRateLimit)
					r.Post("/", reportHandler.CreateReport)
					r.Put("/{reportId}/status", reportHandler.UpdateReportStatus)
				})
			})
		}

		if cfg.Destinations != nil {
			destinationHandler := handler.NewDestinationHandler(cfg.Destinations)
			r.Route("/me/destinations", func(r chi.Router) {
				r.Use(authMiddleware)
				r.Use(userRateLimit)
				r.Get("/popular", destinationHandler.ListPopular)
				r.Get("/recent", destinationHandler.ListRecent)
				r.Post("/", destinationHandler.SaveDestination)
			})
		}
	})

	return r
}
