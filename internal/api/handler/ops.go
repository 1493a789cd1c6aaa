// Package handler provides HTTP handlers for the trip planner API.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/sourcegraph/conc/iter"

	"github.com/smartmobility/tripplanner/internal/api/models"
	"github.com/smartmobility/tripplanner/internal/api/response"
	"github.com/smartmobility/tripplanner/internal/provider/resilience"
)

// CheckFunc probes one dependency. A nil error means the dependency is usable.
type CheckFunc func(ctx context.Context) error

// Check is a named readiness probe, such as a database ping.
type Check struct {
	Name string
	Fn   CheckFunc
}

// OpsConfig holds dependencies for OpsHandler.
type OpsConfig struct {
	Version   string
	BuildTime string
	// Registry reports provider circuit state (optional).
	Registry *resilience.Registry
	// Checks are run by the readiness and status endpoints.
	Checks []Check
	// CheckTimeout bounds every check (default: 2 seconds).
	CheckTimeout time.Duration
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version      string
	buildTime    string
	registry     *resilience.Registry
	checks       []Check
	checkTimeout time.Duration
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(cfg OpsConfig) *OpsHandler {
	timeout := cfg.CheckTimeout
	if timeout == 0 {
		timeout = 2 * time.Second
	}
	return &OpsHandler{
		version:      cfg.Version,
		buildTime:    cfg.BuildTime,
		registry:     cfg.Registry,
		checks:       cfg.Checks,
		checkTimeout: timeout,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - 503 when any check fails.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	subsystems := h.runChecks(r.Context())

	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}
	details := make(map[string]interface{}, len(subsystems))
	for _, s := range subsystems {
		details[s.Name] = s.Status
		if s.Status != models.HealthStatusOK {
			health.Status = models.HealthStatusFail
		}
	}
	if len(details) > 0 {
		health.Details = details
	}

	status := http.StatusOK
	if health.Status != models.HealthStatusOK {
		status = http.StatusServiceUnavailable
	}
	response.JSON(w, r, status, health)
}

// SystemStatus handles GET /v1/ops/status - provider and subsystem status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	status := models.SystemStatus{
		Status:     models.HealthStatusOK,
		Time:       models.Timestamp(time.Now()),
		Subsystems: h.runChecks(r.Context()),
		Providers:  h.providerStatuses(),
	}

	for _, s := range status.Subsystems {
		if s.Status == models.HealthStatusFail {
			status.Status = models.HealthStatusFail
		}
	}
	for _, p := range status.Providers {
		if p.Status == models.HealthStatusOK {
			continue
		}
		if status.Status == models.HealthStatusOK {
			status.Status = models.HealthStatusDegraded
		}
		status.DegradedProviders = append(status.DegradedProviders, p.Provider)
	}

	response.JSON(w, r, http.StatusOK, status)
}

func (h *OpsHandler) runChecks(ctx context.Context) []models.SubsystemStatus {
	return iter.Map(h.checks, func(c *Check) models.SubsystemStatus {
		ctx, cancel := context.WithTimeout(ctx, h.checkTimeout)
		defer cancel()

		if err := c.Fn(ctx); err != nil {
			detail := err.Error()
			return models.SubsystemStatus{Name: c.Name, Status: models.HealthStatusFail, Detail: &detail}
		}
		return models.SubsystemStatus{Name: c.Name, Status: models.HealthStatusOK}
	})
}

func (h *OpsHandler) providerStatuses() []models.ProviderStatus {
	providers := []models.ProviderStatus{}
	if h.registry == nil {
		return providers
	}

	for _, ph := range h.registry.GetAllHealth() {
		ps := models.ProviderStatus{
			Provider:      ph.Name,
			Status:        models.HealthStatusOK,
			LastSuccessAt: toTimestamp(ph.LastSuccessAt),
			LastFailureAt: toTimestamp(ph.LastFailureAt),
		}
		switch {
		case ph.IsUnhealthy():
			ps.Status = models.HealthStatusFail
		case ph.IsDegraded():
			ps.Status = models.HealthStatusDegraded
		}
		if ph.LastError != "" {
			msg := ph.LastError
			ps.Message = &msg
		}
		providers = append(providers, ps)
	}
	return providers
}

func toTimestamp(t *time.Time) *models.Timestamp {
	if t == nil {
		return nil
	}
	ts := models.Timestamp(*t)
	return &ts
}
