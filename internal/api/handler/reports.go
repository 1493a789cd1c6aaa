package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/smartmobility/tripplanner/internal/api/models"
	"github.com/smartmobility/tripplanner/internal/api/response"
	"github.com/smartmobility/tripplanner/internal/report"
)

// Default radius in meters for report listing when only a center is given.
const DefaultReportRadius = 1000

// ReportStore manages infrastructure reports.
type ReportStore interface {
	Create(ctx context.Context, author report.Author, input report.CreateInput) (*report.Report, error)
	Get(ctx context.Context, id string) (*report.Report, error)
	List(ctx context.Context, q report.Query) ([]*report.Report, error)
	UpdateStatus(ctx context.Context, id string, status report.Status) (*report.Report, error)
}

// ReportHandler handles report endpoints.
type ReportHandler struct {
	reports ReportStore
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reports ReportStore) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// ListReports handles GET /v1/reports?lat&lon&radius&status&category&limit.
func (h *ReportHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	center := q.point(false)
	radius := q.intValue("radius", DefaultReportRadius, 1, 50000)
	limit := q.intValue("limit", report.DefaultListLimit, 1, report.MaxListLimit)
	if len(q.errs) > 0 {
		response.BadRequest(w, r, "validation failed", q.errs)
		return
	}

	query := report.Query{
		Status:   report.Status(q.stringValue("status")),
		Category: report.Category(q.stringValue("category")),
		Limit:    limit,
	}
	if center != nil {
		query.Center = center
		query.RadiusMeters = float64(radius)
	}

	reports, err := h.reports.List(r.Context(), query)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if reports == nil {
		reports = []*report.Report{}
	}

	response.JSON(w, r, http.StatusOK, models.ReportListResponse{
		Items: reports,
		Meta:  models.ListMeta{Count: len(reports), Limit: limit},
	})
}

// GetReport handles GET /v1/reports/{reportId}.
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.reports.Get(r.Context(), chi.URLParam(r, "reportId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, rep)
}

// CreateReport handles POST /v1/reports. The author is the caller.
func (h *ReportHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	caller, ok := principal(r.Context())
	if !ok {
		response.Unauthorized(w, r, "authentication required")
		return
	}

	var input report.CreateInput
	if !decodeJSON(w, r, &input) {
		return
	}

	rep, err := h.reports.Create(r.Context(), report.Author{UserID: caller.UserID, UserName: caller.Name}, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, r, "/v1/reports/"+rep.ID, rep)
}

// UpdateReportStatus handles PUT /v1/reports/{reportId}/status.
func (h *ReportHandler) UpdateReportStatus(w http.ResponseWriter, r *http.Request) {
	if _, ok := principal(r.Context()); !ok {
		response.Unauthorized(w, r, "authentication required")
		return
	}

	var req models.ReportStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rep, err := h.reports.UpdateStatus(r.Context(), chi.URLParam(r, "reportId"), req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, rep)
}
