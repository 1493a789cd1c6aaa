package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartmobility/tripplanner/internal/api/handler"
	"github.com/smartmobility/tripplanner/internal/api/models"
	"github.com/smartmobility/tripplanner/internal/report"
	"github.com/smartmobility/tripplanner/internal/routing"
)

func newReportRouter(t *testing.T) (http.Handler, *report.Service) {
	t.Helper()
	svc := report.NewService(report.ServiceConfig{
		Repository: report.NewInMemoryRepository(),
		Logger:     zerolog.Nop(),
	})
	h := handler.NewReportHandler(svc)

	r := chi.NewRouter()
	r.Get("/v1/reports", h.ListReports)
	r.Post("/v1/reports", h.CreateReport)
	r.Get("/v1/reports/{reportId}", h.GetReport)
	r.Put("/v1/reports/{reportId}/status", h.UpdateReportStatus)
	return r, svc
}

func seedReport(t *testing.T, svc *report.Service, at routing.Coordinate, title string) *report.Report {
	t.Helper()
	rep, err := svc.Create(context.Background(), report.Author{UserID: "usr_seed"}, report.CreateInput{
		Location: at,
		Title:    title,
		Category: report.CategoryAccessibility,
	})
	require.NoError(t, err)
	return rep
}

func TestReportHandler_CreateReport(t *testing.T) {
	router, _ := newReportRouter(t)

	req := asUser(jsonRequest(t, http.MethodPost, "/v1/reports", report.CreateInput{
		Location:    parqueLleras,
		Title:       "Rampa bloqueada",
		Description: "Motos parqueadas sobre la rampa",
		Category:    report.CategoryAccessibility,
	}), "usr_ana")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var created report.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.True(t, strings.HasPrefix(created.ID, "rpt_"))
	assert.Equal(t, "usr_ana", created.UserID)
	assert.Equal(t, "Ana", created.UserName)
	assert.Equal(t, report.StatusPending, created.Status)
	assert.Equal(t, "/v1/reports/"+created.ID, rec.Header().Get("Location"))
}

func TestReportHandler_CreateReport_Validation(t *testing.T) {
	router, _ := newReportRouter(t)

	req := asUser(jsonRequest(t, http.MethodPost, "/v1/reports", map[string]any{
		"location": map[string]float64{"latitude": 120, "longitude": 0},
		"title":    "",
		"category": "graffiti",
	}), "usr_ana")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var fields []string
	for _, e := range decodeProblem(t, rec).Errors {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{"location", "title", "category"}, fields)
}

func TestReportHandler_CreateReport_RequiresPrincipal(t *testing.T) {
	router, _ := newReportRouter(t)

	req := jsonRequest(t, http.MethodPost, "/v1/reports", report.CreateInput{Title: "x"})
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestReportHandler_GetReport(t *testing.T) {
	router, svc := newReportRouter(t)
	rep := seedReport(t, svc, parqueLleras, "Semáforo dañado")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/reports/"+rep.ID, http.NoBody))

	require.Equal(t, http.StatusOK, rec.Code)
	var got report.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, rep.ID, got.ID)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/reports/rpt_missing", http.NoBody))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReportHandler_ListReports(t *testing.T) {
	router, svc := newReportRouter(t)
	near := seedReport(t, svc, parqueLleras, "Cerca")
	seedReport(t, svc, sanAntonio, "Lejos")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/reports?lat=6.2087&lon=-75.5671&radius=500", http.NoBody))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.ReportListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, near.ID, resp.Items[0].ID)
	assert.Equal(t, 1, resp.Meta.Count)
	assert.Equal(t, report.DefaultListLimit, resp.Meta.Limit)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/reports?limit=1", http.NoBody))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Items, 1)
}

func TestReportHandler_ListReports_Validation(t *testing.T) {
	router, _ := newReportRouter(t)

	for _, target := range []string{
		"/v1/reports?status=closed",
		"/v1/reports?category=graffiti",
		"/v1/reports?limit=0",
		"/v1/reports?lat=6.2",
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, http.NoBody))
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestReportHandler_UpdateReportStatus(t *testing.T) {
	router, svc := newReportRouter(t)
	rep := seedReport(t, svc, parqueLleras, "Hueco en la vía")

	update := func(status report.Status) *httptest.ResponseRecorder {
		req := asUser(jsonRequest(t, http.MethodPut, "/v1/reports/"+rep.ID+"/status", models.ReportStatusRequest{Status: status}), "usr_ops")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := update(report.StatusResolved)
	require.Equal(t, http.StatusOK, rec.Code)
	var got report.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, report.StatusResolved, got.Status)

	rec = update(report.StatusInProgress)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = update("closed")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
