package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartmobility/tripplanner/internal/api/handler"
	"github.com/smartmobility/tripplanner/internal/api/models"
	"github.com/smartmobility/tripplanner/internal/geocoding"
	"github.com/smartmobility/tripplanner/internal/mapview"
	"github.com/smartmobility/tripplanner/internal/report"
)

func countMarkers(layers mapview.Layers, kind mapview.MarkerKind) int {
	n := 0
	for _, m := range layers.Markers {
		if m.Kind == kind {
			n++
		}
	}
	return n
}

func TestMapHandler_Layers(t *testing.T) {
	reports := report.NewService(report.ServiceConfig{
		Repository: report.NewInMemoryRepository(),
		Logger:     zerolog.Nop(),
	})
	_, err := reports.Create(context.Background(), report.Author{UserID: "usr_1"}, report.CreateInput{
		Location: parqueLleras,
		Title:    "Andén roto",
		Category: report.CategoryInfrastructure,
	})
	require.NoError(t, err)

	places := &fakePlaces{places: []geocoding.Place{{ID: "ChIJ1", Name: "Café Velvet", Location: parqueLleras}}}
	h := handler.NewMapHandler(places, reports)

	route := metroRoute()
	req := jsonRequest(t, http.MethodPost, "/v1/map/layers", models.MapLayersRequest{
		Origin:         &sanAntonio,
		Destination:    &parqueLleras,
		Route:          &route,
		PlaceType:      "cafe",
		IncludeReports: true,
		IncludeAudio:   true,
	})
	rec := httptest.NewRecorder()

	h.Layers(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cafe", places.lastType)

	var layers mapview.Layers
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &layers))
	assert.Equal(t, 1, countMarkers(layers, mapview.MarkerOrigin))
	assert.Equal(t, 1, countMarkers(layers, mapview.MarkerDestination))
	assert.Equal(t, 1, countMarkers(layers, mapview.MarkerPlace))
	assert.Equal(t, 1, countMarkers(layers, mapview.MarkerReport))
	assert.Equal(t, 2, countMarkers(layers, mapview.MarkerAudioPoint))
	assert.NotEmpty(t, layers.Lines)
}

func TestMapHandler_Layers_OverlayFailuresAreSkipped(t *testing.T) {
	h := handler.NewMapHandler(&fakePlaces{err: geocoding.ErrProviderUnavailable}, nil)

	req := jsonRequest(t, http.MethodPost, "/v1/map/layers", models.MapLayersRequest{
		Origin:         &sanAntonio,
		Destination:    &parqueLleras,
		PlaceType:      "cafe",
		IncludeReports: true,
	})
	rec := httptest.NewRecorder()

	h.Layers(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var layers mapview.Layers
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &layers))
	assert.Zero(t, countMarkers(layers, mapview.MarkerPlace))
	assert.Zero(t, countMarkers(layers, mapview.MarkerReport))
}

func TestMapHandler_Layers_Validation(t *testing.T) {
	h := handler.NewMapHandler(nil, nil)

	req := jsonRequest(t, http.MethodPost, "/v1/map/layers", map[string]any{"origin": sanAntonio})
	rec := httptest.NewRecorder()

	h.Layers(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	problem := decodeProblem(t, rec)
	require.Len(t, problem.Errors, 1)
	assert.Equal(t, "destination", problem.Errors[0].Field)
}
