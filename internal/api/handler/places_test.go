package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartmobility/tripplanner/internal/api/handler"
	"github.com/smartmobility/tripplanner/internal/api/models"
	"github.com/smartmobility/tripplanner/internal/geocoding"
)

func TestPlaceHandler_Geocode(t *testing.T) {
	places := &fakePlaces{places: []geocoding.Place{
		{ID: "ChIJ1", Name: "Parque Lleras", Location: parqueLleras},
		{ID: "ChIJ2", Name: "Lleras Hostel", Location: parqueLleras},
	}}
	h := handler.NewPlaceHandler(places)

	rec := httptest.NewRecorder()
	h.Geocode(rec, httptest.NewRequest(http.MethodGet, "/v1/geocode?q=Parque+Lleras", http.NoBody))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Parque Lleras", places.lastQuery)

	var resp models.PlacesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Parque Lleras", resp.Query)
	assert.Len(t, resp.Items, 2)
	assert.Equal(t, 2, resp.Meta.Count)
}

func TestPlaceHandler_Geocode_Errors(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		places     *fakePlaces
		wantStatus int
	}{
		{name: "missing query", target: "/v1/geocode", places: &fakePlaces{}, wantStatus: http.StatusBadRequest},
		{name: "blank query", target: "/v1/geocode?q=%20%20", places: &fakePlaces{}, wantStatus: http.StatusBadRequest},
		{name: "no match", target: "/v1/geocode?q=Atlantis", places: &fakePlaces{err: geocoding.ErrNotFound}, wantStatus: http.StatusNotFound},
		{name: "provider down", target: "/v1/geocode?q=Poblado", places: &fakePlaces{err: geocoding.ErrProviderUnavailable}, wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.NewPlaceHandler(tt.places).Geocode(rec, httptest.NewRequest(http.MethodGet, tt.target, http.NoBody))
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestPlaceHandler_Nearby(t *testing.T) {
	places := &fakePlaces{}
	h := handler.NewPlaceHandler(places)

	rec := httptest.NewRecorder()
	h.Nearby(rec, httptest.NewRequest(http.MethodGet, "/v1/places/nearby?lat=6.2087&lon=-75.5671&radius=500&type=restaurant", http.NoBody))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 500, places.lastRad)
	assert.Equal(t, "restaurant", places.lastType)

	var resp models.PlacesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotNil(t, resp.Items)
	assert.Empty(t, resp.Items)
}

func TestPlaceHandler_Nearby_DefaultRadius(t *testing.T) {
	places := &fakePlaces{}
	rec := httptest.NewRecorder()

	handler.NewPlaceHandler(places).Nearby(rec, httptest.NewRequest(http.MethodGet, "/v1/places/nearby?lat=6.2&lon=-75.5", http.NoBody))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, handler.DefaultNearbyRadius, places.lastRad)
}

func TestPlaceHandler_Nearby_Validation(t *testing.T) {
	tests := []struct {
		name   string
		target string
		fields []string
	}{
		{name: "missing point", target: "/v1/places/nearby", fields: []string{"lat", "lon"}},
		{name: "lat only", target: "/v1/places/nearby?lat=6.2", fields: []string{"lat"}},
		{name: "not a number", target: "/v1/places/nearby?lat=north&lon=-75.5", fields: []string{"lat", "lat"}},
		{name: "out of range", target: "/v1/places/nearby?lat=95&lon=-75.5", fields: []string{"lat"}},
		{name: "radius too large", target: "/v1/places/nearby?lat=6.2&lon=-75.5&radius=90000", fields: []string{"radius"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.NewPlaceHandler(&fakePlaces{}).Nearby(rec, httptest.NewRequest(http.MethodGet, tt.target, http.NoBody))

			require.Equal(t, http.StatusBadRequest, rec.Code)
			var fields []string
			for _, e := range decodeProblem(t, rec).Errors {
				fields = append(fields, e.Field)
			}
			assert.Equal(t, tt.fields, fields)
		})
	}
}
