package models

import "github.com/smartmobility/tripplanner/internal/geocoding"

// PlacesResponse lists geocoding or nearby search results.
type PlacesResponse struct {
	Query string            `json:"query,omitempty"`
	Items []geocoding.Place `json:"items"`
	Meta  ListMeta          `json:"meta"`
}
