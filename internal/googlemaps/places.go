package googlemaps

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/smartmobility/tripplanner/internal/geocoding"
	"github.com/smartmobility/tripplanner/internal/routing"
)

type geocodeResponse struct {
	Status       string          `json:"status"`
	ErrorMessage string          `json:"error_message,omitempty"`
	Results      []geocodeResult `json:"results"`
}

type geocodeResult struct {
	PlaceID           string             `json:"place_id"`
	FormattedAddress  string             `json:"formatted_address"`
	Geometry          geometry           `json:"geometry"`
	Types             []string           `json:"types"`
	AddressComponents []addressComponent `json:"address_components"`
}

type addressComponent struct {
	LongName string   `json:"long_name"`
	Types    []string `json:"types"`
}

type geometry struct {
	Location routing.LatLng `json:"location"`
}

type nearbyResponse struct {
	Status       string         `json:"status"`
	ErrorMessage string         `json:"error_message,omitempty"`
	Results      []nearbyResult `json:"results"`
}

type nearbyResult struct {
	PlaceID      string        `json:"place_id"`
	Name         string        `json:"name"`
	Vicinity     string        `json:"vicinity"`
	Geometry     geometry      `json:"geometry"`
	Types        []string      `json:"types"`
	Rating       float64       `json:"rating"`
	OpeningHours *openingHours `json:"opening_hours"`
}

type openingHours struct {
	OpenNow *bool `json:"open_now"`
}

// Geocode resolves free text to places, biased to the request's region and bounds.
func (c *Client) Geocode(ctx context.Context, req geocoding.GeocodeRequest) ([]geocoding.Place, error) {
	params := url.Values{}
	params.Set("address", req.Query)
	params.Set("language", c.languageOr(req.Language))
	if req.Region != "" {
		params.Set("region", req.Region)
		params.Set("components", "country:"+strings.ToUpper(req.Region))
	}
	if req.Bounds != nil {
		params.Set("bounds", formatLatLng(req.Bounds.Southwest.Latitude, req.Bounds.Southwest.Longitude)+
			"|"+formatLatLng(req.Bounds.Northeast.Latitude, req.Bounds.Northeast.Longitude))
	}

	var resp geocodeResponse
	if err := c.get(ctx, c.geocoding, geocodePath, params, &resp); err != nil {
		return nil, placesTransportError(err)
	}

	switch resp.Status {
	case StatusOK:
	case StatusZeroResults:
		return nil, geocoding.ErrNotFound
	default:
		return nil, placesStatusError(resp.Status, resp.ErrorMessage)
	}

	places := make([]geocoding.Place, 0, len(resp.Results))
	for i := range resp.Results {
		r := &resp.Results[i]
		places = append(places, geocoding.Place{
			ID:       r.PlaceID,
			Name:     placeName(r),
			Address:  r.FormattedAddress,
			Location: routing.Coordinate{Latitude: r.Geometry.Location.Lat, Longitude: r.Geometry.Location.Lng},
			Types:    r.Types,
		})
	}

	c.logger.Debug().
		Str("query", req.Query).
		Int("result_count", len(places)).
		Msg("geocoded query")

	return places, nil
}

// NearbyPlaces searches points of interest within a radius. No results is not an error.
func (c *Client) NearbyPlaces(ctx context.Context, req geocoding.NearbyRequest) ([]geocoding.Place, error) {
	params := url.Values{}
	params.Set("location", formatLatLng(req.Center.Latitude, req.Center.Longitude))
	params.Set("radius", strconv.Itoa(req.RadiusMeters))
	params.Set("language", c.languageOr(req.Language))
	if req.Type != "" {
		params.Set("type", req.Type)
	}

	var resp nearbyResponse
	if err := c.get(ctx, c.places, nearbyPath, params, &resp); err != nil {
		return nil, placesTransportError(err)
	}

	switch resp.Status {
	case StatusOK:
	case StatusZeroResults:
		return []geocoding.Place{}, nil
	default:
		return nil, placesStatusError(resp.Status, resp.ErrorMessage)
	}

	places := make([]geocoding.Place, 0, len(resp.Results))
	for i := range resp.Results {
		r := &resp.Results[i]
		place := geocoding.Place{
			ID:       r.PlaceID,
			Name:     r.Name,
			Address:  r.Vicinity,
			Location: routing.Coordinate{Latitude: r.Geometry.Location.Lat, Longitude: r.Geometry.Location.Lng},
			Types:    r.Types,
			Rating:   r.Rating,
		}
		if r.OpeningHours != nil {
			place.OpenNow = r.OpeningHours.OpenNow
		}
		places = append(places, place)
	}

	return places, nil
}

func (c *Client) languageOr(language string) string {
	if language == "" {
		return c.language
	}
	return language
}

// placeName prefers the point-of-interest or route component over the full address.
func placeName(r *geocodeResult) string {
	for _, component := range r.AddressComponents {
		for _, t := range component.Types {
			switch t {
			case "point_of_interest", "establishment", "premise", "park", "route", "neighborhood":
				return component.LongName
			}
		}
	}
	if head, _, ok := strings.Cut(r.FormattedAddress, ","); ok {
		return head
	}
	return r.FormattedAddress
}

func placesTransportError(err error) error {
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return fmt.Errorf("%w: %s", geocoding.ErrProviderUnavailable, statusErr.Error())
	}
	return errors.Join(geocoding.ErrProviderUnavailable, err)
}

func placesStatusError(status, message string) error {
	detail := status
	if message != "" {
		detail += ": " + message
	}
	switch status {
	case StatusInvalidRequest:
		return fmt.Errorf("%w: %s", geocoding.ErrInvalidQuery, detail)
	case StatusNotFound:
		return fmt.Errorf("%w: %s", geocoding.ErrNotFound, detail)
	default:
		return fmt.Errorf("%w: %s", geocoding.ErrProviderUnavailable, detail)
	}
}
