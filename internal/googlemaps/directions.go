package googlemaps

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/smartmobility/tripplanner/internal/routing"
)

// GetDirections requests public-transit alternatives between two points.
func (c *Client) GetDirections(ctx context.Context, req routing.DirectionsRequest) (*routing.DirectionsResponse, error) {
	if err := routing.ValidateCoordinate(req.Origin); err != nil {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "INVALID_ORIGIN",
			Message:  "invalid origin coordinates",
			Err:      routing.ErrInvalidCoordinates,
		}
	}
	if err := routing.ValidateCoordinate(req.Destination); err != nil {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "INVALID_DESTINATION",
			Message:  "invalid destination coordinates",
			Err:      routing.ErrInvalidCoordinates,
		}
	}

	language := req.Language
	if language == "" {
		language = c.language
	}

	departure := "now"
	if !req.DepartureTime.IsZero() {
		departure = strconv.FormatInt(req.DepartureTime.Unix(), 10)
	}

	params := url.Values{}
	params.Set("origin", formatLatLng(req.Origin.Latitude, req.Origin.Longitude))
	params.Set("destination", formatLatLng(req.Destination.Latitude, req.Destination.Longitude))
	params.Set("mode", "transit")
	params.Set("alternatives", "true")
	params.Set("language", language)
	params.Set("departure_time", departure)

	c.logger.Debug().
		Float64("origin_lat", req.Origin.Latitude).
		Float64("origin_lng", req.Origin.Longitude).
		Float64("dest_lat", req.Destination.Latitude).
		Float64("dest_lng", req.Destination.Longitude).
		Str("departure_time", departure).
		Msg("requesting transit directions")

	var resp routing.DirectionsResponse
	if err := c.get(ctx, c.directions, directionsPath, params, &resp); err != nil {
		return nil, transportError(err)
	}

	if resp.Status != StatusOK {
		return nil, directionsStatusError(resp.Status, resp.ErrorMessage)
	}

	resp.Provider = ProviderName
	resp.FetchedAt = time.Now()

	c.logger.Debug().
		Int("route_count", len(resp.Routes)).
		Msg("received transit directions")

	return &resp, nil
}

// transportError maps failures below the API status layer to routing errors.
func transportError(err error) error {
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		if statusErr.StatusCode == http.StatusTooManyRequests {
			return &routing.Error{
				Provider: ProviderName,
				Code:     "RATE_LIMIT",
				Message:  "API rate limit exceeded, please try again later",
				Err:      routing.ErrRateLimitExceeded,
			}
		}
		return &routing.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("HTTP_%d", statusErr.StatusCode),
			Message:  fmt.Sprintf("directions provider returned status %d", statusErr.StatusCode),
			Err:      routing.ErrProviderUnavailable,
		}
	}
	return &routing.Error{
		Provider: ProviderName,
		Code:     "REQUEST_FAILED",
		Message:  "failed to reach directions provider",
		Err:      errors.Join(routing.ErrProviderUnavailable, err),
	}
}

// directionsStatusError maps a non-OK Directions API status to a routing error.
func directionsStatusError(status, message string) error {
	e := &routing.Error{Provider: ProviderName, Code: status, Message: message}
	switch status {
	case StatusZeroResults, StatusNotFound:
		e.Err = routing.ErrNoRouteFound
		if e.Message == "" {
			e.Message = "no transit route found between the given points"
		}
	case StatusOverQueryLimit, StatusOverDailyLimit:
		e.Err = routing.ErrRateLimitExceeded
		if e.Message == "" {
			e.Message = "API rate limit exceeded, please try again later"
		}
	case StatusRequestDenied:
		e.Err = routing.ErrRequestDenied
		if e.Message == "" {
			e.Message = "API access denied - check API key configuration"
		}
	case StatusInvalidRequest, StatusMaxRouteLengthErr:
		e.Err = routing.ErrInvalidCoordinates
		if e.Message == "" {
			e.Message = "the directions request was rejected as invalid"
		}
	default:
		e.Err = routing.ErrProviderUnavailable
		if e.Message == "" {
			e.Message = "directions provider returned status " + status
		}
	}
	return e
}
