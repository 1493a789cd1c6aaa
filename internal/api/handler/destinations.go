package handler

import (
	"context"
	"net/http"

	"github.com/smartmobility/tripplanner/internal/api/models"
	"github.com/smartmobility/tripplanner/internal/api/response"
	"github.com/smartmobility/tripplanner/internal/destination"
)

// maxDestinationLimit bounds the limit query parameter.
const maxDestinationLimit = 20

// DestinationStore keeps per-user destination history.
type DestinationStore interface {
	Save(ctx context.Context, userID string, in destination.SaveInput) (*destination.Destination, error)
	Popular(ctx context.Context, userID string, limit int) ([]*destination.Destination, error)
	Recent(ctx context.Context, userID string, limit int) ([]*destination.Destination, error)
}

// DestinationHandler handles the caller's destination history.
type DestinationHandler struct {
	destinations DestinationStore
}

// NewDestinationHandler creates a new DestinationHandler.
func NewDestinationHandler(destinations DestinationStore) *DestinationHandler {
	return &DestinationHandler{destinations: destinations}
}

// ListPopular handles GET /v1/me/destinations/popular.
func (h *DestinationHandler) ListPopular(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, destination.DefaultPopularLimit, h.destinations.Popular)
}

// ListRecent handles GET /v1/me/destinations/recent.
func (h *DestinationHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, destination.DefaultRecentLimit, h.destinations.Recent)
}

// SaveDestination handles POST /v1/me/destinations. Saving a known place
// bumps its count instead of adding a duplicate.
func (h *DestinationHandler) SaveDestination(w http.ResponseWriter, r *http.Request) {
	caller, ok := principal(r.Context())
	if !ok {
		response.Unauthorized(w, r, "authentication required")
		return
	}

	var input destination.SaveInput
	if !decodeJSON(w, r, &input) {
		return
	}

	saved, err := h.destinations.Save(r.Context(), caller.UserID, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, saved)
}

func (h *DestinationHandler) list(
	w http.ResponseWriter,
	r *http.Request,
	defaultLimit int,
	fetch func(ctx context.Context, userID string, limit int) ([]*destination.Destination, error),
) {
	caller, ok := principal(r.Context())
	if !ok {
		response.Unauthorized(w, r, "authentication required")
		return
	}

	q := newQueryParams(r)
	limit := q.intValue("limit", defaultLimit, 1, maxDestinationLimit)
	if len(q.errs) > 0 {
		response.BadRequest(w, r, "validation failed", q.errs)
		return
	}

	items, err := fetch(r.Context(), caller.UserID, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if items == nil {
		items = []*destination.Destination{}
	}

	response.JSON(w, r, http.StatusOK, models.DestinationListResponse{
		Items: items,
		Meta:  models.ListMeta{Count: len(items), Limit: limit},
	})
}
