package handler

import (
	"context"

	"github.com/smartmobility/tripplanner/internal/api/middleware"
	"github.com/smartmobility/tripplanner/internal/auth"
)

// GetUserID retrieves the authenticated user ID from the context.
// This is a convenience wrapper around middleware.GetUserID.
func GetUserID(ctx context.Context) string {
	return middleware.GetUserID(ctx)
}

// principal returns the authenticated caller, or false when the request
// did not pass through the auth middleware.
func principal(ctx context.Context) (auth.Principal, bool) {
	p, ok := middleware.GetPrincipal(ctx)
	if !ok || p.UserID == "" {
		return auth.Principal{}, false
	}
	return p, true
}
