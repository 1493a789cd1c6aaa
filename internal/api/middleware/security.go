package middleware

import (
	"net/http"
	"os"

	"github.com/smartmobility/tripplanner/internal/api/models"
)

// securityHeaders are set on every response. Geolocation is left out of
// Permissions-Policy: the web client sends the rider's position as the trip
// origin.
var securityHeaders = [][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Strict-Transport-Security", "max-age=31536000; includeSubDomains"},
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	{"Referrer-Policy", "strict-origin-when-cross-origin"},
	{"Permissions-Policy", "camera=(), microphone=()"},
}

// SecurityHeaders sets the API's fixed security headers before calling next.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for _, kv := range securityHeaders {
			h.Set(kv[0], kv[1])
		}
		next.ServeHTTP(w, r)
	})
}

// RequireTLS rejects plain-HTTP requests with 403 when REQUIRE_TLS=true.
// Only X-Forwarded-Proto from the load balancer is inspected, so direct
// connections without the header pass.
func RequireTLS(next http.Handler) http.Handler {
	if os.Getenv("REQUIRE_TLS") != "true" {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" && proto != "https" {
			models.NewProblem(models.ProblemTypeTLSRequired, "TLS required", http.StatusForbidden, GetRequestID(r.Context())).
				WithDetail("trip planning requires HTTPS").
				WithInstance(r.URL.Path).
				Write(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}
