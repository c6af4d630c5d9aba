// Package requesttime pins one "now" per request so audit events and logs
// written while serving it agree on the timestamp.
package requesttime

import (
	"net/http"
	"time"

	"pokereview/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now().UTC())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
