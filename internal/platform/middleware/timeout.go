package middleware

import (
	"context"
	"net/http"
	"time"
)

// Timeout bounds a request's context. Handlers still must honor ctx.Done();
// this does not forcibly terminate writes.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
