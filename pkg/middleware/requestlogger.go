package middleware

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/marketplace-discovery/pkg/logger"
)

// RequestLogger stores a logger enriched with the request's correlation,
// session, user and trace ids in the context. Mount it after RequestLogging,
// Tracing and Identity.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
