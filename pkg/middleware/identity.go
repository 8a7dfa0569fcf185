package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/utafrali/marketplace-discovery/pkg/httputil"
	"github.com/utafrali/marketplace-discovery/pkg/logger"
)

// Identity headers. The session id keys behavior tracking; the user id is
// the rating author and is asserted by the upstream gateway.
const (
	HeaderSessionID = "X-Session-ID"
	HeaderUserID    = "X-User-ID"
)

// maxIdentityLength bounds the header values accepted as identifiers.
const maxIdentityLength = 128

// Identity copies the session and user id headers into the request context.
// Oversized or non-printable values are rejected with 400.
func Identity() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			for _, h := range []struct {
				name string
				set  func(context.Context, string) context.Context
			}{
				{HeaderSessionID, logger.WithSessionID},
				{HeaderUserID, logger.WithUserID},
			} {
				v := strings.TrimSpace(r.Header.Get(h.name))
				if v == "" {
					continue
				}
				if !validIdentity(v) {
					httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
						Error: &httputil.ErrorResponse{
							Code:    "INVALID_INPUT",
							Message: "malformed " + h.name + " header",
						},
					})
					return
				}
				ctx = h.set(ctx, v)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func validIdentity(v string) bool {
	if len(v) > maxIdentityLength {
		return false
	}
	for _, c := range v {
		if c < 0x21 || c > 0x7e {
			return false
		}
	}
	return true
}

// SessionIDFromContext returns the session id set by Identity.
func SessionIDFromContext(ctx context.Context) string {
	return logger.SessionIDFromContext(ctx)
}

// UserIDFromContext returns the user id set by Identity.
func UserIDFromContext(ctx context.Context) string {
	return logger.UserIDFromContext(ctx)
}
