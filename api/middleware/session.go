package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/crumbhq/crumb-backend/pkg/logger"
)

const (
	DefaultCartSessionHeader = "X-Cart-Session"
	maxCartSessionLength     = 128
)

// CartSession resolves the anonymous cart session from header. A missing,
// oversized or unprintable value gets a fresh session id, echoed back on the
// response.
func CartSession(header string, logg *logger.Logger) func(http.Handler) http.Handler {
	if strings.TrimSpace(header) == "" {
		header = DefaultCartSessionHeader
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID, ok := clientToken(r, header, maxCartSessionLength)
			var ctx context.Context
			if !ok {
				sessionID = uuid.NewString()
				ctx = withIssuedCartSession(r.Context(), sessionID)
			} else {
				ctx = WithCartSession(r.Context(), sessionID)
			}
			w.Header().Set(header, sessionID)

			if logg != nil {
				ctx = logg.WithCartSession(ctx, sessionID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
