package middleware

import (
	"net/http"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/crumbhq/crumb-backend/pkg/logger"
)

const (
	requestIDHeader    = "X-Request-Id"
	maxRequestIDLength = 128
)

// clientToken returns the trimmed header value when it is short enough and
// printable, so it can be echoed in responses and written to logs as is.
func clientToken(r *http.Request, header string, maxLen int) (string, bool) {
	value := strings.TrimSpace(r.Header.Get(header))
	if value == "" || len(value) > maxLen {
		return "", false
	}
	for _, c := range value {
		if !unicode.IsPrint(c) {
			return "", false
		}
	}
	return value, true
}

// RequestID tags the request log context with the caller's X-Request-Id, or a
// new uuid when the header is absent or unusable.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID, ok := clientToken(r, requestIDHeader, maxRequestIDLength)
			if !ok {
				reqID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, reqID)

			if logg != nil {
				r = r.WithContext(logg.WithRequestID(r.Context(), reqID))
			}
			next.ServeHTTP(w, r)
		})
	}
}
