package middleware

import (
	"net/http"

	"github.com/crumbhq/crumb-backend/api/responses"
	"github.com/crumbhq/crumb-backend/api/validators"
	"github.com/crumbhq/crumb-backend/pkg/logger"
)

// BakeryContext resolves the {bakeryId} path parameter for bakery-scoped routes.
func BakeryContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bakeryID, err := validators.ParseUUIDParam(r, "bakeryId")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			ctx := WithBakeryID(r.Context(), bakeryID)
			if logg != nil {
				ctx = logg.WithBakeryID(ctx, bakeryID.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
