package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/streetfood/rawmart/pkg/logger"
)

// SessionParam is the route parameter carrying the storefront session token.
const SessionParam = "sessionId"

// SessionContext copies the {sessionId} route parameter into the request
// context and the request logger. Validation of the token stays with the
// services.
func SessionContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := strings.TrimSpace(chi.URLParam(r, SessionParam))
			if sessionID == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := WithSessionID(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
