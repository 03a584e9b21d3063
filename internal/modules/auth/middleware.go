package auth

import (
	"net/http"
	"strings"

	"github.com/georgemunganga/pulse-backend/internal/render"
	"github.com/samber/oops"
)

// Middleware rejects requests without a valid bearer token and stores the
// token's user id in the request context.
func Middleware(svc Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				// Browsers cannot set headers on websocket upgrades.
				token = r.URL.Query().Get("access_token")
			}
			if token == "" {
				render.Error(w, r, oops.In("auth").Code(CodeInvalidToken).Errorf("missing bearer token"))
				return
			}
			userID, err := svc.Verify(strings.TrimSpace(token))
			if err != nil {
				render.Error(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}
