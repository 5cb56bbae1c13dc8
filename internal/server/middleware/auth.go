package middleware

import (
	"net/http"
	"strings"

	"github.com/cebutourist/sugbo/internal/auth"
	"github.com/cebutourist/sugbo/internal/authz"
	"github.com/cebutourist/sugbo/internal/gateway"
	"github.com/cebutourist/sugbo/internal/model"
	"github.com/cebutourist/sugbo/internal/service"
)

// Authenticate validates the Authorization bearer token and loads the
// acting admin onto the request context. The admin row is re-read on every
// request so a deactivated account loses access immediately, not at token
// expiry. On failure a 401 JSON error is returned.
func Authenticate(tokens *auth.TokenService, gw *gateway.Gateway) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeAuthError(w, http.StatusUnauthorized, "Authentication required. Provide a Bearer token.")
				return
			}

			principal, err := tokens.Validate(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			var admin model.Admin
			err = gw.From("admin_users").
				Eq("id", principal.AdminID).
				Eq("is_active", true).
				One(r.Context(), &admin)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "Account is not active")
				return
			}

			ctx := authz.WithAdmin(r.Context(), admin)
			ctx = service.WithUserAgent(ctx, r.UserAgent())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole enforces a role on top of Authenticate. It must run after
// Authenticate in the middleware chain.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			admin, ok := authz.AdminFrom(r.Context())
			if !ok || !admin.HasRole(role) {
				writeAuthError(w, http.StatusForbidden, "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Manually construct JSON to avoid an import cycle with the handler
	// package.
	w.Write([]byte(`{"error":{"code":` + httpStatusString(status) + `,"message":"` + message + `"}}`))
}

func httpStatusString(code int) string {
	switch code {
	case 401:
		return "401"
	case 403:
		return "403"
	default:
		return "500"
	}
}
