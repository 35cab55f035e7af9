package middleware

import (
	"net/http"

	"github.com/quillfeed/quillfeed/internal/auth"
	"github.com/quillfeed/quillfeed/internal/model"
)

// RequireRole returns middleware that enforces a role requirement.
// Must be applied after Authenticate. The check is a pure predicate over
// the context identity with no I/O, and it fails closed: an unrecognized
// role never satisfies anything.
func RequireRole(required model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := auth.IdentityFromContext(r.Context())
			if !ok {
				writeAuthError(w, "AUTHENTICATION_REQUIRED", "Authentication required")
				return
			}

			if !identity.Role.Satisfies(required) {
				writeForbiddenError(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin is a convenience middleware for admin-only routes.
func RequireAdmin() func(http.Handler) http.Handler {
	return RequireRole(model.RoleAdmin)
}

// writeForbiddenError writes a 403 response.
func writeForbiddenError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(`{"error":{"code":"FORBIDDEN","message":"Insufficient permissions"}}`))
}
