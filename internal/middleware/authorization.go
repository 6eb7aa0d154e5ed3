package middleware

import (
	"errors"
	"net/http"

	"shop-inventory/internal/auth"

	"go.uber.org/zap"
)

// RequireRoles admits the request when the caller holds at least one of
// roles. With no roles any authenticated caller passes.
func RequireRoles(logger *zap.Logger, roles ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, _ := GetIdentity(r.Context())

			if err := auth.Authorize(identity, roles); err != nil {
				if errors.Is(err, auth.ErrUnauthenticated) {
					logger.Warn("Identity not found in context")
					RespondWithError(w, http.StatusUnauthorized, "authentication required")
					return
				}

				logger.Warn("User role not authorized",
					zap.String("user_id", identity.UserID),
					zap.Any("roles", identity.Roles),
					zap.Any("required_roles", roles),
				)
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin admits only callers holding the ADMIN role
func RequireAdmin(logger *zap.Logger) func(http.Handler) http.Handler {
	return RequireRoles(logger, auth.RoleAdmin)
}
