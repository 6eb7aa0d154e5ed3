package middleware

import (
	"context"
	"errors"
	"net/http"

	"shop-inventory/internal/auth"

	"go.uber.org/zap"
)

type contextKey string

const identityKey contextKey = "identity"

// TokenAuthenticator validates a raw bearer token into an identity
type TokenAuthenticator interface {
	Authenticate(raw string) (*auth.Identity, error)
}

// AuthMiddleware validates the bearer token and stores the caller's identity
// in the request context. Any failure ends the request with 401.
func AuthMiddleware(authenticator TokenAuthenticator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Debug("Missing authorization header")
				RespondWithError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			tokenString, ok := auth.ParseBearer(authHeader)
			if !ok {
				logger.Debug("Invalid authorization header format")
				RespondWithError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			identity, err := authenticator.Authenticate(tokenString)
			if err != nil {
				logger.Debug("Token validation failed", zap.Error(err))
				RespondWithError(w, http.StatusUnauthorized, unauthorizedMessage(err))
				return
			}

			logger.Debug("User authenticated",
				zap.String("user_id", identity.UserID),
				zap.String("username", identity.Username),
			)

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

func unauthorizedMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return "token expired"
	case errors.Is(err, auth.ErrInvalidClaims):
		return "invalid token claims"
	default:
		return "invalid token"
	}
}

// WithIdentity returns a copy of ctx carrying identity
func WithIdentity(ctx context.Context, identity *auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// GetIdentity extracts the authenticated identity from request context
func GetIdentity(ctx context.Context) (*auth.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(*auth.Identity)
	return identity, ok && identity != nil
}
