package handler

import (
	"context"
	"go-auth-api/common"
	"go-auth-api/service"
	"net/http"
	"strings"
)

type contextKey string

const (
	UserIDKey   contextKey = "userID"
	UsernameKey contextKey = "username"
	UserRoleKey contextKey = "userRole"
)

// AuthMiddleware validates bearer tokens and checks revocation before letting
// a request through. A cryptographically valid but revoked token is treated
// exactly like an invalid one.
type AuthMiddleware struct {
	tokens     service.ITokenService
	revocation *service.RevocationService
}

func NewAuthMiddleware(tokens service.ITokenService, revocation *service.RevocationService) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, revocation: revocation}
}

func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			err := common.NewAppError(http.StatusUnauthorized, "Authorization header is required", nil)
			err.Send(w)
			return
		}

		headerParts := strings.Split(authHeader, " ")
		if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" {
			err := common.NewAppError(http.StatusUnauthorized, "Invalid authorization header format", nil)
			err.Send(w)
			return
		}

		claims, ok := m.tokens.Validate(headerParts[1])
		if !ok {
			appErr := common.NewAppError(http.StatusUnauthorized, "Invalid or expired token", nil)
			appErr.Send(w)
			return
		}

		if m.revocation.IsRevoked(r.Context(), claims.ID) {
			appErr := common.NewAppError(http.StatusUnauthorized, "Invalid or expired token", nil)
			appErr.Send(w)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, UsernameKey, claims.Subject)
		ctx = context.WithValue(ctx, UserRoleKey, claims.Role)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
