package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/peroapp/pero/application/port/outbound"
	"github.com/peroapp/pero/domain/entity"
	"github.com/peroapp/pero/infrastructure/http/response"
)

type contextKey string

const AuthUserKey contextKey = "auth_user"

type AuthMiddleware struct {
	tokenService outbound.TokenService
}

func NewAuthMiddleware(tokenService outbound.TokenService) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
	}
}

func (m *AuthMiddleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := m.authenticate(w, r)
		if !ok {
			return
		}

		ctx := context.WithValue(r.Context(), AuthUserKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

func (m *AuthMiddleware) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := m.authenticate(w, r)
		if !ok {
			return
		}

		if claims.Role != entity.RoleAdmin {
			response.Forbidden(w, "Admin role required")
			return
		}

		ctx := context.WithValue(r.Context(), AuthUserKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

func (m *AuthMiddleware) authenticate(w http.ResponseWriter, r *http.Request) (*outbound.TokenClaims, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		response.Unauthorized(w, "Authorization header required")
		return nil, false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		response.Unauthorized(w, "Invalid authorization header format")
		return nil, false
	}

	claims, err := m.tokenService.VerifyAccessToken(parts[1])
	if err != nil {
		response.Unauthorized(w, "Invalid or expired token")
		return nil, false
	}

	return claims, true
}

// ClaimsFromContext returns the authenticated claims stored by RequireAuth
func ClaimsFromContext(ctx context.Context) (*outbound.TokenClaims, bool) {
	claims, ok := ctx.Value(AuthUserKey).(*outbound.TokenClaims)
	return claims, ok
}
