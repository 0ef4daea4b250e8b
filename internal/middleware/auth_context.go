package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"rintintin/internal/platform/httpx"
	"rintintin/internal/ports/auth"
)

type ctxKey string

const (
	claimsKey  ctxKey = "claims"
	authErrKey ctxKey = "auth_err"
)

const (
	msgTokenMissing = "No autorizado - Token no proporcionado"
	msgTokenInvalid = "Token inválido"
	msgTokenExpired = "Token expirado"
	msgAdminOnly    = "Acceso denegado - Se requieren permisos de administrador"
)

// AuthContext:
// - Si viene Bearer token => intenta Verify() y setea claims.
// - Si el token falla, guarda el error para que RequireAuth responda el 401 adecuado.
// - Sin token el request sigue igual; las rutas públicas no exigen auth.
func AuthContext(verifier auth.AuthVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" || verifier == nil {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := verifier.Verify(r.Context(), token)
			if err != nil {
				ctx := context.WithValue(r.Context(), authErrKey, err)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireAuth corta con 401 cuando no hay claims válidos.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, ok := GetClaims(r.Context()); ok && strings.TrimSpace(c.UserID) != "" {
			next.ServeHTTP(w, r)
			return
		}

		err, _ := r.Context().Value(authErrKey).(error)
		switch {
		case err == nil:
			httpx.WriteMessage(w, http.StatusUnauthorized, msgTokenMissing)
		case errors.Is(err, auth.ErrTokenExpired):
			httpx.WriteMessage(w, http.StatusUnauthorized, msgTokenExpired)
		default:
			httpx.WriteMessage(w, http.StatusUnauthorized, msgTokenInvalid)
		}
	})
}

// RequireRole exige un rol concreto. Debe montarse después de RequireAuth.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, ok := GetClaims(r.Context())
			if !ok || c.Role != role {
				httpx.WriteMessage(w, http.StatusForbidden, msgAdminOnly)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithClaims(ctx context.Context, c auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

func GetClaims(ctx context.Context) (auth.Claims, bool) {
	v := ctx.Value(claimsKey)
	if v == nil {
		return auth.Claims{}, false
	}
	c, ok := v.(auth.Claims)
	return c, ok
}

func bearerToken(authHeader string) string {
	if strings.TrimSpace(authHeader) == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
