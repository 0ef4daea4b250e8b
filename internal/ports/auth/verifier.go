package auth

import "context"

// AuthVerifier verifica un token y devuelve claims o error.
// Los errores deben envolver ErrTokenInvalid o ErrTokenExpired.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

// TokenIssuer firma un token para los claims dados.
type TokenIssuer interface {
	Issue(ctx context.Context, c Claims) (string, error)
}
