package jwt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rintintin/internal/ports/auth"

	gojwt "github.com/golang-jwt/jwt/v5"
)

var (
	ErrSecretEmpty = errors.New("jwt secret is empty")
	ErrTokenEmpty  = errors.New("token is empty")
)

// DefaultTTL es la vigencia de los tokens emitidos (7 días).
const DefaultTTL = 7 * 24 * time.Hour

type Config struct {
	Secret string
	TTL    time.Duration

	// Opcional: claim "iss".
	Issuer string
}

// claims viaja dentro del token. Nombres compatibles con los clientes existentes.
type claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	gojwt.RegisteredClaims
}

// Signer implementa auth.TokenIssuer y auth.AuthVerifier con HS256.
type Signer struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

func NewSigner(cfg Config) (*Signer, error) {
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, ErrSecretEmpty
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Signer{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: strings.TrimSpace(cfg.Issuer),
		now:    time.Now,
	}, nil
}

func (s *Signer) Issue(_ context.Context, c auth.Claims) (string, error) {
	if strings.TrimSpace(c.UserID) == "" {
		return "", errors.New("jwt: user id required")
	}
	now := s.now()
	tok := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims{
		UserID: c.UserID,
		Email:  c.Email,
		Role:   c.Role,
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   c.UserID,
			Issuer:    s.issuer,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(s.ttl)),
		},
	})
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("jwt: sign: %w", err)
	}
	return signed, nil
}

func (s *Signer) Verify(_ context.Context, token string) (auth.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, fmt.Errorf("%w: %v", auth.ErrTokenInvalid, ErrTokenEmpty)
	}

	var out claims
	_, err := gojwt.ParseWithClaims(token, &out, func(t *gojwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*gojwt.SigningMethodHMAC); !ok {
			return nil, gojwt.ErrTokenUnverifiable
		}
		return s.secret, nil
	},
		gojwt.WithTimeFunc(s.now),
		gojwt.WithLeeway(5*time.Second),
		gojwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, gojwt.ErrTokenExpired) {
			return auth.Claims{}, fmt.Errorf("%w: %v", auth.ErrTokenExpired, err)
		}
		return auth.Claims{}, fmt.Errorf("%w: %v", auth.ErrTokenInvalid, err)
	}

	uid := strings.TrimSpace(out.UserID)
	if uid == "" {
		uid = strings.TrimSpace(out.Subject)
	}
	if uid == "" {
		return auth.Claims{}, fmt.Errorf("%w: missing user id", auth.ErrTokenInvalid)
	}

	return auth.Claims{
		UserID: uid,
		Email:  out.Email,
		Role:   out.Role,
	}, nil
}
