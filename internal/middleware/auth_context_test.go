package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"rintintin/internal/ports/auth"
)

type testVerifier map[string]auth.Claims

func (v testVerifier) Verify(_ context.Context, token string) (auth.Claims, error) {
	if token == "expired" {
		return auth.Claims{}, fmt.Errorf("verify: %w", auth.ErrTokenExpired)
	}
	c, ok := v[token]
	if !ok {
		return auth.Claims{}, auth.ErrTokenInvalid
	}
	return c, nil
}

func serve(h http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuth(t *testing.T) {
	verifier := testVerifier{
		"good":  {UserID: "u-1", Role: "USER"},
		"admin": {UserID: "u-2", Role: "ADMIN"},
	}
	var seen auth.Claims
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetClaims(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	h := AuthContext(verifier)(RequireAuth(ok))

	cases := []struct {
		header string
		status int
		body   string
	}{
		{"", http.StatusUnauthorized, msgTokenMissing},
		{"Basic abc", http.StatusUnauthorized, msgTokenMissing},
		{"Bearer nope", http.StatusUnauthorized, msgTokenInvalid},
		{"Bearer expired", http.StatusUnauthorized, msgTokenExpired},
		{"bearer good", http.StatusNoContent, ""},
	}
	for _, tc := range cases {
		rec := serve(h, tc.header)
		if rec.Code != tc.status {
			t.Fatalf("%q: expected %d, got %d", tc.header, tc.status, rec.Code)
		}
		if tc.body != "" && !strings.Contains(rec.Body.String(), tc.body) {
			t.Fatalf("%q: expected message %q, got %s", tc.header, tc.body, rec.Body.String())
		}
	}
	if seen.UserID != "u-1" {
		t.Fatalf("expected claims in context, got %#v", seen)
	}
}

func TestRequireRole(t *testing.T) {
	verifier := testVerifier{
		"good":  {UserID: "u-1", Role: "USER"},
		"admin": {UserID: "u-2", Role: "ADMIN"},
	}
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := AuthContext(verifier)(RequireAuth(RequireRole("ADMIN")(ok)))

	if rec := serve(h, "Bearer good"); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for USER, got %d", rec.Code)
	}
	if rec := serve(h, "Bearer admin"); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for ADMIN, got %d", rec.Code)
	}
}

func TestAuthContext_PublicRouteIgnoresBadToken(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, found := GetClaims(r.Context()); found {
			t.Fatalf("unexpected claims for invalid token")
		}
		w.WriteHeader(http.StatusOK)
	})
	if rec := serve(AuthContext(testVerifier{})(ok), "Bearer nope"); rec.Code != http.StatusOK {
		t.Fatalf("expected public route to pass, got %d", rec.Code)
	}
}
