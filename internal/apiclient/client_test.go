package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"rintintin/internal/domain/users"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_SetAndClear(t *testing.T) {
	s := NewSession()
	_, ok := s.User()
	assert.False(t, ok)

	s.Set("tok", users.UserResponse{ID: "u-1", Email: "a@example.com"})
	u, ok := s.User()
	require.True(t, ok)
	assert.Equal(t, "u-1", u.ID)
	assert.Equal(t, "tok", s.Token())

	s.Clear()
	_, ok = s.User()
	assert.False(t, ok)
	assert.Empty(t, s.Token())
}

func TestSitterFilters_Query(t *testing.T) {
	assert.Equal(t, "", SitterFilters{}.query())
	assert.Equal(t, "?city=Rosario&maxPrice=500", SitterFilters{City: "Rosario", MaxPrice: "500"}.query())
}

func TestClient_LoginStoresSessionAndSendsBearer(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(AuthResponse{User: users.UserResponse{ID: "u-1", Email: "a@example.com"}, Token: "tok-1"})
	})
	mux.HandleFunc("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"No autorizado - Token no proporcionado"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(users.UserResponse{ID: "u-1", Email: "a@example.com"})
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	c, err := New(ts.URL+"/api/", nil)
	require.NoError(t, err)

	_, err = c.Me(context.Background())
	require.Error(t, err)

	_, err = c.Login(context.Background(), "a@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", c.Session().Token())

	me, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", me.Email)
}
