package apiclient

import (
	"sync"

	"rintintin/internal/domain/users"
)

// Session guarda el token y el usuario autenticado. Es del caller: cada
// Client recibe la suya y no hay estado global.
type Session struct {
	mu    sync.RWMutex
	token string
	user  *users.UserResponse
}

func NewSession() *Session {
	return &Session{}
}

func (s *Session) Set(token string, user users.UserResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = &user
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User devuelve el usuario de la sesión, si hay.
func (s *Session) User() (users.UserResponse, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return users.UserResponse{}, false
	}
	return *s.user, true
}

// Clear es el logout: el servidor no revoca tokens.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
}
