package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"rintintin/internal/platform/logger"
)

func TestRecover_WritesGenericError(t *testing.T) {
	h := Recover(logger.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Error interno del servidor") || strings.Contains(rec.Body.String(), "boom") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestRateLimiter_BlocksAfterBurst(t *testing.T) {
	rl := NewRateLimiter(1, 2, logger.NewNop())
	h := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected codes %v", codes)
	}

	// Otra IP tiene su propio bucket
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected other ip to pass, got %d", rec.Code)
	}
}

func TestRateLimiter_EvictsIdleIPs(t *testing.T) {
	rl := NewRateLimiter(1, 1, logger.NewNop())
	clock := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }
	h := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }))

	hit := func(addr string) {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = addr
		h.ServeHTTP(httptest.NewRecorder(), req)
	}

	for i := 0; i < 50; i++ {
		hit(fmt.Sprintf("10.0.1.%d:1234", i))
	}
	if n := len(rl.visitors); n != 50 {
		t.Fatalf("expected 50 tracked ips, got %d", n)
	}

	clock = clock.Add(5 * time.Minute)
	hit("10.0.2.1:1234")
	clock = clock.Add(6 * time.Minute)
	hit("10.0.2.2:1234")

	// Solo sobreviven las IPs activas en los últimos 10 minutos.
	if n := len(rl.visitors); n != 2 {
		t.Fatalf("expected idle ips evicted, got %d tracked", n)
	}
	if _, ok := rl.visitors["10.0.1.0"]; ok {
		t.Fatalf("expected 10.0.1.0 evicted")
	}
}

func TestRateLimiter_IgnoresForwardedForWithoutRealIP(t *testing.T) {
	rl := NewRateLimiter(1, 1, logger.NewNop())
	h := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = "10.0.0.9:1234"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[1] != http.StatusTooManyRequests || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("expected spoofed X-Forwarded-For to share the peer bucket, got %v", codes)
	}
	if len(rl.visitors) != 1 {
		t.Fatalf("expected a single bucket for the peer, got %d", len(rl.visitors))
	}
}
