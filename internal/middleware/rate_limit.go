package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"rintintin/internal/platform/httpx"
	"rintintin/internal/platform/logger"

	"golang.org/x/time/rate"
)

// idleTTL es cuánto vive el bucket de una IP sin requests.
const idleTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter limita requests por IP (token bucket de x/time/rate).
// Las IPs sin actividad por idleTTL se descartan en el siguiente barrido.
type RateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	log       logger.Logger
	now       func() time.Time
	lastSweep time.Time
}

// NewRateLimiter permite perMinute requests por minuto y por IP, con ráfaga igual a burst.
// perMinute <= 0 desactiva el límite.
func NewRateLimiter(perMinute, burst int, log logger.Logger) *RateLimiter {
	lim := rate.Inf
	if perMinute > 0 {
		lim = rate.Every(time.Minute / time.Duration(perMinute))
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    lim,
		burst:    burst,
		log:      log,
		now:      time.Now,
	}
}

func (rl *RateLimiter) limiterFor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) >= idleTTL {
		rl.sweep(now)
	}

	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter
}

// sweep requiere rl.mu.
func (rl *RateLimiter) sweep(now time.Time) {
	for ip, v := range rl.visitors {
		if now.Sub(v.lastSeen) >= idleTTL {
			delete(rl.visitors, ip)
		}
	}
	rl.lastSweep = now
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !rl.limiterFor(ip).Allow() {
			if rl.log != nil {
				rl.log.Warn("rate limit exceeded", map[string]any{"ip": ip, "path": r.URL.Path})
			}
			httpx.WriteMessage(w, http.StatusTooManyRequests, "Demasiadas solicitudes, intenta más tarde")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP usa RemoteAddr. Solo refleja X-Forwarded-For si el router montó chimw.RealIP (TRUST_PROXY).
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
