package httpapi

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ipRateLimiter is a per-IP token bucket guarding the WebSocket
// upgrade route (spec §5 "Timeouts", SPEC_FULL §B). Grounded on
// iamvalenciia-kick-game-stream/fight-club-go/internal/api/ratelimit.go's
// IPRateLimiter, trimmed to the one thing this server needs: gating
// new connections, not general HTTP request throttling.
type ipRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	r        rate.Limit
	burst    int
}

func newIPRateLimiter(perSecond float64, burst int) *ipRateLimiter {
	rl := &ipRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		r:        rate.Limit(perSecond),
		burst:    burst,
	}
	go rl.cleanupLoop()
	return rl
}

func (rl *ipRateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	lim, ok := rl.limiters[ip]
	if !ok {
		lim = rate.NewLimiter(rl.r, rl.burst)
		rl.limiters[ip] = lim
	}
	rl.mu.Unlock()
	return lim.Allow()
}

// cleanupLoop drops limiters nobody has touched recently, so a churn
// of distinct client IPs doesn't grow this map without bound.
func (rl *ipRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		rl.mu.Lock()
		for ip, lim := range rl.limiters {
			if lim.Tokens() >= float64(rl.burst) {
				delete(rl.limiters, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// clientIP extracts the caller's address, preferring X-Forwarded-For
// for requests behind a reverse proxy (spec §6; grounded on the
// teacher's main.go and the pack's GetClientIP helper).
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx >= 0 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
