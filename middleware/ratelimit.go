// ABOUTME: Rate limiting middleware backed by token buckets
// ABOUTME: Provides per-client limits keyed by IP address

package middleware

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// clientLimiter pairs a token bucket with its last use so stale buckets can
// be swept.
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter enforces a per-key request rate. Each unique key gets an
// independent token bucket refilled at the configured per-minute rate, with
// a burst of the same size so short spikes are tolerated.
type RateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientLimiter
	perMinute    int
	sweepCounter int // tracks new buckets created; triggers sweep every 100
}

// staleAfter is how long an untouched bucket survives before a sweep drops it.
const staleAfter = 10 * time.Minute

// NewRateLimiter creates a rate limiter that allows perMinute requests per
// key per minute.
func NewRateLimiter(perMinute int) *RateLimiter {
	return &RateLimiter{
		clients:   make(map[string]*clientLimiter),
		perMinute: perMinute,
	}
}

// Allow reports whether a request for the given key should be permitted.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	c, exists := rl.clients[key]
	if !exists {
		c = &clientLimiter{
			limiter: rate.NewLimiter(rate.Limit(float64(rl.perMinute)/60.0), rl.perMinute),
		}
		rl.clients[key] = c

		// Periodic sweep: clean up stale buckets every 100 new keys.
		// This bounds memory to active keys plus at most 100 stale entries.
		rl.sweepCounter++
		if rl.sweepCounter >= 100 {
			rl.sweep(now)
			rl.sweepCounter = 0
		}
	}
	c.lastSeen = now
	return c.limiter.Allow()
}

// sweep removes buckets idle longer than staleAfter.
// Must be called while holding rl.mu.
func (rl *RateLimiter) sweep(now time.Time) {
	for k, c := range rl.clients {
		if now.Sub(c.lastSeen) > staleAfter {
			delete(rl.clients, k)
		}
	}
}

// ClientIP extracts the client IP from X-Forwarded-For (leftmost) or RemoteAddr.
// This trusts the X-Forwarded-For header, which is safe when the application
// runs behind a trusted reverse proxy that sets the header. If exposed directly
// to the internet without a proxy, attackers could spoof this header to bypass
// IP-based rate limits.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// Validate with net.ParseIP to reject garbage values from spoofed headers.
		parts := strings.SplitN(xff, ",", 2)
		ip := strings.TrimSpace(parts[0])
		if ip != "" && net.ParseIP(ip) != nil {
			return "ip:" + ip
		}
	}

	// Fall back to RemoteAddr, stripping port
	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return "ip:" + host
}

// RateLimit returns middleware that enforces rate limits using the given
// limiter and key function. If limiter is nil, the middleware is a no-op
// (disabled mode). If keyFunc returns an empty string, the request passes
// through (unidentifiable client).
func RateLimit(limiter *RateLimiter, keyFunc func(*http.Request) string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil || keyFunc == nil {
				next(w, r)
				return
			}

			key := keyFunc(r)
			if key == "" {
				next(w, r)
				return
			}

			if limiter.Allow(key) {
				next(w, r)
				return
			}

			slog.Warn("Rate limit exceeded", "key", key, "path", r.URL.Path)

			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "60")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error": "Rate limit exceeded",
				"code":  http.StatusTooManyRequests,
			})
		}
	}
}
