// Rate limiter for the database-backed history endpoints, the only handlers
// whose cost scales with stored data.
package api

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

const defaultWindow = time.Minute

// RateLimiter grants each client IP a fixed number of requests per window.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientWindow
	limit   int
	window  time.Duration
}

// clientWindow counts the requests a client has spent in its current window.
type clientWindow struct {
	used    int
	resetAt time.Time
}

// NewRateLimiter creates a limiter allowing limit requests per window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*clientWindow),
		limit:   limit,
		window:  window,
	}
	go func() {
		for {
			time.Sleep(time.Hour)
			rl.cleanup()
		}
	}()
	return rl
}

// Allow spends one request from the client's window. An exhausted window
// reports false together with the time remaining until it resets.
func (rl *RateLimiter) Allow(ip string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cw, ok := rl.clients[ip]
	if !ok || !now.Before(cw.resetAt) {
		rl.clients[ip] = &clientWindow{used: 1, resetAt: now.Add(rl.window)}
		return true, 0
	}

	if cw.used < rl.limit {
		cw.used++
		return true, 0
	}
	return false, cw.resetAt.Sub(now)
}

// cleanup drops clients whose window expired, so idle IPs do not accumulate.
func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for ip, cw := range rl.clients {
		if !now.Before(cw.resetAt) {
			delete(rl.clients, ip)
		}
	}
}

// clientIP extracts the caller's address, honoring X-Forwarded-For for
// proxied requests.
func clientIP(r *http.Request) string {
	ip := r.RemoteAddr
	if idx := strings.LastIndexByte(ip, ':'); idx >= 0 {
		ip = ip[:idx]
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ip = xff
		if idx := strings.IndexByte(xff, ','); idx >= 0 {
			ip = xff[:idx]
		}
	}
	return ip
}

// RateLimitMiddleware wraps a handler with rate limiting. Returns 429 with a
// Retry-After hint when the client's window is exhausted.
func RateLimitMiddleware(rl *RateLimiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ok, wait := rl.Allow(clientIP(r))
		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(wait.Seconds())+1))
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}
