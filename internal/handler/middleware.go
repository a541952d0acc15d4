package handler

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// apiSecurityHeaders are set on every response. The API only serves JSON, so
// the CSP forbids loading anything, and thread contents must not be cached.
var apiSecurityHeaders = [][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Referrer-Policy", "strict-origin-when-cross-origin"},
	{"X-XSS-Protection", "0"},
	{"Permissions-Policy", "camera=(), microphone=(), geolocation=()"},
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	{"Strict-Transport-Security", "max-age=63072000; includeSubDomains"},
	{"Cache-Control", "no-store"},
}

// SecurityHeaders sets apiSecurityHeaders before calling next.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for _, kv := range apiSecurityHeaders {
			h.Set(kv[0], kv[1])
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimiter throttles requests per client address with a sliding one-minute
// window. A background sweeper drops idle clients until Stop is called.
type RateLimiter struct {
	limit             int
	window            time.Duration
	trustedProxyCount int
	now               func() time.Time

	mu   sync.Mutex
	hits map[string][]time.Time

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

const sweepInterval = 5 * time.Minute

// NewRateLimiter allows maxPerMinute requests per client. trustedProxyCount is
// the number of reverse proxies in front of the API that append to
// X-Forwarded-For; 0 means the header is ignored.
func NewRateLimiter(maxPerMinute, trustedProxyCount int) *RateLimiter {
	rl := newRateLimiter(maxPerMinute, trustedProxyCount, time.Now)
	go rl.sweepLoop(sweepInterval)
	return rl
}

func newRateLimiter(maxPerMinute, trustedProxyCount int, now func() time.Time) *RateLimiter {
	return &RateLimiter{
		limit:             maxPerMinute,
		window:            time.Minute,
		trustedProxyCount: max(trustedProxyCount, 0),
		now:               now,
		hits:              make(map[string][]time.Time),
		stop:              make(chan struct{}),
		done:              make(chan struct{}),
	}
}

// Stop ends the background sweeper and waits for it to exit. Safe to call
// more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
	<-rl.done
}

func (rl *RateLimiter) sweepLoop(every time.Duration) {
	defer close(rl.done)
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.sweep()
		}
	}
}

// sweep forgets clients with no request inside the window.
func (rl *RateLimiter) sweep() {
	cutoff := rl.now().Add(-rl.window)
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, ts := range rl.hits {
		if ts = pruneBefore(ts, cutoff); len(ts) == 0 {
			delete(rl.hits, key)
		} else {
			rl.hits[key] = ts
		}
	}
}

// allow records a hit for key. When the client is over the limit nothing is
// recorded and the wait until the oldest hit leaves the window is returned.
func (rl *RateLimiter) allow(key string) (bool, time.Duration) {
	now := rl.now()
	rl.mu.Lock()
	defer rl.mu.Unlock()

	ts := pruneBefore(rl.hits[key], now.Add(-rl.window))
	if len(ts) >= rl.limit {
		rl.hits[key] = ts
		return false, ts[0].Add(rl.window).Sub(now)
	}
	rl.hits[key] = append(ts, now)
	return true, 0
}

// pruneBefore drops timestamps at or before cutoff, reusing the backing array.
func pruneBefore(ts []time.Time, cutoff time.Time) []time.Time {
	kept := ts[:0]
	for _, t := range ts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}

// Middleware rejects over-limit clients with 429 and a Retry-After header.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, wait := rl.allow(rl.clientIP(r))
		if !ok {
			w.Header().Set("Retry-After", retryAfterSeconds(wait))
			writeError(w, http.StatusTooManyRequests, "rate_limited")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func retryAfterSeconds(d time.Duration) string {
	return strconv.Itoa(max(int(d.Seconds())+1, 1))
}

// clientIP reads the entry the closest trusted proxy appended to
// X-Forwarded-For, falling back to the connection address.
func (rl *RateLimiter) clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" && rl.trustedProxyCount > 0 {
		parts := strings.Split(xff, ",")
		if idx := len(parts) - rl.trustedProxyCount; idx >= 0 {
			return strings.TrimSpace(parts[idx])
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// loopbackOrigin stands in for the origin when no forwarding header is
// present. All such requests share one contact-form bucket.
const loopbackOrigin = "127.0.0.1"

// OriginAddress returns the submitter address used for the contact-form
// limit: the first X-Forwarded-For entry, or loopbackOrigin when absent.
func OriginAddress(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	first, _, _ := strings.Cut(xff, ",")
	if first = strings.TrimSpace(first); first != "" {
		return first
	}
	return loopbackOrigin
}
