// Rate limiter protecting the admin control plane and the websocket
// upgrade route from abuse: one token-bucket limiter per source IP.
package api

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter hands each source IP its own token bucket, sized so a client
// can burst up to maxRate requests before it has to wait out window/maxRate
// per additional request. Idle buckets are reclaimed by a background sweep.
type RateLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*ipBucket
	maxRate   int
	window    time.Duration
	sweepDone chan struct{}
}

type ipBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a rate limiter allowing maxRate requests per
// window, per source IP.
func NewRateLimiter(maxRate int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets:   make(map[string]*ipBucket),
		maxRate:   maxRate,
		window:    window,
		sweepDone: make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

// bucketFor returns the ip's limiter, creating one with a fresh full burst
// on first sight.
func (rl *RateLimiter) bucketFor(ip string) *ipBucket {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[ip]
	if !ok {
		perRequest := rl.window / time.Duration(rl.maxRate)
		b = &ipBucket{limiter: rate.NewLimiter(rate.Every(perRequest), rl.maxRate)}
		rl.buckets[ip] = b
	}
	b.lastSeen = time.Now()
	return b
}

// Allow reports whether a request from ip is within its limit right now.
func (rl *RateLimiter) Allow(ip string) bool {
	return rl.bucketFor(ip).limiter.Allow()
}

// RetryAfter returns how many whole seconds ip should wait before its next
// request would be allowed.
func (rl *RateLimiter) RetryAfter(ip string) int {
	b := rl.bucketFor(ip)
	reservation := b.limiter.Reserve()
	defer reservation.Cancel()

	delay := reservation.Delay()
	if delay <= 0 {
		return 0
	}
	return int(delay.Seconds()) + 1
}

func (rl *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.sweepDone:
			return
		}
	}
}

// sweep drops buckets that have gone quiet for two full windows, so a long
// run doesn't accumulate one limiter per IP that ever connected.
func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-2 * rl.window)
	for ip, b := range rl.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(rl.buckets, ip)
		}
	}
}

// Close stops the background sweep goroutine. Not required for correctness
// of a single long-lived server-wide limiter, but keeps a limiter created
// in a test or short-lived process from leaking it.
func (rl *RateLimiter) Close() {
	close(rl.sweepDone)
}

// clientIP resolves the address a request should be rate-limited under:
// the first hop of X-Forwarded-For when present (reverse-proxied deploys),
// otherwise the connection's own address with its port stripped.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// RateLimitMiddleware wraps next so a caller who exceeds rl's limit gets a
// 429 with a Retry-After header instead of reaching the handler.
func RateLimitMiddleware(rl *RateLimiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !rl.Allow(ip) {
			w.Header().Set("Retry-After", strconv.Itoa(rl.RetryAfter(ip)))
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}
