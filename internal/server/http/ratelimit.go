package http

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type limiterEntry struct {
	lim  *rate.Limiter
	last time.Time
}

// ipLimiter keeps one token bucket per client address. Buckets idle for
// longer than idleTTL are evicted.
type ipLimiter struct {
	mu      sync.Mutex
	rps     rate.Limit
	burst   int
	idleTTL time.Duration
	m       map[string]*limiterEntry
	hits    uint64
}

func newIPLimiter(rps float64, burst int, idleTTL time.Duration) *ipLimiter {
	if burst <= 0 {
		burst = 1
	}
	if idleTTL <= 0 {
		idleTTL = 10 * time.Minute
	}
	return &ipLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		idleTTL: idleTTL,
		m:       make(map[string]*limiterEntry),
	}
}

func (l *ipLimiter) Allow(key string, now time.Time) bool {
	if l == nil || l.rps <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.hits++
	if l.hits%512 == 0 {
		l.evict(now)
	}

	e, ok := l.m[key]
	if !ok {
		e = &limiterEntry{lim: rate.NewLimiter(l.rps, l.burst)}
		l.m[key] = e
	}
	e.last = now
	return e.lim.AllowN(now, 1)
}

func (l *ipLimiter) evict(now time.Time) {
	for k, e := range l.m {
		if now.Sub(e.last) > l.idleTTL {
			delete(l.m, k)
		}
	}
}

func (l *ipLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.m)
}

// rateLimit answers 429 once the caller's bucket is empty. It keys on
// RemoteAddr, which chi's RealIP middleware has already rewritten.
func rateLimit(l *ipLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(clientKey(r), time.Now()) {
				w.Header().Set("Retry-After", "1")
				writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "too many requests", Code: "rate_limited"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
