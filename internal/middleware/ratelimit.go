package middleware

import (
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// PerTokenRateLimiter throttles requests per bearer token (falling back to
// remote address when no token is presented), so one misbehaving client
// can't starve others submitting to the same game.
type PerTokenRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	r        rate.Limit
	burst    int
}

// NewPerTokenRateLimiter creates a limiter allowing r requests/second with
// the given burst, tracked independently per key.
func NewPerTokenRateLimiter(r rate.Limit, burst int) *PerTokenRateLimiter {
	return &PerTokenRateLimiter{limiters: make(map[string]*rate.Limiter), r: r, burst: burst}
}

func (l *PerTokenRateLimiter) limiterFor(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(l.r, l.burst)
		l.limiters[key] = lim
	}
	return lim
}

// Middleware wraps next, rejecting requests that exceed the per-key rate
// with 429.
func (l *PerTokenRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("Authorization")
		if key == "" {
			key = r.RemoteAddr
		}
		if !l.limiterFor(key).Allow() {
			http.Error(w, `{"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
