package server

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// tokenBucket allows bursts up to capacity while holding the average rate at
// refillRate tokens per second.
type tokenBucket struct {
	mu         sync.Mutex
	capacity   float64
	tokens     float64
	refillRate float64
	lastRefill time.Time
	now        func() time.Time
}

func newTokenBucket(capacity int, perMinute int) *tokenBucket {
	if capacity < 1 {
		capacity = 1
	}
	return &tokenBucket{
		capacity:   float64(capacity),
		tokens:     float64(capacity),
		refillRate: float64(perMinute) / 60,
		lastRefill: time.Now(),
		now:        time.Now,
	}
}

// take consumes one token. When the bucket is empty it returns false and
// the time until the next token.
func (tb *tokenBucket) take() (bool, time.Duration) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.now()
	if elapsed := now.Sub(tb.lastRefill).Seconds(); elapsed > 0 {
		tb.tokens = math.Min(tb.capacity, tb.tokens+elapsed*tb.refillRate)
		tb.lastRefill = now
	}

	if tb.tokens >= 1 {
		tb.tokens--
		return true, 0
	}
	wait := (1 - tb.tokens) / tb.refillRate
	return false, time.Duration(wait * float64(time.Second))
}

func (s *Server) rateLimitMiddleware(tb *tokenBucket) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, wait := tb.take()
			if !ok {
				retry := int(math.Ceil(wait.Seconds()))
				if retry < 1 {
					retry = 1
				}
				s.logger.WarnContext(r.Context(), "scan rate limit exceeded",
					"remote_addr", r.RemoteAddr,
					"retry_after_s", retry,
				)
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				respondError(w, http.StatusTooManyRequests, "scan rate limit exceeded", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
