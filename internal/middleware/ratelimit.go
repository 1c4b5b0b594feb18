package middleware

import (
	"errors"
	"log"
	"net"
	"net/http"
	"strconv"

	"github.com/technosupport/live-urlgen/internal/ratelimit"
)

// DecisionRecorder receives "allowed", "blocked" or "error" per request.
type DecisionRecorder interface {
	RecordRateLimit(result string)
}

type RateLimitMiddleware struct {
	limiter  *ratelimit.Limiter
	config   ratelimit.LimitConfig
	recorder DecisionRecorder
}

func NewRateLimitMiddleware(l *ratelimit.Limiter, c ratelimit.LimitConfig, rec DecisionRecorder) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: l, config: c, recorder: rec}
}

// PerIP limits requests per client address. Redis failures fail open.
func (m *RateLimitMiddleware) PerIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := "rl:ip:" + m.limiter.HashIP(clientIP(r))

		decision, err := m.limiter.Allow(r.Context(), key, m.config)
		if err != nil {
			if errors.Is(err, ratelimit.ErrRedisUnavailable) {
				log.Printf("RateLimit Redis Error (Fail Open): %v", err)
			} else {
				log.Printf("RateLimit Error: %v", err)
			}
			m.record("error")
			next.ServeHTTP(w, r)
			return
		}

		writeRateLimitHeaders(w, decision)
		if !decision.Allowed {
			m.record("blocked")
			http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		m.record("allowed")
		next.ServeHTTP(w, r)
	})
}

func (m *RateLimitMiddleware) record(result string) {
	if m.recorder != nil {
		m.recorder.RecordRateLimit(result)
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeRateLimitHeaders(w http.ResponseWriter, d *ratelimit.Decision) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(d.Reset.Unix(), 10))
	if !d.Allowed {
		w.Header().Set("Retry-After", strconv.Itoa(d.RetryAfter))
	}
}
