package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/minitrello-api/internal/errors"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter hands out one token bucket per client IP
type IPRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	ttl      time.Duration
	now      func() time.Time
}

// NewIPRateLimiter allows requests per window for each IP, bursting up to requests
func NewIPRateLimiter(requests int, window time.Duration) *IPRateLimiter {
	if requests <= 0 {
		requests = 1
	}
	if window <= 0 {
		window = time.Minute
	}

	return &IPRateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(float64(requests) / window.Seconds()),
		burst:    requests,
		ttl:      window * 3,
		now:      time.Now,
	}
}

// Allow reports whether ip may make another request now
func (l *IPRateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now

	// drop idle buckets so the map does not grow without bound
	for key, other := range l.visitors {
		if now.Sub(other.lastSeen) > l.ttl {
			delete(l.visitors, key)
		}
	}

	return v.limiter.AllowN(now, 1)
}

// RateLimit rejects callers that exceed the limiter with 429
func RateLimit(limiter *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			apierrors.TooManyRequests(c, "Too many verification requests, please try again later")
			return
		}
		c.Next()
	}
}
