package mw

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// ClientLimiter hands out one token bucket per client IP. Buckets of clients
// that stay quiet for longer than idleTTL are dropped.
type ClientLimiter struct {
	limiters *cache.Cache
	mu       sync.Mutex
	r        rate.Limit
	b        int
	idleTTL  time.Duration
}

// NewClientLimiter creates a limiter allowing r requests per second with
// burst b for each client.
func NewClientLimiter(r rate.Limit, b int, idleTTL time.Duration) *ClientLimiter {
	return &ClientLimiter{
		limiters: cache.New(idleTTL, 2*idleTTL),
		r:        r,
		b:        b,
		idleTTL:  idleTTL,
	}
}

// Get returns the limiter for ip, creating it on first use and extending its
// lifetime on every call.
func (l *ClientLimiter) Get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if v, ok := l.limiters.Get(ip); ok {
		limiter := v.(*rate.Limiter)
		l.limiters.Set(ip, limiter, l.idleTTL)
		return limiter
	}
	limiter := rate.NewLimiter(l.r, l.b)
	l.limiters.Set(ip, limiter, l.idleTTL)
	return limiter
}

// RateLimiter is a middleware for IP-based rate limiting.
func RateLimiter(r rate.Limit, b int) gin.HandlerFunc {
	limiter := NewClientLimiter(r, b, 10*time.Minute)
	return func(c *gin.Context) {
		if !limiter.Get(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
