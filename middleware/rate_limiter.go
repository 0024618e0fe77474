package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// A bucket idle this long has refilled, so its entry can be dropped.
const limiterIdleTTL = 3 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiterStore holds a map of IP addresses to their rate limiters.
type rateLimiterStore struct {
	clients   map[string]*clientLimiter
	mu        sync.Mutex
	perMinute int
	lastSweep time.Time
	now       func() time.Time
}

func newRateLimiterStore(perMinute int, now func() time.Time) *rateLimiterStore {
	return &rateLimiterStore{
		clients:   make(map[string]*clientLimiter),
		perMinute: perMinute,
		lastSweep: now(),
		now:       now,
	}
}

// getLimiter returns the rate limiter for a given IP, creating one if it
// doesn't exist. Idle entries are swept at most once per limiterIdleTTL.
func (s *rateLimiterStore) getLimiter(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) >= limiterIdleTTL {
		for key, c := range s.clients {
			if now.Sub(c.lastSeen) >= limiterIdleTTL {
				delete(s.clients, key)
			}
		}
		s.lastSweep = now
	}

	c, exists := s.clients[ip]
	if !exists {
		c = &clientLimiter{
			limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(s.perMinute)), s.perMinute),
		}
		s.clients[ip] = c
	}
	c.lastSeen = now
	return c.limiter
}

// RateLimitMiddleware limits each client IP to perMinute requests per
// minute, allowing a full minute's worth as a burst.
func RateLimitMiddleware(perMinute int, logger *zap.Logger) gin.HandlerFunc {
	if perMinute <= 0 {
		perMinute = 100
	}
	store := newRateLimiterStore(perMinute, time.Now)
	return func(c *gin.Context) {
		ip := getClientIP(c)
		limiter := store.getLimiter(ip)
		if !limiter.Allow() {
			logger.Warn("Rate limit exceeded", zap.String("ip", ip))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded. Try again later."})
			return
		}
		c.Next()
	}
}
