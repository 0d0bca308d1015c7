package middleware

import (
	"sync"
	"time"

	"connectsphere/internal/api/response"
	"connectsphere/internal/metrics"
	"connectsphere/internal/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// limiterTTL - через сколько простоя адрес забывается
const limiterTTL = 10 * time.Minute

type multiLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	ttl       time.Duration
	lastSweep time.Time
	entries   map[string]*limBucket
}

type limBucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func newMultiLimiter(limit rate.Limit, burst int, ttl time.Duration) *multiLimiter {
	return &multiLimiter{
		limit:     limit,
		burst:     burst,
		ttl:       ttl,
		lastSweep: time.Now(),
		entries:   make(map[string]*limBucket),
	}
}

func (m *multiLimiter) allow(key string) bool {
	now := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()

	b := m.entries[key]
	if b == nil {
		b = &limBucket{lim: rate.NewLimiter(m.limit, m.burst)}
		m.entries[key] = b
	}
	b.lastSeen = now

	if now.Sub(m.lastSweep) > m.ttl {
		for k, v := range m.entries {
			if now.Sub(v.lastSeen) > m.ttl {
				delete(m.entries, k)
			}
		}
		m.lastSweep = now
	}

	return b.lim.AllowN(now, 1)
}

// RateLimit ограничивает число запросов с одного IP: perMinute в минуту с запасом burst
func RateLimit(perMinute, burst int) gin.HandlerFunc {
	limiter := newMultiLimiter(rate.Limit(float64(perMinute)/60), burst, limiterTTL)

	return func(c *gin.Context) {
		if !limiter.allow(c.ClientIP()) {
			metrics.RateLimitedTotal.Inc()
			response.Error(c, models.RateLimited())
			return
		}
		c.Next()
	}
}
