package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"sudooom.devconnect/pkg/response"
)

// rateEntry 单个来源的限流器
type rateEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter 按用户（未认证请求按客户端 IP）限流
type RateLimiter struct {
	mu       sync.Mutex
	entries  map[string]*rateEntry
	limit    rate.Limit
	burst    int
	lastSwep time.Time
}

// NewRateLimiter 创建限流器，requestsPerMinute 为每分钟允许的请求数
func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	return &RateLimiter{
		entries:  make(map[string]*rateEntry),
		limit:    rate.Limit(float64(requestsPerMinute) / 60.0),
		burst:    requestsPerMinute,
		lastSwep: time.Now(),
	}
}

// allow 获取来源限流器并判定
func (r *RateLimiter) allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	// 定期清理长时间不活跃的来源
	if now.Sub(r.lastSwep) > 10*time.Minute {
		for k, e := range r.entries {
			if now.Sub(e.lastSeen) > 10*time.Minute {
				delete(r.entries, k)
			}
		}
		r.lastSwep = now
	}

	e, ok := r.entries[key]
	if !ok {
		e = &rateEntry{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter.Allow()
}

// Middleware gin 中间件
func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if username := GetUsername(c); username != "" {
			key = username
		}

		if !r.allow(key) {
			response.TooManyRequests(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
