package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/techsolutions/pos/internal/interfaces/http/dto"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per client key
type RateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*rateClient
	perMinute int
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastScan  time.Time
	now       func() time.Time
}

type rateClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows perMinute requests per key with the given burst
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		clients:   make(map[string]*rateClient),
		perMinute: perMinute,
		limit:     rate.Limit(float64(perMinute) / 60),
		burst:     burst,
		idleTTL:   10 * time.Minute,
		now:       time.Now,
	}
}

// Allow takes a token for key, reporting false when the bucket is empty
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.evictIdle(now)

	c, ok := rl.clients[key]
	if !ok {
		c = &rateClient{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

// evictIdle drops buckets not used for idleTTL, at most once per idleTTL
func (rl *RateLimiter) evictIdle(now time.Time) {
	if now.Sub(rl.lastScan) < rl.idleTTL {
		return
	}
	rl.lastScan = now
	for key, c := range rl.clients {
		if now.Sub(c.lastSeen) > rl.idleTTL {
			delete(rl.clients, key)
		}
	}
}

// RateLimit limits requests per client IP. It guards the login endpoint
// against password guessing.
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	retryAfter := "60"
	if limiter.perMinute > 0 {
		retryAfter = strconv.Itoa(int(math.Ceil(60 / float64(limiter.perMinute))))
	}

	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.Header("Retry-After", retryAfter)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRateLimited,
				"Too many requests. Please try again later.",
				GetRequestID(c),
			))
			return
		}
		c.Next()
	}
}
