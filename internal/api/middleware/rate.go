package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/latexbot/internal/infrastructure/ratelimit"
)

// RateLimitConfig defines rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int
	Burst             int
	// OnLimited is called for every rejected request.
	OnLimited func(c *gin.Context)
}

// DefaultRateLimitConfig returns the ops server defaults.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 10,
		Burst:             20,
	}
}

// RateLimit creates a per-IP rate limiting middleware.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	limiters := ratelimit.NewKeyed(float64(cfg.RequestsPerSecond), cfg.Burst, 10*time.Minute)

	return func(c *gin.Context) {
		ok, wait := limiters.Reserve(c.ClientIP())
		if !ok {
			if cfg.OnLimited != nil {
				cfg.OnLimited(c)
			}
			if wait > 0 {
				c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
