// middleware.go adapts shared/middleware/logging.go and ratelimit.go from
// the teacher: logrus-based gin request logging and a golang.org/x/time/
// rate limiter guarding the admin surface.
package main

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

func itoa(n int) string {
	return strconv.Itoa(n)
}

func requestLoggingMiddleware(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logrus.Fields{
			"status":   c.Writer.Status(),
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"duration": time.Since(start).String(),
		}

		switch {
		case c.Writer.Status() >= 500:
			logger.WithFields(fields).Error("admin request")
		case c.Writer.Status() >= 400:
			logger.WithFields(fields).Warn("admin request")
		default:
			logger.WithFields(fields).Info("admin request")
		}
	}
}

type rateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	r        rate.Limit
	burst    int
}

func rateLimitMiddleware(r rate.Limit, burst int) gin.HandlerFunc {
	rl := &rateLimiter{limiters: map[string]*rate.Limiter{}, r: r, burst: burst}
	return func(c *gin.Context) {
		if !rl.allow(c.ClientIP()) {
			c.AbortWithStatus(http.StatusTooManyRequests)
			return
		}
		c.Next()
	}
}

func (rl *rateLimiter) allow(clientID string) bool {
	rl.mu.Lock()
	limiter, ok := rl.limiters[clientID]
	if !ok {
		limiter = rate.NewLimiter(rl.r, rl.burst)
		rl.limiters[clientID] = limiter
	}
	rl.mu.Unlock()
	return limiter.Allow()
}
