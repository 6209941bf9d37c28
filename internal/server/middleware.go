package server

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vibestream/vibestream/internal/core/ratelimit"
)

// defaultOrigins are always allowed; the operator extends them via config
var defaultOrigins = []string{
	"http://localhost:3000",
	"http://127.0.0.1:3000",
}

// loggingMiddleware logs method, path, status and latency. The query string
// is deliberately omitted: it carries user-submitted URLs and this service
// never logs those.
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Printf("%s %s %d %s", c.Request.Method, c.Request.URL.Path,
			c.Writer.Status(), time.Since(start))
	}
}

func (s *Server) corsMiddleware() gin.HandlerFunc {
	allowed := make(map[string]bool, len(defaultOrigins)+len(s.cfg.Server.CORSOrigins))
	for _, o := range defaultOrigins {
		allowed[o] = true
	}
	for _, o := range s.cfg.Server.CORSOrigins {
		allowed[o] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && allowed[origin] {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

// globalLimitMiddleware smooths overall request volume ahead of the
// per-client windows
func (s *Server) globalLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.global.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"detail": "server is handling too many requests, try again shortly",
			})
			return
		}
		c.Next()
	}
}

// rateLimitMiddleware enforces a per-client fixed window before any
// expensive work begins
func (s *Server) rateLimitMiddleware(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := limiter.Admit(c.Request.Context(), c.ClientIP())
		if !decision.Allowed {
			retryAfter := int(decision.RetryAfter.Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"detail": fmt.Sprintf(
					"rate limit exceeded: %d requests per %s allowed, retry in %ds",
					limiter.Ceiling(), limiter.Window(), retryAfter),
			})
			return
		}
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		c.Next()
	}
}
