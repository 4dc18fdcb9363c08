package ratelimit

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Middleware throttles one logical endpoint group, keying counters by
// client address. On the request that would exceed the ceiling it
// responds 429 with a fixed message and a retry-after hint. A store
// failure fails open: throttling is a mitigation, not a gate worth an
// outage.
func Middleware(store Store, group string, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := group + ":" + c.ClientIP()

		d, err := store.Take(c.Request.Context(), key)
		if err != nil {
			if logger != nil {
				logger.Warn("rate limit store unavailable", "group", group, "error", err)
			}
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(d.Reset.Unix(), 10))

		if !d.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(d.RetryAfter.Seconds()))))
			if logger != nil {
				logger.Warn("rate limit exceeded", "group", group, "client_ip", c.ClientIP())
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": fmt.Sprintf("too many attempts, retry after %s", d.Window),
			})
			return
		}

		c.Next()
	}
}
