package middleware

import (
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/you/fintrack/domain"
)

// RateLimitMessage is the body of a 429 from the limiter
const RateLimitMessage = "Too many requests — please wait a minute and try again."

// RateLimit allows limit requests per client IP in each fixed window. When
// the counter store is unavailable requests are let through.
func RateLimit(store domain.CounterStore, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		count, ttl, err := store.Hit(c.Request.Context(), c.ClientIP(), window)
		if err != nil {
			log.Printf("ratelimit: counter store unavailable, allowing %s: %v", c.ClientIP(), err)
			c.Next()
			return
		}

		remaining := int64(limit) - count
		if remaining < 0 {
			remaining = 0
		}
		reset := int64(math.Ceil(ttl.Seconds()))
		if reset < 0 {
			reset = 0
		}
		c.Header("RateLimit-Limit", strconv.Itoa(limit))
		c.Header("RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		c.Header("RateLimit-Reset", strconv.FormatInt(reset, 10))

		if count > int64(limit) {
			c.Header("Retry-After", strconv.FormatInt(reset, 10))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": RateLimitMessage})
			return
		}
		c.Next()
	}
}
