package middleware

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/NomadCrew/cats-backend/errors"
	"github.com/NomadCrew/cats-backend/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// APIRateLimiter limits requests per authenticated user, falling back to
// the client IP on public routes.
func APIRateLimiter(redisClient redis.Cmdable, requestsPerWindow int, window time.Duration) gin.HandlerFunc {
	return rateLimiter(redisClient, requestsPerWindow, window, func(c *gin.Context) string {
		if userID := GetUserID(c); userID != "" {
			return fmt.Sprintf("ratelimit:api:user:%s", userID)
		}
		return fmt.Sprintf("ratelimit:api:ip:%s", getClientIP(c))
	})
}

// AuthRateLimiter limits authentication attempts per client IP to slow
// down credential stuffing.
func AuthRateLimiter(redisClient redis.Cmdable, requestsPerWindow int, window time.Duration) gin.HandlerFunc {
	return rateLimiter(redisClient, requestsPerWindow, window, func(c *gin.Context) string {
		return fmt.Sprintf("ratelimit:auth:%s", getClientIP(c))
	})
}

// rateLimiter counts requests in a fixed window with INCR and EXPIRE. Redis
// failures let the request through.
func rateLimiter(redisClient redis.Cmdable, limit int, window time.Duration, keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := keyFn(c)

		pipe := redisClient.TxPipeline()
		incr := pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, window)

		if _, err := pipe.Exec(ctx); err != nil {
			logger.GetLogger().Warnw("Rate limit check failed, allowing request",
				"key", key,
				"error", err)
			c.Next()
			return
		}

		count := incr.Val()
		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", limit))

		if count > int64(limit) {
			ttl, err := redisClient.TTL(ctx, key).Result()
			if err != nil || ttl <= 0 {
				ttl = window
			}
			retryAfter := int(ttl.Seconds())

			c.Header("X-RateLimit-Remaining", "0")
			c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", time.Now().Add(ttl).Unix()))
			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))

			_ = c.Error(apperrors.RateLimitExceeded("Too many requests. Please try again later.", retryAfter))
			c.Abort()
			return
		}

		remaining := limit - int(count)
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", time.Now().Add(window).Unix()))

		c.Next()
	}
}

// getClientIP prefers proxy headers over the socket address.
func getClientIP(c *gin.Context) string {
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		ips := strings.Split(forwarded, ",")
		if ip := strings.TrimSpace(ips[0]); ip != "" {
			return ip
		}
	}

	if realIP := c.GetHeader("X-Real-IP"); realIP != "" {
		return realIP
	}

	return c.ClientIP()
}
