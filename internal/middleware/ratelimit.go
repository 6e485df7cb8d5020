package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Kosench/shortlink/internal/cache"
	"github.com/Kosench/shortlink/internal/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimit ограничивает число запросов с одного IP в фиксированном окне.
// Счетчики живут в Redis или в памяти процесса, в зависимости от limiter.
func RateLimit(limiter cache.RateLimiter, maxRequests int, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		count, err := limiter.IncrementRateLimit(c.Request.Context(), clientIP, window)
		if err != nil {
			// При ошибке хранилища пропускаем запрос
			logger.Error("rate limit check failed",
				zap.String("ip", clientIP),
				zap.Error(err),
			)
			c.Next()
			return
		}

		if count > int64(maxRequests) {
			metrics.RecordRateLimitHit()
			logger.Warn("rate limit exceeded",
				zap.String("ip", clientIP),
				zap.Int64("count", count),
			)

			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limit_exceeded",
				"message": "Too many requests. Please try again later.",
			})
			return
		}

		c.Next()
	}
}
