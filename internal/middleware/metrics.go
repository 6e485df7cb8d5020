package middleware

import (
	"strconv"
	"time"

	"github.com/Kosench/shortlink/internal/metrics"
	"github.com/gin-gonic/gin"
)

// PrometheusMetrics считает запросы по шаблону маршрута (/:shortCode),
// а не по фактическому пути, чтобы не плодить метки
func PrometheusMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}
		status := strconv.Itoa(c.Writer.Status())

		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
