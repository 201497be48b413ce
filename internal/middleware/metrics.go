package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"budgetplanner/internal/metrics"
)

// RequestMetrics observes request latency by route template so that ids in
// paths do not create new series.
func RequestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
