package middleware

import (
	"strconv"

	"coalhub/service/metrics"

	"github.com/gin-gonic/gin"
)

// MetricsMiddleware counts requests by method, route pattern and status.
func MetricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
