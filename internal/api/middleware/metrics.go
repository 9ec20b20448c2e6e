package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tomwright01/dashboard/pkg/metrics"
)

// Metrics 按路由模板记录请求数与耗时，未匹配路由统一记为 "unmatched"
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
