package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPMetrics receives per-request measurements.
type HTTPMetrics interface {
	IncInFlight(method string)
	DecInFlight(method string)
	RecordHTTPRequest(method, path string, status int, d time.Duration)
}

// Metrics records request counts and latency labelled by route template, so
// unmatched paths collapse into a single "unmatched" series.
func Metrics(m HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		m.IncInFlight(method)
		start := time.Now()

		c.Next()

		m.DecInFlight(method)
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordHTTPRequest(method, route, c.Writer.Status(), time.Since(start))
	}
}
