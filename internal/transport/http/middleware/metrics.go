package middleware

import (
	"strconv"
	"time"

	"github.com/ErlanBelekov/phone-insights/internal/metrics"
	"github.com/gin-gonic/gin"
)

// unmatchedRoute labels requests no route matched, keeping arbitrary client
// paths out of the label set.
const unmatchedRoute = "unmatched"

// Metrics records per-route latency, totals and the in-flight request count.
// The /api/search route latency includes the provider call on a cache miss.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		labels := []string{c.Request.Method, route, strconv.Itoa(c.Writer.Status())}
		metrics.HTTPRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		metrics.HTTPRequestsTotal.WithLabelValues(labels...).Inc()
	}
}
