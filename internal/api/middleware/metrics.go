package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Danton11/RIND/internal/metrics"
)

// RequestMetrics returns middleware that reports every request to the
// metrics sink. The endpoint label is the route template (/records/:id),
// not the raw path, so label cardinality stays bounded.
func RequestMetrics(sink metrics.Sink) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		sink.RecordAPIRequest(endpoint, c.Request.Method, strconv.Itoa(c.Writer.Status()), time.Since(start).Seconds())
	}
}
