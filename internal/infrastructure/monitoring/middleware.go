package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware creates a Gin middleware for metrics collection
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method

		// Process request
		c.Next()

		// Route template keeps label cardinality bounded
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		metrics.RecordHTTPRequest(method, path, status, time.Since(start), int64(c.Writer.Size()))
	}
}

// Timer measures command duration
type Timer struct {
	start   time.Time
	metrics *Metrics
	source  string
	command string
}

// NewTimer creates a new timer
func NewTimer(metrics *Metrics, source, command string) *Timer {
	return &Timer{
		start:   time.Now(),
		metrics: metrics,
		source:  source,
		command: command,
	}
}

// Stop stops the timer and records the command
func (t *Timer) Stop(success bool) time.Duration {
	duration := time.Since(t.start)
	t.metrics.RecordCommand(t.source, t.command, success, duration)
	return duration
}
