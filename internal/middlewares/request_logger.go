package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"ucmodeler/internal/utils"
)

// RequestLogger logs one line per request, skipping the given paths.
func RequestLogger(logger zerolog.Logger, pathFilters ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if utils.Contains(pathFilters, c.Request.URL.Path) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		event := logger.Info()
		if c.Writer.Status() >= 500 {
			event = logger.Error()
		}
		if err := c.Errors.Last(); err != nil {
			event = event.Err(err.Err)
		}

		event.Fields(map[string]interface{}{
			"remote_ip":  c.ClientIP(),
			"url":        c.Request.URL.Path,
			"proto":      c.Request.Proto,
			"method":     c.Request.Method,
			"user_agent": c.Request.UserAgent(),
			"status":     c.Writer.Status(),
			"latency_ms": float64(time.Since(start).Nanoseconds()) / 1000000.0,
			"bytes_in":   c.Request.ContentLength,
			"bytes_out":  c.Writer.Size(),
		}).Msg("incoming_request")
	}
}
