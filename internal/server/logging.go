package server

import (
	"time"

	"github.com/Bu1gur/challenger-crm/internal/auth"
	"github.com/Bu1gur/challenger-crm/internal/logger"

	"github.com/gin-gonic/gin"
)

// RequestLoggingMiddleware logs one line per request. Server errors are
// logged at error level.
func RequestLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		kv := []interface{}{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if staffID, ok := auth.GetStaffID(c); ok {
			kv = append(kv, "staff_id", staffID)
		}
		if len(c.Errors) > 0 {
			kv = append(kv, "errors", c.Errors.String())
		}

		if status >= 500 {
			logger.Error("HTTP request", kv...)
			return
		}
		logger.Info("HTTP request", kv...)
	}
}
