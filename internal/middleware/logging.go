// Package middleware provides HTTP middleware for the API server.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/showdeck/showdeck/internal/logger"
)

// RequestLogger returns a gin middleware that logs one line per request,
// with the level escalating for client and server errors.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		event := logger.Log.Info()
		switch {
		case status >= 500:
			event = logger.Log.Error()
		case status >= 400:
			event = logger.Log.Warn()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")

		if len(c.Errors) > 0 {
			logger.Log.Error().
				Strs("errors", c.Errors.Errors()).
				Str("path", path).
				Msg("Request completed with errors")
		}
	}
}
