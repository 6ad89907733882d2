package server

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/proxyscope/pkg/errno"
)

// HeaderXRequestID is the request ID header name.
const HeaderXRequestID = "X-Request-ID"

// requestIDKey is the gin context key for the request ID.
const requestIDKey = "request_id"

// loggerSkipPaths lists paths excluded from request logging.
var loggerSkipPaths = map[string]bool{
	"/healthz": true,
}

// RequestID returns a middleware that attaches a unique request ID to each
// request. An incoming X-Request-ID header is honored; otherwise a random
// 16-byte hex string is generated. The ID is echoed in the response header
// and stored in the gin context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderXRequestID)
		if requestID == "" {
			requestID = generateRequestID()
		}
		c.Header(HeaderXRequestID, requestID)
		c.Set(requestIDKey, requestID)
		c.Next()
	}
}

// GetRequestID returns the request ID from the gin context, or "" if unset.
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// Logger returns a middleware that logs each request through the global
// structured logger. Health probes are skipped.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if loggerSkipPaths[path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := []interface{}{
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"remote_addr", c.ClientIP(),
			"latency_ms", latency.Milliseconds(),
		}
		if requestID := GetRequestID(c); requestID != "" {
			fields = append(fields, "request_id", requestID)
		}
		logger.Infow("HTTP Request", fields...)
	}
}

// Recovery returns a middleware that recovers from handler panics, logs the
// stack, and responds with a structured 500.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorw("panic recovered",
					"error", r,
					"path", c.Request.URL.Path,
					"request_id", GetRequestID(c),
					"stack", string(debug.Stack()),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, errno.ErrInternal)
			}
		}()
		c.Next()
	}
}

// generateRequestID generates a random request ID.
func generateRequestID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
