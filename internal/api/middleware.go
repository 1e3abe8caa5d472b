package api

import (
	"net/http"
	"runtime/debug"
	"slices"
	"strings"
	"time"

	"github.com/book-expert/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-Id"

const (
	contextKeyRequestID = "request_id"
	wildcardOrigin      = "*"
	corsAllowMethods    = "GET, POST, PUT, DELETE, OPTIONS"
	corsAllowHeaders    = "Origin, Content-Type, Accept, Authorization, X-Request-Id"
	logFmtPanic         = "Panic recovered on %s %s: %v\n%s"
	logFmtRequest       = "%s %s -> %d in %s (request_id=%s)"
)

// Recovery turns a panic in a handler into a 500 internal error response.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}

			log.Error(logFmtPanic, c.Request.Method, c.Request.URL.Path, recovered, debug.Stack())
			respondError(c, internalError(msgInternal))
		}()

		c.Next()
	}
}

// RequestID propagates the caller's X-Request-Id or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(contextKeyRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// CORS echoes allowed origins and answers preflight requests with 204.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && isAllowedOrigin(origin, allowedOrigins) {
			header := c.Writer.Header()
			header.Set("Access-Control-Allow-Origin", origin)
			header.Set("Access-Control-Allow-Methods", corsAllowMethods)
			header.Set("Access-Control-Allow-Headers", corsAllowHeaders)
			header.Set("Access-Control-Allow-Credentials", "true")
			header.Add("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)

			return
		}

		c.Next()
	}
}

func isAllowedOrigin(origin string, allowed []string) bool {
	return slices.ContainsFunc(allowed, func(candidate string) bool {
		return candidate == wildcardOrigin || strings.EqualFold(candidate, origin)
	})
}

// RequestLogger logs every request with its status, latency and request id.
// Server errors are logged at error level and client errors as warnings.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		latency := time.Since(start)
		requestID := c.GetString(contextKeyRequestID)

		switch {
		case status >= http.StatusInternalServerError:
			log.Error(logFmtRequest, c.Request.Method, c.Request.URL.Path, status, latency, requestID)
		case status >= http.StatusBadRequest:
			log.Warn(logFmtRequest, c.Request.Method, c.Request.URL.Path, status, latency, requestID)
		default:
			log.Info(logFmtRequest, c.Request.Method, c.Request.URL.Path, status, latency, requestID)
		}
	}
}
