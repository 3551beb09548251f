package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/workhive/filegate/internal/audit"
	"github.com/workhive/filegate/internal/auth"
	"github.com/workhive/filegate/internal/ids"
	"github.com/workhive/filegate/internal/logging"
)

// RequestID tags every request with a fresh id, echoes it back in the
// X-Request-Id header and stores it in the request context so audit events
// from the same request share it.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := ids.NewRequestID()
		c.Writer.Header().Set("X-Request-Id", id)
		c.Request = c.Request.WithContext(audit.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// RequestLog writes one access-log line per completed request.
func RequestLog(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", c.Writer.Header().Get("X-Request-Id"),
		)
	}
}

// JWTAuth extracts the bearer token, verifies it and injects the resulting
// principal into the request context. Requests without a valid token never
// reach a handler.
func JWTAuth(secretKey string) gin.HandlerFunc {
	key := []byte(secretKey)
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			unauthorized(c, "missing Authorization header")
			return
		}
		token := header
		if after, ok := strings.CutPrefix(header, "Bearer "); ok {
			token = after
		}
		if token == "" {
			unauthorized(c, "empty bearer token")
			return
		}
		principal, err := auth.GetPrincipalFromToken(token, key)
		if err != nil {
			unauthorized(c, "invalid token")
			return
		}
		c.Request = c.Request.WithContext(auth.ContextWithPrincipal(c.Request.Context(), principal))
		c.Next()
	}
}

func unauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": msg})
	c.Abort()
}
