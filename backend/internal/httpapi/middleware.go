package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tsunagu/backend/internal/ratelimit"
	"tsunagu/backend/pkg/apperrors"
)

const contextUserIDKey = "userID"

// RequireAuth resolves the acting user via the identity collaborator and
// rejects the request when no identity can be resolved
func RequireAuth(identity Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := identity.CurrentUserID(c)
		if userID == "" {
			abortError(c, apperrors.NewUnauthorized("authentication required"))
			return
		}
		c.Set(contextUserIDKey, userID)
		c.Next()
	}
}

func currentUserID(c *gin.Context) string {
	return c.GetString(contextUserIDKey)
}

// RateLimit applies the advisory limiter, keyed per acting user. Must run
// after RequireAuth.
func RateLimit(limiter *ratelimit.Limiter, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := action + ":" + currentUserID(c)
		if !limiter.Allow(key) {
			abortError(c, apperrors.NewRateLimit("too many requests, try again later"))
			return
		}
		c.Next()
	}
}

// RequestLogger logs each request with its status and latency
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}
