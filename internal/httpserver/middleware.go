package httpserver

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"veggi-storefront/internal/metrics"
	"veggi-storefront/internal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionCookie names the cookie carrying the browser's session id.
const SessionCookie = "veggi_sid"

type ctxKey string

const sessionCtxKey ctxKey = "session"

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			logger.Error("request", fields...)
		case c.Request.URL.Path == "/healthz" || c.Request.URL.Path == "/readyz":
			logger.Debug("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}

func recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("panic recovered", zap.Any("panic", recovered), zap.String("path", c.Request.URL.Path))
		respondError(c, http.StatusInternalServerError, "Internal server error")
	})
}

func metricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		handler := c.FullPath()
		if handler == "" {
			handler = "unmatched"
		}
		m.ObserveRequest(handler, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

// sessionMiddleware resolves the browser session from its cookie and
// refreshes the cookie on every response. Read-only requests without a
// session get a throwaway one; a session is created on the first write.
func sessionMiddleware(registry *session.Registry, ttl time.Duration, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(SessionCookie)
		if !session.ValidID(id) && readOnly(c.Request.Method) {
			c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), sessionCtxKey, registry.Transient()))
			c.Next()
			return
		}
		sess, err := registry.Get(c.Request.Context(), id)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "Could not start session")
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, sess.ID, int(ttl.Seconds()), "/", "", secure, true)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), sessionCtxKey, sess))
		c.Next()
	}
}

func readOnly(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func sessionFrom(c *gin.Context) *session.Session {
	sess, _ := c.Request.Context().Value(sessionCtxKey).(*session.Session)
	return sess
}

func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessionFrom(c)
		if sess == nil || sess.User() == nil {
			respondError(c, http.StatusUnauthorized, "Please log in to continue")
			return
		}
		c.Next()
	}
}

func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessionFrom(c)
		if sess == nil || sess.User() == nil {
			respondError(c, http.StatusUnauthorized, "Please log in to continue")
			return
		}
		if !sess.IsAdmin() {
			respondError(c, http.StatusForbidden, "Admin access required")
			return
		}
		c.Next()
	}
}
