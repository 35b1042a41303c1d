package web

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dhashmi/portfolio/internal/analytics"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	htmxKey         = "htmx"
	sectionKey      = "section"
)

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/static/") || path == "/healthz" {
			return
		}
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Bool("htmx", isHTMX(c)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			log.Error("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}

func htmx() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(htmxKey, c.GetHeader("HX-Request") == "true")
		c.Next()
	}
}

func isHTMX(c *gin.Context) bool {
	return c.GetBool(htmxKey)
}

func untracked(path string) bool {
	for _, prefix := range []string{"/static/", "/documents/", "/admin/", "/viewer/", "/favicon", "/privacy", "/healthz"} {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// visitorTracking records successful page views with hashed client
// addresses. Requests carrying DNT: 1 are not recorded.
func visitorTracking(store *analytics.Store, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if c.Request.Method != http.MethodGet || untracked(path) || c.GetHeader("DNT") == "1" {
			c.Next()
			return
		}

		c.Next()

		if c.Writer.Status() != http.StatusOK {
			return
		}
		ip, ua, sec := c.ClientIP(), c.Request.UserAgent(), c.GetString(sectionKey)
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := store.RecordVisit(ctx, ip, ua, path, sec); err != nil {
				log.Warn("recording visit", zap.Error(err))
			}
		}()
	}
}
