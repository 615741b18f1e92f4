package httpserver

import (
	"strconv"
	"time"

	"habitgrid/pkg/logger"
	"habitgrid/pkg/metrics"
	"habitgrid/pkg/trace"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TraceMiddleware 从 X-Trace-ID / X-Request-ID 取 trace_id（没有则生成），写入 context 并回写到响应头
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := trace.FromHeader(c.GetHeader(trace.HeaderName()), c.GetHeader("X-Request-ID"))
		c.Request = c.Request.WithContext(trace.WithContext(c.Request.Context(), traceID))
		c.Header(trace.HeaderName(), traceID)
		c.Next()
	}
}

// RequestLogger 添加请求日志
func RequestLogger(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		logger.WithTrace(c.Request.Context(), l).Info("HTTP Request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
		)
	}
}

// MetricsMiddleware 按路由模板记录延迟，避免 habit id 造成 label 爆炸
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordHTTPRequestDuration(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
