package logger

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"habitgrid/pkg/trace"
)

var Log *zap.Logger

// NewLogger 创建 production logger，level 为空时使用 info
func NewLogger(level ...string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if len(level) > 0 && level[0] != "" {
		var lvl zapcore.Level
		if err := lvl.UnmarshalText([]byte(strings.ToLower(level[0]))); err == nil {
			cfg.Level = zap.NewAtomicLevelAt(lvl)
		}
	}

	l, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	Log = l
	return l
}

// WithTrace 从 context 中提取 trace_id 并添加到 logger
func WithTrace(ctx context.Context, logger *zap.Logger) *zap.Logger {
	traceID := trace.FromContext(ctx)
	if traceID != "" {
		return logger.With(zap.String("trace_id", traceID))
	}
	return logger
}
