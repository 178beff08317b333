// Package kitlogadapter provides a logger that writes to a github.com/go-kit/log.Logger.
package kitlogadapter

import (
	"context"

	"github.com/go-kit/log"
	kitlevel "github.com/go-kit/log/level"
	"github.com/pgcast/pgcast"
)

type Logger struct {
	l log.Logger
}

func NewLogger(l log.Logger) *Logger {
	return &Logger{l: l}
}

func (l *Logger) Log(ctx context.Context, level pgcast.LogLevel, msg string, data map[string]any) {
	logger := l.l
	for k, v := range data {
		logger = log.With(logger, k, v)
	}

	switch level {
	case pgcast.LogLevelTrace:
		logger.Log("PGCAST_LOG_LEVEL", level, "msg", msg)
	case pgcast.LogLevelDebug:
		kitlevel.Debug(logger).Log("msg", msg)
	case pgcast.LogLevelInfo:
		kitlevel.Info(logger).Log("msg", msg)
	case pgcast.LogLevelWarn:
		kitlevel.Warn(logger).Log("msg", msg)
	case pgcast.LogLevelError:
		kitlevel.Error(logger).Log("msg", msg)
	default:
		logger.Log("INVALID_PGCAST_LOG_LEVEL", level, "error", msg)
	}
}
