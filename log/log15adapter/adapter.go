// Package log15adapter provides a logger that writes to a github.com/inconshreveable/log15.Logger
// log.
package log15adapter

import (
	"context"

	"github.com/pgcast/pgcast"
)

// Log15Logger interface defines the subset of
// github.com/inconshreveable/log15.Logger that this adapter uses.
type Log15Logger interface {
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Crit(msg string, ctx ...any)
}

type Logger struct {
	l Log15Logger
}

func NewLogger(l Log15Logger) *Logger {
	return &Logger{l: l}
}

func (l *Logger) Log(ctx context.Context, level pgcast.LogLevel, msg string, data map[string]any) {
	logArgs := make([]any, 0, len(data)*2)
	for k, v := range data {
		logArgs = append(logArgs, k, v)
	}

	switch level {
	case pgcast.LogLevelTrace:
		l.l.Debug(msg, append(logArgs, "PGCAST_LOG_LEVEL", level)...)
	case pgcast.LogLevelDebug:
		l.l.Debug(msg, logArgs...)
	case pgcast.LogLevelInfo:
		l.l.Info(msg, logArgs...)
	case pgcast.LogLevelWarn:
		l.l.Warn(msg, logArgs...)
	case pgcast.LogLevelError:
		l.l.Error(msg, logArgs...)
	default:
		l.l.Error(msg, append(logArgs, "INVALID_PGCAST_LOG_LEVEL", level)...)
	}
}
