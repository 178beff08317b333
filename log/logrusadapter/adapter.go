// Package logrusadapter provides a logger that writes to a github.com/sirupsen/logrus.Logger
// log.
package logrusadapter

import (
	"context"

	"github.com/pgcast/pgcast"
	"github.com/sirupsen/logrus"
)

type Logger struct {
	l logrus.FieldLogger
}

func NewLogger(l logrus.FieldLogger) *Logger {
	return &Logger{l: l}
}

func (l *Logger) Log(ctx context.Context, level pgcast.LogLevel, msg string, data map[string]any) {
	var logger logrus.FieldLogger
	if data != nil {
		logger = l.l.WithFields(data)
	} else {
		logger = l.l
	}

	switch level {
	case pgcast.LogLevelTrace:
		logger.WithField("PGCAST_LOG_LEVEL", level).Debug(msg)
	case pgcast.LogLevelDebug:
		logger.Debug(msg)
	case pgcast.LogLevelInfo:
		logger.Info(msg)
	case pgcast.LogLevelWarn:
		logger.Warn(msg)
	case pgcast.LogLevelError:
		logger.Error(msg)
	default:
		logger.WithField("INVALID_PGCAST_LOG_LEVEL", level).Error(msg)
	}
}
