// Package zerologadapter provides a logger that writes to a github.com/rs/zerolog.
package zerologadapter

import (
	"context"

	"github.com/pgcast/pgcast"
	"github.com/rs/zerolog"
)

type Logger struct {
	logger      zerolog.Logger
	withFunc    func(context.Context, zerolog.Context) zerolog.Context
	fromContext bool
	skipModule  bool
}

// Option options for configuring the logger.
type Option func(logger *Logger)

// WithContextFunc adds possibility to get request scoped values from the
// ctx.Context before logging lines.
func WithContextFunc(withFunc func(context.Context, zerolog.Context) zerolog.Context) Option {
	return func(logger *Logger) {
		logger.withFunc = withFunc
	}
}

// WithoutPGCastModule disables adding module:pgcast to the default logger
// context.
func WithoutPGCastModule() Option {
	return func(logger *Logger) {
		logger.skipModule = true
	}
}

// NewLogger accepts a zerolog.Logger as input and returns a new custom pgcast
// logging facade as output.
func NewLogger(logger zerolog.Logger, options ...Option) *Logger {
	l := Logger{
		logger: logger,
	}
	l.init(options)
	return &l
}

// NewContextLogger creates a logger that extracts the zerolog.Logger from the
// context.Context by using `zerolog.Ctx`. Nothing is logged if no logger is
// associated with the context.
func NewContextLogger(options ...Option) *Logger {
	l := Logger{
		fromContext: true,
	}
	l.init(options)
	return &l
}

func (pl *Logger) init(options []Option) {
	for _, opt := range options {
		opt(pl)
	}
	if !pl.skipModule {
		pl.logger = pl.logger.With().Str("module", "pgcast").Logger()
	}
}

func (pl *Logger) Log(ctx context.Context, level pgcast.LogLevel, msg string, data map[string]any) {
	var zlevel zerolog.Level
	switch level {
	case pgcast.LogLevelNone:
		zlevel = zerolog.NoLevel
	case pgcast.LogLevelError:
		zlevel = zerolog.ErrorLevel
	case pgcast.LogLevelWarn:
		zlevel = zerolog.WarnLevel
	case pgcast.LogLevelInfo:
		zlevel = zerolog.InfoLevel
	default:
		zlevel = zerolog.DebugLevel
	}

	var zctx zerolog.Context
	if pl.fromContext {
		logger := zerolog.Ctx(ctx)
		if !pl.skipModule {
			zctx = logger.With().Str("module", "pgcast")
		} else {
			zctx = logger.With()
		}
	} else {
		zctx = pl.logger.With()
	}
	if pl.withFunc != nil {
		zctx = pl.withFunc(ctx, zctx)
	}

	pgcastlog := zctx.Fields(data).Logger()
	pgcastlog.WithLevel(zlevel).Msg(msg)
}
