package observability

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type ctxKey string

const ctxKeyLogger ctxKey = "logger"

// basic global logger, JSON to stdout until Init is called.
var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Init configures the global logger. Unknown levels fall back to info.
func Init(level string, pretty bool) zerolog.Logger {
	var out io.Writer = os.Stdout
	if pretty {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	logger = zerolog.New(out).Level(lvl).With().Timestamp().Logger()
	return logger
}

func Logger() zerolog.Logger {
	return logger
}

// WithLogger stores a request-scoped logger in the context.
func WithLogger(ctx context.Context, l zerolog.Logger) context.Context {
	return context.WithValue(ctx, ctxKeyLogger, l)
}

// FromContext returns the request-scoped logger, or the global one.
func FromContext(ctx context.Context) zerolog.Logger {
	if l, ok := ctx.Value(ctxKeyLogger).(zerolog.Logger); ok {
		return l
	}
	return logger
}
