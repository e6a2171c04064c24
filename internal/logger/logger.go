package logger

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
)

type contextKey struct{}

// TraceIDField is the log field carrying the per-request trace id
const TraceIDField = "trace_id"

// New creates a JSON logger writing to stdout at the given level
func New(level string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.JSONFormatter{})

	switch level {
	case "debug":
		log.SetLevel(logrus.DebugLevel)
	case "info":
		log.SetLevel(logrus.InfoLevel)
	case "warn":
		log.SetLevel(logrus.WarnLevel)
	case "error":
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}

	return log
}

// WithTraceID stores traceID in ctx for FromContext
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, contextKey{}, traceID)
}

// TraceID returns the trace id stored in ctx, or an empty string
func TraceID(ctx context.Context) string {
	traceID, _ := ctx.Value(contextKey{}).(string)
	return traceID
}

// FromContext returns an entry tagged with the trace id found in ctx
func FromContext(ctx context.Context, log logrus.FieldLogger) logrus.FieldLogger {
	if traceID := TraceID(ctx); traceID != "" {
		return log.WithField(TraceIDField, traceID)
	}
	return log
}
