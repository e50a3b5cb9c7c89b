package tools

import (
	"fmt"

	"cloud.google.com/go/logging"
	"go.uber.org/zap"
)

// Logger is the part of *logging.Logger the service writes through, so the
// same entries can go to Cloud Logging or to stdout.
type Logger interface {
	Log(e logging.Entry)
}

type zapLogger struct {
	z *zap.Logger
}

// NewZapLogger adapts a zap logger to Logger. Labels become string fields.
func NewZapLogger(z *zap.Logger) Logger {
	return &zapLogger{z: z}
}

func (l *zapLogger) Log(e logging.Entry) {
	fields := make([]zap.Field, 0, len(e.Labels))
	for k, v := range e.Labels {
		fields = append(fields, zap.String(k, v))
	}

	msg := fmt.Sprint(e.Payload)

	switch {
	case e.Severity >= logging.Error:
		l.z.Error(msg, fields...)
	case e.Severity >= logging.Warning:
		l.z.Warn(msg, fields...)
	case e.Severity == logging.Debug:
		l.z.Debug(msg, fields...)
	default:
		l.z.Info(msg, fields...)
	}
}
