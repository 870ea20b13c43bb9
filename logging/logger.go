package logging

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
)

type Logger interface {
	logrus.FieldLogger
	SetLevel(level logrus.Level)
}

type logger struct {
	*logrus.Logger
}

func New() Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	return &logger{l}
}

type loggerContextKey struct{}

func WithLogger(ctx context.Context, logger logrus.FieldLogger) context.Context {
	return context.WithValue(ctx, loggerContextKey{}, logger)
}

func LoggerFromContext(ctx context.Context) logrus.FieldLogger {
	if logger, ok := ctx.Value(loggerContextKey{}).(logrus.FieldLogger); ok {
		return logger
	}
	return New()
}
