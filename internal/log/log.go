// Package log is a small structured-logging facade over logrus, matching
// the context-aware Debug/Info/Warn/Error call shape used throughout this
// codebase: a context.Context first, a message, then alternating key/value
// pairs. A process-wide default is constructed on first use; callers that
// embed this library in a larger application can install their own Logger
// via SetDefault.
package log

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Logger is the dependency-injected logging contract every ssdp/, description/,
// soap/ and control/ component logs through.
type Logger interface {
	Debug(ctx context.Context, msg string, kv ...interface{})
	Info(ctx context.Context, msg string, kv ...interface{})
	Warn(ctx context.Context, msg string, kv ...interface{})
	Error(ctx context.Context, msg string, kv ...interface{})
}

type logrusLogger struct {
	entry *logrus.Logger
}

// NewLogrus builds a Logger backed by logrus, with the given level.
func NewLogrus(level logrus.Level) Logger {
	l := logrus.New()
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return &logrusLogger{entry: l}
}

func (l *logrusLogger) fields(kv []interface{}) logrus.Fields {
	f := make(logrus.Fields, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		f[key] = kv[i+1]
	}
	return f
}

func (l *logrusLogger) Debug(_ context.Context, msg string, kv ...interface{}) {
	l.entry.WithFields(l.fields(kv)).Debug(msg)
}

func (l *logrusLogger) Info(_ context.Context, msg string, kv ...interface{}) {
	l.entry.WithFields(l.fields(kv)).Info(msg)
}

func (l *logrusLogger) Warn(_ context.Context, msg string, kv ...interface{}) {
	l.entry.WithFields(l.fields(kv)).Warn(msg)
}

func (l *logrusLogger) Error(_ context.Context, msg string, kv ...interface{}) {
	l.entry.WithFields(l.fields(kv)).Error(msg)
}

var def Logger = NewLogrus(logrus.InfoLevel)

// Default returns the process-wide logger, constructed on first package use.
func Default() Logger { return def }

// SetDefault replaces the process-wide logger, e.g. so an embedding
// application can route this library's logs through its own logrus instance.
func SetDefault(l Logger) { def = l }
