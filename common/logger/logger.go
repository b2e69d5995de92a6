package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger is the shared logger type used across the service.
type Logger = *logrus.Entry

// Fields represents structured logging fields.
type Fields = logrus.Fields

// New creates a JSON logger at the level named by LOG_LEVEL
// (debug/info/warn/error, default info).
func New() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetOutput(os.Stderr)
	l.SetLevel(levelFromEnv())
	return l
}

// NewWithComponent returns an entry carrying a component field so every
// line identifies which pipeline stage emitted it.
func NewWithComponent(component string) Logger {
	return New().WithField("component", component)
}

func levelFromEnv() logrus.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
