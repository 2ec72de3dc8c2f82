package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger wraps logrus with the formatting used across the tool.
type Logger struct {
	*logrus.Logger
}

// New creates a logger at the given level ("debug", "info", ...).
// Unknown levels fall back to info.
func New(level string) *Logger {
	log := logrus.New()

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	log.SetLevel(logLevel)

	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	})
	log.SetOutput(os.Stderr)

	return &Logger{Logger: log}
}

// WithScenario tags entries with the scenario being driven.
func (l *Logger) WithScenario(name string) *logrus.Entry {
	return l.Logger.WithField("scenario", name)
}
