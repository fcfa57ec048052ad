// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Level picks the log level from the command-line switches.
func Level(verbose, debug bool) logrus.Level {
	switch {
	case debug:
		return logrus.DebugLevel
	case verbose:
		return logrus.InfoLevel
	default:
		return logrus.WarnLevel
	}
}

// New returns a text logger writing to w at level.
func New(w io.Writer, level logrus.Level) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp:       level > logrus.InfoLevel,
		FullTimestamp:          true,
		DisableLevelTruncation: true,
	})
	return logger
}

// Component returns an entry tagged with the component name.
func Component(l logrus.FieldLogger, name string) logrus.FieldLogger {
	return l.WithField("component", name)
}
