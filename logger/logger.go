// Package logger builds the structured logger shared by all modules.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// New returns a logger writing to stdout. Every entry carries the service
// name; level and format fall back to info/json when unparseable.
func New(serviceName, level, format string) *logrus.Entry {
	return newWithOutput(os.Stdout, serviceName, level, format)
}

func newWithOutput(out io.Writer, serviceName, level, format string) *logrus.Entry {
	l := logrus.New()
	l.SetOutput(out)

	if format == "text" {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "ts",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	return l.WithField("service", serviceName)
}

// ForModule scopes base to a module. A nil base yields a logger that
// discards output, which keeps modules usable in tests without wiring.
func ForModule(base *logrus.Entry, module string) *logrus.Entry {
	if base == nil {
		return Discard().WithField("module", module)
	}
	return base.WithField("module", module)
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}
