package utils

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var (
	InfoLogger  = newLogger(os.Stdout, &logrus.TextFormatter{FullTimestamp: true})
	ErrorLogger = newLogger(os.Stderr, &logrus.TextFormatter{FullTimestamp: true})
)

func newLogger(out *os.File, formatter logrus.Formatter) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(formatter)
	return l
}

// InitLogger rebuilds the info and error loggers. format is "text" or "json".
func InitLogger(level, format string) {
	InfoLogger = newLogger(os.Stdout, formatterFor(format))
	ErrorLogger = newLogger(os.Stderr, formatterFor(format))

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	InfoLogger.SetLevel(lvl)
	// Error logger still needs warnings.
	ErrorLogger.SetLevel(logrus.WarnLevel)
}

func formatterFor(format string) logrus.Formatter {
	if strings.EqualFold(format, "json") {
		return &logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		}
	}
	return &logrus.TextFormatter{FullTimestamp: true}
}
