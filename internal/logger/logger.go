package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var log *logrus.Logger

func Init(level, format string) error {
	log = logrus.New()

	switch level {
	case "debug":
		log.SetLevel(logrus.DebugLevel)
	case "warn":
		log.SetLevel(logrus.WarnLevel)
	case "error":
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}

	switch format {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	log.SetOutput(os.Stdout)
	return nil
}

// SetOutput redirects the logger; used by tests to keep output quiet.
func SetOutput(w io.Writer) {
	if log == nil {
		_ = Init("info", "text")
	}
	log.SetOutput(w)
}

// WithField returns an entry carrying a structured field.
func WithField(key string, value any) *logrus.Entry {
	if log == nil {
		_ = Init("info", "text")
	}
	return log.WithField(key, value)
}

func Debugf(format string, args ...any) {
	if log != nil {
		log.Debugf(format, args...)
	}
}

func Info(args ...any) {
	if log != nil {
		log.Info(args...)
	}
}

func Infof(format string, args ...any) {
	if log != nil {
		log.Infof(format, args...)
	}
}

func Warnf(format string, args ...any) {
	if log != nil {
		log.Warnf(format, args...)
	}
}

func Errorf(format string, args ...any) {
	if log != nil {
		log.Errorf(format, args...)
	} else {
		fmt.Printf("ERROR: "+format+"\n", args...)
	}
}

func Fatalf(format string, args ...any) {
	if log != nil {
		log.Fatalf(format, args...)
	} else {
		fmt.Printf("FATAL: "+format+"\n", args...)
		os.Exit(1)
	}
}
