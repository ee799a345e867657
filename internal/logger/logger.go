// Package logger wraps op/go-logging with the package-level helpers used
// across the server.
package logger

import (
	"os"
	"strings"

	"github.com/op/go-logging"
)

const (
	module     = "apiserver"
	timeFormat = "2006/01/02 15:04:05"
)

var logger = newLogger(logging.INFO)

// InitLogger replaces the package logger with one writing to stderr at the
// given level name (DEBUG, INFO, NOTICE, WARNING, ERROR). Unknown names fall
// back to INFO.
func InitLogger(level string) {
	lvl, err := logging.LogLevel(strings.ToUpper(strings.TrimSpace(level)))
	if err != nil {
		lvl = logging.INFO
	}
	logger = newLogger(lvl)
}

func newLogger(level logging.Level) *logging.Logger {
	l := logging.MustGetLogger(module)
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	formatted := logging.NewBackendFormatter(backend, logging.MustStringFormatter(
		`%{time:`+timeFormat+`} %{level} - %{message}`,
	))
	leveled := logging.AddModuleLevel(formatted)
	leveled.SetLevel(level, module)
	l.SetBackend(leveled)
	return l
}

func Debug(args ...any) {
	logger.Debug(args...)
}

func Debugf(format string, args ...any) {
	logger.Debugf(format, args...)
}

func Info(args ...any) {
	logger.Info(args...)
}

func Infof(format string, args ...any) {
	logger.Infof(format, args...)
}

func Warning(args ...any) {
	logger.Warning(args...)
}

func Warningf(format string, args ...any) {
	logger.Warningf(format, args...)
}

func Error(args ...any) {
	logger.Error(args...)
}

func Errorf(format string, args ...any) {
	logger.Errorf(format, args...)
}
