// Package log provides structured logging for the application.
//
// Log output goes to stderr so stdout stays reserved for command results.
// Messages carry optional key-value pairs:
//
//	log.Info("Zone created", "zone", id, "type", zoneType)
package log

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Configure sets the log level and output format. Valid levels are trace,
// debug, info, warn and error; valid formats are console and json. An
// unknown level falls back to info.
func Configure(level, format string) {
	logrus.SetOutput(os.Stderr)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.SetLevel(logrus.InfoLevel)
		logrus.WithField("level", level).Warn("Unknown log level, defaulting to info")
	} else {
		logrus.SetLevel(lvl)
	}

	switch format {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}
}

// Debug logs a message at debug level with optional key-value pairs.
func Debug(msg string, kv ...any) {
	logrus.WithFields(fields(kv)).Debug(msg)
}

// Info logs a message at info level with optional key-value pairs.
func Info(msg string, kv ...any) {
	logrus.WithFields(fields(kv)).Info(msg)
}

// Warn logs a message at warn level with optional key-value pairs.
func Warn(msg string, kv ...any) {
	logrus.WithFields(fields(kv)).Warn(msg)
}

// Error logs a message at error level with optional key-value pairs.
func Error(msg string, kv ...any) {
	logrus.WithFields(fields(kv)).Error(msg)
}

// fields converts alternating key-value arguments into logrus fields.
// A trailing key without a value is kept with a nil value rather than dropped.
func fields(kv []any) logrus.Fields {
	f := make(logrus.Fields, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		if i+1 < len(kv) {
			f[key] = kv[i+1]
		} else {
			f[key] = nil
		}
	}
	return f
}
