// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// SetupParams controls where and how logs are written.
type SetupParams struct {
	LogFile       string
	LogToStderr   bool
	LogLevel      string
	LogFormatJSON bool
}

// Setup configures logrus. Logs go to a rotating file so they never draw over
// the interactive UI; stderr mirroring is opt-in. The returned closer flushes
// the file.
func Setup(params SetupParams) io.Closer {
	if params.LogFormatJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	}
	logrus.SetLevel(GetLevel(params.LogLevel))

	if params.LogFile == "" {
		if params.LogToStderr {
			logrus.SetOutput(os.Stderr)
		} else {
			logrus.SetOutput(io.Discard)
		}
		return nopCloser{}
	}

	if err := os.MkdirAll(filepath.Dir(params.LogFile), 0o755); err != nil {
		logrus.SetOutput(os.Stderr)
		logrus.Warnf("failed to create log directory, logging to stderr: %v", err)
		return nopCloser{}
	}

	lumberJackLogger := &lumberjack.Logger{
		Filename:   params.LogFile,
		MaxSize:    5, // megabytes
		MaxBackups: 3,
		Compress:   true,
	}
	if params.LogToStderr {
		logrus.SetOutput(io.MultiWriter(os.Stderr, lumberJackLogger))
	} else {
		logrus.SetOutput(lumberJackLogger)
	}
	return lumberJackLogger
}

// GetLevel parses a level name, defaulting to info.
func GetLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
