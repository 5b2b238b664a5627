package utils

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

var Logger = logrus.New()

// InitLogger configures the global logger. Production logs go to logFile when
// one is given, everything else goes to stdout.
func InitLogger(env, level, logFile string) {
	Logger.SetReportCaller(true)

	Logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05Z07:00",
		PrettyPrint:     false,
		CallerPrettyfier: func(f *runtime.Frame) (string, string) {
			filename := filepath.Base(f.File)
			return "", filename + ":" + strconv.Itoa(f.Line)
		},
	})

	Logger.SetLevel(ParseLevel(level))

	if env != "production" || logFile == "" {
		Logger.Out = os.Stdout
		return
	}

	if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
		Logger.Out = os.Stdout
		Logger.WithError(err).Warn("Failed to create logs directory, using stdout instead")
		return
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		Logger.Out = os.Stdout
		Logger.WithError(err).Warn("Failed to log to file, using stdout instead")
		return
	}
	Logger.Out = file
}

func ParseLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
