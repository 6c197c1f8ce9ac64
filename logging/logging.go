package logging

import (
	"os"

	"github.com/contentpilot/cps/config"
	"github.com/sirupsen/logrus"
)

// Log is the base logger that the rest of the service builds its loggers from.
var Log = logrus.NewEntry(&logrus.Logger{
	Out:       os.Stderr,
	Formatter: &logrus.JSONFormatter{},
	Hooks:     make(logrus.LevelHooks),
	Level:     logrus.InfoLevel,
})

func GetLogger() *logrus.Entry {
	return Log.WithFields(logrus.Fields{"service": config.ServiceName})
}

// SetupLogging sets the logging level. Unrecognized level names fall back to info.
func SetupLogging(level string) {
	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	Log.Logger.SetLevel(logLevel)
}
