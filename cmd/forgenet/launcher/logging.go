package launcher

import (
	"os"

	"github.com/evalphobia/logrus_sentry"
	"github.com/sirupsen/logrus"
)

// setupLogging configures the process-wide logrus defaults from the CLI
// flags and, when SENTRY_DSN is set, attaches the Sentry hook so fatal
// and error level entries are reported.
func setupLogging(format string, verbosity int) *logrus.Entry {
	if format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if verbosity < 0 {
		verbosity = 0
	}
	if verbosity > int(logrus.DebugLevel) {
		verbosity = int(logrus.DebugLevel)
	}
	logrus.SetLevel(logrus.Level(verbosity))

	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		hook, err := logrus_sentry.NewSentryHook(dsn, []logrus.Level{
			logrus.PanicLevel,
			logrus.FatalLevel,
			logrus.ErrorLevel,
		})
		if err != nil {
			logrus.WithError(err).Warn("sentry hook disabled")
		} else {
			logrus.AddHook(hook)
		}
	}
	return logrus.WithField("app", "forgenet")
}
