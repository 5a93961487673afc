package utils

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger is shared by every package. InitLogger configures it at startup;
// until then it logs to stderr at info level.
var Logger = logrus.New()

// serviceTag prefixes each message with the service name.
type serviceTag string

func (serviceTag) Levels() []logrus.Level { return logrus.AllLevels }

func (t serviceTag) Fire(entry *logrus.Entry) error {
	entry.Message = "[" + string(t) + "] " + entry.Message
	return nil
}

// InitLogger sends output to stdout, applies LOG_LEVEL and tags every
// entry with appName.
func InitLogger(appName string) {
	Logger.SetOutput(os.Stdout)
	Logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	Logger.SetLevel(levelFromEnv(os.Getenv("LOG_LEVEL")))
	Logger.AddHook(serviceTag(appName))
}

func levelFromEnv(raw string) logrus.Level {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return logrus.InfoLevel
	}
	level, err := logrus.ParseLevel(raw)
	if err != nil {
		Logger.Warnf("Invalid LOG_LEVEL %q, defaulting to info", raw)
		return logrus.InfoLevel
	}
	return level
}
