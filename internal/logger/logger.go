package logger

import (
	"io"
	"os"

	"github.com/Domenick1991/skynet/config"
	"github.com/sirupsen/logrus"
)

// New builds the service logger from the log section of the config.
func New(cfg config.LogConfig, service string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if cfg.Format == "text" {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		log.Warnf("Invalid log level %q, using INFO", cfg.Level)
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	log.AddHook(serviceHook{service: service})
	return log
}

// Discard returns a logger that drops everything; used in tests.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type serviceHook struct {
	service string
}

func (h serviceHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h serviceHook) Fire(entry *logrus.Entry) error {
	if _, ok := entry.Data["service"]; !ok {
		entry.Data["service"] = h.service
	}
	return nil
}
