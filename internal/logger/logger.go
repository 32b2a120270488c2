package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New builds the service logger. Unknown levels fall back to info.
func New(service, level, format string) *logrus.Entry {
	return NewWithOutput(os.Stdout, service, level, format)
}

func NewWithOutput(out io.Writer, service, level, format string) *logrus.Entry {
	log := logrus.New()
	log.SetOutput(out)

	if format == "text" {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	return log.WithField("service", service)
}
