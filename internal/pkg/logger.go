package pkg

import (
	"os"

	"github.com/sirupsen/logrus"
)

// global accessible logger
var Log *logrus.Entry

func init() {
	InitLogger()
}

func InitLogger() {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if os.Getenv("THREADHIVE_ENV") == "prod" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	Log = logger.WithFields(logrus.Fields{
		"service": "thread-hive",
	})
}
