package main

import (
	cfg "eventserv/src/configuration"
	server "eventserv/src/server"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file found, relying on environment")
	}

	config := cfg.ReadProperties()

	level, err := logrus.ParseLevel(config.LogLevel)
	if err != nil {
		level = logrus.DebugLevel
	}
	logrus.SetLevel(level)

	server.RunServer(config)
}
