package main

import (
	"os"

	"clinic/config"
	"clinic/di"
	"clinic/shared/logger"
)

func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.UseStructuredOutput(cfg, os.Stdout)
	logger.SetLogLevel(cfg)

	worker := di.InitializeWorker()
	worker.Run()
}
