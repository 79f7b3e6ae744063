package main

import (
	"os"

	"clinic/config"
	"clinic/di"
	"clinic/helper"
	"clinic/shared/logger"

	"github.com/rs/zerolog/log"
)

//	@title						Clinic API
//	@version					1.0
//	@description				Doctor schedules, slot availability and appointment booking.
//	@BasePath					/v1
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.UseStructuredOutput(cfg, os.Stdout)
	logger.SetLogLevel(cfg)

	if cfg.DB.Postgres.AutoMigrate {
		if err := helper.Migrate(cfg, helper.MigrateUp); err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate database")
		}
	}

	http, err := di.InitializeService()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize service")
	}

	http.Serve()
}
