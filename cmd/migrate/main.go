package main

import (
	"errors"
	"os"
	"strings"

	"clinic/config"
	"clinic/helper"
	"clinic/shared/logger"

	"github.com/rs/zerolog/log"
)

const (
	argLength = 2
)

func main() {
	logger.InitLogger()

	if len(os.Args) < argLength {
		log.Fatal().Msg("Migration direction is required: " + strings.Join(helper.Directions(), ", "))
	}

	cfg := config.Get()

	logger.SetLogLevel(cfg)

	direction := os.Args[1]

	if err := helper.Migrate(cfg, direction); err != nil {
		if errors.Is(err, helper.ErrUnknownDirection) {
			log.Fatal().Str("direction", direction).Strs("accepted", helper.Directions()).Msg("Invalid migration direction")
		}

		log.Fatal().Err(err).Str("direction", direction).Msg("Migration failed")
	}
}
