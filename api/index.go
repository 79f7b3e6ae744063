package handler

import (
	"net/http"
	"os"

	"clinic/config"
	"clinic/di"
	"clinic/shared/logger"
	"clinic/transport/http/response"
)

func Handler(w http.ResponseWriter, r *http.Request) {
	r.RequestURI = r.URL.String()

	cfg := config.Get()

	logger.InitLogger()

	logger.UseStructuredOutput(cfg, os.Stdout)
	logger.SetLogLevel(cfg)

	handler, err := di.InitializeService()
	if err != nil {
		response.WithError(w, err)

		return
	}

	handler.ServeHTTP(w, r)
}
