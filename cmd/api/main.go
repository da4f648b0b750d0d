package main

import (
	"os"

	"github.com/zigatrcek/openacademy/internal/pkg/logger"
	"github.com/zigatrcek/openacademy/internal/server"
)

func main() {
	srv, err := server.NewServer()
	if err != nil {
		// setup functions log the details
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	// blocks until a shutdown signal
	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
