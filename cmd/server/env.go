package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// loadDotEnv reads ENV_FILE (default .env) into the process environment.
// Variables already set in the environment win.
func loadDotEnv() {
	path := os.Getenv("ENV_FILE")
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return
		}
		log.Warn().Err(err).Str("file", path).Msg("could not load env file")
		return
	}
	log.Info().Str("file", path).Msg("loaded env file")
}
