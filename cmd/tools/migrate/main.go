package main

import (
	"flag"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/aryanbrs/packklite-sub001/internal/db"
	"github.com/aryanbrs/packklite-sub001/internal/obs"
)

func main() {
	var (
		direction = flag.String("direction", "up", "up or down")
		steps     = flag.Int("steps", 1, "number of migrations to roll back with -direction=down")
	)
	flag.Parse()
	_ = godotenv.Load()

	logger := obs.NewLogger("console", "info").With().Str("component", "migrate").Logger()

	dbURL := strings.TrimSpace(os.Getenv("APP_DATABASE_URL"))
	if dbURL == "" {
		logger.Fatal().Msg("APP_DATABASE_URL is required")
	}
	migrator, err := db.NewMigrator(dbURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("open migrator")
	}
	defer func() {
		if err := migrator.Close(); err != nil {
			logger.Error().Err(err).Msg("close migrator")
		}
	}()

	switch strings.ToLower(*direction) {
	case "up":
		err = migrator.Up()
	case "down":
		err = migrator.Down(*steps)
	default:
		logger.Fatal().Str("direction", *direction).Msg("unknown direction")
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("migrate")
	}

	version, dirty, err := migrator.Version()
	if err != nil {
		logger.Warn().Err(err).Msg("read schema version")
		return
	}
	logger.Info().Uint("version", version).Bool("dirty", dirty).Msg("schema version")
}
