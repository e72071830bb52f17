package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/noah-isme/backend-headunit/internal/app"
	"github.com/noah-isme/backend-headunit/internal/catalog"
	"github.com/noah-isme/backend-headunit/internal/obs"
)

func main() {
	logger := obs.NewLogger("console", "info")

	if err := godotenv.Load(); err != nil {
		logger.Info().Msg("no .env file found, relying on environment variables")
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		logger.Fatal().Msg("DATABASE_URL is not set")
	}

	if err := catalog.Migrate(dbURL); err != nil {
		logger.Fatal().Err(err).Msg("migrate catalog schema")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	source := catalog.FileSource{Path: os.Getenv("CATALOG_FILE")}
	items, err := source.Load(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("load catalog file")
	}
	if err := catalog.Validate(items); err != nil {
		logger.Fatal().Err(err).Msg("validate catalog")
	}

	pool, err := app.OpenPostgres(ctx, dbURL, "headunit-seeder")
	if err != nil {
		logger.Fatal().Err(err).Msg("open database")
	}
	defer pool.Close()

	if err := catalog.Seed(ctx, pool, items); err != nil {
		logger.Fatal().Err(err).Msg("seed catalog")
	}
	logger.Info().Int("units", len(items)).Msg("seeding completed")
}
