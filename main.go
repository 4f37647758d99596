package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/JoanBatllo/my-project-bingo/internal/httpserver"
	"github.com/JoanBatllo/my-project-bingo/internal/leaderboard"
	"github.com/JoanBatllo/my-project-bingo/internal/store"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	dbPath := getEnv("BINGO_DB_PATH", "./data/bingo.db")
	db, err := openDB(dbPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", dbPath).Msg("failed to open database")
	}
	if err := leaderboard.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	results := leaderboard.NewStore(db)
	sessions := store.NewMemoryStore()
	srv := httpserver.New(sessions, results)

	port := getEnv("PORT", "8099")
	log.Info().Str("port", port).Str("db", dbPath).Msg("starting bingo server")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
