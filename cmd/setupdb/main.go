package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"guestbook/internal/config"
	"guestbook/internal/db"
	"guestbook/internal/observability"
)

func main() {
	_ = godotenv.Load()

	logger := observability.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load_config_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	ctx := context.Background()
	database, err := db.Open(ctx, cfg.Database)
	if err != nil {
		logger.Error("open_database_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer database.Close()

	if err := db.Migrate(ctx, database, cfg.Database.Driver, logger); err != nil {
		logger.Error("migrations_failed", map[string]any{"error": err.Error()})
		_ = database.Close()
		os.Exit(1)
	}

	fmt.Println("Database created successfully!")
}
