// Command migrate applies the embedded SQL migrations.
//
//	migrate -direction up
//	migrate -direction down
package main

import (
	"flag"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"bookstore/internal/database"
	"bookstore/internal/logger"
)

func main() {
	logger.SetDefault(logger.New())

	direction := flag.String("direction", "up", "migration direction: up or down")
	flag.Parse()

	dsn := os.Getenv("DATABASE_URL")
	if err := database.Migrate(dsn, *direction); err != nil {
		slog.Error("Migration failed", "direction", *direction, "error", err)
		os.Exit(1)
	}

	slog.Info("Migrations applied", "direction", *direction)
}
