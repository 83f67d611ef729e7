// Command seed wipes the books table and inserts a small sample catalog.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"bookstore/internal/database"
	"bookstore/internal/logger"

	"github.com/google/uuid"
)

type seedBook struct {
	title       string
	author      string
	price       float64
	description string
}

var seedBooks = []seedBook{
	{"Dune", "Frank Herbert", 15, "A desert planet, a fallen house and the spice that rules the universe."},
	{"The Left Hand of Darkness", "Ursula K. Le Guin", 12.5, "An envoy navigates politics and ice on a world without fixed gender."},
	{"Neuromancer", "William Gibson", 11, "A washed-up hacker is hired for one last run against an AI."},
	{"The Dispossessed", "Ursula K. Le Guin", 13, "Two worlds, one physicist and the walls between them."},
	{"Hyperion", "Dan Simmons", 14, "Seven pilgrims tell their stories on the way to the Time Tombs."},
}

func main() {
	logger.SetDefault(logger.New())

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	db, err := database.NewWithDSN(dsn)
	if err != nil {
		slog.Error("Failed to connect", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := db.Exec(ctx, `DELETE FROM books`); err != nil {
		slog.Error("Failed to clear books", "error", err)
		os.Exit(1)
	}

	for _, b := range seedBooks {
		_, err := db.Exec(ctx, `
			INSERT INTO books (id, title, author, price, description, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		`, uuid.New(), b.title, b.author, b.price, b.description)
		if err != nil {
			slog.Error("Failed to insert book", "title", b.title, "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Seeded books", "count", len(seedBooks))
}
