// Package server assembles the HTTP server: dependency wiring, route
// registration and the middleware chain.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"bookstore/internal/auth"
	"bookstore/internal/books"
	"bookstore/internal/config"
	"bookstore/internal/database"
	"bookstore/internal/security"
	"bookstore/internal/session"
	"bookstore/internal/storage"
)

// Server holds the dependencies for the HTTP server
type Server struct {
	port int

	db       database.Service
	store    session.Store
	sessions session.Manager
	covers   storage.Service

	authHandler  *auth.Handler
	booksHandler *books.Handler
}

// Config holds server configuration
type Config struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// LoadConfigFromEnv loads server configuration from environment variables
func LoadConfigFromEnv() *Config {
	port, _ := strconv.Atoi(config.GetEnvOrDefault("PORT", "3000"))

	return &Config{
		Port:         port,
		ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
		WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
		IdleTimeout:  getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
	}
}

// New wires every service and returns the configured http.Server together
// with the Server holding its resources. Failures to reach Postgres, Redis
// or object storage are logged but not fatal; the server starts and the
// affected requests fail individually.
func New() (*http.Server, *Server) {
	cfg := LoadConfigFromEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := database.New()
	slog.Info("Database service initialized")

	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		if err := database.Migrate(dsn, "up"); err != nil {
			slog.Warn("Failed to apply migrations", "error", err)
		}
	}

	redisAddr := config.GetEnvOrDefault("REDIS_ADDR", "localhost:6379")
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0

	store := session.NewRedisStore(redisAddr, redisPassword, redisDB)
	sessions := session.NewManager(store, getEnvDuration("SESSION_TOUCH_AFTER", session.DefaultTouchAfter))

	covers, err := storage.New(ctx)
	if err != nil {
		slog.Warn("Cover storage not configured, cover uploads disabled", "error", err)
	}

	cost, _ := strconv.Atoi(config.GetEnvOrDefault("BCRYPT_COST", strconv.Itoa(security.DefaultCost)))
	hasher := security.NewHasher(cost)

	authService := auth.NewService(db, hasher)
	booksRepo := books.NewRepository(db)
	booksService := books.NewService(booksRepo, covers, redisAddr, redisPassword, redisDB)

	s := &Server{
		port:         cfg.Port,
		db:           db,
		store:        store,
		sessions:     sessions,
		covers:       covers,
		authHandler:  auth.NewHandler(authService, sessions),
		booksHandler: books.NewHandler(booksService),
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.RegisterRoutes(),
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	slog.Info("HTTP server configured", "port", cfg.Port)
	return server, s
}

// Close releases the server's database connection
func (s *Server) Close() error {
	return s.db.Close()
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
