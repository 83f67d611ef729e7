package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"bookstore/internal/database"
	"bookstore/internal/security"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"
)

// setupService starts a PostgreSQL container, runs the migrations and
// returns an auth service backed by it. Tests hash with bcrypt.MinCost to
// keep the suite fast.
func setupService(t *testing.T) Service {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("bookstore_test"),
		postgres.WithUsername("bookstore"),
		postgres.WithPassword("bookstore"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	if err := database.Migrate(dsn, "up"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	db, err := database.NewWithDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return NewService(db, security.NewHasher(bcrypt.MinCost))
}

func TestRegisterAndLogin(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "alice", "secret")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if registered.ID == "" {
		t.Error("Expected a generated user id")
	}

	loggedIn, err := svc.Login(ctx, "alice", "secret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if loggedIn.ID != registered.ID {
		t.Errorf("Expected user %s, got %s", registered.ID, loggedIn.ID)
	}
}

func TestRegisterRejectsEmptyFields(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "", "secret"); !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("Expected ErrMissingCredentials, got %v", err)
	}
	if _, err := svc.Register(ctx, "alice", ""); !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("Expected ErrMissingCredentials, got %v", err)
	}
}

func TestLoginFailureCausesAreIndistinguishable(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "secret"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	_, unknownErr := svc.Login(ctx, "nobody", "secret")
	_, wrongErr := svc.Login(ctx, "alice", "not-the-password")

	if !errors.Is(unknownErr, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for an unknown username, got %v", unknownErr)
	}
	if !errors.Is(wrongErr, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for a wrong password, got %v", wrongErr)
	}
}

// Duplicate usernames are allowed. Login resolves the earliest registration.
func TestDuplicateUsernamesResolveToEarliest(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	first, err := svc.Register(ctx, "alice", "first-password")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, err := svc.Register(ctx, "alice", "second-password"); err != nil {
		t.Fatalf("Expected the duplicate registration to succeed, got %v", err)
	}

	loggedIn, err := svc.Login(ctx, "alice", "first-password")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if loggedIn.ID != first.ID {
		t.Errorf("Expected the earliest registration %s, got %s", first.ID, loggedIn.ID)
	}

	if _, err := svc.Login(ctx, "alice", "second-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected the later password to be rejected, got %v", err)
	}
}

func TestGetUserByID(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "alice", "secret")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	got, err := svc.GetUserByID(ctx, registered.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if got.Username != "alice" {
		t.Errorf("Expected username alice, got %s", got.Username)
	}

	if _, err := svc.GetUserByID(ctx, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}
