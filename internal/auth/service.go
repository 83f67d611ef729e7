// Package auth implements credential authentication for the bookstore.
// It covers registration, login and the session guard applied to every
// protected route.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bookstore/internal/database"
	"bookstore/internal/security"

	"github.com/google/uuid"
)

var (
	// ErrInvalidCredentials is returned on an unknown username or a wrong
	// password. The two causes share one error so the login response cannot
	// be used to enumerate usernames.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrMissingCredentials is returned when username or password is empty
	ErrMissingCredentials = errors.New("username and password are required")
	// ErrUserNotFound is returned when a user lookup by ID finds nothing
	ErrUserNotFound = errors.New("user not found")
)

// Service defines the authentication service interface
type Service interface {
	Register(ctx context.Context, username, password string) (*User, error)
	Login(ctx context.Context, username, password string) (*User, error)
	GetUserByID(ctx context.Context, userID string) (*User, error)
}

type service struct {
	db     database.Service
	hasher *security.Hasher
}

// NewService creates a new authentication service
func NewService(db database.Service, hasher *security.Hasher) Service {
	return &service{
		db:     db,
		hasher: hasher,
	}
}

// Register hashes the password and persists a new user. Usernames are not
// checked for uniqueness; two concurrent registrations with the same name
// both succeed.
func (s *service) Register(ctx context.Context, username, password string) (*User, error) {
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		ID:        uuid.New().String(),
		Username:  username,
		CreatedAt: time.Now(),
	}

	query := `
		INSERT INTO users (id, username, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := s.db.Exec(ctx, query, user.ID, user.Username, hash, user.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login resolves the username and verifies the password against the stored
// hash in constant time. Both failure causes collapse into
// ErrInvalidCredentials.
func (s *service) Login(ctx context.Context, username, password string) (*User, error) {
	user, hash, err := s.getUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.hasher.Compare(hash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUserByID retrieves a user by their ID
func (s *service) GetUserByID(ctx context.Context, userID string) (*User, error) {
	query := `SELECT id, username, created_at FROM users WHERE id = $1`

	var user User
	err := s.db.QueryRow(ctx, query, userID).Scan(&user.ID, &user.Username, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &user, nil
}

// getUserByUsername returns the earliest matching row, mirroring a
// first-match lookup when duplicate usernames exist.
func (s *service) getUserByUsername(ctx context.Context, username string) (*User, string, error) {
	query := `
		SELECT id, username, password_hash, created_at
		FROM users
		WHERE username = $1
		ORDER BY created_at
		LIMIT 1
	`

	var user User
	var hash string
	err := s.db.QueryRow(ctx, query, username).Scan(&user.ID, &user.Username, &hash, &user.CreatedAt)
	if err != nil {
		return nil, "", err
	}

	return &user, hash, nil
}
