// Package session provides server-side session management. Sessions are
// stored in Redis keyed on an opaque token with TTL-based expiration, and the
// TTL slides forward on a throttled interval rather than on every request.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxAge is the session time-to-live in seconds (24 hours).
const DefaultMaxAge = 24 * 60 * 60

// DefaultTouchAfter is how long a session must go untouched before a read
// re-extends its TTL.
const DefaultTouchAfter = time.Hour

var (
	// ErrSessionNotFound is returned when a session is not found
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired is returned when a session has expired
	ErrSessionExpired = errors.New("session expired")
	// ErrInvalidSession is returned when session data is invalid
	ErrInvalidSession = errors.New("invalid session")
)

// Manager defines the interface for session lifecycle operations
type Manager interface {
	Create(ctx context.Context, userID, username string, maxAge int) (string, error)
	Get(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
	Validate(ctx context.Context, token string) (bool, error)
}

type manager struct {
	store      Store
	touchAfter time.Duration
}

// NewManager creates a session manager over the given store. touchAfter
// throttles the sliding TTL extension; zero or negative selects
// DefaultTouchAfter.
func NewManager(store Store, touchAfter time.Duration) Manager {
	if touchAfter <= 0 {
		touchAfter = DefaultTouchAfter
	}
	return &manager{
		store:      store,
		touchAfter: touchAfter,
	}
}

// Create mints a new opaque token bound to the given user identity and
// persists the session payload with the requested TTL.
func (m *manager) Create(ctx context.Context, userID, username string, maxAge int) (string, error) {
	token := uuid.New().String()

	now := time.Now()
	sess := &Session{
		ID:        token,
		UserID:    userID,
		Username:  username,
		MaxAge:    maxAge,
		CreatedAt: now,
		TouchedAt: now,
		ExpiresAt: now.Add(time.Duration(maxAge) * time.Second),
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return "", fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := m.store.Set(ctx, sessionKey(token), string(data), time.Duration(maxAge)*time.Second); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	return token, nil
}

// Get resolves a token to its session. Expired payloads are deleted and
// reported as ErrSessionExpired. A live session whose last touch is older
// than the touch interval gets its TTL re-extended.
func (m *manager) Get(ctx context.Context, token string) (*Session, error) {
	data, err := m.store.Get(ctx, sessionKey(token))
	if err != nil {
		return nil, ErrSessionNotFound
	}

	var sess Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, ErrInvalidSession
	}

	now := time.Now()
	if now.After(sess.ExpiresAt) {
		_ = m.store.Delete(ctx, sessionKey(token))
		return nil, ErrSessionExpired
	}

	if now.Sub(sess.TouchedAt) > m.touchAfter {
		m.touch(ctx, &sess, now)
	}

	return &sess, nil
}

// touch slides the expiry forward by the session's original TTL. A write
// failure here only shortens the sliding window, so it is not surfaced.
func (m *manager) touch(ctx context.Context, sess *Session, now time.Time) {
	ttl := time.Duration(sess.MaxAge) * time.Second
	if ttl <= 0 {
		return
	}
	sess.TouchedAt = now
	sess.ExpiresAt = now.Add(ttl)

	data, err := json.Marshal(sess)
	if err != nil {
		return
	}
	_ = m.store.Set(ctx, sessionKey(sess.ID), string(data), ttl)
}

// Delete removes a session. Deleting an absent session is not an error.
func (m *manager) Delete(ctx context.Context, token string) error {
	return m.store.Delete(ctx, sessionKey(token))
}

// Validate reports whether a token resolves to a live session
func (m *manager) Validate(ctx context.Context, token string) (bool, error) {
	sess, err := m.Get(ctx, token)
	if err != nil {
		return false, err
	}
	return sess != nil, nil
}

func sessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}
