package session

import "time"

// Session is the server-side payload bound to an opaque cookie token.
// A token resolves to at most one user at any time.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	MaxAge    int       `json:"max_age"`
	CreatedAt time.Time `json:"created_at"`
	TouchedAt time.Time `json:"touched_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
