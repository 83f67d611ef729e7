package auth

import "time"

// User represents a registered account. PasswordHash is the bcrypt output;
// the plaintext password never leaves the request scope.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Credentials is the form payload for both registration and login
type Credentials struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}
