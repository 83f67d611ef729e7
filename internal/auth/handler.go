package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"bookstore/internal/session"

	"github.com/gin-gonic/gin"
)

// CookieName is the session cookie set on successful registration or login.
const CookieName = "session_id"

// invalidCredentialsMessage is rendered verbatim for both an unknown
// username and a wrong password.
const invalidCredentialsMessage = "Invalid username or password"

// Handler handles the auth HTTP surface: form pages, registration, login
// and logout.
type Handler struct {
	service    Service
	sessionMgr session.Manager
}

// NewHandler creates a new authentication handler
func NewHandler(service Service, sessionMgr session.Manager) *Handler {
	return &Handler{
		service:    service,
		sessionMgr: sessionMgr,
	}
}

// ShowRegister handles GET /register
func (h *Handler) ShowRegister(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", gin.H{})
}

// Register handles POST /register. A new user is created and logged in
// immediately; the session cookie is set before the redirect to /books.
func (h *Handler) Register(c *gin.Context) {
	var creds Credentials
	if err := c.ShouldBind(&creds); err != nil {
		c.String(http.StatusBadRequest, "Bad Request: username and password are required")
		return
	}

	user, err := h.service.Register(c.Request.Context(), creds.Username, creds.Password)
	if err != nil {
		if errors.Is(err, ErrMissingCredentials) {
			c.String(http.StatusBadRequest, "Bad Request: username and password are required")
			return
		}
		slog.Error("Registration failed", "username", creds.Username, "error", err)
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if !h.establishSession(c, user) {
		return
	}
	c.Redirect(http.StatusFound, "/books")
}

// ShowLogin handles GET /login
func (h *Handler) ShowLogin(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{})
}

// Login handles POST /login. A failed login renders a plain-text message
// with a 200 status; the message is identical for both failure causes.
func (h *Handler) Login(c *gin.Context) {
	var creds Credentials
	if err := c.ShouldBind(&creds); err != nil {
		c.String(http.StatusOK, invalidCredentialsMessage)
		return
	}

	user, err := h.service.Login(c.Request.Context(), creds.Username, creds.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			c.String(http.StatusOK, invalidCredentialsMessage)
			return
		}
		slog.Error("Login failed", "username", creds.Username, "error", err)
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if !h.establishSession(c, user) {
		return
	}
	c.Redirect(http.StatusFound, "/books")
}

// Logout handles GET /logout. Destroying an already-absent session is not an
// error; the redirect to / happens either way.
func (h *Handler) Logout(c *gin.Context) {
	if token, err := c.Cookie(CookieName); err == nil {
		if err := h.sessionMgr.Delete(c.Request.Context(), token); err != nil {
			slog.Warn("Failed to delete session", "error", err)
		}
	}

	c.SetCookie(CookieName, "", -1, "/", "", secureCookies(), true)
	c.Redirect(http.StatusFound, "/")
}

// establishSession creates the server-side session and sets the cookie.
// Returns false after writing a 500 if the session store rejects the write.
func (h *Handler) establishSession(c *gin.Context, user *User) bool {
	maxAge := sessionMaxAge()

	token, err := h.sessionMgr.Create(c.Request.Context(), user.ID, user.Username, maxAge)
	if err != nil {
		slog.Error("Failed to create session", "user_id", user.ID, "error", err)
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return false
	}

	c.SetCookie(CookieName, token, maxAge, "/", "", secureCookies(), true)
	return true
}

func sessionMaxAge() int {
	if v := os.Getenv("SESSION_MAX_AGE"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			return parsed
		}
	}
	return session.DefaultMaxAge
}

func secureCookies() bool {
	return os.Getenv("APP_ENV") == "production"
}
