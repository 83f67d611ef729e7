package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"bookstore/internal/session"

	"github.com/gin-gonic/gin"
)

// mockService implements Service for handler tests
type mockService struct {
	registerFunc func(ctx context.Context, username, password string) (*User, error)
	loginFunc    func(ctx context.Context, username, password string) (*User, error)
}

func (m *mockService) Register(ctx context.Context, username, password string) (*User, error) {
	if m.registerFunc != nil {
		return m.registerFunc(ctx, username, password)
	}
	return &User{ID: "user-1", Username: username}, nil
}

func (m *mockService) Login(ctx context.Context, username, password string) (*User, error) {
	if m.loginFunc != nil {
		return m.loginFunc(ctx, username, password)
	}
	return nil, ErrInvalidCredentials
}

func (m *mockService) GetUserByID(ctx context.Context, userID string) (*User, error) {
	return nil, ErrUserNotFound
}

// mockManager implements session.Manager for handler tests
type mockManager struct {
	createFunc func(ctx context.Context, userID, username string, maxAge int) (string, error)
	getFunc    func(ctx context.Context, token string) (*session.Session, error)
	deleted    []string
}

func (m *mockManager) Create(ctx context.Context, userID, username string, maxAge int) (string, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, userID, username, maxAge)
	}
	return "test-token", nil
}

func (m *mockManager) Get(ctx context.Context, token string) (*session.Session, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, token)
	}
	return nil, session.ErrSessionNotFound
}

func (m *mockManager) Delete(ctx context.Context, token string) error {
	m.deleted = append(m.deleted, token)
	return nil
}

func (m *mockManager) Validate(ctx context.Context, token string) (bool, error) {
	_, err := m.Get(ctx, token)
	return err == nil, err
}

func newAuthRouter(svc Service, mgr session.Manager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(svc, mgr)
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)
	r.GET("/logout", h.Logout)
	return r
}

func postForm(r http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	return nil
}

func TestRegisterSetsCookieAndRedirects(t *testing.T) {
	r := newAuthRouter(&mockService{}, &mockManager{})

	w := postForm(r, "/register", url.Values{
		"username": {"alice"},
		"password": {"secret"},
	})

	if w.Code != http.StatusFound {
		t.Fatalf("Expected 302, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/books" {
		t.Errorf("Expected redirect to /books, got %s", loc)
	}

	cookie := sessionCookie(w)
	if cookie == nil {
		t.Fatal("Expected a session cookie")
	}
	if cookie.Value != "test-token" {
		t.Errorf("Expected cookie value test-token, got %s", cookie.Value)
	}
	if !cookie.HttpOnly {
		t.Error("Expected an HTTP-only cookie")
	}
	if cookie.MaxAge != session.DefaultMaxAge {
		t.Errorf("Expected 24h max age, got %d", cookie.MaxAge)
	}
}

func TestRegisterMissingFields(t *testing.T) {
	called := false
	svc := &mockService{
		registerFunc: func(ctx context.Context, username, password string) (*User, error) {
			called = true
			return &User{ID: "user-1", Username: username}, nil
		},
	}
	r := newAuthRouter(svc, &mockManager{})

	w := postForm(r, "/register", url.Values{"username": {"alice"}})

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
	if called {
		t.Error("Expected the service not to be called for an incomplete form")
	}
}

func TestRegisterPersistenceFailure(t *testing.T) {
	svc := &mockService{
		registerFunc: func(ctx context.Context, username, password string) (*User, error) {
			return nil, errors.New("connection refused")
		},
	}
	r := newAuthRouter(svc, &mockManager{})

	w := postForm(r, "/register", url.Values{
		"username": {"alice"},
		"password": {"secret"},
	})

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", w.Code)
	}
	if sessionCookie(w) != nil {
		t.Error("Expected no session cookie on failure")
	}
}

func TestLoginSuccess(t *testing.T) {
	svc := &mockService{
		loginFunc: func(ctx context.Context, username, password string) (*User, error) {
			if username == "alice" && password == "secret" {
				return &User{ID: "user-1", Username: "alice"}, nil
			}
			return nil, ErrInvalidCredentials
		},
	}
	r := newAuthRouter(svc, &mockManager{})

	w := postForm(r, "/login", url.Values{
		"username": {"alice"},
		"password": {"secret"},
	})

	if w.Code != http.StatusFound {
		t.Fatalf("Expected 302, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/books" {
		t.Errorf("Expected redirect to /books, got %s", loc)
	}
	if sessionCookie(w) == nil {
		t.Error("Expected a session cookie")
	}
}

// Unknown usernames and wrong passwords must be indistinguishable in the
// response.
func TestLoginFailuresShareOneMessage(t *testing.T) {
	svc := &mockService{
		loginFunc: func(ctx context.Context, username, password string) (*User, error) {
			if username == "alice" && password == "secret" {
				return &User{ID: "user-1", Username: "alice"}, nil
			}
			return nil, ErrInvalidCredentials
		},
	}
	r := newAuthRouter(svc, &mockManager{})

	unknownUser := postForm(r, "/login", url.Values{
		"username": {"nobody"},
		"password": {"secret"},
	})
	wrongPassword := postForm(r, "/login", url.Values{
		"username": {"alice"},
		"password": {"not-the-password"},
	})

	if unknownUser.Code != http.StatusOK || wrongPassword.Code != http.StatusOK {
		t.Fatalf("Expected both failures to render with 200, got %d and %d",
			unknownUser.Code, wrongPassword.Code)
	}
	if unknownUser.Body.String() != wrongPassword.Body.String() {
		t.Errorf("Expected identical bodies, got %q and %q",
			unknownUser.Body.String(), wrongPassword.Body.String())
	}
	if unknownUser.Body.String() != invalidCredentialsMessage {
		t.Errorf("Expected %q, got %q", invalidCredentialsMessage, unknownUser.Body.String())
	}
	if sessionCookie(unknownUser) != nil || sessionCookie(wrongPassword) != nil {
		t.Error("Expected no session cookie on failed login")
	}
}

func TestLogoutDestroysSessionAndRedirects(t *testing.T) {
	mgr := &mockManager{}
	r := newAuthRouter(&mockService{}, mgr)

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "live-token"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("Expected 302, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/" {
		t.Errorf("Expected redirect to /, got %s", loc)
	}
	if len(mgr.deleted) != 1 || mgr.deleted[0] != "live-token" {
		t.Errorf("Expected the session to be deleted, got %v", mgr.deleted)
	}

	cookie := sessionCookie(w)
	if cookie == nil || cookie.MaxAge >= 0 || cookie.Value != "" {
		t.Error("Expected the session cookie to be cleared")
	}
}

func TestLogoutWithoutCookie(t *testing.T) {
	mgr := &mockManager{}
	r := newAuthRouter(&mockService{}, mgr)

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Errorf("Expected 302 even with no session, got %d", w.Code)
	}
	if len(mgr.deleted) != 0 {
		t.Errorf("Expected no delete call, got %v", mgr.deleted)
	}
}
