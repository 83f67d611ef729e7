package server

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func overrideRequest(form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/books/42", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestMethodOverride(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		form     url.Values
		expected string
	}{
		{
			name:     "post with _method=DELETE",
			method:   http.MethodPost,
			form:     url.Values{"_method": {"DELETE"}},
			expected: http.MethodDelete,
		},
		{
			name:     "post with _method=PUT",
			method:   http.MethodPost,
			form:     url.Values{"_method": {"PUT"}},
			expected: http.MethodPut,
		},
		{
			name:     "lowercase value",
			method:   http.MethodPost,
			form:     url.Values{"_method": {"delete"}},
			expected: http.MethodDelete,
		},
		{
			name:     "post without _method",
			method:   http.MethodPost,
			form:     url.Values{"title": {"Dune"}},
			expected: http.MethodPost,
		},
		{
			name:     "unsupported verb is ignored",
			method:   http.MethodPost,
			form:     url.Values{"_method": {"PATCH"}},
			expected: http.MethodPost,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			handler := MethodOverride(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = r.Method
			}))

			req := overrideRequest(tt.form)
			req.Method = tt.method
			handler.ServeHTTP(httptest.NewRecorder(), req)

			if seen != tt.expected {
				t.Errorf("Expected method %s, got %s", tt.expected, seen)
			}
		})
	}
}

// The override must not touch non-POST requests even if a _method field is
// smuggled in the query string.
func TestMethodOverrideIgnoresGet(t *testing.T) {
	var seen string
	handler := MethodOverride(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Method
	}))

	req := httptest.NewRequest(http.MethodGet, "/books/42?_method=DELETE", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if seen != http.MethodGet {
		t.Errorf("Expected GET to pass through, got %s", seen)
	}
}

// Form fields must survive the override so downstream handlers can still
// bind the body.
func TestMethodOverridePreservesForm(t *testing.T) {
	var title string
	handler := MethodOverride(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		title = r.PostFormValue("title")
	}))

	req := overrideRequest(url.Values{"_method": {"PUT"}, "title": {"Dune Messiah"}})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if title != "Dune Messiah" {
		t.Errorf("Expected the form field to survive, got %q", title)
	}
}
