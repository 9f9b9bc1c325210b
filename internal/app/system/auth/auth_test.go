package auth_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/localfind/localfind/internal/app/system/auth"
	"go.uber.org/zap"
)

func TestRequireSignedIn_NoUser_Returns401JSON(t *testing.T) {
	handler := auth.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run without an identity")
	}))

	req := httptest.NewRequest("GET", "/api/providers/profile", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}
	if !strings.Contains(rec.Body.String(), "authentication required") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestRequireSignedIn_WithUser_PassesThrough(t *testing.T) {
	called := false
	handler := auth.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		u, ok := auth.CurrentUser(r)
		if !ok {
			t.Fatal("expected identity in context")
		}
		if u.Name != "Jo Smith" {
			t.Errorf("name: got %q", u.Name)
		}
	}))

	req := httptest.NewRequest("GET", "/api/providers/profile", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{ID: "abc", Name: "Jo Smith"})
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if !called {
		t.Error("expected handler to run")
	}
}

func TestLoadSessionUser_NoCookie_NoIdentity(t *testing.T) {
	sm, err := auth.NewSessionManager("test-session-key-must-be-32-chars-long", "test-session", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}

	handler := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.CurrentUser(r); ok {
			t.Error("expected no identity without a session cookie")
		}
	}))

	req := httptest.NewRequest("GET", "/api/providers", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)
}
