package handler_test

import (
	"net/http"
	"testing"

	"github.com/vebops/store/internal/testutil"
)

func TestLoginAndSession(t *testing.T) {
	env := testutil.SetupServer(t)
	env.SeedAdmin(t)

	token := env.Login(t, "admin@test.local", "admin123")

	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/auth/session", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	user := testutil.ParseResponse(w)
	if user["email"] != "admin@test.local" {
		t.Errorf("Expected admin email, got %v", user["email"])
	}
	if user["role"] != "ADMIN" {
		t.Errorf("Expected ADMIN role, got %v", user["role"])
	}
}

func TestLoginWrongPassword(t *testing.T) {
	env := testutil.SetupServer(t)
	env.SeedAdmin(t)

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "admin@test.local", "password": "wrong"}, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", w.Code)
	}
	resp := testutil.ParseResponse(w)
	if resp["message"] != "Invalid email or password" {
		t.Errorf("Unexpected message: %v", resp["message"])
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	env := testutil.SetupServer(t)
	env.SeedAdmin(t)

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "nobody@test.local", "password": "whatever"}, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", w.Code)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	env := testutil.SetupServer(t)
	env.SeedAdmin(t)
	token := env.Login(t, "admin@test.local", "admin123")

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/auth/logout", nil, token)
	if w.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/auth/session", nil, token)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 after logout, got %d", w.Code)
	}
}

func TestMissingTokenRejected(t *testing.T) {
	env := testutil.SetupServer(t)
	env.SeedAdmin(t)

	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/app/bootstrap", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", w.Code)
	}

	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/app/bootstrap", nil, "not-a-token")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 for garbage token, got %d", w.Code)
	}
}
