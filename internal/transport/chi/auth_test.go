package chi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	domuser "github.com/kailas-cloud/promemo/internal/domain/user"
)

type mockVerifier struct {
	user      domuser.User
	verifyErr error
	gotToken  string
}

func (m *mockVerifier) Verify(_ context.Context, token string) (domuser.User, error) {
	m.gotToken = token
	return m.user, m.verifyErr
}

func okHandler() (http.Handler, *bool) {
	called := false
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}), &called
}

func TestBearerAuth_MissingHeader(t *testing.T) {
	next, called := okHandler()
	handler := BearerAuthMiddleware(&mockVerifier{})(next)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if *called {
		t.Error("handler must not run without credentials")
	}
}

func TestBearerAuth_WrongScheme(t *testing.T) {
	next, _ := okHandler()
	handler := BearerAuthMiddleware(&mockVerifier{})(next)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
	req.Header.Set("Authorization", "Basic abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestBearerAuth_InvalidToken(t *testing.T) {
	verifier := &mockVerifier{verifyErr: errors.New("expired")}
	next, called := okHandler()
	handler := BearerAuthMiddleware(verifier)(next)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if *called {
		t.Error("handler must not run with an invalid token")
	}
}

func TestBearerAuth_ValidTokenPlacesUser(t *testing.T) {
	verifier := &mockVerifier{user: domuser.User{ID: "u1", Role: domuser.RoleMember}}
	var got domuser.User
	handler := BearerAuthMiddleware(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = userFrom(r)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if verifier.gotToken != "good-token" {
		t.Errorf("expected raw token passed to verifier, got %q", verifier.gotToken)
	}
	if got.ID != "u1" {
		t.Errorf("expected user in context, got %+v", got)
	}
}

func TestBearerAuth_ExemptPaths(t *testing.T) {
	for _, p := range []string{"/health", "/metrics", "/api/v1/auth/login", "/api/v1/auth/register"} {
		next, called := okHandler()
		handler := BearerAuthMiddleware(&mockVerifier{verifyErr: errors.New("no")})(next)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, p, nil))

		if !*called {
			t.Errorf("path %s must bypass authentication", p)
		}
	}
}
