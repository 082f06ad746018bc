package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/promemo/internal/domain"
	domuser "github.com/kailas-cloud/promemo/internal/domain/user"
)

type mockUsers struct {
	byID      map[string]domuser.User
	byEmail   map[string]domuser.User
	createErr error
}

func newMockUsers() *mockUsers {
	return &mockUsers{
		byID:    map[string]domuser.User{},
		byEmail: map[string]domuser.User{},
	}
}

func (m *mockUsers) Create(_ context.Context, u *domuser.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, exists := m.byEmail[u.Email]; exists {
		return domain.ErrAlreadyExists
	}
	m.byID[u.ID] = *u
	m.byEmail[u.Email] = *u
	return nil
}

func (m *mockUsers) Get(_ context.Context, id string) (domuser.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return domuser.User{}, domain.ErrUserNotFound
	}
	return u, nil
}

func (m *mockUsers) GetByEmail(_ context.Context, email string) (domuser.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return domuser.User{}, domain.ErrUserNotFound
	}
	return u, nil
}

func newTestService(users *mockUsers) *Service {
	return New(users, "test-secret", time.Hour)
}

func TestRegister_NormalizesAndDefaults(t *testing.T) {
	users := newMockUsers()
	svc := newTestService(users)

	u, token, err := svc.Register(context.Background(), "  Alice@Example.COM ", " Alice ", "correct horse")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Email != "alice@example.com" {
		t.Errorf("email not normalized: %q", u.Email)
	}
	if u.Name != "Alice" {
		t.Errorf("name not trimmed: %q", u.Name)
	}
	if u.Role != domuser.RoleMember {
		t.Errorf("expected member role, got %s", u.Role)
	}
	if u.PasswordHash == "" || u.PasswordHash == "correct horse" {
		t.Error("password must be stored hashed")
	}
	if token == "" {
		t.Error("expected a token")
	}
}

func TestRegister_Validation(t *testing.T) {
	svc := newTestService(newMockUsers())

	cases := []struct {
		name                  string
		email, userName, pass string
	}{
		{"missing email", "", "Bob", "long-enough"},
		{"malformed email", "not-an-email", "Bob", "long-enough"},
		{"missing name", "bob@example.com", "", "long-enough"},
		{"short password", "bob@example.com", "Bob", "short"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.Register(context.Background(), tc.email, tc.userName, tc.pass)
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	users := newMockUsers()
	svc := newTestService(users)

	if _, _, err := svc.Register(context.Background(), "dup@example.com", "First", "long-enough"); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	_, _, err := svc.Register(context.Background(), "dup@example.com", "Second", "long-enough")
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestLogin_RoundTrip(t *testing.T) {
	users := newMockUsers()
	svc := newTestService(users)

	registered, _, err := svc.Register(context.Background(), "carol@example.com", "Carol", "long-enough")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	u, token, err := svc.Login(context.Background(), "Carol@Example.com", "long-enough")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if u.ID != registered.ID {
		t.Errorf("expected user %s, got %s", registered.ID, u.ID)
	}

	verified, err := svc.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if verified.ID != registered.ID {
		t.Errorf("token resolved to %s, want %s", verified.ID, registered.ID)
	}
}

func TestLogin_UniformFailure(t *testing.T) {
	users := newMockUsers()
	svc := newTestService(users)

	if _, _, err := svc.Register(context.Background(), "dave@example.com", "Dave", "long-enough"); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, _, unknownErr := svc.Login(context.Background(), "nobody@example.com", "whatever-pw")
	_, _, wrongErr := svc.Login(context.Background(), "dave@example.com", "wrong-password")

	if !errors.Is(unknownErr, domain.ErrUnauthorized) || !errors.Is(wrongErr, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for both, got %v and %v", unknownErr, wrongErr)
	}
	// Unknown accounts and wrong passwords must be indistinguishable.
	if unknownErr.Error() != wrongErr.Error() {
		t.Errorf("failure messages differ: %q vs %q", unknownErr.Error(), wrongErr.Error())
	}
}

func TestVerify_ExpiredToken(t *testing.T) {
	users := newMockUsers()
	svc := newTestService(users)

	past := time.Now().Add(-2 * time.Hour)
	svc.WithClock(func() time.Time { return past })

	_, token, err := svc.Register(context.Background(), "eve@example.com", "Eve", "long-enough")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	svc.WithClock(time.Now)
	if _, err := svc.Verify(context.Background(), token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized for expired token, got %v", err)
	}
}

func TestVerify_GarbageToken(t *testing.T) {
	svc := newTestService(newMockUsers())

	if _, err := svc.Verify(context.Background(), "not-a-jwt"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}
