// Package auth handles registration, login, and bearer token verification.
// Token mechanics are delegated to HS256 JWTs; passwords are bcrypt-hashed.
package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/kailas-cloud/promemo/internal/domain"
	domuser "github.com/kailas-cloud/promemo/internal/domain/user"
)

const minPasswordLen = 8

// Service mints and verifies tokens and manages account credentials.
type Service struct {
	users    Users
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
}

// New creates an auth service.
func New(users Users, secret string, tokenTTL time.Duration) *Service {
	return &Service{
		users:    users,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		now:      time.Now,
	}
}

// WithClock overrides the time source (tests).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Register creates an account and returns the user with a fresh token.
func (s *Service) Register(ctx context.Context, email, name, password string) (domuser.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	name = strings.TrimSpace(name)

	if email == "" || !strings.Contains(email, "@") {
		return domuser.User{}, "", fmt.Errorf("invalid email: %w", domain.ErrValidation)
	}
	if name == "" {
		return domuser.User{}, "", fmt.Errorf("name is required: %w", domain.ErrValidation)
	}
	if len(password) < minPasswordLen {
		return domuser.User{}, "", fmt.Errorf(
			"password must be at least %d characters: %w", minPasswordLen, domain.ErrValidation,
		)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domuser.User{}, "", fmt.Errorf("hash password: %w", err)
	}

	nowTime := s.now().UTC()
	u := domuser.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		Role:         domuser.RoleMember,
		PasswordHash: string(hash),
		CreatedAt:    nowTime,
		UpdatedAt:    nowTime,
	}
	if err := s.users.Create(ctx, &u); err != nil {
		return domuser.User{}, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.mint(u.ID)
	if err != nil {
		return domuser.User{}, "", err
	}
	return u, token, nil
}

// Login verifies credentials and returns the user with a fresh token.
func (s *Service) Login(ctx context.Context, email, password string) (domuser.User, string, error) {
	u, err := s.users.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		// Uniform failure, do not reveal whether the account exists.
		return domuser.User{}, "", fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return domuser.User{}, "", fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}

	token, err := s.mint(u.ID)
	if err != nil {
		return domuser.User{}, "", err
	}
	return u, token, nil
}

// Verify parses a bearer token and returns the authenticated user.
func (s *Service) Verify(ctx context.Context, tokenString string) (domuser.User, error) {
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid || claims.Subject == "" {
		return domuser.User{}, fmt.Errorf("invalid token: %w", domain.ErrUnauthorized)
	}

	u, err := s.users.Get(ctx, claims.Subject)
	if err != nil {
		return domuser.User{}, fmt.Errorf("token subject: %w", domain.ErrUnauthorized)
	}
	return u, nil
}

func (s *Service) mint(userID string) (string, error) {
	nowTime := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(nowTime),
		ExpiresAt: jwt.NewNumericDate(nowTime.Add(s.tokenTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}
