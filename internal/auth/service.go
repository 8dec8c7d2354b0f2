// Package auth manages admin accounts and bearer-token sessions.
package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type Service struct {
	repo   Repository
	tokens TokenStore
	log    *zap.Logger
}

func NewService(repo Repository, tokens TokenStore, log *zap.Logger) *Service {
	return &Service{repo: repo, tokens: tokens, log: log}
}

func (s *Service) SignUp(ctx context.Context, email, password string) (*AdminUser, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, errors.New("a valid email is required")
	}
	if len(password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &AdminUser{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info("admin account created", zap.String("email", email))
	return u, nil
}

// SignIn verifies the credentials and mints an opaque session token.
func (s *Service) SignIn(ctx context.Context, email, password string) (string, error) {
	u, err := s.repo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if !CheckPassword(u.PasswordHash, password) {
		return "", ErrInvalidCredentials
	}
	token := uuid.NewString()
	if err := s.tokens.Put(ctx, token, u.ID); err != nil {
		return "", err
	}
	return token, nil
}

func (s *Service) SignOut(ctx context.Context, token string) error {
	return s.tokens.Del(ctx, token)
}

// Verify resolves a session token back to its admin user.
func (s *Service) Verify(ctx context.Context, token string) (*AdminUser, error) {
	id, err := s.tokens.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}
