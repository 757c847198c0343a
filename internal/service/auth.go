package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/tour-guide-marketplace/internal/apperr"
	"github.com/iliyamo/tour-guide-marketplace/internal/model"
	"github.com/iliyamo/tour-guide-marketplace/internal/repository"
	"github.com/iliyamo/tour-guide-marketplace/internal/utils"
)

// AuthService issues and revokes tokens.
type AuthService struct {
	users          UserRepository
	tokens         TokenRepository
	secret         string
	accessTTLMin   int
	refreshTTLDays int
}

func NewAuthService(users UserRepository, tokens TokenRepository, secret string, accessTTLMin, refreshTTLDays int) *AuthService {
	return &AuthService{
		users:          users,
		tokens:         tokens,
		secret:         secret,
		accessTTLMin:   accessTTLMin,
		refreshTTLDays: refreshTTLDays,
	}
}

// Session is a freshly issued token pair.
type Session struct {
	User         model.User
	AccessToken  string
	AccessExp    time.Time
	RefreshToken string
	RefreshExp   time.Time
}

// Login verifies credentials and opens a session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, apperr.Validation("email and password are required")
	}
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	if err != nil {
		return nil, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	if u.IsActive != model.StateActive {
		return nil, apperr.Permission("user is %s", strings.ToLower(string(u.IsActive)))
	}
	return s.issue(ctx, u)
}

// Refresh exchanges a live refresh token for a new pair; the old token is
// revoked.
func (s *AuthService) Refresh(ctx context.Context, raw string) (*Session, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, apperr.Validation("refresh token is required")
	}
	hash := utils.HashRefreshRaw(raw)
	userID, err := s.tokens.ValidateRefresh(ctx, hash)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Unauthorized("invalid refresh token")
	}
	if err != nil {
		return nil, err
	}
	if err := s.tokens.RevokeByHash(ctx, hash); err != nil {
		return nil, err
	}

	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Unauthorized("invalid refresh token")
	}
	if err != nil {
		return nil, err
	}
	if u.IsActive != model.StateActive {
		return nil, apperr.Permission("user is %s", strings.ToLower(string(u.IsActive)))
	}
	return s.issue(ctx, u)
}

// Logout revokes the given refresh token.  With no token and a known user
// every session of that user is revoked.
func (s *AuthService) Logout(ctx context.Context, raw, userID string) error {
	if raw = strings.TrimSpace(raw); raw != "" {
		return s.tokens.RevokeByHash(ctx, utils.HashRefreshRaw(raw))
	}
	if userID != "" {
		return s.tokens.RevokeAllForUser(ctx, userID)
	}
	return apperr.Validation("refresh token is required")
}

func (s *AuthService) issue(ctx context.Context, u model.User) (*Session, error) {
	access, err := utils.NewAccessToken(s.secret, u.ID, string(u.Role), u.Email, s.accessTTLMin)
	if err != nil {
		return nil, err
	}
	refresh, err := utils.NewRefreshToken(s.refreshTTLDays)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return nil, err
	}
	return &Session{
		User:         u,
		AccessToken:  access.Token,
		AccessExp:    access.Exp,
		RefreshToken: refresh.Raw,
		RefreshExp:   refresh.Exp,
	}, nil
}
