package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/taskboard/internal/taskboard/store"
	"github.com/aussiebroadwan/taskboard/pkg/cryptox"
	"github.com/aussiebroadwan/taskboard/pkg/slogx"
)

// TokenPair is what a successful login hands back.
type TokenPair struct {
	Token        string
	RefreshToken string
}

type AuthService struct {
	Store      store.Store
	Hasher     *cryptox.PasswordHasher
	Tokens     *TokenService
	Identities *IdentityResolver
}

// Login checks email and password and issues an access and a refresh
// token. Unknown accounts and wrong passwords both yield
// ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (TokenPair, error) {
	l := slogx.FromContext(ctx)

	// 1. Look up the account
	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		l.Info("login for unknown account")
		return TokenPair{}, ErrInvalidCredentials
	}
	if err != nil {
		return TokenPair{}, err
	}

	// 2. Verify the password
	if err := s.Hasher.Verify(password, u.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			l.Error("stored password hash unusable", slog.Int64("user_id", u.ID), slog.Any("error", err))
		}
		return TokenPair{}, ErrInvalidCredentials
	}

	// 3. Resolve current roles and issue tokens
	p, err := s.Identities.Resolve(ctx, u.Email)
	if err != nil {
		return TokenPair{}, err
	}
	access, err := s.Tokens.IssueAccessToken(ctx, p)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.Tokens.IssueRefreshToken(ctx, p.Subject)
	if err != nil {
		return TokenPair{}, err
	}

	l.Info("user logged in", slog.Int64("user_id", u.ID))
	return TokenPair{Token: access, RefreshToken: refresh}, nil
}

// Logout revokes token. It never fails: a token that cannot be revoked is
// logged and otherwise ignored.
func (s *AuthService) Logout(ctx context.Context, token string) {
	if token == "" {
		return
	}
	if err := s.Tokens.Revoke(ctx, token); err != nil {
		slogx.FromContext(ctx).Warn("failed to revoke token on logout", slog.Any("error", err))
	}
}
