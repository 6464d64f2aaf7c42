package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/taskboard/internal/taskboard/domain"
	"github.com/aussiebroadwan/taskboard/internal/taskboard/store"
	"github.com/aussiebroadwan/taskboard/pkg/cryptox"
	"github.com/aussiebroadwan/taskboard/pkg/slogx"
)

var ErrBootstrapFailedToCreateAdmin = errors.New("failed to create admin user")

// BootstrapService seeds the first administrator into an empty database.
type BootstrapService struct {
	Store  store.Store
	Hasher *cryptox.PasswordHasher

	AdminEmail    string
	AdminPassword string // generated and logged once when empty
}

func (s *BootstrapService) IsBootstrapped(ctx context.Context) (bool, error) {
	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return false, err
	}
	return !empty, nil
}

// Bootstrap creates the configured admin when no user exists yet. It
// reports whether an account was created and is safe to call on every
// start.
func (s *BootstrapService) Bootstrap(ctx context.Context) (bool, error) {
	l := slogx.FromContext(ctx)

	// 1. Skip when there is nothing to do
	if s.AdminEmail == "" {
		l.Debug("no bootstrap admin configured")
		return false, nil
	}
	bootstrapped, err := s.IsBootstrapped(ctx)
	if err != nil {
		return false, err
	}
	if bootstrapped {
		l.Debug("system already bootstrapped")
		return false, nil
	}

	// 2. Pick the password
	password := s.AdminPassword
	if password == "" {
		if password, err = cryptox.GeneratePassword(16); err != nil {
			return false, err
		}
		l.Warn("generated bootstrap admin password, change it after first login",
			slog.String("email", s.AdminEmail), slog.String("password", password))
	} else if err := ValidatePassword(password); err != nil {
		return false, err
	}

	// 3. Hash it
	hash, err := s.Hasher.Hash(password)
	if err != nil {
		l.Error("failed to hash admin password", slog.Any("error", err))
		return false, ErrBootstrapFailedToCreateAdmin
	}

	// 4. Create the admin with both roles in one transaction
	var id int64
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		id, err = tx.Users().CreateUser(ctx, domain.User{
			FirstName:    "Admin",
			LastName:     "User",
			Email:        strings.TrimSpace(s.AdminEmail),
			PasswordHash: hash,
		})
		if err != nil {
			return err
		}
		for _, r := range []domain.Role{domain.RoleUser, domain.RoleAdmin} {
			if err := tx.Roles().AssignRole(ctx, id, r); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		l.Error("failed to create bootstrap admin", slog.Any("error", err))
		return false, fmt.Errorf("%w: %w", ErrBootstrapFailedToCreateAdmin, err)
	}

	l.Info("bootstrap admin created", slog.Int64("user_id", id), slog.String("email", s.AdminEmail))
	return true, nil
}
