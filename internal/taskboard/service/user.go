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

type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// UpdateUserInput changes only the fields that are set.
type UpdateUserInput struct {
	FirstName *string
	LastName  *string
	Password  *string
}

type UserService struct {
	Store      store.Store
	Hasher     *cryptox.PasswordHasher
	Identities *IdentityResolver
	Policy     OwnershipPolicy
}

// Register creates an account holding the USER role.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	if in.Email == "" || in.FirstName == "" || in.LastName == "" {
		return domain.User{}, fmt.Errorf("%w: name and email are required", ErrInvalidInput)
	}
	if err := ValidatePassword(in.Password); err != nil {
		return domain.User{}, err
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	u := domain.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: hash,
	}
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		id, err := tx.Users().CreateUser(ctx, u)
		if err != nil {
			return err
		}
		u.ID = id
		return tx.Roles().AssignRole(ctx, id, domain.RoleUser)
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return domain.User{}, ErrEmailTaken
	}
	if err != nil {
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("user registered", slog.Int64("user_id", u.ID))
	return s.load(ctx, s.Store, u.ID)
}

// Get returns a user. Only administrators and the user themselves may look.
func (s *UserService) Get(ctx context.Context, p *domain.Principal, id int64) (domain.User, error) {
	if err := s.Policy.AuthorizeMutation(p, id); err != nil {
		return domain.User{}, err
	}
	return s.load(ctx, s.Store, id)
}

// List returns every user. Administrators only.
func (s *UserService) List(ctx context.Context, p *domain.Principal) ([]domain.User, error) {
	if err := s.Policy.RequireRole(p, domain.RoleAdmin); err != nil {
		return nil, err
	}

	users, err := s.Store.Users().ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Roles, err = s.Store.Roles().ListUserRoles(ctx, users[i].ID); err != nil {
			return nil, err
		}
	}
	return users, nil
}

// Update changes names and/or password of a user.
func (s *UserService) Update(ctx context.Context, p *domain.Principal, id int64, in UpdateUserInput) (domain.User, error) {
	if err := s.Policy.AuthorizeMutation(p, id); err != nil {
		return domain.User{}, err
	}

	var hash string
	if in.Password != nil {
		if err := ValidatePassword(*in.Password); err != nil {
			return domain.User{}, err
		}
		var err error
		if hash, err = s.Hasher.Hash(*in.Password); err != nil {
			return domain.User{}, fmt.Errorf("hash password: %w", err)
		}
	}

	var updated domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		u, err := s.load(ctx, tx, id)
		if err != nil {
			return err
		}

		if in.FirstName != nil || in.LastName != nil {
			if in.FirstName != nil {
				u.FirstName = *in.FirstName
			}
			if in.LastName != nil {
				u.LastName = *in.LastName
			}
			if err := tx.Users().UpdateUserNames(ctx, id, u.FirstName, u.LastName); err != nil {
				return err
			}
		}
		if hash != "" {
			if err := tx.Users().UpdatePasswordHash(ctx, id, hash); err != nil {
				return err
			}
		}

		updated, err = s.load(ctx, tx, id)
		return err
	})
	if err != nil {
		return domain.User{}, err
	}
	return updated, nil
}

// Delete removes a user and, through the schema, their roles and tasks.
func (s *UserService) Delete(ctx context.Context, p *domain.Principal, id int64) error {
	if err := s.Policy.AuthorizeMutation(p, id); err != nil {
		return err
	}

	var email string
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		u, err := tx.Users().GetUserByID(ctx, id)
		if err != nil {
			return mapUserErr(err)
		}
		email = u.Email
		return tx.Users().DeleteUser(ctx, id)
	})
	if err != nil {
		return err
	}

	s.Identities.Invalidate(email)
	slogx.FromContext(ctx).Info("user deleted", slog.Int64("user_id", id))
	return nil
}

// AssignAdmin grants the ADMIN role. Administrators only.
func (s *UserService) AssignAdmin(ctx context.Context, p *domain.Principal, id int64) (domain.User, error) {
	if err := s.Policy.RequireRole(p, domain.RoleAdmin); err != nil {
		return domain.User{}, err
	}

	var u domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Users().GetUserByID(ctx, id); err != nil {
			return mapUserErr(err)
		}
		if err := tx.Roles().AssignRole(ctx, id, domain.RoleAdmin); err != nil {
			return err
		}
		var err error
		u, err = s.load(ctx, tx, id)
		return err
	})
	if err != nil {
		return domain.User{}, err
	}

	s.Identities.Invalidate(u.Email)
	slogx.FromContext(ctx).Info("admin role assigned", slog.Int64("user_id", id))
	return u, nil
}

// load reads a user with roles through s, which may be a transaction.
func (s *UserService) load(ctx context.Context, st store.Store, id int64) (domain.User, error) {
	u, err := st.Users().GetUserByID(ctx, id)
	if err != nil {
		return domain.User{}, mapUserErr(err)
	}
	if u.Roles, err = st.Roles().ListUserRoles(ctx, id); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func mapUserErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}
