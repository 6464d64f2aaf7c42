package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/taskboard/internal/taskboard/domain"
	"github.com/aussiebroadwan/taskboard/pkg/idx"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers implement it
// and expose sub-repositories so a transaction scoped Store offers the same
// surface as the root one.
type Store interface {
	Users() Users
	Roles() Roles
	Tasks() Tasks
	RevokedTokens() RevokedTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. Lookups and
	// the writes that depend on them belong in the same WithTx call.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id. Roles are not populated.
	GetUserByID(ctx context.Context, id int64) (domain.User, error)

	// GetUserByEmail looks up the account a token subject names. Matching
	// is case-insensitive.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// ListUsers returns every user ordered by id.
	ListUsers(ctx context.Context) ([]domain.User, error)

	// CreateUser inserts a user and returns the assigned id. A duplicate
	// email yields ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) (int64, error)

	// UpdateUserNames sets first and last name and bumps updated_at.
	UpdateUserNames(ctx context.Context, id int64, firstName, lastName string) error

	// UpdatePasswordHash sets the password_hash (argon2) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error

	// DeleteUser cascades to roles and tasks (per schema).
	DeleteUser(ctx context.Context, id int64) error

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}

type Roles interface {
	// ListUserRoles returns the roles granted to a user, sorted by name.
	ListUserRoles(ctx context.Context, userID int64) ([]domain.Role, error)

	// AssignRole grants role. Granting a held role is a no-op.
	AssignRole(ctx context.Context, userID int64, role domain.Role) error
}

type Tasks interface {
	// CreateTask inserts a task (id is ULID, provided by the caller).
	CreateTask(ctx context.Context, t domain.Task) error

	// GetTask returns a task by id.
	GetTask(ctx context.Context, id idx.ID) (domain.Task, error)

	// GetTaskOwnerID returns only the owner of a task.
	GetTaskOwnerID(ctx context.Context, id idx.ID) (int64, error)

	// TaskExists reports whether a task with id exists.
	TaskExists(ctx context.Context, id idx.ID) (bool, error)

	// ListTasks returns tasks matching f ordered by id (creation order).
	ListTasks(ctx context.Context, f domain.TaskFilter) ([]domain.Task, error)

	// CountTasks counts tasks matching f, ignoring Limit and Offset.
	CountTasks(ctx context.Context, f domain.TaskFilter) (int, error)

	// UpdateTask replaces the mutable fields of a task and bumps updated_at.
	UpdateTask(ctx context.Context, t domain.Task) error

	// DeleteTask removes a task.
	DeleteTask(ctx context.Context, id idx.ID) error
}

type RevokedTokens interface {
	// RevokeToken records a fingerprint. Revoking twice keeps the later
	// expiry.
	RevokeToken(ctx context.Context, t domain.RevokedToken) error

	// IsTokenRevoked reports whether a fingerprint is recorded.
	IsTokenRevoked(ctx context.Context, fingerprint string) (bool, error)

	// DeleteExpiredRevokedTokens removes records that expired before
	// cutoff and returns how many were removed.
	DeleteExpiredRevokedTokens(ctx context.Context, cutoff time.Time) (int64, error)
}
