package sqlite

import (
	"context"

	"github.com/aussiebroadwan/taskboard/internal/taskboard/domain"
)

type rolesRepo struct {
	db dbtx
}

func (r *rolesRepo) ListUserRoles(ctx context.Context, userID int64) ([]domain.Role, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT role FROM user_roles WHERE user_id = ? ORDER BY role`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Role
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		out = append(out, domain.Role(role))
	}
	return out, rows.Err()
}

func (r *rolesRepo) AssignRole(ctx context.Context, userID int64, role domain.Role) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_roles (user_id, role) VALUES (?, ?) ON CONFLICT DO NOTHING`,
		userID, string(role),
	)
	return mapConstraint(err)
}
