package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/aussiebroadwan/taskboard/internal/taskboard/domain"
	"github.com/aussiebroadwan/taskboard/pkg/idx"
)

type tasksRepo struct {
	db dbtx
}

const taskColumns = `id, title, description, status, priority, due_date, owner_id, created_at, updated_at`

func scanTask(row interface{ Scan(...any) error }) (domain.Task, error) {
	var (
		t        domain.Task
		status   string
		priority string
		due      sql.NullTime
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &status, &priority, &due, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return domain.Task{}, err
	}
	t.Status = domain.TaskStatus(status)
	t.Priority = domain.TaskPriority(priority)
	if due.Valid {
		d := due.Time.UTC()
		t.DueDate = &d
	}
	return t, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func (r *tasksRepo) CreateTask(ctx context.Context, t domain.Task) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, t.Description, string(t.Status), string(t.Priority), nullTime(t.DueDate), t.OwnerID, now, now,
	)
	return mapConstraint(err)
}

func (r *tasksRepo) GetTask(ctx context.Context, id idx.ID) (domain.Task, error) {
	t, err := scanTask(r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if err != nil {
		return domain.Task{}, mapNotFound(err)
	}
	return t, nil
}

func (r *tasksRepo) GetTaskOwnerID(ctx context.Context, id idx.ID) (int64, error) {
	var owner int64
	if err := r.db.QueryRowContext(ctx, `SELECT owner_id FROM tasks WHERE id = ?`, id).Scan(&owner); err != nil {
		return 0, mapNotFound(err)
	}
	return owner, nil
}

func (r *tasksRepo) TaskExists(ctx context.Context, id idx.ID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM tasks WHERE id = ?)`, id).Scan(&exists)
	return exists, err
}

// where builds the WHERE clause shared by ListTasks and CountTasks.
func where(f domain.TaskFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.OwnerID != 0 {
		conds = append(conds, "owner_id = ?")
		args = append(args, f.OwnerID)
	}
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.Priority != "" {
		conds = append(conds, "priority = ?")
		args = append(args, string(f.Priority))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *tasksRepo) ListTasks(ctx context.Context, f domain.TaskFilter) ([]domain.Task, error) {
	clause, args := where(f)
	query := `SELECT ` + taskColumns + ` FROM tasks` + clause + ` ORDER BY id`
	if f.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, max(f.Offset, 0))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *tasksRepo) CountTasks(ctx context.Context, f domain.TaskFilter) (int, error) {
	clause, args := where(f)
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM tasks`+clause, args...).Scan(&n)
	return n, err
}

func (r *tasksRepo) UpdateTask(ctx context.Context, t domain.Task) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, status = ?, priority = ?, due_date = ?, updated_at = ?
		 WHERE id = ?`,
		t.Title, t.Description, string(t.Status), string(t.Priority), nullTime(t.DueDate), time.Now().UTC(), t.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *tasksRepo) DeleteTask(ctx context.Context, id idx.ID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
