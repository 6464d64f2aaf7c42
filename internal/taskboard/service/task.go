package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/taskboard/internal/taskboard/domain"
	"github.com/aussiebroadwan/taskboard/internal/taskboard/store"
	"github.com/aussiebroadwan/taskboard/pkg/idx"
	"github.com/aussiebroadwan/taskboard/pkg/slogx"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type TaskInput struct {
	Title       string
	Description string
	Status      domain.TaskStatus
	Priority    domain.TaskPriority
	DueDate     *time.Time
}

func (in *TaskInput) validate() error {
	in.Title = strings.TrimSpace(in.Title)
	switch {
	case in.Title == "":
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	case in.Status != "" && !in.Status.Valid():
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, in.Status)
	case in.Priority != "" && !in.Priority.Valid():
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, in.Priority)
	}
	return nil
}

// TaskQuery selects a page of tasks. Page is zero based.
type TaskQuery struct {
	Status   domain.TaskStatus
	Priority domain.TaskPriority
	Page     int
	Size     int
}

type TaskPage struct {
	Items []domain.Task
	Page  int
	Size  int
	Total int
}

// TaskService manages tasks. Everyone sees and changes only their own
// tasks, administrators every task.
type TaskService struct {
	Store  store.Store
	Policy OwnershipPolicy
}

// Create stores a new task owned by p.
func (s *TaskService) Create(ctx context.Context, p *domain.Principal, in TaskInput) (domain.Task, error) {
	if p == nil {
		return domain.Task{}, ErrUnauthenticated
	}
	if err := in.validate(); err != nil {
		return domain.Task{}, err
	}

	t := domain.Task{
		ID:          idx.New(),
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		OwnerID:     p.UserID,
	}
	t.ApplyDefaults()

	if err := s.Store.Tasks().CreateTask(ctx, t); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Task{}, ErrUserNotFound
		}
		return domain.Task{}, err
	}

	slogx.FromContext(ctx).Info("task created", slog.String("task_id", t.ID.String()), slog.Int64("owner_id", t.OwnerID))
	return s.get(ctx, s.Store, t.ID)
}

// Get returns a task p may see. Tasks owned by someone else are reported
// as missing.
func (s *TaskService) Get(ctx context.Context, p *domain.Principal, id idx.ID) (domain.Task, error) {
	if p == nil {
		return domain.Task{}, ErrUnauthenticated
	}
	t, err := s.get(ctx, s.Store, id)
	if err != nil {
		return domain.Task{}, err
	}
	if !s.Policy.CanMutate(p, t.OwnerID) {
		return domain.Task{}, ErrTaskNotFound
	}
	return t, nil
}

// List returns one page of the tasks p may see.
func (s *TaskService) List(ctx context.Context, p *domain.Principal, q TaskQuery) (TaskPage, error) {
	if p == nil {
		return TaskPage{}, ErrUnauthenticated
	}
	if q.Status != "" && !q.Status.Valid() {
		return TaskPage{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, q.Status)
	}
	if q.Priority != "" && !q.Priority.Valid() {
		return TaskPage{}, fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, q.Priority)
	}

	q.Page = max(q.Page, 0)
	if q.Size <= 0 {
		q.Size = DefaultPageSize
	}
	q.Size = min(q.Size, MaxPageSize)

	f := domain.TaskFilter{Status: q.Status, Priority: q.Priority}
	if !p.IsAdmin() {
		f.OwnerID = p.UserID
	}

	total, err := s.Store.Tasks().CountTasks(ctx, f)
	if err != nil {
		return TaskPage{}, err
	}

	f.Limit, f.Offset = q.Size, q.Page*q.Size
	items, err := s.Store.Tasks().ListTasks(ctx, f)
	if err != nil {
		return TaskPage{}, err
	}
	return TaskPage{Items: items, Page: q.Page, Size: q.Size, Total: total}, nil
}

// Update replaces a task's fields. Status and priority are kept when
// left empty. The ownership check and the write share one transaction.
func (s *TaskService) Update(ctx context.Context, p *domain.Principal, id idx.ID, in TaskInput) (domain.Task, error) {
	if p == nil {
		return domain.Task{}, ErrUnauthenticated
	}
	if err := in.validate(); err != nil {
		return domain.Task{}, err
	}

	var updated domain.Task
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		t, err := s.get(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := s.Policy.AuthorizeMutation(p, t.OwnerID); err != nil {
			return err
		}

		t.Title = in.Title
		t.Description = in.Description
		t.DueDate = in.DueDate
		if in.Status != "" {
			t.Status = in.Status
		}
		if in.Priority != "" {
			t.Priority = in.Priority
		}
		if err := tx.Tasks().UpdateTask(ctx, t); err != nil {
			return err
		}

		updated, err = s.get(ctx, tx, id)
		return err
	})
	if err != nil {
		return domain.Task{}, err
	}
	return updated, nil
}

// Delete removes a task after checking ownership in the same transaction.
func (s *TaskService) Delete(ctx context.Context, p *domain.Principal, id idx.ID) error {
	if p == nil {
		return ErrUnauthenticated
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		ok, err := tx.Tasks().TaskExists(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return ErrTaskNotFound
		}

		owner, err := tx.Tasks().GetTaskOwnerID(ctx, id)
		if err != nil {
			return mapTaskErr(err)
		}
		if err := s.Policy.AuthorizeMutation(p, owner); err != nil {
			return err
		}
		return mapTaskErr(tx.Tasks().DeleteTask(ctx, id))
	})
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("task deleted", slog.String("task_id", id.String()))
	return nil
}

func (s *TaskService) get(ctx context.Context, st store.Store, id idx.ID) (domain.Task, error) {
	t, err := st.Tasks().GetTask(ctx, id)
	if err != nil {
		return domain.Task{}, mapTaskErr(err)
	}
	return t, nil
}

func mapTaskErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrTaskNotFound
	}
	return err
}
