package service

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/taskboard/internal/taskboard/domain"
	"github.com/aussiebroadwan/taskboard/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestTaskService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := &TaskService{Store: f.store}

	alice := principal(f.addUser(t, "alice@x.com", "Secret1!", domain.RoleUser), domain.RoleUser)
	bob := principal(f.addUser(t, "bob@x.com", "Secret1!", domain.RoleUser), domain.RoleUser)
	admin := principal(f.addUser(t, "admin@x.com", "Secret1!", domain.RoleUser, domain.RoleAdmin), domain.RoleUser, domain.RoleAdmin)

	due := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	task, err := svc.Create(ctx, alice, TaskInput{Title: "  write report ", DueDate: &due})
	require.NoError(t, err)
	require.Equal(t, "write report", task.Title)
	require.Equal(t, domain.StatusToDo, task.Status)
	require.Equal(t, domain.PriorityMedium, task.Priority)
	require.Equal(t, alice.UserID, task.OwnerID)
	require.False(t, task.CreatedAt.IsZero())

	_, err = svc.Create(ctx, bob, TaskInput{Title: "deploy", Priority: domain.PriorityHigh})
	require.NoError(t, err)

	t.Run("create validates input", func(t *testing.T) {
		_, err := svc.Create(ctx, alice, TaskInput{Title: " "})
		require.ErrorIs(t, err, ErrInvalidInput)
		_, err = svc.Create(ctx, alice, TaskInput{Title: "x", Status: "Done"})
		require.ErrorIs(t, err, ErrInvalidInput)
		_, err = svc.Create(ctx, nil, TaskInput{Title: "x"})
		require.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("get hides other owners", func(t *testing.T) {
		_, err := svc.Get(ctx, alice, task.ID)
		require.NoError(t, err)
		_, err = svc.Get(ctx, admin, task.ID)
		require.NoError(t, err)
		_, err = svc.Get(ctx, bob, task.ID)
		require.ErrorIs(t, err, ErrTaskNotFound)
		_, err = svc.Get(ctx, alice, idx.New())
		require.ErrorIs(t, err, ErrTaskNotFound)
	})

	t.Run("list scopes to the caller", func(t *testing.T) {
		page, err := svc.List(ctx, alice, TaskQuery{})
		require.NoError(t, err)
		require.Equal(t, 1, page.Total)
		require.Equal(t, DefaultPageSize, page.Size)

		page, err = svc.List(ctx, admin, TaskQuery{})
		require.NoError(t, err)
		require.Equal(t, 2, page.Total)

		page, err = svc.List(ctx, admin, TaskQuery{Priority: domain.PriorityHigh})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		require.Equal(t, "deploy", page.Items[0].Title)

		page, err = svc.List(ctx, admin, TaskQuery{Page: 1, Size: 1})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		require.Equal(t, 2, page.Total)

		page, err = svc.List(ctx, admin, TaskQuery{Size: 1000})
		require.NoError(t, err)
		require.Equal(t, MaxPageSize, page.Size)

		_, err = svc.List(ctx, admin, TaskQuery{Status: "Done"})
		require.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("update", func(t *testing.T) {
		_, err := svc.Update(ctx, bob, task.ID, TaskInput{Title: "hijack"})
		require.ErrorIs(t, err, ErrForbidden)

		_, err = svc.Update(ctx, alice, idx.New(), TaskInput{Title: "x"})
		require.ErrorIs(t, err, ErrTaskNotFound)

		got, err := svc.Update(ctx, alice, task.ID, TaskInput{Title: "final report", Status: domain.StatusInProgress})
		require.NoError(t, err)
		require.Equal(t, "final report", got.Title)
		require.Equal(t, domain.StatusInProgress, got.Status)
		require.Equal(t, domain.PriorityMedium, got.Priority)
		require.Nil(t, got.DueDate)

		got, err = svc.Update(ctx, admin, task.ID, TaskInput{Title: "reviewed", Priority: domain.PriorityLow})
		require.NoError(t, err)
		require.Equal(t, domain.StatusInProgress, got.Status)
		require.Equal(t, domain.PriorityLow, got.Priority)
	})

	t.Run("delete", func(t *testing.T) {
		require.ErrorIs(t, svc.Delete(ctx, bob, task.ID), ErrForbidden)
		require.ErrorIs(t, svc.Delete(ctx, nil, task.ID), ErrUnauthenticated)
		require.NoError(t, svc.Delete(ctx, alice, task.ID))
		require.ErrorIs(t, svc.Delete(ctx, alice, task.ID), ErrTaskNotFound)
	})
}
