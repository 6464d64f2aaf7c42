package domain_test

import (
	"testing"

	"github.com/aussiebroadwan/taskboard/internal/taskboard/domain"
	"github.com/stretchr/testify/require"
)

func TestPrincipalHasRole(t *testing.T) {
	var nilPrincipal *domain.Principal
	require.False(t, nilPrincipal.HasRole(domain.RoleUser))
	require.False(t, nilPrincipal.IsAdmin())

	p := &domain.Principal{Subject: "a@x.com", UserID: 1, Roles: []domain.Role{domain.RoleUser}}
	require.True(t, p.HasRole(domain.RoleUser))
	require.False(t, p.IsAdmin())
}

func TestRolesFromNames(t *testing.T) {
	roles := domain.RolesFromNames([]string{"USER", "ROOT", "ADMIN", "USER"})
	require.Equal(t, []domain.Role{domain.RoleUser, domain.RoleAdmin}, roles)
	require.Equal(t, []string{"ADMIN", "USER"}, domain.RoleNames(roles))
}

func TestTaskDefaults(t *testing.T) {
	task := domain.Task{Title: "x"}
	task.ApplyDefaults()
	require.Equal(t, domain.StatusToDo, task.Status)
	require.Equal(t, domain.PriorityMedium, task.Priority)

	require.True(t, domain.StatusInProgress.Valid())
	require.False(t, domain.TaskStatus("Done").Valid())
	require.False(t, domain.TaskPriority("urgent").Valid())
}
