package http

import (
	"github.com/aussiebroadwan/taskboard/internal/taskboard/domain"
	"github.com/aussiebroadwan/taskboard/internal/taskboard/service"
	"github.com/aussiebroadwan/taskboard/pkg/tasksdk"
)

func toUser(u domain.User) tasksdk.User {
	return tasksdk.User{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Roles:     domain.RoleNames(u.Roles),
	}
}

func toTask(t domain.Task) tasksdk.Task {
	return tasksdk.Task{
		ID:          t.ID.String(),
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		OwnerID:     t.OwnerID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toTasks(ts []domain.Task) []tasksdk.Task {
	out := make([]tasksdk.Task, len(ts))
	for i, t := range ts {
		out[i] = toTask(t)
	}
	return out
}

func toTaskInput(req tasksdk.TaskRequest) service.TaskInput {
	return service.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.TaskStatus(req.Status),
		Priority:    domain.TaskPriority(req.Priority),
		DueDate:     req.DueDate,
	}
}
