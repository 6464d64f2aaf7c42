package domain

import (
	"time"

	"github.com/aussiebroadwan/taskboard/pkg/idx"
)

type TaskStatus string

const (
	StatusToDo       TaskStatus = "To-Do"
	StatusInProgress TaskStatus = "In Progress"
	StatusComplete   TaskStatus = "Complete"
)

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusToDo, StatusInProgress, StatusComplete:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "Low"
	PriorityMedium TaskPriority = "Medium"
	PriorityHigh   TaskPriority = "High"
)

// Valid reports whether p is a known priority.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Task struct {
	ID          idx.ID
	Title       string
	Description string
	Status      TaskStatus
	Priority    TaskPriority
	DueDate     *time.Time
	OwnerID     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ApplyDefaults fills status and priority when they are unset.
func (t *Task) ApplyDefaults() {
	if t.Status == "" {
		t.Status = StatusToDo
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
}

// TaskFilter narrows a listing. Zero values mean "any". OwnerID zero lists
// every owner, which only admins may ask for.
type TaskFilter struct {
	OwnerID  int64
	Status   TaskStatus
	Priority TaskPriority
	Limit    int
	Offset   int
}
