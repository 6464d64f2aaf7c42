package tasksdk

import "time"

// Task status and priority values accepted by the API.
const (
	StatusToDo       = "To-Do"
	StatusInProgress = "In Progress"
	StatusComplete   = "Complete"

	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

// ============================================================================
// Authentication
// ============================================================================

// LoginRequest is the body of POST /api/authenticate and /api/users/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenPair is the login response.
type TokenPair struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// RefreshRequest is the JSON form of POST /api/refresh-token. The endpoint
// also accepts the raw token as the whole body.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// RefreshResponse carries the newly issued access token.
type RefreshResponse struct {
	Token string `json:"token"`
}

// LogoutRequest is the JSON form of POST /api/logout.
type LogoutRequest struct {
	Token string `json:"token"`
}

// ============================================================================
// Users
// ============================================================================

// RegisterRequest creates an account with the USER role.
type RegisterRequest struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,password"`
}

// UpdateUserRequest changes profile fields. Empty fields are left alone.
type UpdateUserRequest struct {
	FirstName string `json:"firstName,omitempty" validate:"omitempty,max=100"`
	LastName  string `json:"lastName,omitempty" validate:"omitempty,max=100"`
	Password  string `json:"password,omitempty" validate:"omitempty,password"`
}

// User is the public view of an account.
type User struct {
	ID        int64    `json:"id"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Email     string   `json:"email"`
	Roles     []string `json:"roles"`
}

// ============================================================================
// Tasks
// ============================================================================

// TaskRequest is the body for creating or replacing a task. Status and
// priority default to To-Do and Medium.
type TaskRequest struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description,omitempty" validate:"max=2000"`
	Status      string     `json:"status,omitempty" validate:"omitempty,status"`
	Priority    string     `json:"priority,omitempty" validate:"omitempty,priority"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

// Task is the public view of a task.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	OwnerID     int64      `json:"ownerId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// TaskPage is one page of a task listing.
type TaskPage struct {
	Items []Task `json:"items"`
	Page  int    `json:"page"`
	Size  int    `json:"size"`
	Total int    `json:"total"`
}

// ============================================================================
// Health
// ============================================================================

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the dependencies /readyz looked at.
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}
