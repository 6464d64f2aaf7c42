package http

import (
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/taskboard/internal/taskboard/domain"
	"github.com/aussiebroadwan/taskboard/internal/taskboard/service"
	"github.com/aussiebroadwan/taskboard/pkg/httpx"
	"github.com/aussiebroadwan/taskboard/pkg/idx"
	"github.com/aussiebroadwan/taskboard/pkg/tasksdk"
)

const welcomeText = "Welcome to the Task Management Tool!"

type TasksHandler struct {
	TaskService *service.TaskService
}

func taskID(r *http.Request) (idx.ID, bool) {
	id, err := idx.Parse(r.PathValue("id"))
	return id, err == nil
}

// queryInt reads a non-negative integer query parameter, def when absent.
func queryInt(r *http.Request, name string, def int) (int, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	return n, err == nil && n >= 0
}

// HandleHome godoc
//
//	@Summary	Welcome message
//	@Tags		Tasks
//	@Produce	plain
//	@Success	200	{string}	string
//	@Router		/api/tasks/home [get].
func (h *TasksHandler) HandleHome(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(welcomeText))
}

// HandleCreate adds a task owned by the caller
//
//	@Summary		Create a task
//	@Tags			Tasks
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tasksdk.TaskRequest	true	"Task"
//	@Success		201		{object}	tasksdk.Task
//	@Failure		400		{object}	tasksdk.APIError
//	@Failure		401		{object}	tasksdk.APIError
//	@Security		BearerAuth
//	@Router			/api/tasks [post].
func (h *TasksHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req tasksdk.TaskRequest
	if apiErr := bind(r, &req); apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	t, err := h.TaskService.Create(r.Context(), PrincipalFrom(r.Context()), toTaskInput(req))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toTask(t))
}

// HandleList pages through the visible tasks
//
//	@Summary		List tasks
//	@Description	Administrators see every task, everyone else their own.
//	@Tags			Tasks
//	@Produce		json
//	@Param			page	query		int	false	"Zero based page"	default(0)
//	@Param			size	query		int	false	"Page size"			default(20)
//	@Success		200		{object}	tasksdk.TaskPage
//	@Failure		400		{object}	tasksdk.APIError
//	@Failure		401		{object}	tasksdk.APIError
//	@Security		BearerAuth
//	@Router			/api/tasks [get].
func (h *TasksHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	page, ok := queryInt(r, "page", 0)
	if !ok {
		tasksdk.NewAPIError(http.StatusBadRequest, tasksdk.ErrorCodeInvalidRequest, "page must be a non-negative integer").WriteError(w)
		return
	}
	size, ok := queryInt(r, "size", service.DefaultPageSize)
	if !ok {
		tasksdk.NewAPIError(http.StatusBadRequest, tasksdk.ErrorCodeInvalidRequest, "size must be a non-negative integer").WriteError(w)
		return
	}

	res, err := h.TaskService.List(r.Context(), PrincipalFrom(r.Context()), service.TaskQuery{Page: page, Size: size})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tasksdk.TaskPage{
		Items: toTasks(res.Items),
		Page:  res.Page,
		Size:  res.Size,
		Total: res.Total,
	})
}

// HandleFilter lists visible tasks by status and priority
//
//	@Summary		Filter tasks
//	@Tags			Tasks
//	@Produce		json
//	@Param			status		query		string	false	"To-Do, In Progress or Complete"
//	@Param			priority	query		string	false	"Low, Medium or High"
//	@Success		200			{array}		tasksdk.Task
//	@Failure		400			{object}	tasksdk.APIError
//	@Failure		401			{object}	tasksdk.APIError
//	@Security		BearerAuth
//	@Router			/api/tasks/filter [get].
func (h *TasksHandler) HandleFilter(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := h.TaskService.List(r.Context(), PrincipalFrom(r.Context()), service.TaskQuery{
		Status:   domain.TaskStatus(q.Get("status")),
		Priority: domain.TaskPriority(q.Get("priority")),
		Size:     service.MaxPageSize,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toTasks(res.Items))
}

// HandleGet returns one task
//
//	@Summary		Get a task
//	@Description	Tasks owned by someone else are reported as missing unless the caller is an administrator.
//	@Tags			Tasks
//	@Produce		json
//	@Param			id	path		string	true	"Task id (ULID)"
//	@Success		200	{object}	tasksdk.Task
//	@Failure		401	{object}	tasksdk.APIError
//	@Failure		404	{object}	tasksdk.APIError
//	@Security		BearerAuth
//	@Router			/api/tasks/{id} [get].
func (h *TasksHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(r)
	if !ok {
		tasksdk.ErrNotFound.WriteError(w)
		return
	}

	t, err := h.TaskService.Get(r.Context(), PrincipalFrom(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toTask(t))
}

// HandleUpdate replaces a task
//
//	@Summary		Update a task
//	@Description	Owner or administrator only. Empty status and priority keep their current values.
//	@Tags			Tasks
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Task id (ULID)"
//	@Param			request	body		tasksdk.TaskRequest	true	"Task"
//	@Success		200		{object}	tasksdk.Task
//	@Failure		400		{object}	tasksdk.APIError
//	@Failure		401		{object}	tasksdk.APIError
//	@Failure		403		{object}	tasksdk.APIError
//	@Failure		404		{object}	tasksdk.APIError
//	@Security		BearerAuth
//	@Router			/api/tasks/{id} [put].
func (h *TasksHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(r)
	if !ok {
		tasksdk.ErrNotFound.WriteError(w)
		return
	}

	var req tasksdk.TaskRequest
	if apiErr := bind(r, &req); apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	t, err := h.TaskService.Update(r.Context(), PrincipalFrom(r.Context()), id, toTaskInput(req))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toTask(t))
}

// HandleDelete removes a task
//
//	@Summary	Delete a task
//	@Tags		Tasks
//	@Param		id	path	string	true	"Task id (ULID)"
//	@Success	204
//	@Failure	401	{object}	tasksdk.APIError
//	@Failure	403	{object}	tasksdk.APIError
//	@Failure	404	{object}	tasksdk.APIError
//	@Security	BearerAuth
//	@Router		/api/tasks/{id} [delete].
func (h *TasksHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(r)
	if !ok {
		tasksdk.ErrNotFound.WriteError(w)
		return
	}

	if err := h.TaskService.Delete(r.Context(), PrincipalFrom(r.Context()), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
