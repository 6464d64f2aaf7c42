package http

import (
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/taskboard/internal/taskboard/service"
	"github.com/aussiebroadwan/taskboard/pkg/httpx"
	"github.com/aussiebroadwan/taskboard/pkg/tasksdk"
)

type UsersHandler struct {
	UserService *service.UserService
}

func userID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

// HandleRegister creates an account
//
//	@Summary		Register
//	@Description	Creates an account holding the USER role. Passwords need eight characters
//	@Description	with upper and lower case letters, a digit and one of @$!%*?&.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tasksdk.RegisterRequest	true	"Account"
//	@Success		201		{object}	tasksdk.User
//	@Failure		400		{object}	tasksdk.APIError	"Validation failed"
//	@Failure		409		{object}	tasksdk.APIError	"Email already registered"
//	@Router			/api/users/register [post].
func (h *UsersHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req tasksdk.RegisterRequest
	if apiErr := bind(r, &req); apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	u, err := h.UserService.Register(r.Context(), service.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toUser(u))
}

// HandleList lists every account
//
//	@Summary		List users
//	@Tags			Users
//	@Produce		json
//	@Success		200	{array}		tasksdk.User
//	@Failure		401	{object}	tasksdk.APIError
//	@Failure		403	{object}	tasksdk.APIError	"ADMIN role required"
//	@Security		BearerAuth
//	@Router			/api/users [get].
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.UserService.List(r.Context(), PrincipalFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]tasksdk.User, len(users))
	for i, u := range users {
		out[i] = toUser(u)
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGet returns one account
//
//	@Summary		Get a user
//	@Description	Administrators may read any account, everyone else only their own.
//	@Tags			Users
//	@Produce		json
//	@Param			id	path		int	true	"User id"
//	@Success		200	{object}	tasksdk.User
//	@Failure		401	{object}	tasksdk.APIError
//	@Failure		403	{object}	tasksdk.APIError
//	@Failure		404	{object}	tasksdk.APIError
//	@Security		BearerAuth
//	@Router			/api/users/{id} [get].
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		tasksdk.ErrNotFound.WriteError(w)
		return
	}

	u, err := h.UserService.Get(r.Context(), PrincipalFrom(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUser(u))
}

// HandleUpdate changes names or password
//
//	@Summary		Update a user
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int							true	"User id"
//	@Param			request	body		tasksdk.UpdateUserRequest	true	"Fields to change"
//	@Success		200		{object}	tasksdk.User
//	@Failure		400		{object}	tasksdk.APIError
//	@Failure		401		{object}	tasksdk.APIError
//	@Failure		403		{object}	tasksdk.APIError
//	@Failure		404		{object}	tasksdk.APIError
//	@Security		BearerAuth
//	@Router			/api/users/{id} [put].
func (h *UsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		tasksdk.ErrNotFound.WriteError(w)
		return
	}

	var req tasksdk.UpdateUserRequest
	if apiErr := bind(r, &req); apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	var in service.UpdateUserInput
	if req.FirstName != "" {
		in.FirstName = &req.FirstName
	}
	if req.LastName != "" {
		in.LastName = &req.LastName
	}
	if req.Password != "" {
		in.Password = &req.Password
	}

	u, err := h.UserService.Update(r.Context(), PrincipalFrom(r.Context()), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUser(u))
}

// HandleDelete removes an account and its tasks
//
//	@Summary		Delete a user
//	@Tags			Users
//	@Param			id	path	int	true	"User id"
//	@Success		204
//	@Failure		401	{object}	tasksdk.APIError
//	@Failure		403	{object}	tasksdk.APIError
//	@Failure		404	{object}	tasksdk.APIError
//	@Security		BearerAuth
//	@Router			/api/users/{id} [delete].
func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		tasksdk.ErrNotFound.WriteError(w)
		return
	}

	if err := h.UserService.Delete(r.Context(), PrincipalFrom(r.Context()), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAssignAdmin grants the ADMIN role
//
//	@Summary		Make a user an administrator
//	@Tags			Users
//	@Produce		json
//	@Param			id	path		int	true	"User id"
//	@Success		200	{object}	tasksdk.User
//	@Failure		401	{object}	tasksdk.APIError
//	@Failure		403	{object}	tasksdk.APIError	"ADMIN role required"
//	@Failure		404	{object}	tasksdk.APIError
//	@Security		BearerAuth
//	@Router			/api/users/{id}/assign-admin [post].
func (h *UsersHandler) HandleAssignAdmin(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		tasksdk.ErrNotFound.WriteError(w)
		return
	}

	u, err := h.UserService.AssignAdmin(r.Context(), PrincipalFrom(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUser(u))
}
