package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/taskboard/internal/taskboard/service"
	"github.com/aussiebroadwan/taskboard/pkg/httpx"
	"github.com/aussiebroadwan/taskboard/pkg/slogx"
	"github.com/aussiebroadwan/taskboard/pkg/tasksdk"
)

var errEmailTaken = tasksdk.NewAPIError(http.StatusConflict, tasksdk.ErrorCodeConflict, "email is already registered")

// writeError maps a service error onto the API error envelope. Anything
// unexpected is logged and becomes a 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		tasksdk.ErrInvalidCredentials.WriteError(w)
	case errors.Is(err, service.ErrInvalidToken):
		tasksdk.ErrInvalidToken.WriteError(w)
	case errors.Is(err, service.ErrUnauthenticated):
		writeUnauthorized(w, r)
	case errors.Is(err, service.ErrForbidden):
		tasksdk.ErrAccessDenied.WriteError(w)
	case errors.Is(err, service.ErrTaskNotFound), errors.Is(err, service.ErrUserNotFound):
		tasksdk.ErrNotFound.WriteError(w)
	case errors.Is(err, service.ErrEmailTaken):
		errEmailTaken.WriteError(w)
	case errors.Is(err, service.ErrInvalidInput):
		tasksdk.NewAPIError(http.StatusBadRequest, tasksdk.ErrorCodeInvalidRequest, err.Error()).WriteError(w)
	case errors.Is(err, httpx.ErrRateLimited):
		tasksdk.ErrRateLimited.WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		tasksdk.ErrServerError.WriteError(w)
	}
}
