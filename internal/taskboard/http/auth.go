package http

import (
	"net/http"

	"github.com/aussiebroadwan/taskboard/internal/taskboard/service"
	"github.com/aussiebroadwan/taskboard/pkg/httpx"
	"github.com/aussiebroadwan/taskboard/pkg/tasksdk"
)

type AuthHandler struct {
	AuthService  *service.AuthService
	TokenService *service.TokenService
}

// HandleLogin exchanges credentials for a token pair
//
//	@Summary		Log in
//	@Description	Checks email and password and returns an access token and a refresh token.
//	@Description	Shares one admission bucket with the other credential endpoints.
//	@Tags			Authentication
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tasksdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	tasksdk.TokenPair
//	@Failure		400		{object}	tasksdk.APIError	"Malformed body"
//	@Failure		401		{object}	tasksdk.APIError	"Invalid credentials"
//	@Failure		429		{object}	tasksdk.APIError	"Rate limited"
//	@Router			/api/authenticate [post]
//	@Router			/api/users/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req tasksdk.LoginRequest
	if apiErr := bind(r, &req); apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	pair, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tasksdk.TokenPair{Token: pair.Token, RefreshToken: pair.RefreshToken})
}

// HandleRefresh issues a new access token
//
//	@Summary		Refresh an access token
//	@Description	The body is either the raw refresh token or {"refreshToken": "..."}.
//	@Tags			Authentication
//	@Accept			plain
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tasksdk.RefreshRequest	true	"Refresh token"
//	@Success		200		{object}	tasksdk.RefreshResponse
//	@Failure		401		{object}	tasksdk.APIError	"Expired, revoked or malformed refresh token"
//	@Failure		429		{object}	tasksdk.APIError	"Rate limited"
//	@Router			/api/refresh-token [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	rt := readTokenBody(r, "refreshToken")
	if rt == "" {
		tasksdk.ErrInvalidToken.WriteError(w)
		return
	}

	token, err := h.TokenService.Refresh(r.Context(), rt)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tasksdk.RefreshResponse{Token: token})
}

// HandleLogout revokes a token
//
//	@Summary		Log out
//	@Description	Revokes the token in the body (raw or {"token": "..."}) or, failing that, the bearer token.
//	@Description	Always succeeds, also for tokens that were already invalid.
//	@Tags			Authentication
//	@Accept			plain
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tasksdk.LogoutRequest	false	"Token to revoke"
//	@Success		200		{object}	object
//	@Router			/api/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	token := readTokenBody(r, "token")
	if token == "" {
		token, _ = httpx.BearerToken(r)
	}

	h.AuthService.Logout(r.Context(), token)
	httpx.WriteJSON(w, http.StatusOK, struct{}{})
}
