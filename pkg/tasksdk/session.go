package tasksdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
)

// Session is an authenticated view of the API. When a call comes back 401
// it refreshes the access token once and retries.
type Session struct {
	client *Client

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

// NewSession builds a session from existing tokens.
func (c *Client) NewSession(accessToken, refreshToken string) *Session {
	return &Session{client: c, accessToken: accessToken, refreshToken: refreshToken}
}

// AccessToken returns the current access token.
func (s *Session) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken
}

// Logout revokes both tokens held by the session.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	access, refresh := s.accessToken, s.refreshToken
	s.mu.Unlock()

	return errors.Join(
		s.client.Logout(ctx, access),
		s.client.Logout(ctx, refresh),
	)
}

func (s *Session) refresh(ctx context.Context) error {
	s.mu.Lock()
	rt := s.refreshToken
	s.mu.Unlock()

	if rt == "" {
		return ErrUnauthorized
	}
	token, err := s.client.Refresh(ctx, rt)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.accessToken = token
	s.mu.Unlock()
	return nil
}

// doAuthRequest sends an authenticated request, refreshing once on 401.
func (s *Session) doAuthRequest(ctx context.Context, method, path string, payload any) (*http.Response, error) {
	var raw []byte
	if payload != nil {
		var err error
		if raw, err = json.Marshal(payload); err != nil {
			return nil, err
		}
	}

	send := func() (*http.Response, error) {
		var body io.Reader
		if raw != nil {
			body = bytes.NewReader(raw)
		}
		req, err := http.NewRequestWithContext(ctx, method, s.client.url(path), body)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+s.AccessToken())
		if raw != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := s.client.HTTPClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to send request: %w", err)
		}
		return resp, nil
	}

	resp, err := send()
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}
	_ = resp.Body.Close()

	if err := s.refresh(ctx); err != nil {
		return nil, err
	}
	return send()
}

// CreateTask creates a task owned by the session user.
func (s *Session) CreateTask(ctx context.Context, req TaskRequest) (*Task, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/api/tasks", req)
	if err != nil {
		return nil, err
	}

	var t Task
	if err := decodeJSON(resp, &t, http.StatusCreated); err != nil {
		return nil, err
	}
	return &t, nil
}

// GetTask fetches one task.
func (s *Session) GetTask(ctx context.Context, id string) (*Task, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/api/tasks/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	var t Task
	if err := decodeJSON(resp, &t, http.StatusOK); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTasks returns one page of visible tasks. page starts at 0.
func (s *Session) ListTasks(ctx context.Context, page, size int) (*TaskPage, error) {
	q := url.Values{"page": {strconv.Itoa(page)}, "size": {strconv.Itoa(size)}}
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/api/tasks?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var p TaskPage
	if err := decodeJSON(resp, &p, http.StatusOK); err != nil {
		return nil, err
	}
	return &p, nil
}

// FilterTasks lists tasks by status and/or priority. Empty means any.
func (s *Session) FilterTasks(ctx context.Context, status, priority string) ([]Task, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	if priority != "" {
		q.Set("priority", priority)
	}
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/api/tasks/filter?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var tasks []Task
	if err := decodeJSON(resp, &tasks, http.StatusOK); err != nil {
		return nil, err
	}
	return tasks, nil
}

// UpdateTask replaces a task.
func (s *Session) UpdateTask(ctx context.Context, id string, req TaskRequest) (*Task, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPut, "/api/tasks/"+url.PathEscape(id), req)
	if err != nil {
		return nil, err
	}

	var t Task
	if err := decodeJSON(resp, &t, http.StatusOK); err != nil {
		return nil, err
	}
	return &t, nil
}

// DeleteTask deletes a task.
func (s *Session) DeleteTask(ctx context.Context, id string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	return checkStatus(resp, http.StatusNoContent)
}

// GetUser fetches an account. Callers may read themselves, admins anyone.
func (s *Session) GetUser(ctx context.Context, id int64) (*User, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/api/users/"+strconv.FormatInt(id, 10), nil)
	if err != nil {
		return nil, err
	}

	var u User
	if err := decodeJSON(resp, &u, http.StatusOK); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListUsers lists every account. Admin only.
func (s *Session) ListUsers(ctx context.Context) ([]User, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/api/users", nil)
	if err != nil {
		return nil, err
	}

	var users []User
	if err := decodeJSON(resp, &users, http.StatusOK); err != nil {
		return nil, err
	}
	return users, nil
}

// AssignAdmin grants ADMIN to an account. Admin only.
func (s *Session) AssignAdmin(ctx context.Context, id int64) (*User, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/api/users/"+strconv.FormatInt(id, 10)+"/assign-admin", nil)
	if err != nil {
		return nil, err
	}

	var u User
	if err := decodeJSON(resp, &u, http.StatusOK); err != nil {
		return nil, err
	}
	return &u, nil
}
