package service

import "errors"

var (
	// ErrRevokedToken is a genuine, unexpired token that was revoked.
	ErrRevokedToken = errors.New("revoked_token")

	// ErrIdentityNotFound means no account matches the token subject.
	ErrIdentityNotFound = errors.New("identity_not_found")

	// ErrInvalidToken is returned by Refresh. It always wraps the cause.
	ErrInvalidToken = errors.New("invalid_token")

	ErrSubjectMismatch    = errors.New("subject_mismatch")
	ErrInvalidCredentials = errors.New("invalid_credentials")

	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")

	ErrTaskNotFound = errors.New("task_not_found")
	ErrUserNotFound = errors.New("user_not_found")
	ErrEmailTaken   = errors.New("email_taken")
	ErrInvalidInput = errors.New("invalid_input")
)
