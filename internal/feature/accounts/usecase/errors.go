// Package usecase implements the business logic for the accounts feature.
package usecase

import "errors"

var (
	// ErrUserNotFound is returned when a user cannot be found by ID, username or email.
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameTaken is returned when creating a user whose username already exists.
	ErrUsernameTaken = errors.New("username already exists")

	// ErrProfileNotFound is returned when a user has no profile row.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrInvalidCredentials is returned for a failed login, whatever the cause.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrInactiveUser is returned when a session or token belongs to a deactivated account.
	ErrInactiveUser = errors.New("user is not active")

	// ErrForbidden is returned when the acting user may not modify the target user.
	ErrForbidden = errors.New("access denied")

	// ErrTokenNotFound is returned when a token does not exist or has the wrong purpose.
	ErrTokenNotFound = errors.New("token not found")

	// ErrTokenExpired is returned when a token exists but its validity period is over.
	ErrTokenExpired = errors.New("token has expired")

	// ErrSessionNotFound is returned when a session cannot be found by ID.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionRevoked is returned when attempting to use a revoked session.
	ErrSessionRevoked = errors.New("session has been revoked")

	// ErrSessionExpired is returned when attempting to use an expired session.
	ErrSessionExpired = errors.New("session has expired")
)
