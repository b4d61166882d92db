package errors

import "errors"

// Sentinel errors for handlers to map to HTTP status.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrProjectNotFound = errors.New("project not found")
	ErrRoleNotFound    = errors.New("role not found")
	ErrTaskNotFound    = errors.New("task not found")

	// ErrRoleAlreadyGranted means the (user, project) pair already holds a grant.
	ErrRoleAlreadyGranted = errors.New("user already has a role on this project")

	// ErrDefaultRoleNotConfigured means DEFAULT_PROJECT_ROLE is unset or names
	// a role that does not exist.
	ErrDefaultRoleNotConfigured = errors.New("default project role not configured")

	ErrUserExists         = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)
