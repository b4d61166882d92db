package handlers

import "strings"

// Validation limits.
const (
	MaxUsernameLength = 32
	MaxPasswordLength = 128
	MaxNameLength     = 255
	MaxDescription    = 2000
)

// SanitizeUsername trims whitespace; returns empty if over max length.
func SanitizeUsername(username string) string {
	s := strings.TrimSpace(username)
	if len(s) > MaxUsernameLength {
		return ""
	}
	return s
}

// SanitizePassword trims password; returns empty if over max length.
func SanitizePassword(password string) string {
	s := strings.TrimSpace(password)
	if len(s) > MaxPasswordLength {
		return ""
	}
	return s
}

// SanitizeName trims a project or task name; returns empty if over max length.
func SanitizeName(name string) string {
	s := strings.TrimSpace(name)
	if len(s) > MaxNameLength {
		return ""
	}
	return s
}
