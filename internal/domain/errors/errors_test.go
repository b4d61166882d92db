package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	sentinels := []error{
		ErrUserNotFound,
		ErrProjectNotFound,
		ErrRoleNotFound,
		ErrTaskNotFound,
		ErrRoleAlreadyGranted,
		ErrDefaultRoleNotConfigured,
		ErrUserExists,
		ErrInvalidCredentials,
		ErrInvalidToken,
	}
	for i, err := range sentinels {
		if err == nil {
			t.Fatalf("sentinel %d is nil", i)
		}
		for j, other := range sentinels {
			if i != j && errors.Is(err, other) {
				t.Errorf("%v should not match %v", err, other)
			}
		}
	}
}

func TestWrappedSentinelMatches(t *testing.T) {
	wrapped := fmt.Errorf("resolving role %q: %w", "Admin", ErrDefaultRoleNotConfigured)
	if !errors.Is(wrapped, ErrDefaultRoleNotConfigured) {
		t.Error("wrapped error should match ErrDefaultRoleNotConfigured")
	}
}
