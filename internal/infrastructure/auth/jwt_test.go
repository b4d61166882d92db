package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/taskstream/taskstream/internal/domain"
	domerrors "github.com/taskstream/taskstream/internal/domain/errors"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"), "taskstream", time.Hour)
	userID := domain.NewUserID(uuid.New())

	token, err := issuer.Issue(userID, "alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("userId = %v, want %v", claims.UserID, userID)
	}
	if claims.Username != "alice" {
		t.Errorf("username = %q", claims.Username)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"), "taskstream", -time.Minute)

	token, err := issuer.Issue(domain.NewUserID(uuid.New()), "alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := issuer.Verify(token); !errors.Is(err, domerrors.ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestWrongSecretRejected(t *testing.T) {
	minter := NewTokenIssuer([]byte("secret-a"), "taskstream", time.Hour)
	verifier := NewTokenIssuer([]byte("secret-b"), "taskstream", time.Hour)

	token, err := minter.Issue(domain.NewUserID(uuid.New()), "alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := verifier.Verify(token); !errors.Is(err, domerrors.ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestGarbageTokenRejected(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"), "taskstream", time.Hour)
	if _, err := issuer.Verify("not.a.token"); !errors.Is(err, domerrors.ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}
