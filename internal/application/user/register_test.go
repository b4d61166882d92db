package user

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/taskstream/taskstream/internal/application/apptest"
	"github.com/taskstream/taskstream/internal/application/ports"
	"github.com/taskstream/taskstream/internal/domain"
	domerrors "github.com/taskstream/taskstream/internal/domain/errors"
	"github.com/taskstream/taskstream/internal/domain/events"
)

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "h:" + password, nil }
func (plainHasher) Verify(password, encoded string) bool { return "h:"+password == encoded }

func TestRegisterEmitsCreateDefaultProject(t *testing.T) {
	store := apptest.NewFakeStore()
	spy := &apptest.SpyPublisher{}
	uc := NewRegister(store, plainHasher{}, spy, zerolog.Nop())

	res, err := uc.Execute(context.Background(), RegisterInput{Username: "carol", Password: "s3cret-pw"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if spy.Count() != 1 {
		t.Fatalf("publish count = %d, want 1", spy.Count())
	}
	env := spy.Events[0].Envelope
	if env.Action != events.ActionCreateDefaultProject {
		t.Errorf("action = %q", env.Action)
	}
	var p events.CreateDefaultProjectPayload
	if err := env.DecodePayload(&p); err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	if p.UserID != res.User.ID.String() {
		t.Errorf("payload userId = %q", p.UserID)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	store := apptest.NewFakeStore()
	store.AddUser(&domain.User{ID: domain.NewUserID(uuid.New()), Username: "carol"})
	spy := &apptest.SpyPublisher{}
	uc := NewRegister(store, plainHasher{}, spy, zerolog.Nop())

	_, err := uc.Execute(context.Background(), RegisterInput{Username: "carol", Password: "pw"})
	if !errors.Is(err, domerrors.ErrUserExists) {
		t.Fatalf("err = %v, want ErrUserExists", err)
	}
	if spy.Count() != 0 {
		t.Error("publisher invoked for failed registration")
	}
}

// A publish failure is swallowed: the registration has committed and stands.
func TestRegisterSurvivesPublishFailure(t *testing.T) {
	store := apptest.NewFakeStore()
	spy := &apptest.SpyPublisher{Err: errors.New("broker down")}
	uc := NewRegister(store, plainHasher{}, spy, zerolog.Nop())

	res, err := uc.Execute(context.Background(), RegisterInput{Username: "dave", Password: "s3cret-pw"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got, _ := store.GetUserByUsername(context.Background(), "dave"); got == nil || got.ID != res.User.ID {
		t.Error("user should be persisted despite publish failure")
	}
}

func TestLogin(t *testing.T) {
	store := apptest.NewFakeStore()
	spy := &apptest.SpyPublisher{}
	reg := NewRegister(store, plainHasher{}, spy, zerolog.Nop())
	if _, err := reg.Execute(context.Background(), RegisterInput{Username: "erin", Password: "correct-horse"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	uc := NewLogin(store, plainHasher{}, staticIssuer{})
	res, err := uc.Execute(context.Background(), LoginInput{Username: "erin", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Token == "" {
		t.Error("expected a token")
	}

	if _, err := uc.Execute(context.Background(), LoginInput{Username: "erin", Password: "wrong"}); !errors.Is(err, domerrors.ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := uc.Execute(context.Background(), LoginInput{Username: "nobody", Password: "x"}); !errors.Is(err, domerrors.ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}

type staticIssuer struct{}

func (staticIssuer) Issue(userID domain.UserID, username string) (string, error) {
	return "token-for-" + username, nil
}

func (staticIssuer) Verify(token string) (*ports.TokenClaims, error) {
	return nil, domerrors.ErrInvalidToken
}
