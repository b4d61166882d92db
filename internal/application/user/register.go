package user

import (
	"context"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/taskstream/taskstream/internal/application/ports"
	"github.com/taskstream/taskstream/internal/domain"
	domerrors "github.com/taskstream/taskstream/internal/domain/errors"
	"github.com/taskstream/taskstream/internal/domain/events"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,32}$`)

// RegisterInput carries the credentials of a new user.
type RegisterInput struct {
	Username string
	Password string
}

// RegisterResult returns the persisted user.
type RegisterResult struct {
	User *domain.User
}

// Register creates a user and emits CREATE_DEFAULT_PROJECT so the project
// service bootstraps a starter board. The emission is best effort: the
// registration has already committed and a publish failure must not undo it.
type Register struct {
	store  ports.Store
	hasher ports.PasswordHasher
	events ports.EventPublisher
	log    zerolog.Logger
}

func NewRegister(store ports.Store, hasher ports.PasswordHasher, publisher ports.EventPublisher, log zerolog.Logger) *Register {
	return &Register{store: store, hasher: hasher, events: publisher, log: log}
}

func (uc *Register) Execute(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	if !usernameRegex.MatchString(input.Username) {
		return nil, domerrors.ErrInvalidCredentials
	}
	existing, err := uc.store.GetUserByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domerrors.ErrUserExists
	}

	hash, err := uc.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	user := &domain.User{
		ID:           domain.NewUserID(uuid.New()),
		Username:     input.Username,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	env, err := events.NewEnvelope(events.ActionCreateDefaultProject, events.CreateDefaultProjectPayload{
		UserID: user.ID.String(),
	})
	if err != nil {
		uc.log.Error().Err(err).Msg("build CREATE_DEFAULT_PROJECT envelope")
		return &RegisterResult{User: user}, nil
	}
	if err := uc.events.Publish(ctx, events.QueueProject, env); err != nil {
		uc.log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("publish CREATE_DEFAULT_PROJECT failed")
	}
	return &RegisterResult{User: user}, nil
}
