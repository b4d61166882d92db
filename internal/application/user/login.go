package user

import (
	"context"

	"github.com/taskstream/taskstream/internal/application/ports"
	"github.com/taskstream/taskstream/internal/domain"
	domerrors "github.com/taskstream/taskstream/internal/domain/errors"
)

// LoginInput carries credentials to verify.
type LoginInput struct {
	Username string
	Password string
}

// LoginResult returns the authenticated user and a signed access token.
type LoginResult struct {
	User  *domain.User
	Token string
}

// Login verifies credentials and issues an access token. The token doubles
// as the realtime handshake credential.
type Login struct {
	store  ports.Store
	hasher ports.PasswordHasher
	issuer ports.TokenIssuer
}

func NewLogin(store ports.Store, hasher ports.PasswordHasher, issuer ports.TokenIssuer) *Login {
	return &Login{store: store, hasher: hasher, issuer: issuer}
}

func (uc *Login) Execute(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := uc.store.GetUserByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if user == nil || !uc.hasher.Verify(input.Password, user.PasswordHash) {
		return nil, domerrors.ErrInvalidCredentials
	}
	token, err := uc.issuer.Issue(user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, Token: token}, nil
}
