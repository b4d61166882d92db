package ports

import "github.com/taskstream/taskstream/internal/domain"

// PasswordHasher hashes and verifies user passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) bool
}

// TokenClaims is the identity carried by an access token.
type TokenClaims struct {
	UserID   domain.UserID
	Username string
}

// TokenIssuer signs and verifies access tokens. The same shared-secret
// tokens authenticate REST calls and realtime handshakes.
type TokenIssuer interface {
	Issue(userID domain.UserID, username string) (string, error)
	Verify(token string) (*TokenClaims, error)
}
