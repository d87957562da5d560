package auth

import "errors"

// ErrInvalidToken is returned for any token that is malformed, expired, not
// yet valid, unsigned or signed with another key.
var ErrInvalidToken = errors.New("invalid token")

// Authenticator issues and verifies bearer tokens that carry a single user
// identity and nothing else. Verification is stateless: it does not check
// that the user still exists.
type Authenticator interface {
	GenerateToken(userID int64) (string, error)
	VerifyToken(token string) (int64, error)
}
