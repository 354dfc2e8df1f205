// Package auth implements the opaque credential scheme.  A token is a
// random hex string with no encoded content; possession of a string that
// matches a live database row is the entire proof of identity.  Tokens are
// validated by lookup, never by parsing.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/melodix/melodix-backend/internal/model"
)

var (
	// ErrNoToken means the request carried no credential at all.
	ErrNoToken = errors.New("auth: no token presented")
	// ErrInvalidToken means the presented string matches no known
	// credential.  Callers must not distinguish a malformed token from a
	// revoked one.
	ErrInvalidToken = errors.New("auth: invalid token")
	// ErrExpiredToken means the credential was recognized but has expired
	// and could not be renewed.
	ErrExpiredToken = errors.New("auth: token expired")
)

// Pair is a freshly issued auth/refresh token couple together with the
// expiry instants stored alongside them.
type Pair struct {
	AuthToken        string
	AuthExpiresAt    time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// Identity is the outcome of a successful authentication.  Refreshed is
// non-nil when the presented token had expired and a replacement pair was
// issued during the same request; middleware surfaces it to the client via
// response headers.
type Identity struct {
	UserID    uint64
	Role      string
	Refreshed *Pair
}

// Authenticator resolves a presented token string to an identity.  The two
// implementations below intentionally stay separate: token resolution may
// renew credentials as a side effect, session resolution never does.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*Identity, error)
}

// CredentialStore is the persistence surface the token strategy needs.
// The SQL implementation lives in the repository package; tests supply an
// in-memory one.
type CredentialStore interface {
	// FindByValidAuthToken returns the user whose auth_token equals token
	// and has not expired, or ErrInvalidToken.
	FindByValidAuthToken(ctx context.Context, token string) (*model.User, error)
	// FindByAnyToken returns the user whose auth_token or refresh_token
	// equals token regardless of expiry, or ErrInvalidToken.
	FindByAnyToken(ctx context.Context, token string) (*model.User, error)
	// SaveTokens persists a freshly issued pair on the user row.
	SaveTokens(ctx context.Context, userID uint64, p Pair) error
	// ClearTokens nulls all four token columns on the user row.
	ClearTokens(ctx context.Context, userID uint64) error
}

// SessionStore resolves device session tokens.
type SessionStore interface {
	// FindUserBySession returns the owner of a live session row, or
	// ErrInvalidToken when the token is unknown or the row has expired.
	FindUserBySession(ctx context.Context, token string) (*model.User, error)
}
