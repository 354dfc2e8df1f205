package auth

import (
	"context"
	"time"

	"github.com/melodix/melodix-backend/internal/utils"
)

// tokenBytes is the entropy of every issued token: 32 random bytes,
// hex-encoded to a 64 character string.
const tokenBytes = 32

// Issuer mints opaque token pairs and persists them through a
// CredentialStore.  Now is overridable so tests can pin the clock.
type Issuer struct {
	Store      CredentialStore
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Now        func() time.Time
}

// NewIssuer builds an Issuer with the conventional lifetimes: access
// tokens live for accessHours hours, refresh tokens for refreshDays days.
func NewIssuer(store CredentialStore, accessHours, refreshDays int) *Issuer {
	return &Issuer{
		Store:      store,
		AccessTTL:  time.Duration(accessHours) * time.Hour,
		RefreshTTL: time.Duration(refreshDays) * 24 * time.Hour,
		Now:        func() time.Time { return time.Now().UTC() },
	}
}

// NewPair generates a fresh pair without persisting it.
func (i *Issuer) NewPair() (Pair, error) {
	at, err := utils.RandomHex(tokenBytes)
	if err != nil {
		return Pair{}, err
	}
	rt, err := utils.RandomHex(tokenBytes)
	if err != nil {
		return Pair{}, err
	}
	now := i.Now()
	return Pair{
		AuthToken:        at,
		AuthExpiresAt:    now.Add(i.AccessTTL),
		RefreshToken:     rt,
		RefreshExpiresAt: now.Add(i.RefreshTTL),
	}, nil
}

// Issue generates a pair and stores it on the user row.  The previous
// pair, if any, stops working the moment the row is updated.
func (i *Issuer) Issue(ctx context.Context, userID uint64) (Pair, error) {
	p, err := i.NewPair()
	if err != nil {
		return Pair{}, err
	}
	if err := i.Store.SaveTokens(ctx, userID, p); err != nil {
		return Pair{}, err
	}
	return p, nil
}

// Revoke nulls every credential on the user row.
func (i *Issuer) Revoke(ctx context.Context, userID uint64) error {
	return i.Store.ClearTokens(ctx, userID)
}
