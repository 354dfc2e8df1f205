package auth

import (
	"context"
	"errors"
)

// TokenAuthenticator resolves credentials stored on the user row itself.
// When the presented auth token has expired but the row's refresh token is
// still live, a replacement pair is issued on the spot and reported via
// Identity.Refreshed.  The fast path and the renewal path are two separate
// queries so the common case stays a single indexed lookup.
type TokenAuthenticator struct {
	Store  CredentialStore
	Issuer *Issuer
}

func (a *TokenAuthenticator) Authenticate(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	if u, err := a.Store.FindByValidAuthToken(ctx, token); err == nil {
		return &Identity{UserID: u.ID, Role: u.Role}, nil
	}
	u, err := a.Store.FindByAnyToken(ctx, token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	now := a.Issuer.Now()
	if u.RefreshToken == nil || u.RefreshExpiresAt == nil || !u.RefreshExpiresAt.After(now) {
		return nil, ErrExpiredToken
	}
	p, err := a.Issuer.Issue(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return &Identity{UserID: u.ID, Role: u.Role, Refreshed: &p}, nil
}

// SessionAuthenticator resolves per-device session tokens.  A session that
// has run out is simply gone; there is no renewal side channel here.
type SessionAuthenticator struct {
	Store SessionStore
}

func (a *SessionAuthenticator) Authenticate(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	u, err := a.Store.FindUserBySession(ctx, token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return &Identity{UserID: u.ID, Role: u.Role}, nil
}

// Chain tries each authenticator in order and returns the first identity.
// Change-password accepts either a session token or a user token, so its
// route runs a Chain of both strategies.
type Chain []Authenticator

func (cs Chain) Authenticate(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	// An expired-beyond-renewal verdict from any strategy wins over a
	// plain mismatch from a later one; the token was recognized, and the
	// client should be told to log in again rather than guess.
	var last error = ErrInvalidToken
	for _, a := range cs {
		id, err := a.Authenticate(ctx, token)
		if err == nil {
			return id, nil
		}
		if !errors.Is(last, ErrExpiredToken) {
			last = err
		}
	}
	return nil, last
}
