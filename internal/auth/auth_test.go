package auth

import (
	"context"
	"testing"
	"time"

	"github.com/melodix/melodix-backend/internal/model"
)

// memStore keeps one user with their credential columns in memory.
type memStore struct {
	user model.User
}

func (m *memStore) FindByValidAuthToken(_ context.Context, token string) (*model.User, error) {
	u := m.user
	if u.AuthToken == nil || *u.AuthToken != token {
		return nil, ErrInvalidToken
	}
	if u.TokenExpiresAt == nil || !u.TokenExpiresAt.After(time.Now().UTC()) {
		return nil, ErrInvalidToken
	}
	return &u, nil
}

func (m *memStore) FindByAnyToken(_ context.Context, token string) (*model.User, error) {
	u := m.user
	if (u.AuthToken != nil && *u.AuthToken == token) ||
		(u.RefreshToken != nil && *u.RefreshToken == token) {
		return &u, nil
	}
	return nil, ErrInvalidToken
}

func (m *memStore) SaveTokens(_ context.Context, userID uint64, p Pair) error {
	m.user.AuthToken = &p.AuthToken
	m.user.TokenExpiresAt = &p.AuthExpiresAt
	m.user.RefreshToken = &p.RefreshToken
	m.user.RefreshExpiresAt = &p.RefreshExpiresAt
	return nil
}

func (m *memStore) ClearTokens(_ context.Context, userID uint64) error {
	m.user.AuthToken = nil
	m.user.TokenExpiresAt = nil
	m.user.RefreshToken = nil
	m.user.RefreshExpiresAt = nil
	return nil
}

func newTestIssuer(store CredentialStore) *Issuer {
	return NewIssuer(store, 24, 7)
}

func TestNewPairLifetimes(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	iss := newTestIssuer(&memStore{})
	iss.Now = func() time.Time { return now }

	p, err := iss.NewPair()
	if err != nil {
		t.Fatalf("NewPair: %v", err)
	}
	if len(p.AuthToken) != 64 {
		t.Errorf("auth token length = %d, want 64", len(p.AuthToken))
	}
	if len(p.RefreshToken) != 64 {
		t.Errorf("refresh token length = %d, want 64", len(p.RefreshToken))
	}
	if p.AuthToken == p.RefreshToken {
		t.Error("auth and refresh tokens must differ")
	}
	if want := now.Add(24 * time.Hour); !p.AuthExpiresAt.Equal(want) {
		t.Errorf("auth expiry = %v, want %v", p.AuthExpiresAt, want)
	}
	if want := now.Add(7 * 24 * time.Hour); !p.RefreshExpiresAt.Equal(want) {
		t.Errorf("refresh expiry = %v, want %v", p.RefreshExpiresAt, want)
	}
}

func TestIssuePersistsPair(t *testing.T) {
	store := &memStore{user: model.User{ID: 1, Role: "user", IsActive: true}}
	iss := newTestIssuer(store)

	p, err := iss.Issue(context.Background(), 1)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if store.user.AuthToken == nil || *store.user.AuthToken != p.AuthToken {
		t.Error("auth token not persisted")
	}
	if store.user.RefreshToken == nil || *store.user.RefreshToken != p.RefreshToken {
		t.Error("refresh token not persisted")
	}
}

func TestRevokeClearsCredentials(t *testing.T) {
	store := &memStore{user: model.User{ID: 1}}
	iss := newTestIssuer(store)
	if _, err := iss.Issue(context.Background(), 1); err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if err := iss.Revoke(context.Background(), 1); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if store.user.AuthToken != nil || store.user.RefreshToken != nil {
		t.Error("credentials survived revocation")
	}
}

func TestTokenAuthenticatorFastPath(t *testing.T) {
	store := &memStore{user: model.User{ID: 7, Role: "user"}}
	iss := newTestIssuer(store)
	p, err := iss.Issue(context.Background(), 7)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	a := &TokenAuthenticator{Store: store, Issuer: iss}
	id, err := a.Authenticate(context.Background(), p.AuthToken)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if id.UserID != 7 || id.Role != "user" {
		t.Errorf("identity = %+v", id)
	}
	if id.Refreshed != nil {
		t.Error("live token must not trigger a renewal")
	}
}

func TestTokenAuthenticatorRenewsExpiredToken(t *testing.T) {
	now := time.Now().UTC()
	old := "a1b2"
	expired := now.Add(-time.Hour)
	refresh := "c3d4"
	refreshOK := now.Add(48 * time.Hour)
	store := &memStore{user: model.User{
		ID: 9, Role: "user",
		AuthToken: &old, TokenExpiresAt: &expired,
		RefreshToken: &refresh, RefreshExpiresAt: &refreshOK,
	}}
	iss := newTestIssuer(store)

	a := &TokenAuthenticator{Store: store, Issuer: iss}
	id, err := a.Authenticate(context.Background(), old)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if id.Refreshed == nil {
		t.Fatal("expected a renewed pair")
	}
	if id.Refreshed.AuthToken == old {
		t.Error("renewed auth token must differ from the expired one")
	}
	if store.user.AuthToken == nil || *store.user.AuthToken != id.Refreshed.AuthToken {
		t.Error("renewed pair not persisted")
	}
}

func TestTokenAuthenticatorExpiredBeyondRenewal(t *testing.T) {
	now := time.Now().UTC()
	old := "a1b2"
	expired := now.Add(-48 * time.Hour)
	refresh := "c3d4"
	refreshDead := now.Add(-time.Hour)
	store := &memStore{user: model.User{
		ID: 9, Role: "user",
		AuthToken: &old, TokenExpiresAt: &expired,
		RefreshToken: &refresh, RefreshExpiresAt: &refreshDead,
	}}
	a := &TokenAuthenticator{Store: store, Issuer: newTestIssuer(store)}

	if _, err := a.Authenticate(context.Background(), old); err != ErrExpiredToken {
		t.Fatalf("err = %v, want ErrExpiredToken", err)
	}
}

func TestTokenAuthenticatorRejects(t *testing.T) {
	store := &memStore{}
	a := &TokenAuthenticator{Store: store, Issuer: newTestIssuer(store)}

	if _, err := a.Authenticate(context.Background(), ""); err != ErrNoToken {
		t.Errorf("empty token: err = %v, want ErrNoToken", err)
	}
	if _, err := a.Authenticate(context.Background(), "nope"); err != ErrInvalidToken {
		t.Errorf("unknown token: err = %v, want ErrInvalidToken", err)
	}
}

// memSessions resolves exactly one session token.
type memSessions struct {
	token string
	user  model.User
}

func (m *memSessions) FindUserBySession(_ context.Context, token string) (*model.User, error) {
	if token != m.token {
		return nil, ErrInvalidToken
	}
	u := m.user
	return &u, nil
}

func TestSessionAuthenticator(t *testing.T) {
	a := &SessionAuthenticator{Store: &memSessions{token: "sess", user: model.User{ID: 3, Role: "user"}}}

	id, err := a.Authenticate(context.Background(), "sess")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if id.UserID != 3 {
		t.Errorf("UserID = %d, want 3", id.UserID)
	}
	if _, err := a.Authenticate(context.Background(), "other"); err != ErrInvalidToken {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestChainFallsThrough(t *testing.T) {
	credStore := &memStore{}
	tokenAuth := &TokenAuthenticator{Store: credStore, Issuer: newTestIssuer(credStore)}
	sessAuth := &SessionAuthenticator{Store: &memSessions{token: "sess", user: model.User{ID: 5, Role: "admin"}}}
	chain := Chain{tokenAuth, sessAuth}

	id, err := chain.Authenticate(context.Background(), "sess")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if id.UserID != 5 || id.Role != "admin" {
		t.Errorf("identity = %+v", id)
	}

	if _, err := chain.Authenticate(context.Background(), ""); err != ErrNoToken {
		t.Errorf("empty token: err = %v, want ErrNoToken", err)
	}
	if _, err := chain.Authenticate(context.Background(), "junk"); err == nil {
		t.Error("unknown token must fail the whole chain")
	}
}

func TestChainKeepsExpiredVerdict(t *testing.T) {
	now := time.Now().UTC()
	old := "a1b2"
	expired := now.Add(-48 * time.Hour)
	refresh := "c3d4"
	refreshDead := now.Add(-time.Hour)
	credStore := &memStore{user: model.User{
		ID: 9, Role: "user",
		AuthToken: &old, TokenExpiresAt: &expired,
		RefreshToken: &refresh, RefreshExpiresAt: &refreshDead,
	}}
	tokenAuth := &TokenAuthenticator{Store: credStore, Issuer: newTestIssuer(credStore)}
	sessAuth := &SessionAuthenticator{Store: &memSessions{}}
	chain := Chain{tokenAuth, sessAuth}

	// The session store does not know the token either, but the expired
	// verdict from the token strategy is the one the client should see.
	if _, err := chain.Authenticate(context.Background(), old); err != ErrExpiredToken {
		t.Errorf("err = %v, want ErrExpiredToken", err)
	}
}
