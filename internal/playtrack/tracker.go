// Package playtrack implements play counting as a two-step session.
// Playback start opens a session identified by an opaque token; playback
// end reports the listened duration.  A play is counted when the duration
// reaches the threshold, and a session can qualify at most once no matter
// how many end reports arrive.
package playtrack

import (
	"context"
	"strings"

	"github.com/melodix/melodix-backend/internal/model"
	"github.com/melodix/melodix-backend/internal/utils"
)

// MinCountedSeconds is the qualification threshold.  Exactly ten seconds
// counts; nine does not.
const MinCountedSeconds = 10

// sessionTokenBytes yields a 32 character hex token.
const sessionTokenBytes = 16

// Store is the persistence surface the tracker needs.  The SQL
// implementation is repository.PlayRepo; tests supply an in-memory one.
type Store interface {
	CreateSession(ctx context.Context, s model.PlaySession) error
	GetSession(ctx context.Context, token string) (*model.PlaySession, error)
	// CloseSession finalizes a session exactly once and reports whether
	// this call closed it.
	CloseSession(ctx context.Context, token string, duration int, counted bool) (bool, error)
	IncrementPlay(ctx context.Context, songType, songID string, title, artist *string) error
	GetPlayCount(ctx context.Context, songType, songID string) (int64, error)
}

// Tracker drives the session state machine.
type Tracker struct {
	Store Store
}

func NewTracker(store Store) *Tracker { return &Tracker{Store: store} }

// Result reports the outcome of ending a session.
type Result struct {
	Counted   bool  `json:"counted"`
	PlayCount int64 `json:"play_count"`
}

// Start opens a play session and returns its token.  userID is nil for
// anonymous listeners; their plays still count.
func (t *Tracker) Start(ctx context.Context, userID *uint64, songType, songID string, title, artist *string) (string, error) {
	token, err := utils.RandomHex(sessionTokenBytes)
	if err != nil {
		return "", err
	}
	s := model.PlaySession{
		SessionToken: token,
		UserID:       userID,
		SongType:     normalizeSongType(songType),
		SongID:       songID,
		SongTitle:    title,
		ArtistName:   artist,
	}
	if err := t.Store.CreateSession(ctx, s); err != nil {
		return "", err
	}
	return token, nil
}

// End closes the session and counts the play when the reported duration
// reaches the threshold.  Ending an already closed session never bumps
// the counter again; the stored outcome is simply reported back.
func (t *Tracker) End(ctx context.Context, token string, duration int) (Result, error) {
	s, err := t.Store.GetSession(ctx, token)
	if err != nil {
		return Result{}, err
	}
	qualifies := duration >= MinCountedSeconds
	closed, err := t.Store.CloseSession(ctx, token, duration, qualifies)
	if err != nil {
		return Result{}, err
	}
	counted := false
	if closed && qualifies {
		if err := t.Store.IncrementPlay(ctx, s.SongType, s.SongID, s.SongTitle, s.ArtistName); err != nil {
			return Result{}, err
		}
		counted = true
	}
	n, err := t.Store.GetPlayCount(ctx, s.SongType, s.SongID)
	if err != nil {
		return Result{}, err
	}
	return Result{Counted: counted, PlayCount: n}, nil
}

func normalizeSongType(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s != "admin" {
		return "itunes"
	}
	return s
}
