package repository

import (
	"context"
	"database/sql"

	"github.com/melodix/melodix-backend/internal/model"
)

// PlayRepo persists play sessions and the per-song play counters.
// It satisfies playtrack.Store.
type PlayRepo struct{ DB *sql.DB }

func NewPlayRepo(db *sql.DB) *PlayRepo { return &PlayRepo{DB: db} }

// CreateSession inserts an open play session.
func (r *PlayRepo) CreateSession(ctx context.Context, s model.PlaySession) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO play_sessions (session_token, user_id, song_type, song_id, song_title, artist_name)
 VALUES (?,?,?,?,?,?)`,
		s.SessionToken, s.UserID, s.SongType, s.SongID, s.SongTitle, s.ArtistName)
	return err
}

// GetSession fetches a play session by its token.
func (r *PlayRepo) GetSession(ctx context.Context, token string) (*model.PlaySession, error) {
	var s model.PlaySession
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, session_token, user_id, song_type, song_id, song_title, artist_name,
 started_at, ended_at, play_duration, counted_as_play
 FROM play_sessions WHERE session_token=? LIMIT 1`, token).
		Scan(&s.ID, &s.SessionToken, &s.UserID, &s.SongType, &s.SongID, &s.SongTitle,
			&s.ArtistName, &s.StartedAt, &s.EndedAt, &s.PlayDuration, &s.CountedAsPlay)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CloseSession records the end of a session exactly once.  The guard on
// ended_at IS NULL makes a second close a no-op; the return value reports
// whether this call was the one that closed it.
func (r *PlayRepo) CloseSession(ctx context.Context, token string, duration int, counted bool) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE play_sessions SET ended_at=UTC_TIMESTAMP(), play_duration=?, counted_as_play=?
 WHERE session_token=? AND ended_at IS NULL`,
		duration, counted, token)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// IncrementPlay bumps the song's aggregate counter, creating the row on
// first play.
func (r *PlayRepo) IncrementPlay(ctx context.Context, songType, songID string, title, artist *string) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO song_plays (song_type, song_id, song_title, artist_name, play_count, last_played_at)
 VALUES (?,?,?,?,1,UTC_TIMESTAMP())
 ON DUPLICATE KEY UPDATE
 play_count = play_count + 1,
 last_played_at = UTC_TIMESTAMP(),
 song_title = COALESCE(VALUES(song_title), song_title),
 artist_name = COALESCE(VALUES(artist_name), artist_name)`,
		songType, songID, title, artist)
	return err
}

// GetPlayCount returns the aggregate counter for one song; zero when the
// song has never qualified.
func (r *PlayRepo) GetPlayCount(ctx context.Context, songType, songID string) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx,
		"SELECT play_count FROM song_plays WHERE song_type=? AND song_id=? LIMIT 1",
		songType, songID).Scan(&n)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return n, err
}

// TopSongs lists the most played songs for the admin dashboard.
func (r *PlayRepo) TopSongs(ctx context.Context, limit int) ([]*model.SongPlay, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, song_type, song_id, song_title, artist_name, play_count,
 last_played_at, created_at, updated_at
 FROM song_plays ORDER BY play_count DESC, last_played_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.SongPlay
	for rows.Next() {
		var p model.SongPlay
		if err := rows.Scan(&p.ID, &p.SongType, &p.SongID, &p.SongTitle, &p.ArtistName,
			&p.PlayCount, &p.LastPlayedAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// PlayStats summarizes playback activity for the admin dashboard.
type PlayStats struct {
	TotalPlays    int64 `json:"total_plays"`
	TrackedSongs  int64 `json:"tracked_songs"`
	OpenSessions  int64 `json:"open_sessions"`
	TotalSessions int64 `json:"total_sessions"`
}

// Stats gathers the playback counters in one round trip.
func (r *PlayRepo) Stats(ctx context.Context) (PlayStats, error) {
	var s PlayStats
	err := r.DB.QueryRowContext(ctx, `SELECT
 (SELECT COALESCE(SUM(play_count),0) FROM song_plays),
 (SELECT COUNT(*) FROM song_plays),
 (SELECT COUNT(*) FROM play_sessions WHERE ended_at IS NULL),
 (SELECT COUNT(*) FROM play_sessions)`).
		Scan(&s.TotalPlays, &s.TrackedSongs, &s.OpenSessions, &s.TotalSessions)
	return s, err
}
