package repository

import (
	"context"
	"database/sql"

	"github.com/melodix/melodix-backend/internal/model"
)

// HistoryRepo manages listening history.  The table keeps one row per
// user, song and calendar day; repeated listens fold into that row,
// accumulating duration and bumping listened_at.
type HistoryRepo struct{ DB *sql.DB }

func NewHistoryRepo(db *sql.DB) *HistoryRepo { return &HistoryRepo{DB: db} }

// Record upserts today's row for the song and reports whether this was
// the first listen of the day.  MySQL counts one affected row for an
// insert and two when the upsert updated an existing row.
func (r *HistoryRepo) Record(ctx context.Context, e model.HistoryEntry) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO listening_history
 (user_id, song_type, song_id, song_title, artist_name, thumbnail, listen_date, duration_listened)
 VALUES (?,?,?,?,?,?,UTC_DATE(),?)
 ON DUPLICATE KEY UPDATE
 duration_listened = duration_listened + VALUES(duration_listened),
 song_title = VALUES(song_title),
 thumbnail = VALUES(thumbnail),
 listened_at = UTC_TIMESTAMP()`,
		e.UserID, e.SongType, e.SongID, e.SongTitle, e.ArtistName, e.Thumbnail, e.DurationListened)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// List returns the user's history, most recent listen first.
func (r *HistoryRepo) List(ctx context.Context, userID uint64, limit, offset int) ([]*model.HistoryEntry, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_id, song_type, song_id, song_title, artist_name, thumbnail,
 listen_date, duration_listened, listened_at
 FROM listening_history WHERE user_id=? ORDER BY listened_at DESC LIMIT ? OFFSET ?`,
		userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.HistoryEntry
	for rows.Next() {
		var e model.HistoryEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.SongType, &e.SongID, &e.SongTitle,
			&e.ArtistName, &e.Thumbnail, &e.ListenDate, &e.DurationListened, &e.ListenedAt); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

// ListByDate returns the user's history for one calendar day.
func (r *HistoryRepo) ListByDate(ctx context.Context, userID uint64, date string) ([]*model.HistoryEntry, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_id, song_type, song_id, song_title, artist_name, thumbnail,
 listen_date, duration_listened, listened_at
 FROM listening_history WHERE user_id=? AND listen_date=? ORDER BY listened_at DESC`,
		userID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.HistoryEntry
	for rows.Next() {
		var e model.HistoryEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.SongType, &e.SongID, &e.SongTitle,
			&e.ArtistName, &e.Thumbnail, &e.ListenDate, &e.DurationListened, &e.ListenedAt); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

// HistoryStats aggregates a user's listening activity.
type HistoryStats struct {
	TodaySongs    int64 `json:"today_songs"`
	TodaySeconds  int64 `json:"today_seconds"`
	TotalSongs    int64 `json:"total_songs"`
	TotalSeconds  int64 `json:"total_seconds"`
	DistinctSongs int64 `json:"distinct_songs"`
}

// Stats summarizes today's and lifetime listening for the user.
func (r *HistoryRepo) Stats(ctx context.Context, userID uint64) (HistoryStats, error) {
	var s HistoryStats
	err := r.DB.QueryRowContext(ctx, `SELECT
 (SELECT COUNT(*) FROM listening_history WHERE user_id=? AND listen_date=UTC_DATE()),
 (SELECT COALESCE(SUM(duration_listened),0) FROM listening_history WHERE user_id=? AND listen_date=UTC_DATE()),
 (SELECT COUNT(*) FROM listening_history WHERE user_id=?),
 (SELECT COALESCE(SUM(duration_listened),0) FROM listening_history WHERE user_id=?),
 (SELECT COUNT(DISTINCT song_type, song_id) FROM listening_history WHERE user_id=?)`,
		userID, userID, userID, userID, userID).
		Scan(&s.TodaySongs, &s.TodaySeconds, &s.TotalSongs, &s.TotalSeconds, &s.DistinctSongs)
	return s, err
}

// TopSongs lists the user's most listened songs by accumulated duration.
func (r *HistoryRepo) TopSongs(ctx context.Context, userID uint64, limit int) ([]*model.HistoryEntry, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT MAX(id), user_id, song_type, song_id, MAX(song_title), MAX(artist_name),
 MAX(thumbnail), MAX(listen_date), SUM(duration_listened), MAX(listened_at)
 FROM listening_history WHERE user_id=?
 GROUP BY user_id, song_type, song_id
 ORDER BY SUM(duration_listened) DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.HistoryEntry
	for rows.Next() {
		var e model.HistoryEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.SongType, &e.SongID, &e.SongTitle,
			&e.ArtistName, &e.Thumbnail, &e.ListenDate, &e.DurationListened, &e.ListenedAt); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

// DeleteEntry removes one history row owned by the user.
func (r *HistoryRepo) DeleteEntry(ctx context.Context, userID, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM listening_history WHERE id=? AND user_id=?", id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Clear wipes the user's entire history.
func (r *HistoryRepo) Clear(ctx context.Context, userID uint64) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM listening_history WHERE user_id=?", userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
