package repository

import (
	"context"
	"database/sql"

	"github.com/melodix/melodix-backend/internal/model"
)

// FavoriteRepo manages the per-user liked songs table.
type FavoriteRepo struct{ DB *sql.DB }

func NewFavoriteRepo(db *sql.DB) *FavoriteRepo { return &FavoriteRepo{DB: db} }

// List returns the user's favorites, most recent first.
func (r *FavoriteRepo) List(ctx context.Context, userID uint64) ([]*model.Favorite, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_id, song_id, song_title, artist_name, thumbnail, duration, created_at
 FROM user_favorites WHERE user_id=? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Favorite
	for rows.Next() {
		var f model.Favorite
		if err := rows.Scan(&f.ID, &f.UserID, &f.SongID, &f.SongTitle,
			&f.ArtistName, &f.Thumbnail, &f.Duration, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}

// Add marks a song as favorite.  Liking the same song again is
// ErrConflict; callers surface it as 409.
func (r *FavoriteRepo) Add(ctx context.Context, f model.Favorite) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO user_favorites (user_id, song_id, song_title, artist_name, thumbnail, duration)
 VALUES (?,?,?,?,?,?)`,
		f.UserID, f.SongID, f.SongTitle, f.ArtistName, f.Thumbnail, f.Duration)
	if err != nil {
		if isDup(err) {
			return 0, ErrConflict
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Remove unlikes a song.  ErrNotFound when it was never liked.
func (r *FavoriteRepo) Remove(ctx context.Context, userID uint64, songID string) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM user_favorites WHERE user_id=? AND song_id=?", userID, songID)
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

// IsFavorite reports whether the user has liked the song.
func (r *FavoriteRepo) IsFavorite(ctx context.Context, userID uint64, songID string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM user_favorites WHERE user_id=? AND song_id=? LIMIT 1",
		userID, songID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
