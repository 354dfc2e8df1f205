package repository

import (
	"context"
	"database/sql"

	"github.com/melodix/melodix-backend/internal/model"
)

// DownloadRepo tracks which songs a user saved for offline playback.
// Registering the same song twice just refreshes the stored metadata.
type DownloadRepo struct{ DB *sql.DB }

func NewDownloadRepo(db *sql.DB) *DownloadRepo { return &DownloadRepo{DB: db} }

// List returns the user's downloads, newest first.
func (r *DownloadRepo) List(ctx context.Context, userID uint64) ([]*model.Download, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_id, song_type, song_id, song_title, artist_name, artwork_url,
 download_url, file_size, duration, created_at
 FROM downloads WHERE user_id=? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Download
	for rows.Next() {
		var d model.Download
		if err := rows.Scan(&d.ID, &d.UserID, &d.SongType, &d.SongID, &d.SongTitle,
			&d.ArtistName, &d.ArtworkURL, &d.DownloadURL, &d.FileSize, &d.Duration, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}

// Exists reports whether the user has this song saved.
func (r *DownloadRepo) Exists(ctx context.Context, userID uint64, songType, songID string) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM downloads WHERE user_id=? AND song_type=? AND song_id=?",
		userID, songType, songID).Scan(&n)
	return n > 0, err
}

// Register upserts a download record.
func (r *DownloadRepo) Register(ctx context.Context, d model.Download) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO downloads
 (user_id, song_type, song_id, song_title, artist_name, artwork_url, download_url, file_size, duration)
 VALUES (?,?,?,?,?,?,?,?,?)
 ON DUPLICATE KEY UPDATE
 song_title = VALUES(song_title),
 artist_name = VALUES(artist_name),
 artwork_url = VALUES(artwork_url),
 download_url = VALUES(download_url),
 file_size = VALUES(file_size),
 duration = VALUES(duration)`,
		d.UserID, d.SongType, d.SongID, d.SongTitle, d.ArtistName,
		d.ArtworkURL, d.DownloadURL, d.FileSize, d.Duration)
	return err
}

// Remove deletes a download record.  ErrNotFound when absent.
func (r *DownloadRepo) Remove(ctx context.Context, userID uint64, songType, songID string) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM downloads WHERE user_id=? AND song_type=? AND song_id=?",
		userID, songType, songID)
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
