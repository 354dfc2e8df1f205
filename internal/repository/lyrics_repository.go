package repository

import (
	"context"
	"database/sql"

	"github.com/melodix/melodix-backend/internal/model"
)

// LyricsRepo stores admin-managed lyrics, one row per song.
type LyricsRepo struct{ DB *sql.DB }

func NewLyricsRepo(db *sql.DB) *LyricsRepo { return &LyricsRepo{DB: db} }

const lyricsCols = `id, song_id, song_title, artist_name, lyrics_content,
 lyrics_start_time, created_at, updated_at`

// GetBySongID fetches the lyrics stored for a song.
func (r *LyricsRepo) GetBySongID(ctx context.Context, songID string) (*model.Lyrics, error) {
	var l model.Lyrics
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+lyricsCols+" FROM song_lyrics WHERE song_id=? LIMIT 1", songID).
		Scan(&l.ID, &l.SongID, &l.SongTitle, &l.ArtistName, &l.Content,
			&l.StartTime, &l.CreatedAt, &l.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Upsert stores or replaces the lyrics for a song.
func (r *LyricsRepo) Upsert(ctx context.Context, l model.Lyrics) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO song_lyrics (song_id, song_title, artist_name, lyrics_content, lyrics_start_time)
 VALUES (?,?,?,?,?)
 ON DUPLICATE KEY UPDATE
 song_title = VALUES(song_title),
 artist_name = VALUES(artist_name),
 lyrics_content = VALUES(lyrics_content),
 lyrics_start_time = VALUES(lyrics_start_time)`,
		l.SongID, l.SongTitle, l.ArtistName, l.Content, l.StartTime)
	return err
}

// Delete removes stored lyrics.  ErrNotFound when absent.
func (r *LyricsRepo) Delete(ctx context.Context, songID string) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM song_lyrics WHERE song_id=?", songID)
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

// List returns stored lyrics rows for the admin console, newest first.
func (r *LyricsRepo) List(ctx context.Context, limit, offset int) ([]*model.Lyrics, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+lyricsCols+" FROM song_lyrics ORDER BY updated_at DESC LIMIT ? OFFSET ?",
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Lyrics
	for rows.Next() {
		var l model.Lyrics
		if err := rows.Scan(&l.ID, &l.SongID, &l.SongTitle, &l.ArtistName, &l.Content,
			&l.StartTime, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}
