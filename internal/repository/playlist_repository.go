package repository

import (
	"context"
	"database/sql"

	"github.com/melodix/melodix-backend/internal/model"
)

// PlaylistRepo manages playlists and their memberships.  Ownership rules
// live here: reads are allowed for the owner or when the playlist is
// public, writes only for the owner.
type PlaylistRepo struct{ DB *sql.DB }

func NewPlaylistRepo(db *sql.DB) *PlaylistRepo { return &PlaylistRepo{DB: db} }

const playlistCols = "id, user_id, name, description, is_public, song_count, created_at, updated_at"

func scanPlaylist(row *sql.Row) (*model.Playlist, error) {
	var p model.Playlist
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.IsPublic,
		&p.SongCount, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByUser returns the user's playlists, newest first.
func (r *PlaylistRepo) ListByUser(ctx context.Context, userID uint64) ([]*model.Playlist, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+playlistCols+" FROM playlists WHERE user_id=? ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Playlist
	for rows.Next() {
		var p model.Playlist
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.IsPublic,
			&p.SongCount, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// GetVisible fetches a playlist readable by viewerID: the owner sees
// everything, others only public lists.  A real but private playlist is
// reported as ErrNotFound so its existence leaks nothing.
func (r *PlaylistRepo) GetVisible(ctx context.Context, id, viewerID uint64) (*model.Playlist, error) {
	p, err := scanPlaylist(r.DB.QueryRowContext(ctx,
		"SELECT "+playlistCols+" FROM playlists WHERE id=? LIMIT 1", id))
	if err != nil {
		return nil, err
	}
	if p.UserID != viewerID && !p.IsPublic {
		return nil, ErrNotFound
	}
	return p, nil
}

// getOwned fetches a playlist for a mutating operation.  A playlist that
// exists but belongs to someone else yields ErrForbidden.
func (r *PlaylistRepo) getOwned(ctx context.Context, id, ownerID uint64) (*model.Playlist, error) {
	p, err := scanPlaylist(r.DB.QueryRowContext(ctx,
		"SELECT "+playlistCols+" FROM playlists WHERE id=? LIMIT 1", id))
	if err != nil {
		return nil, err
	}
	if p.UserID != ownerID {
		return nil, ErrForbidden
	}
	return p, nil
}

// Create inserts a playlist and returns its ID.
func (r *PlaylistRepo) Create(ctx context.Context, userID uint64, name string, description *string, isPublic bool) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO playlists (user_id, name, description, is_public) VALUES (?,?,?,?)",
		userID, name, description, isPublic)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Update renames or re-describes an owned playlist.
func (r *PlaylistRepo) Update(ctx context.Context, id, ownerID uint64, name string, description *string, isPublic bool) error {
	if _, err := r.getOwned(ctx, id, ownerID); err != nil {
		return err
	}
	_, err := r.DB.ExecContext(ctx,
		"UPDATE playlists SET name=?, description=?, is_public=? WHERE id=?",
		name, description, isPublic, id)
	return err
}

// Delete removes an owned playlist; memberships cascade.
func (r *PlaylistRepo) Delete(ctx context.Context, id, ownerID uint64) error {
	if _, err := r.getOwned(ctx, id, ownerID); err != nil {
		return err
	}
	_, err := r.DB.ExecContext(ctx, "DELETE FROM playlists WHERE id=?", id)
	return err
}

// AddSong appends a track to an owned playlist.  The new row takes the
// next position and the stored song_count is recomputed in the same
// transaction.  A song already present yields ErrConflict.
func (r *PlaylistRepo) AddSong(ctx context.Context, playlistID, ownerID uint64, s model.PlaylistSong) (uint64, error) {
	if _, err := r.getOwned(ctx, playlistID, ownerID); err != nil {
		return 0, err
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO playlist_songs (playlist_id, song_id, song_title, artist_name, thumbnail, duration, position)
 SELECT ?, ?, ?, ?, ?, ?, COALESCE(MAX(position),0)+1 FROM playlist_songs WHERE playlist_id=?`,
		playlistID, s.SongID, s.SongTitle, s.ArtistName, s.Thumbnail, s.Duration, playlistID)
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
	if err := recountTx(ctx, tx, playlistID); err != nil {
		return 0, err
	}
	return uint64(id), tx.Commit()
}

// RemoveSong drops a track from an owned playlist and recomputes the
// counter.  ErrNotFound when the song is not in the list.
func (r *PlaylistRepo) RemoveSong(ctx context.Context, playlistID, ownerID uint64, songID string) error {
	if _, err := r.getOwned(ctx, playlistID, ownerID); err != nil {
		return err
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"DELETE FROM playlist_songs WHERE playlist_id=? AND song_id=?", playlistID, songID)
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
	if err := recountTx(ctx, tx, playlistID); err != nil {
		return err
	}
	return tx.Commit()
}

// ListSongs returns a playlist's tracks in position order, subject to the
// same visibility rule as GetVisible.
func (r *PlaylistRepo) ListSongs(ctx context.Context, playlistID, viewerID uint64) ([]*model.PlaylistSong, error) {
	if _, err := r.GetVisible(ctx, playlistID, viewerID); err != nil {
		return nil, err
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, playlist_id, song_id, song_title, artist_name, thumbnail, duration, position, added_at
 FROM playlist_songs WHERE playlist_id=? ORDER BY position ASC`, playlistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.PlaylistSong
	for rows.Next() {
		var s model.PlaylistSong
		if err := rows.Scan(&s.ID, &s.PlaylistID, &s.SongID, &s.SongTitle,
			&s.ArtistName, &s.Thumbnail, &s.Duration, &s.Position, &s.AddedAt); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

func recountTx(ctx context.Context, tx *sql.Tx, playlistID uint64) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE playlists SET song_count=(SELECT COUNT(*) FROM playlist_songs WHERE playlist_id=?) WHERE id=?",
		playlistID, playlistID)
	return err
}
