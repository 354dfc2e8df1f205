package repository

import (
	"context"
	"database/sql"

	"github.com/melodix/melodix-backend/internal/model"
)

// AdminSongRepo manages the curated local catalog.
type AdminSongRepo struct{ DB *sql.DB }

func NewAdminSongRepo(db *sql.DB) *AdminSongRepo { return &AdminSongRepo{DB: db} }

const adminSongCols = `id, itunes_id, title, artist, album, thumbnail, category,
 stream_url, duration, created_at, updated_at`

func scanAdminSong(row *sql.Row) (*model.AdminSong, error) {
	var s model.AdminSong
	err := row.Scan(&s.ID, &s.ITunesID, &s.Title, &s.Artist, &s.Album, &s.Thumbnail,
		&s.Category, &s.StreamURL, &s.Duration, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// List returns catalog rows, optionally filtered by category and a
// title/artist substring, newest first.
func (r *AdminSongRepo) List(ctx context.Context, category, search string, limit, offset int) ([]*model.AdminSong, error) {
	q := "SELECT " + adminSongCols + " FROM admin_songs WHERE 1=1"
	args := []interface{}{}
	if category != "" {
		q += " AND category=?"
		args = append(args, category)
	}
	if search != "" {
		q += " AND (title LIKE ? OR artist LIKE ?)"
		like := "%" + search + "%"
		args = append(args, like, like)
	}
	q += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.AdminSong
	for rows.Next() {
		var s model.AdminSong
		if err := rows.Scan(&s.ID, &s.ITunesID, &s.Title, &s.Artist, &s.Album, &s.Thumbnail,
			&s.Category, &s.StreamURL, &s.Duration, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

// Get fetches one catalog row.
func (r *AdminSongRepo) Get(ctx context.Context, id uint64) (*model.AdminSong, error) {
	return scanAdminSong(r.DB.QueryRowContext(ctx,
		"SELECT "+adminSongCols+" FROM admin_songs WHERE id=? LIMIT 1", id))
}

// Create inserts a catalog row and returns its ID.
func (r *AdminSongRepo) Create(ctx context.Context, s model.AdminSong) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO admin_songs (itunes_id, title, artist, album, thumbnail, category, stream_url, duration)
 VALUES (?,?,?,?,?,?,?,?)`,
		s.ITunesID, s.Title, s.Artist, s.Album, s.Thumbnail, s.Category, s.StreamURL, s.Duration)
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

// Update rewrites the editable fields of a catalog row.
func (r *AdminSongRepo) Update(ctx context.Context, id uint64, s model.AdminSong) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE admin_songs SET title=?, artist=?, album=?, thumbnail=?, category=?, stream_url=?, duration=?
 WHERE id=?`,
		s.Title, s.Artist, s.Album, s.Thumbnail, s.Category, s.StreamURL, s.Duration, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.Get(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a catalog row.
func (r *AdminSongRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM admin_songs WHERE id=?", id)
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

// UpsertByITunesID imports an upstream track, keyed on its upstream ID so
// re-running an import never duplicates rows.  Returns true when a new
// row was created.
func (r *AdminSongRepo) UpsertByITunesID(ctx context.Context, s model.AdminSong) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO admin_songs (itunes_id, title, artist, album, thumbnail, category, stream_url, duration)
 VALUES (?,?,?,?,?,?,?,?)
 ON DUPLICATE KEY UPDATE
 title = VALUES(title),
 artist = VALUES(artist),
 album = VALUES(album),
 thumbnail = VALUES(thumbnail),
 category = VALUES(category),
 stream_url = VALUES(stream_url),
 duration = VALUES(duration)`,
		s.ITunesID, s.Title, s.Artist, s.Album, s.Thumbnail, s.Category, s.StreamURL, s.Duration)
	if err != nil {
		return false, err
	}
	// MySQL reports 1 affected row for insert, 2 for update.
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Count returns the number of catalog rows.
func (r *AdminSongRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM admin_songs").Scan(&n)
	return n, err
}

// CountByCategory breaks the catalog down per category for the admin
// dashboard.  Uncategorized rows are skipped.
func (r *AdminSongRepo) CountByCategory(ctx context.Context) (map[string]int64, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT category, COUNT(*) FROM admin_songs
 WHERE category IS NOT NULL GROUP BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int64{}
	for rows.Next() {
		var category string
		var n int64
		if err := rows.Scan(&category, &n); err != nil {
			return nil, err
		}
		out[category] = n
	}
	return out, rows.Err()
}
