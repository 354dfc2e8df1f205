package repository

import (
	"context"
	"database/sql"

	"github.com/melodix/melodix-backend/internal/model"
)

// CommentRepo manages song comments.  Public listings only ever see
// active rows; deletion flips is_active so moderators can review and
// restore.
type CommentRepo struct{ DB *sql.DB }

func NewCommentRepo(db *sql.DB) *CommentRepo { return &CommentRepo{DB: db} }

const commentJoinCols = `c.id, c.user_id, c.song_type, c.song_id, c.song_title, c.artist_name,
 c.comment_text, c.is_active, c.created_at, c.updated_at, u.full_name, u.avatar`

func collectComments(rows *sql.Rows) ([]*model.Comment, error) {
	defer rows.Close()
	var out []*model.Comment
	for rows.Next() {
		var m model.Comment
		if err := rows.Scan(&m.ID, &m.UserID, &m.SongType, &m.SongID, &m.SongTitle,
			&m.ArtistName, &m.CommentText, &m.IsActive, &m.CreatedAt, &m.UpdatedAt,
			&m.UserName, &m.UserAvatar); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// ListBySong returns the active comments for one song, newest first,
// with author name and avatar joined in.
func (r *CommentRepo) ListBySong(ctx context.Context, songType, songID string, limit, offset int) ([]*model.Comment, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+commentJoinCols+` FROM comments c JOIN users u ON u.id=c.user_id
 WHERE c.song_type=? AND c.song_id=? AND c.is_active=1
 ORDER BY c.created_at DESC LIMIT ? OFFSET ?`,
		songType, songID, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectComments(rows)
}

// Create inserts a comment and returns the stored row with author fields.
func (r *CommentRepo) Create(ctx context.Context, m model.Comment) (*model.Comment, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO comments (user_id, song_type, song_id, song_title, artist_name, comment_text)
 VALUES (?,?,?,?,?,?)`,
		m.UserID, m.SongType, m.SongID, m.SongTitle, m.ArtistName, m.CommentText)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.getByID(ctx, uint64(id))
}

func (r *CommentRepo) getByID(ctx context.Context, id uint64) (*model.Comment, error) {
	var m model.Comment
	err := r.DB.QueryRowContext(ctx,
		`SELECT `+commentJoinCols+` FROM comments c JOIN users u ON u.id=c.user_id WHERE c.id=? LIMIT 1`,
		id).Scan(&m.ID, &m.UserID, &m.SongType, &m.SongID, &m.SongTitle,
		&m.ArtistName, &m.CommentText, &m.IsActive, &m.CreatedAt, &m.UpdatedAt,
		&m.UserName, &m.UserAvatar)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateText replaces the text of the caller's own active comment and
// returns the updated row.
func (r *CommentRepo) UpdateText(ctx context.Context, id, callerID uint64, text string) (*model.Comment, error) {
	m, err := r.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.UserID != callerID {
		return nil, ErrForbidden
	}
	if !m.IsActive {
		return nil, ErrNotFound
	}
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE comments SET comment_text=?, updated_at=UTC_TIMESTAMP() WHERE id=?", text, id); err != nil {
		return nil, err
	}
	return r.getByID(ctx, id)
}

// Deactivate soft-deletes a comment.  The author may remove their own;
// an admin may remove any.  ErrForbidden for everyone else.
func (r *CommentRepo) Deactivate(ctx context.Context, id, callerID uint64, callerIsAdmin bool) error {
	m, err := r.getByID(ctx, id)
	if err != nil {
		return err
	}
	if m.UserID != callerID && !callerIsAdmin {
		return ErrForbidden
	}
	_, err = r.DB.ExecContext(ctx, "UPDATE comments SET is_active=0 WHERE id=?", id)
	return err
}

// Restore reverses a soft delete.  Admin console only.
func (r *CommentRepo) Restore(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE comments SET is_active=1 WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Row may exist already active; distinguish from missing.
		if _, err := r.getByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// ListAll returns comments for moderation regardless of state, newest
// first, optionally only inactive ones.
func (r *CommentRepo) ListAll(ctx context.Context, onlyInactive bool, limit, offset int) ([]*model.Comment, error) {
	q := `SELECT ` + commentJoinCols + ` FROM comments c JOIN users u ON u.id=c.user_id`
	if onlyInactive {
		q += " WHERE c.is_active=0"
	}
	q += " ORDER BY c.created_at DESC LIMIT ? OFFSET ?"
	rows, err := r.DB.QueryContext(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectComments(rows)
}

// CommentStats summarizes moderation state for the admin dashboard.
type CommentStats struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
}

// Stats counts comments by moderation state.
func (r *CommentRepo) Stats(ctx context.Context) (CommentStats, error) {
	var s CommentStats
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(is_active),0) FROM comments").Scan(&s.Total, &s.Active)
	if err != nil {
		return s, err
	}
	s.Inactive = s.Total - s.Active
	return s, nil
}
