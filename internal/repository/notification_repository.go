package repository

import (
	"context"
	"database/sql"

	"github.com/melodix/melodix-backend/internal/model"
)

// NotificationRepo persists notification rows.  Delivery shapes:
// a "user" row targets one receiver, an "admin" event becomes one row per
// admin account, and an "all" event is a single broadcast row every user
// sees.
type NotificationRepo struct{ DB *sql.DB }

func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{DB: db} }

const notifCols = `id, sender_id, receiver_id, receiver_type, notification_type,
 title, message, related_data, is_read, created_at`

// Insert stores a single notification row.
func (r *NotificationRepo) Insert(ctx context.Context, n model.Notification) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO notifications
 (sender_id, receiver_id, receiver_type, notification_type, title, message, related_data)
 VALUES (?,?,?,?,?,?,?)`,
		n.SenderID, n.ReceiverID, n.ReceiverType, n.Type, n.Title, n.Message, n.RelatedData)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// InsertForAllAdmins materializes one "admin" row per admin account so
// each admin tracks their own read state.
func (r *NotificationRepo) InsertForAllAdmins(ctx context.Context, n model.Notification) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO notifications
 (sender_id, receiver_id, receiver_type, notification_type, title, message, related_data)
 SELECT ?, id, 'admin', ?, ?, ?, ? FROM users WHERE role='admin'`,
		n.SenderID, n.Type, n.Title, n.Message, n.RelatedData)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListForUser returns the notifications visible to a user: their own rows
// plus broadcasts.  Admins additionally see their admin-scoped rows.
func (r *NotificationRepo) ListForUser(ctx context.Context, userID uint64, isAdmin bool, limit, offset int) ([]*model.Notification, error) {
	q := `SELECT ` + notifCols + ` FROM notifications
 WHERE (receiver_type='user' AND receiver_id=?) OR receiver_type='all'`
	args := []interface{}{userID}
	if isAdmin {
		q = `SELECT ` + notifCols + ` FROM notifications
 WHERE (receiver_type IN ('user','admin') AND receiver_id=?) OR receiver_type='all'`
	}
	q += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.SenderID, &n.ReceiverID, &n.ReceiverType, &n.Type,
			&n.Title, &n.Message, &n.RelatedData, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &n)
	}
	return out, rows.Err()
}

// UnreadCount counts the user's unread notifications under the same
// visibility rule as ListForUser.
func (r *NotificationRepo) UnreadCount(ctx context.Context, userID uint64, isAdmin bool) (int64, error) {
	q := `SELECT COUNT(*) FROM notifications
 WHERE is_read=0 AND ((receiver_type='user' AND receiver_id=?) OR receiver_type='all')`
	if isAdmin {
		q = `SELECT COUNT(*) FROM notifications
 WHERE is_read=0 AND ((receiver_type IN ('user','admin') AND receiver_id=?) OR receiver_type='all')`
	}
	var n int64
	err := r.DB.QueryRowContext(ctx, q, userID).Scan(&n)
	return n, err
}

// MarkRead flips one visible notification to read.  Broadcast rows are
// shared, so marking one read clears it for everyone, matching
// MarkAllRead.  Re-marking an already read row succeeds; the driver
// reports zero affected rows then, so a zero is confirmed against the
// visibility rule before being treated as missing.
func (r *NotificationRepo) MarkRead(ctx context.Context, userID, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE notifications SET is_read=1 WHERE id=? AND (receiver_id=? OR receiver_type='all')",
		id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var visible int
		err = r.DB.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM notifications WHERE id=? AND (receiver_id=? OR receiver_type='all')",
			id, userID).Scan(&visible)
		if err != nil {
			return err
		}
		if visible == 0 {
			return ErrNotFound
		}
	}
	return nil
}

// MarkAllRead marks every unread row the user can see: their own rows
// plus broadcasts.  Broadcast rows carry a NULL receiver_id, so the
// predicate must match them by receiver_type or they stay unread
// forever.  Running it again is a no-op, not an error.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID uint64) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE notifications SET is_read=1 WHERE is_read=0 AND (receiver_id=? OR receiver_type='all')",
		userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Delete removes one owned notification.
func (r *NotificationRepo) Delete(ctx context.Context, userID, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM notifications WHERE id=? AND receiver_id=?", id, userID)
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
