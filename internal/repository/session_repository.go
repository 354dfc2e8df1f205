package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/melodix/melodix-backend/internal/model"
)

// SessionRepo persists per-device login sessions.  It satisfies
// auth.SessionStore.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// Create inserts a session row and returns its ID.
func (r *SessionRepo) Create(ctx context.Context, userID uint64, token string, deviceInfo, ipAddress string, expiresAt time.Time) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO user_sessions (user_id, session_token, device_info, ip_address, expires_at) VALUES (?,?,?,?,?)`,
		userID, token, nullStr(deviceInfo), nullStr(ipAddress), expiresAt)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// FindUserBySession resolves a live session token to its owner in a
// single join.  Expired sessions are indistinguishable from unknown ones.
func (r *SessionRepo) FindUserBySession(ctx context.Context, token string) (*model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		`SELECT `+prefixedUserCols("u")+` FROM user_sessions s
 JOIN users u ON u.id = s.user_id
 WHERE s.session_token=? AND s.expires_at > UTC_TIMESTAMP() LIMIT 1`, token))
}

// DeleteByToken removes one session, logging that device out.
func (r *SessionRepo) DeleteByToken(ctx context.Context, token string) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM user_sessions WHERE session_token=?", token)
	return err
}

// DeleteAllForUser removes every session, used after a password change so
// all devices must log in again.
func (r *SessionRepo) DeleteAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM user_sessions WHERE user_id=?", userID)
	return err
}

// PurgeExpired deletes sessions past their expiry.  Called periodically
// from the server loop.
func (r *SessionRepo) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM user_sessions WHERE expires_at <= UTC_TIMESTAMP()")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func nullStr(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// prefixedUserCols qualifies every user column with a table alias for
// join queries.
func prefixedUserCols(alias string) string {
	return alias + `.id, ` + alias + `.full_name, ` + alias + `.email, ` + alias + `.password_hash, ` +
		alias + `.role, ` + alias + `.avatar, ` + alias + `.phone, ` + alias + `.date_of_birth, ` +
		alias + `.gender, ` + alias + `.is_active, ` + alias + `.is_verified, ` + alias + `.auth_token, ` + alias + `.token_expires_at, ` +
		alias + `.refresh_token, ` + alias + `.refresh_token_expires_at, ` + alias + `.reset_token, ` +
		alias + `.reset_token_expires_at, ` + alias + `.last_login, ` + alias + `.created_at, ` + alias + `.updated_at`
}
