package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/melodix/melodix-backend/internal/auth"
	"github.com/melodix/melodix-backend/internal/model"
	"github.com/melodix/melodix-backend/internal/utils"
)

// UserRepo persists accounts and the opaque credentials stored on them.
// It satisfies auth.CredentialStore.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = `id, full_name, email, password_hash, role, avatar, phone,
 date_of_birth, gender, is_active, is_verified, auth_token, token_expires_at,
 refresh_token, refresh_token_expires_at, reset_token, reset_token_expires_at,
 last_login, created_at, updated_at`

func scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.Role,
		&u.Avatar, &u.Phone, &u.DateOfBirth, &u.Gender, &u.IsActive, &u.IsVerified,
		&u.AuthToken, &u.TokenExpiresAt, &u.RefreshToken, &u.RefreshExpiresAt,
		&u.ResetToken, &u.ResetExpiresAt, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a user with the default role and returns its ID.
func (r *UserRepo) Create(ctx context.Context, fullName, email, password string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (full_name, email, password_hash, role) VALUES (?,?,?,'user')",
		fullName, email, hash)
	if err != nil {
		if isDup(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id=? LIMIT 1", id))
}

// FindByValidAuthToken is the authentication fast path: one indexed lookup
// on the exact token string with the expiry check pushed into SQL.
func (r *UserRepo) FindByValidAuthToken(ctx context.Context, token string) (*model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE auth_token=? AND token_expires_at > UTC_TIMESTAMP() LIMIT 1",
		token))
}

// FindByAnyToken matches either credential column regardless of expiry.
// The renewal path uses it to locate the row before deciding whether the
// refresh token is still live.
func (r *UserRepo) FindByAnyToken(ctx context.Context, token string) (*model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE auth_token=? OR refresh_token=? LIMIT 1",
		token, token))
}

// SaveTokens stores a freshly issued pair on the user row.
func (r *UserRepo) SaveTokens(ctx context.Context, userID uint64, p auth.Pair) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users SET auth_token=?, token_expires_at=?, refresh_token=?, refresh_token_expires_at=? WHERE id=?`,
		p.AuthToken, p.AuthExpiresAt, p.RefreshToken, p.RefreshExpiresAt, userID)
	return err
}

// ClearTokens nulls all four credential columns, ending every token-based
// login for the user at once.
func (r *UserRepo) ClearTokens(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users SET auth_token=NULL, token_expires_at=NULL, refresh_token=NULL, refresh_token_expires_at=NULL WHERE id=?`,
		userID)
	return err
}

// TouchLastLogin records a successful login.
func (r *UserRepo) TouchLastLogin(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET last_login=UTC_TIMESTAMP() WHERE id=?", userID)
	return err
}

// ProfileUpdate carries the optional profile fields; nil means unchanged.
type ProfileUpdate struct {
	FullName    *string
	Avatar      *string
	Phone       *string
	DateOfBirth *time.Time
	Gender      *string
}

// UpdateProfile applies the non-nil fields of upd to the user row.
func (r *UserRepo) UpdateProfile(ctx context.Context, userID uint64, upd ProfileUpdate) error {
	sets := make([]string, 0, 5)
	args := make([]interface{}, 0, 6)
	if upd.FullName != nil {
		sets = append(sets, "full_name=?")
		args = append(args, *upd.FullName)
	}
	if upd.Avatar != nil {
		sets = append(sets, "avatar=?")
		args = append(args, *upd.Avatar)
	}
	if upd.Phone != nil {
		sets = append(sets, "phone=?")
		args = append(args, *upd.Phone)
	}
	if upd.DateOfBirth != nil {
		sets = append(sets, "date_of_birth=?")
		args = append(args, *upd.DateOfBirth)
	}
	if upd.Gender != nil {
		sets = append(sets, "gender=?")
		args = append(args, *upd.Gender)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, userID)
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id=?", args...)
	return err
}

// AdminUpdate lets the console rename a non-admin account or change its
// email.  A taken email maps to ErrEmailExists, admin rows to
// ErrForbidden.
func (r *UserRepo) AdminUpdate(ctx context.Context, id uint64, fullName, email *string) error {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if u.IsAdmin() {
		return ErrForbidden
	}
	sets := make([]string, 0, 2)
	args := make([]interface{}, 0, 3)
	if fullName != nil {
		sets = append(sets, "full_name=?")
		args = append(args, *fullName)
	}
	if email != nil {
		sets = append(sets, "email=?")
		args = append(args, strings.ToLower(strings.TrimSpace(*email)))
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	_, err = r.DB.ExecContext(ctx,
		"UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id=?", args...)
	if err != nil && isDup(err) {
		return ErrEmailExists
	}
	return err
}

// UpdatePassword replaces the stored hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, userID uint64, hash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=? WHERE id=?", hash, userID)
	return err
}

// SetResetToken stores a password reset token for the account with the
// given email.  ErrNotFound when no such account exists.
func (r *UserRepo) SetResetToken(ctx context.Context, email, token string, expiresAt time.Time) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var id uint64
	err := r.DB.QueryRowContext(ctx, "SELECT id FROM users WHERE email=? LIMIT 1", email).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	_, err = r.DB.ExecContext(ctx,
		"UPDATE users SET reset_token=?, reset_token_expires_at=? WHERE id=?",
		token, expiresAt, id)
	return id, err
}

// FindByValidResetToken returns the user holding a live reset token.
func (r *UserRepo) FindByValidResetToken(ctx context.Context, token string) (*model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE reset_token=? AND reset_token_expires_at > UTC_TIMESTAMP() LIMIT 1",
		token))
}

// ClearResetToken consumes the token after a successful reset.
func (r *UserRepo) ClearResetToken(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET reset_token=NULL, reset_token_expires_at=NULL WHERE id=?", userID)
	return err
}

// UserStats aggregates the activity counters shown on the profile screen.
type UserStats struct {
	Playlists int64 `json:"playlists"`
	Favorites int64 `json:"favorites"`
	Comments  int64 `json:"comments"`
	Downloads int64 `json:"downloads"`
}

// Stats counts the user's playlists, favorites, active comments and
// downloads in one round trip.
func (r *UserRepo) Stats(ctx context.Context, userID uint64) (UserStats, error) {
	var s UserStats
	err := r.DB.QueryRowContext(ctx, `SELECT
 (SELECT COUNT(*) FROM playlists WHERE user_id=?),
 (SELECT COUNT(*) FROM user_favorites WHERE user_id=?),
 (SELECT COUNT(*) FROM comments WHERE user_id=? AND is_active=1),
 (SELECT COUNT(*) FROM downloads WHERE user_id=?)`,
		userID, userID, userID, userID).
		Scan(&s.Playlists, &s.Favorites, &s.Comments, &s.Downloads)
	return s, err
}

// ListUsers returns non-admin accounts for the admin console, newest
// first, optionally filtered by a name/email substring.
func (r *UserRepo) ListUsers(ctx context.Context, search string, limit, offset int) ([]*model.User, error) {
	q := "SELECT " + userCols + " FROM users WHERE role <> 'admin'"
	args := []interface{}{}
	if search != "" {
		q += " AND (full_name LIKE ? OR email LIKE ?)"
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

	var out []*model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.Role,
			&u.Avatar, &u.Phone, &u.DateOfBirth, &u.Gender, &u.IsActive, &u.IsVerified,
			&u.AuthToken, &u.TokenExpiresAt, &u.RefreshToken, &u.RefreshExpiresAt,
			&u.ResetToken, &u.ResetExpiresAt, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &u)
	}
	return out, rows.Err()
}

// CountUsers returns total and active counts over non-admin accounts.
func (r *UserRepo) CountUsers(ctx context.Context) (total, active int64, err error) {
	err = r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(is_active),0) FROM users WHERE role <> 'admin'").
		Scan(&total, &active)
	return
}

// DeleteUser removes an account.  Admin accounts cannot be deleted
// through this path under any circumstances.
func (r *UserRepo) DeleteUser(ctx context.Context, id uint64) error {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if u.IsAdmin() {
		return ErrForbidden
	}
	_, err = r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	return err
}

// SetActive toggles an account's is_active flag.  Admin accounts are
// protected the same way they are for deletion.
func (r *UserRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if u.IsAdmin() {
		return ErrForbidden
	}
	_, err = r.DB.ExecContext(ctx, "UPDATE users SET is_active=? WHERE id=?", active, id)
	return err
}
