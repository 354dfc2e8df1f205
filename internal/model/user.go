package model

import "time"

// User represents an application user record as stored in the `users`
// table.  Each field corresponds to a column.  The json tags are omitted
// because these structs are used internally by the repository layer;
// handlers define separate response types with appropriate JSON tags.
//
// The four token columns implement the opaque credential scheme: the
// client holds the exact strings stored here, and a request is authorized
// by looking the presented token up, never by decoding it.
type User struct {
	ID               uint64     // users.id
	FullName         string     // users.full_name
	Email            string     // users.email
	PasswordHash     string     // users.password_hash
	Role             string     // users.role ("user" or "admin")
	Avatar           *string    // users.avatar (nullable)
	Phone            *string    // users.phone (nullable)
	DateOfBirth      *time.Time // users.date_of_birth (nullable)
	Gender           *string    // users.gender (nullable)
	IsActive         bool       // users.is_active
	IsVerified       bool       // users.is_verified
	AuthToken        *string    // users.auth_token (nullable)
	TokenExpiresAt   *time.Time // users.token_expires_at (nullable)
	RefreshToken     *string    // users.refresh_token (nullable)
	RefreshExpiresAt *time.Time // users.refresh_token_expires_at (nullable)
	ResetToken       *string    // users.reset_token (nullable)
	ResetExpiresAt   *time.Time // users.reset_token_expires_at (nullable)
	LastLogin        *time.Time // users.last_login (nullable)
	CreatedAt        time.Time  // users.created_at
	UpdatedAt        time.Time  // users.updated_at
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool { return u.Role == "admin" }

// Session models a row in the `user_sessions` table.  A session is an
// alternative proof of identity: a device logs in, receives the session
// token, and presents it on subsequent calls.  Sessions expire on a fixed
// schedule and are never silently renewed.
type Session struct {
	ID           uint64    // user_sessions.id
	UserID       uint64    // user_sessions.user_id
	SessionToken string    // user_sessions.session_token
	DeviceInfo   *string   // user_sessions.device_info (nullable)
	IPAddress    *string   // user_sessions.ip_address (nullable)
	ExpiresAt    time.Time // user_sessions.expires_at
	CreatedAt    time.Time // user_sessions.created_at
}
