package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/melodix/melodix-backend/internal/auth"
	"github.com/melodix/melodix-backend/internal/config"
	"github.com/melodix/melodix-backend/internal/middleware"
	"github.com/melodix/melodix-backend/internal/model"
	"github.com/melodix/melodix-backend/internal/notify"
	"github.com/melodix/melodix-backend/internal/utils"
)

// UserStore is the account persistence surface the auth endpoints use.
// repository.UserRepo satisfies it; tests supply an in-memory one.
type UserStore interface {
	Create(ctx context.Context, fullName, email, password string, cost int) (uint64, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	FindByAnyToken(ctx context.Context, token string) (*model.User, error)
	TouchLastLogin(ctx context.Context, userID uint64) error
	SetResetToken(ctx context.Context, email, token string, expiresAt time.Time) (uint64, error)
	FindByValidResetToken(ctx context.Context, token string) (*model.User, error)
	UpdatePassword(ctx context.Context, userID uint64, hash string) error
	ClearResetToken(ctx context.Context, userID uint64) error
}

// SessionStore is the device session persistence the auth endpoints use.
type SessionStore interface {
	Create(ctx context.Context, userID uint64, token, deviceInfo, ipAddress string, expiresAt time.Time) (uint64, error)
	DeleteByToken(ctx context.Context, token string) error
	DeleteAllForUser(ctx context.Context, userID uint64) error
}

// AuthHandler bundles dependencies for the account endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Users    UserStore
	Sessions SessionStore
	Issuer   *auth.Issuer
	Notify   notify.Notifier
}

func NewAuthHandler(cfg config.Config, u UserStore, s SessionStore, iss *auth.Issuer, n notify.Notifier) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Sessions: s, Issuer: iss, Notify: n}
}

// ----- DTOs -----

type registerReq struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type loginReq struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	DeviceInfo string `json:"device_info"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}
type forgotReq struct {
	Email string `json:"email"`
}
type resetReq struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}
type changePasswordReq struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type userPart struct {
	ID         uint64  `json:"id"`
	FullName   string  `json:"full_name"`
	Email      string  `json:"email"`
	Role       string  `json:"role"`
	Avatar     *string `json:"avatar"`
	IsVerified bool    `json:"is_verified"`
}

type tokenPart struct {
	AuthToken        string    `json:"auth_token"`
	TokenExpiresAt   time.Time `json:"token_expires_at"`
	RefreshToken     string    `json:"refresh_token"`
	RefreshExpiresAt time.Time `json:"refresh_token_expires_at"`
}

// Register creates an account and signs it in immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.FullName == "" || req.Email == "" || req.Password == "" {
		return fail(c, http.StatusUnprocessableEntity, "full_name, email and password are required")
	}
	if !strings.Contains(req.Email, "@") {
		return fail(c, http.StatusUnprocessableEntity, "invalid email")
	}
	if len(req.Password) < 6 {
		return fail(c, http.StatusUnprocessableEntity, "password must be at least 6 characters")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.FullName, req.Email, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return failErr(c, err)
	}

	pair, err := h.Issuer.Issue(ctx, uid)
	if err != nil {
		return failErr(c, err)
	}

	h.Notify.NotifyUser(ctx, nil, uid, "welcome", "Welcome to Melodix",
		"Hi "+req.FullName+", your account is ready. Start exploring music now!", nil)
	h.Notify.NotifyAdmins(ctx, nil, "new_user", "New user registered",
		req.FullName+" ("+req.Email+") just signed up.", nil)

	return ok(c, http.StatusCreated, echo.Map{
		"user":   userPart{ID: uid, FullName: req.FullName, Email: req.Email, Role: "user"},
		"tokens": pairPart(pair),
	})
}

// Login verifies credentials, rotates the token pair and opens a device
// session.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return fail(c, http.StatusUnprocessableEntity, "email and password are required")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil || !utils.VerifyPassword(u.PasswordHash, req.Password) {
		// Same answer for unknown email and wrong password.
		return fail(c, http.StatusUnauthorized, "invalid email or password")
	}
	if !u.IsActive {
		return fail(c, http.StatusForbidden, "account is deactivated")
	}

	pair, err := h.Issuer.Issue(ctx, u.ID)
	if err != nil {
		return failErr(c, err)
	}

	// The device session stores the access token itself, so the session
	// strategy resolves the same credential the client already holds.
	sessionExpires := h.Issuer.Now().Add(time.Duration(h.Cfg.SessionTTLHrs) * time.Hour)
	if _, err := h.Sessions.Create(ctx, u.ID, pair.AuthToken, req.DeviceInfo, c.RealIP(), sessionExpires); err != nil {
		return failErr(c, err)
	}
	if err := h.Users.TouchLastLogin(ctx, u.ID); err != nil {
		c.Logger().Warnf("touch last_login failed: %v", err)
	}

	return ok(c, http.StatusOK, echo.Map{
		"user":               userPart{ID: u.ID, FullName: u.FullName, Email: u.Email, Role: u.Role, Avatar: u.Avatar, IsVerified: u.IsVerified},
		"tokens":             pairPart(pair),
		"session_expires_at": sessionExpires,
	})
}

// Logout revokes the caller's tokens and closes the device session that
// was keyed on the presented token.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	uid := currentUserID(c)
	if err := h.Issuer.Revoke(ctx, uid); err != nil {
		return failErr(c, err)
	}
	if tok := middleware.BearerToken(c); tok != "" {
		if err := h.Sessions.DeleteByToken(ctx, tok); err != nil {
			c.Logger().Warnf("delete session failed: %v", err)
		}
	}
	return ok(c, http.StatusOK, echo.Map{"message": "logged out"})
}

// Refresh exchanges a refresh token for a brand new pair.  The old pair
// stops working immediately; calling this twice with the same token fails
// the second time.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if req.RefreshToken == "" {
		return fail(c, http.StatusUnprocessableEntity, "refresh_token is required")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.FindByAnyToken(ctx, req.RefreshToken)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "invalid auth token")
	}
	now := h.Issuer.Now()
	if u.RefreshToken == nil || *u.RefreshToken != req.RefreshToken ||
		u.RefreshExpiresAt == nil || !u.RefreshExpiresAt.After(now) {
		return fail(c, http.StatusUnauthorized, "token expired, please log in again")
	}

	pair, err := h.Issuer.Issue(ctx, u.ID)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"tokens": pairPart(pair)})
}

// ForgotPassword issues a one-hour reset token.  With no mail delivery
// configured the token is returned in the response body.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if strings.TrimSpace(req.Email) == "" {
		return fail(c, http.StatusUnprocessableEntity, "email is required")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	token, err := utils.RandomHex(32)
	if err != nil {
		return failErr(c, err)
	}
	expires := h.Issuer.Now().Add(time.Duration(h.Cfg.ResetTTLMin) * time.Minute)
	if _, err := h.Users.SetResetToken(ctx, req.Email, token, expires); err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{
		"message":     "reset token issued",
		"reset_token": token,
		"expires_at":  expires,
	})
}

// ResetPassword consumes a reset token, replaces the password and revokes
// every credential so all devices must sign in again.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if req.Token == "" {
		return fail(c, http.StatusUnprocessableEntity, "token is required")
	}
	if len(req.NewPassword) < 6 {
		return fail(c, http.StatusUnprocessableEntity, "password must be at least 6 characters")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.FindByValidResetToken(ctx, req.Token)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "invalid or expired reset token")
	}
	hash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		return failErr(c, err)
	}
	if err := h.Users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return failErr(c, err)
	}
	if err := h.Users.ClearResetToken(ctx, u.ID); err != nil {
		return failErr(c, err)
	}
	if err := h.Issuer.Revoke(ctx, u.ID); err != nil {
		return failErr(c, err)
	}
	if err := h.Sessions.DeleteAllForUser(ctx, u.ID); err != nil {
		c.Logger().Warnf("delete sessions failed: %v", err)
	}
	return ok(c, http.StatusOK, echo.Map{"message": "password updated, please log in"})
}

// ChangePassword verifies the current password before replacing it, then
// logs every device out.  The route accepts either identity strategy, so
// a device session or a user token both work here.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if req.CurrentPassword == "" {
		return fail(c, http.StatusUnprocessableEntity, "current_password is required")
	}
	if len(req.NewPassword) < 6 {
		return fail(c, http.StatusUnprocessableEntity, "password must be at least 6 characters")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	uid := currentUserID(c)
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return failErr(c, err)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.CurrentPassword) {
		return fail(c, http.StatusUnauthorized, "current password is incorrect")
	}
	hash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		return failErr(c, err)
	}
	if err := h.Users.UpdatePassword(ctx, uid, hash); err != nil {
		return failErr(c, err)
	}
	if err := h.Issuer.Revoke(ctx, uid); err != nil {
		return failErr(c, err)
	}
	if err := h.Sessions.DeleteAllForUser(ctx, uid); err != nil {
		c.Logger().Warnf("delete sessions failed: %v", err)
	}
	return ok(c, http.StatusOK, echo.Map{"message": "password changed, please log in again"})
}

func pairPart(p auth.Pair) tokenPart {
	return tokenPart{
		AuthToken:        p.AuthToken,
		TokenExpiresAt:   p.AuthExpiresAt,
		RefreshToken:     p.RefreshToken,
		RefreshExpiresAt: p.RefreshExpiresAt,
	}
}
