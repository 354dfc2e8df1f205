package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/melodix/melodix-backend/internal/model"
	"github.com/melodix/melodix-backend/internal/repository"
)

// AdminUserHandler is the user management surface of the admin console.
// Admin accounts themselves are never listed or touched here.
type AdminUserHandler struct {
	Users      *repository.UserRepo
	Sessions   *repository.SessionRepo
	BcryptCost int
}

func NewAdminUserHandler(users *repository.UserRepo, sessions *repository.SessionRepo, bcryptCost int) *AdminUserHandler {
	return &AdminUserHandler{Users: users, Sessions: sessions, BcryptCost: bcryptCost}
}

type adminUserResp struct {
	ID         uint64  `json:"id"`
	FullName   string  `json:"full_name"`
	Email      string  `json:"email"`
	Avatar     *string `json:"avatar"`
	IsActive   bool    `json:"is_active"`
	IsVerified bool    `json:"is_verified"`
	LastLogin  *string `json:"last_login"`
	CreatedAt  string  `json:"created_at"`
}

// List returns non-admin accounts with an optional name/email search.
func (h *AdminUserHandler) List(c echo.Context) error {
	page, limit, offset := pageParams(c, 50, 200)

	ctx, cancel := dbCtx(c)
	defer cancel()

	users, err := h.Users.ListUsers(ctx, strings.TrimSpace(c.QueryParam("search")), limit, offset)
	if err != nil {
		return failErr(c, err)
	}
	total, active, err := h.Users.CountUsers(ctx)
	if err != nil {
		return failErr(c, err)
	}

	out := make([]adminUserResp, 0, len(users))
	for _, u := range users {
		out = append(out, adminUserView(u))
	}
	return okMeta(c, http.StatusOK, echo.Map{"users": out},
		echo.Map{"page": page, "limit": limit, "total": total, "active": active})
}

type adminUserCreateReq struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Create adds a regular account from the console.
func (h *AdminUserHandler) Create(c echo.Context) error {
	var req adminUserCreateReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.FullName == "" || req.Email == "" || req.Password == "" {
		return fail(c, http.StatusUnprocessableEntity, "full_name, email and password are required")
	}
	if len(req.Password) < 6 {
		return fail(c, http.StatusUnprocessableEntity, "password must be at least 6 characters")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.FullName, req.Email, req.Password, h.BcryptCost)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusCreated, echo.Map{"id": uid})
}

type adminUserUpdateReq struct {
	FullName *string `json:"full_name"`
	Email    *string `json:"email"`
}

// Update renames an account or changes its email.  A taken email is a
// conflict.
func (h *AdminUserHandler) Update(c echo.Context) error {
	id, okID := paramID(c, "id")
	if !okID {
		return fail(c, http.StatusUnprocessableEntity, "invalid user id")
	}
	var req adminUserUpdateReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if name == "" {
			return fail(c, http.StatusUnprocessableEntity, "full_name cannot be empty")
		}
		req.FullName = &name
	}
	if req.Email != nil && !strings.Contains(*req.Email, "@") {
		return fail(c, http.StatusUnprocessableEntity, "invalid email")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Users.AdminUpdate(ctx, id, req.FullName, req.Email); err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"message": "user updated"})
}

// Stats returns one user's activity counters.
func (h *AdminUserHandler) Stats(c echo.Context) error {
	id, okID := paramID(c, "id")
	if !okID {
		return fail(c, http.StatusUnprocessableEntity, "invalid user id")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return failErr(c, err)
	}
	stats, err := h.Users.Stats(ctx, id)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"user": adminUserView(u), "stats": stats})
}

type setActiveReq struct {
	IsActive bool `json:"is_active"`
}

// SetActive enables or disables an account.  Deactivation also revokes
// tokens and sessions so the account is locked out immediately.
func (h *AdminUserHandler) SetActive(c echo.Context) error {
	id, okID := paramID(c, "id")
	if !okID {
		return fail(c, http.StatusUnprocessableEntity, "invalid user id")
	}
	var req setActiveReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Users.SetActive(ctx, id, req.IsActive); err != nil {
		return failErr(c, err)
	}
	if !req.IsActive {
		if err := h.Users.ClearTokens(ctx, id); err != nil {
			return failErr(c, err)
		}
		if err := h.Sessions.DeleteAllForUser(ctx, id); err != nil {
			return failErr(c, err)
		}
	}
	msg := "user activated"
	if !req.IsActive {
		msg = "user deactivated"
	}
	return ok(c, http.StatusOK, echo.Map{"message": msg})
}

// Delete permanently removes a non-admin account and, via foreign keys,
// everything it owns.
func (h *AdminUserHandler) Delete(c echo.Context) error {
	id, okID := paramID(c, "id")
	if !okID {
		return fail(c, http.StatusUnprocessableEntity, "invalid user id")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Users.DeleteUser(ctx, id); err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"message": "user deleted"})
}

func adminUserView(u *model.User) adminUserResp {
	r := adminUserResp{
		ID:         u.ID,
		FullName:   u.FullName,
		Email:      u.Email,
		Avatar:     u.Avatar,
		IsActive:   u.IsActive,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if u.LastLogin != nil {
		s := u.LastLogin.Format("2006-01-02 15:04:05")
		r.LastLogin = &s
	}
	return r
}
