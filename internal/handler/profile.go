package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/melodix/melodix-backend/internal/repository"
)

// ProfileHandler serves the authenticated user's own account view.
type ProfileHandler struct {
	Users *repository.UserRepo
}

func NewProfileHandler(u *repository.UserRepo) *ProfileHandler {
	return &ProfileHandler{Users: u}
}

type profileResp struct {
	ID          uint64               `json:"id"`
	FullName    string               `json:"full_name"`
	Email       string               `json:"email"`
	Role        string               `json:"role"`
	IsVerified  bool                 `json:"is_verified"`
	Avatar      *string              `json:"avatar"`
	Phone       *string              `json:"phone"`
	DateOfBirth *string              `json:"date_of_birth"`
	Gender      *string              `json:"gender"`
	LastLogin   *time.Time           `json:"last_login"`
	CreatedAt   time.Time            `json:"created_at"`
	Stats       repository.UserStats `json:"stats"`
}

type profileUpdateReq struct {
	FullName    *string `json:"full_name"`
	Avatar      *string `json:"avatar"`
	Phone       *string `json:"phone"`
	DateOfBirth *string `json:"date_of_birth"` // YYYY-MM-DD
	Gender      *string `json:"gender"`
}

// Get returns the profile together with activity counters.
func (h *ProfileHandler) Get(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	uid := currentUserID(c)
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return failErr(c, err)
	}
	stats, err := h.Users.Stats(ctx, uid)
	if err != nil {
		return failErr(c, err)
	}

	resp := profileResp{
		ID:         u.ID,
		FullName:   u.FullName,
		Email:      u.Email,
		Role:       u.Role,
		IsVerified: u.IsVerified,
		Avatar:     u.Avatar,
		Phone:      u.Phone,
		Gender:     u.Gender,
		LastLogin:  u.LastLogin,
		CreatedAt:  u.CreatedAt,
		Stats:      stats,
	}
	if u.DateOfBirth != nil {
		d := u.DateOfBirth.Format("2006-01-02")
		resp.DateOfBirth = &d
	}
	return ok(c, http.StatusOK, echo.Map{"user": resp})
}

// Update applies the provided profile fields; absent fields stay as they
// are.
func (h *ProfileHandler) Update(c echo.Context) error {
	var req profileUpdateReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	upd := repository.ProfileUpdate{
		Avatar: req.Avatar,
		Phone:  req.Phone,
	}
	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if name == "" {
			return fail(c, http.StatusUnprocessableEntity, "full_name cannot be empty")
		}
		upd.FullName = &name
	}
	if req.Gender != nil {
		g := strings.ToLower(strings.TrimSpace(*req.Gender))
		switch g {
		case "male", "female", "other", "":
		default:
			return fail(c, http.StatusUnprocessableEntity, "gender must be male, female or other")
		}
		upd.Gender = &g
	}
	if req.DateOfBirth != nil && *req.DateOfBirth != "" {
		d, err := time.Parse("2006-01-02", *req.DateOfBirth)
		if err != nil {
			return fail(c, http.StatusUnprocessableEntity, "date_of_birth must be YYYY-MM-DD")
		}
		upd.DateOfBirth = &d
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Users.UpdateProfile(ctx, currentUserID(c), upd); err != nil {
		return failErr(c, err)
	}
	return h.Get(c)
}
