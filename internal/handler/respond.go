// Package handler contains the HTTP handlers.  Every response body uses
// the same envelope: {"success": true, "data": ...} on the happy path and
// {"success": false, "error": "..."} otherwise, with an optional "meta"
// object for pagination.
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/melodix/melodix-backend/internal/catalog"
	"github.com/melodix/melodix-backend/internal/repository"
)

// dbTimeout bounds every handler-initiated database call.
const dbTimeout = 5 * time.Second

func dbCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

func ok(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}

func okMeta(c echo.Context, status int, data interface{}, meta echo.Map) error {
	return c.JSON(status, echo.Map{"success": true, "data": data, "meta": meta})
}

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"success": false, "error": msg})
}

// failErr maps known error values to their HTTP status.  Anything
// unrecognized is a 500 with a generic message; internals never leak.
func failErr(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fail(c, http.StatusNotFound, "not found")
	case errors.Is(err, repository.ErrForbidden):
		return fail(c, http.StatusForbidden, "forbidden")
	case errors.Is(err, repository.ErrConflict):
		return fail(c, http.StatusConflict, "already exists")
	case errors.Is(err, repository.ErrEmailExists):
		return fail(c, http.StatusConflict, "email already exists")
	case errors.Is(err, catalog.ErrNotFound):
		return fail(c, http.StatusNotFound, "song not found")
	case errors.Is(err, catalog.ErrUnavailable):
		return fail(c, http.StatusBadGateway, "upstream service unavailable")
	default:
		c.Logger().Errorf("internal error: %v", err)
		return fail(c, http.StatusInternalServerError, "internal error")
	}
}

// currentUserID reads the authenticated user injected by the auth
// middleware.  Zero means anonymous.
func currentUserID(c echo.Context) uint64 {
	if v, ok := c.Get("user_id").(uint64); ok {
		return v
	}
	return 0
}

func isAdmin(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == "admin"
}

// pageParams reads ?page= and ?limit= with sane bounds.
func pageParams(c echo.Context, defLimit, maxLimit int) (page, limit, offset int) {
	page = intQuery(c, "page", 1)
	if page < 1 {
		page = 1
	}
	limit = intQuery(c, "limit", defLimit)
	if limit < 1 {
		limit = defLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit, (page - 1) * limit
}

func intQuery(c echo.Context, name string, def int) int {
	s := c.QueryParam(name)
	if s == "" {
		return def
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return def
		}
		n = n*10 + int(r-'0')
		if n > 1<<30 {
			return def
		}
	}
	return n
}
