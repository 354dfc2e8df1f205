package handler

import (
	"database/sql"
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthHandler answers liveness and readiness probes.
type HealthHandler struct {
	DB *sql.DB
}

func NewHealthHandler(db *sql.DB) *HealthHandler { return &HealthHandler{DB: db} }

// Live always answers ok while the process runs.
func (h *HealthHandler) Live(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Ready answers ok only when the database responds to a ping.
func (h *HealthHandler) Ready(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.DB.PingContext(ctx); err != nil {
		return fail(c, http.StatusServiceUnavailable, "database unavailable")
	}
	return c.String(http.StatusOK, "ok")
}
