package router

import (
	"github.com/labstack/echo/v4"

	"github.com/melodix/melodix-backend/internal/middleware"
)

// registerAdmin mounts the admin console behind the token authenticator
// plus a role check.
func registerAdmin(e *echo.Echo, h Handlers, mw Middlewares) {
	g := e.Group("/api/admin", middleware.Auth(mw.TokenAuth, mw.Metrics), middleware.RequireRole("admin"))

	g.GET("/dashboard", h.AdminSong.Dashboard)

	g.GET("/songs", h.AdminSong.List)
	g.POST("/songs", h.AdminSong.Create)
	g.GET("/songs/categories", h.AdminSong.Categories)
	g.POST("/songs/upload", h.AdminSong.Upload)
	g.POST("/songs/sync", h.AdminSong.Sync)
	g.GET("/songs/:id", h.AdminSong.Get)
	g.PUT("/songs/:id", h.AdminSong.Update)
	g.DELETE("/songs/:id", h.AdminSong.Delete)

	g.GET("/users", h.AdminUser.List)
	g.POST("/users", h.AdminUser.Create)
	g.PUT("/users/:id", h.AdminUser.Update)
	g.GET("/users/:id/stats", h.AdminUser.Stats)
	g.PUT("/users/:id/active", h.AdminUser.SetActive)
	g.DELETE("/users/:id", h.AdminUser.Delete)

	g.GET("/comments", h.Comment.AdminList)
	g.PUT("/comments/:id/restore", h.Comment.AdminRestore)
	g.GET("/comments/stats", h.Comment.AdminStats)

	g.GET("/plays/top", h.Play.AdminTop)
	g.GET("/plays/stats", h.Play.AdminStats)

	g.GET("/lyrics", h.Lyric.List)
	g.POST("/lyrics", h.Lyric.Upsert)
	g.DELETE("/lyrics/:songId", h.Lyric.Delete)

	g.POST("/notifications/broadcast", h.Notification.AdminBroadcast)
}
