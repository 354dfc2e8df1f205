package router

import (
	"github.com/labstack/echo/v4"

	"github.com/melodix/melodix-backend/internal/middleware"
)

// registerUser mounts the authenticated user surface.  Every route here
// runs the token authenticator, which silently renews the pair and
// exposes the fresh token through response headers.
func registerUser(e *echo.Echo, h Handlers, mw Middlewares) {
	g := e.Group("/api", middleware.Auth(mw.TokenAuth, mw.Metrics))

	g.POST("/auth/logout", h.Auth.Logout)

	// Profile, history and the password change resolve the presented
	// token against the user row or the device session row, so they run
	// the combined authenticator instead.
	s := e.Group("/api", middleware.Auth(mw.AnyAuth, mw.Metrics))
	s.POST("/auth/change-password", h.Auth.ChangePassword)

	s.GET("/profile", h.Profile.Get)
	s.PUT("/profile", h.Profile.Update)

	g.GET("/playlists", h.Playlist.List)
	g.POST("/playlists", h.Playlist.Create)
	g.GET("/playlists/:id", h.Playlist.Get)
	g.PUT("/playlists/:id", h.Playlist.Update)
	g.DELETE("/playlists/:id", h.Playlist.Delete)
	g.GET("/playlists/:id/songs", h.Playlist.Songs)
	g.POST("/playlists/:id/songs", h.Playlist.AddSong)
	g.DELETE("/playlists/:id/songs/:songId", h.Playlist.RemoveSong)

	g.GET("/favorites", h.Favorite.List)
	g.POST("/favorites", h.Favorite.Add)
	g.DELETE("/favorites/:songId", h.Favorite.Remove)
	g.GET("/favorites/:songId/check", h.Favorite.Check)

	g.POST("/comments", h.Comment.Create)
	g.PUT("/comments/:id", h.Comment.Update)
	g.DELETE("/comments/:id", h.Comment.Delete)

	s.GET("/history", h.History.List)
	s.GET("/history/by-date", h.History.ByDate)
	s.GET("/history/stats", h.History.Stats)
	s.POST("/history", h.History.Record)
	s.DELETE("/history/:id", h.History.DeleteEntry)
	s.DELETE("/history", h.History.Clear)

	g.GET("/downloads", h.Download.List)
	g.POST("/downloads", h.Download.Register)
	g.GET("/downloads/:songId/check", h.Download.Check)
	g.DELETE("/downloads/:songId", h.Download.Remove)

	g.GET("/notifications", h.Notification.List)
	g.GET("/notifications/unread-count", h.Notification.UnreadCount)
	g.PUT("/notifications/:id/read", h.Notification.MarkRead)
	g.PUT("/notifications/read-all", h.Notification.MarkAllRead)
	g.DELETE("/notifications/:id", h.Notification.Delete)
}
