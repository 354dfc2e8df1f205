package router

import (
	"github.com/labstack/echo/v4"

	"github.com/melodix/melodix-backend/internal/middleware"
)

// registerPublic mounts everything reachable without a token: account
// entry points, catalog browsing and anonymous play counting.  The
// upstream proxy routes carry the response cache and the rate limiter
// because they fan out to external services.
func registerPublic(e *echo.Echo, h Handlers, mw Middlewares) {
	a := e.Group("/api/auth")
	a.POST("/register", h.Auth.Register)
	a.POST("/login", h.Auth.Login)
	a.POST("/refresh", h.Auth.Refresh)
	a.POST("/forgot-password", h.Auth.ForgotPassword)
	a.POST("/reset-password", h.Auth.ResetPassword)

	songs := e.Group("/api/songs")
	if mw.RateLimit != nil {
		songs.Use(mw.RateLimit)
	}
	if mw.Cache != nil {
		songs.Use(mw.Cache)
	}
	songs.GET("/search", h.Song.Search)
	songs.GET("/top", h.Song.Top)
	songs.GET("/library", h.AdminSong.List)
	songs.GET("/:id", h.Song.Show)
	songs.GET("/:id/lyric", h.Song.Lyric)

	e.GET("/api/comments", h.Comment.ListBySong)

	// Play tracking accepts both guests and logged-in listeners, so the
	// token is optional here.
	plays := e.Group("/api/plays", middleware.OptionalAuth(mw.TokenAuth, mw.Metrics))
	plays.POST("/start", h.Play.Start)
	plays.POST("/end", h.Play.End)
	plays.GET("/count", h.Play.Count)
	plays.POST("/counts", h.Play.Counts)
}
