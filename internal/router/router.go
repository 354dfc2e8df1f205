// Package router wires handlers, middleware and route groups onto the
// Echo instance.  Public routes live in public_routes.go, the
// authenticated user surface in user_routes.go and the admin console in
// admin_routes.go.
package router

import (
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/melodix/melodix-backend/internal/auth"
	"github.com/melodix/melodix-backend/internal/handler"
	"github.com/melodix/melodix-backend/internal/metrics"
)

// Handlers collects every handler the router mounts.
type Handlers struct {
	Health       *handler.HealthHandler
	Auth         *handler.AuthHandler
	Profile      *handler.ProfileHandler
	Song         *handler.SongHandler
	Playlist     *handler.PlaylistHandler
	Favorite     *handler.FavoriteHandler
	Comment      *handler.CommentHandler
	History      *handler.HistoryHandler
	Download     *handler.DownloadHandler
	Play         *handler.PlayHandler
	Notification *handler.NotificationHandler
	AdminSong    *handler.AdminSongHandler
	AdminUser    *handler.AdminUserHandler
	Lyric        *handler.LyricHandler
}

// Middlewares collects the cross-cutting middleware the route groups
// attach.  Cache and RateLimit may be nil when Redis is not configured.
type Middlewares struct {
	TokenAuth auth.Authenticator
	AnyAuth   auth.Authenticator
	Cache     echo.MiddlewareFunc
	RateLimit echo.MiddlewareFunc
	Metrics   *metrics.Collector
}

// New builds the Echo instance with the base middleware stack and all
// route groups registered.
func New(h Handlers, mw Middlewares, collector *metrics.Collector, registry *prometheus.Registry, uploadDir string) *echo.Echo {
	mw.Metrics = collector

	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization,
			"X-Auth-Token"},
		ExposeHeaders: []string{"X-New-Auth-Token", "X-Token-Refreshed", "X-Cache"},
	}))
	if collector != nil {
		e.Use(collector.Middleware())
	}

	e.GET("/healthz", h.Health.Live)
	e.GET("/readyz", h.Health.Ready)
	if registry != nil {
		e.GET("/metrics", metrics.Handler(registry))
	}
	if uploadDir != "" {
		// The storage layer renders file URLs as /<uploadDir>/<name>,
		// so the static prefix must mirror the directory path.
		prefix := "/" + strings.Trim(filepath.ToSlash(uploadDir), "/")
		e.Static(prefix, uploadDir)
	}

	registerPublic(e, h, mw)
	registerUser(e, h, mw)
	registerAdmin(e, h, mw)
	return e
}
