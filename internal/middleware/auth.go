package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/melodix/melodix-backend/internal/auth"
	"github.com/melodix/melodix-backend/internal/metrics"
)

// Response headers announcing a silent credential renewal.  Clients that
// see HeaderTokenRefreshed must replace their stored token with the value
// of HeaderNewAuthToken before the next request.
const (
	HeaderNewAuthToken   = "X-New-Auth-Token"
	HeaderTokenRefreshed = "X-Token-Refreshed"
)

// BearerToken pulls the credential out of a request.  The primary carrier
// is the Authorization header with a Bearer prefix (matched without regard
// to case); X-Auth-Token is accepted as a fallback for clients that cannot
// set Authorization.
func BearerToken(c echo.Context) string {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return strings.TrimSpace(c.Request().Header.Get("X-Auth-Token"))
}

// Auth returns middleware that resolves the request's token through the
// given authenticator and injects "user_id" and "role" into the Echo
// context.  When the authenticator renewed the credential, the new pair is
// surfaced through response headers before the handler runs, so even error
// responses carry it.  Requests without a usable identity are rejected
// with 401 and a message that distinguishes a missing or unknown token
// from one that expired beyond renewal.  Silent renewals are counted on
// the collector when one is provided.
func Auth(a auth.Authenticator, m *metrics.Collector) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := BearerToken(c)
			id, err := a.Authenticate(c.Request().Context(), token)
			if err != nil {
				msg := "authentication required"
				switch {
				case errors.Is(err, auth.ErrNoToken):
					msg = "missing auth token"
				case errors.Is(err, auth.ErrInvalidToken):
					msg = "invalid auth token"
				case errors.Is(err, auth.ErrExpiredToken):
					msg = "token expired, please log in again"
				}
				return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": msg})
			}
			applyIdentity(c, id, m)
			return next(c)
		}
	}
}

// OptionalAuth resolves an identity when a token is present but lets the
// request through anonymously otherwise.  Playback tracking uses this so
// logged-out listeners still count.
func OptionalAuth(a auth.Authenticator, m *metrics.Collector) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token := BearerToken(c); token != "" {
				if id, err := a.Authenticate(c.Request().Context(), token); err == nil {
					applyIdentity(c, id, m)
				}
			}
			return next(c)
		}
	}
}

func applyIdentity(c echo.Context, id *auth.Identity, m *metrics.Collector) {
	c.Set("user_id", id.UserID)
	c.Set("role", id.Role)
	if id.Refreshed != nil {
		h := c.Response().Header()
		h.Set(HeaderNewAuthToken, id.Refreshed.AuthToken)
		h.Set(HeaderTokenRefreshed, "true")
		if m != nil {
			m.RecordTokenRefreshed()
		}
	}
}

// RequireRole returns a middleware function that enforces that the
// authenticated user has one of the specified roles.  If the user's role
// is not in the allowed set, the request is aborted with a 403 Forbidden
// response.  It assumes a previous middleware has stored the role in the
// context under the key "role".
func RequireRole(roles ...string) echo.MiddlewareFunc {
	// Build a set of allowed roles for constant‑time lookups.
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			v := c.Get("role")
			role, ok := v.(string)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"success": false, "error": "forbidden"})
			}
			return next(c)
		}
	}
}

// userID renders the authenticated user for cache and rate limit keys.
// Anonymous requests share the "guest" bucket.
func userID(c echo.Context) string {
	if v, ok := c.Get("user_id").(uint64); ok {
		return strconv.FormatUint(v, 10)
	}
	return "guest"
}
