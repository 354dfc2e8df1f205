package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/melodix/melodix-backend/internal/catalog"
	"github.com/melodix/melodix-backend/internal/metrics"
	"github.com/melodix/melodix-backend/internal/repository"
)

// SongHandler proxies the upstream catalog.  Lyrics stored by admins take
// precedence over the upstream lyrics service.
type SongHandler struct {
	Catalog *catalog.Client
	Lyrics  *repository.LyricsRepo
	Metrics *metrics.Collector
}

func NewSongHandler(cl *catalog.Client, lr *repository.LyricsRepo, m *metrics.Collector) *SongHandler {
	return &SongHandler{Catalog: cl, Lyrics: lr, Metrics: m}
}

// Search proxies a keyword search upstream.
func (h *SongHandler) Search(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return fail(c, http.StatusUnprocessableEntity, "query parameter q is required")
	}
	page, limit, _ := pageParams(c, 20, 50)

	songs, err := h.Catalog.Search(c.Request().Context(), q, page, limit)
	if err != nil {
		h.Metrics.RecordUpstreamFailure()
		return failErr(c, err)
	}
	return okMeta(c, http.StatusOK, echo.Map{
		"query": q,
		"total": len(songs),
		"songs": songs,
	}, echo.Map{"page": page, "limit": limit})
}

// Top serves the assembled home screen chart.
func (h *SongHandler) Top(c echo.Context) error {
	songs, err := h.Catalog.Top(c.Request().Context())
	if err != nil {
		h.Metrics.RecordUpstreamFailure()
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{
		"total": len(songs),
		"songs": songs,
	})
}

// Show looks one song up by its upstream id.
func (h *SongHandler) Show(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return fail(c, http.StatusUnprocessableEntity, "song id is required")
	}
	d, err := h.Catalog.Detail(c.Request().Context(), id)
	if err != nil {
		if err != catalog.ErrNotFound {
			h.Metrics.RecordUpstreamFailure()
		}
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"song": d})
}

// Lyric serves lyrics for a song.  Admin-entered lyrics win; otherwise
// the upstream lyrics service is asked, and a song without lyrics still
// answers 200 with a placeholder.
func (h *SongHandler) Lyric(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return fail(c, http.StatusUnprocessableEntity, "song id is required")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()
	if l, err := h.Lyrics.GetBySongID(ctx, id); err == nil {
		return ok(c, http.StatusOK, echo.Map{
			"songId":     id,
			"lyric":      l.Content,
			"creator":    l.ArtistName,
			"start_time": l.StartTime,
			"source":     "local",
		})
	}

	lyric, creator, found, err := h.Catalog.Lyric(c.Request().Context(), id)
	if err != nil {
		if err != catalog.ErrNotFound {
			h.Metrics.RecordUpstreamFailure()
		}
		return failErr(c, err)
	}
	if !found {
		return ok(c, http.StatusOK, echo.Map{
			"songId": id,
			"lyric":  "Lyrics not available.",
		})
	}
	return ok(c, http.StatusOK, echo.Map{
		"songId":  id,
		"lyric":   lyric,
		"creator": creator,
		"source":  "lyrics.ovh",
	})
}
