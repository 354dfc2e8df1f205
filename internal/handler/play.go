package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/melodix/melodix-backend/internal/metrics"
	"github.com/melodix/melodix-backend/internal/playtrack"
	"github.com/melodix/melodix-backend/internal/repository"
)

// PlayHandler exposes play counting.  Start and End work for anonymous
// listeners too, so both sit behind optional auth.
type PlayHandler struct {
	Tracker *playtrack.Tracker
	Plays   *repository.PlayRepo
	Metrics *metrics.Collector
}

func NewPlayHandler(t *playtrack.Tracker, r *repository.PlayRepo, m *metrics.Collector) *PlayHandler {
	return &PlayHandler{Tracker: t, Plays: r, Metrics: m}
}

type playStartReq struct {
	SongType   string  `json:"song_type"`
	SongID     string  `json:"song_id"`
	SongTitle  *string `json:"song_title"`
	ArtistName *string `json:"artist_name"`
}

type playEndReq struct {
	SessionToken    string `json:"session_token"`
	DurationSeconds int    `json:"duration_seconds"`
}

// Start opens a play session and hands back its token.
func (h *PlayHandler) Start(c echo.Context) error {
	var req playStartReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.SongID = strings.TrimSpace(req.SongID)
	if req.SongID == "" {
		return fail(c, http.StatusUnprocessableEntity, "song_id is required")
	}

	var userID *uint64
	if uid := currentUserID(c); uid != 0 {
		userID = &uid
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	token, err := h.Tracker.Start(ctx, userID, req.SongType, req.SongID, req.SongTitle, req.ArtistName)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusCreated, echo.Map{"session_token": token})
}

// End reports how long the session played and returns whether it counted.
func (h *PlayHandler) End(c echo.Context) error {
	var req playEndReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.SessionToken = strings.TrimSpace(req.SessionToken)
	if req.SessionToken == "" {
		return fail(c, http.StatusUnprocessableEntity, "session_token is required")
	}
	if req.DurationSeconds < 0 {
		req.DurationSeconds = 0
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	res, err := h.Tracker.End(ctx, req.SessionToken, req.DurationSeconds)
	if err != nil {
		return failErr(c, err)
	}
	if res.Counted && h.Metrics != nil {
		h.Metrics.RecordPlayCounted()
	}
	return ok(c, http.StatusOK, echo.Map{"counted": res.Counted, "play_count": res.PlayCount})
}

// Count returns a song's lifetime play count, public.
func (h *PlayHandler) Count(c echo.Context) error {
	songID := strings.TrimSpace(c.QueryParam("song_id"))
	if songID == "" {
		return fail(c, http.StatusUnprocessableEntity, "song_id is required")
	}
	songType := normalizeSongType(c.QueryParam("song_type"))

	ctx, cancel := dbCtx(c)
	defer cancel()

	n, err := h.Plays.GetPlayCount(ctx, songType, songID)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"song_id": songID, "song_type": songType, "play_count": n})
}

// maxBatchCounts caps how many songs one counts request may ask about.
const maxBatchCounts = 50

type playCountsReq struct {
	Songs []struct {
		SongType string `json:"song_type"`
		SongID   string `json:"song_id"`
	} `json:"songs"`
}

// Counts returns play counts for a batch of songs in one call, public.
func (h *PlayHandler) Counts(c echo.Context) error {
	var req playCountsReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if len(req.Songs) == 0 {
		return fail(c, http.StatusUnprocessableEntity, "songs is required")
	}
	if len(req.Songs) > maxBatchCounts {
		return fail(c, http.StatusUnprocessableEntity, "at most 50 songs per request")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	counts := make([]echo.Map, 0, len(req.Songs))
	for _, s := range req.Songs {
		songID := strings.TrimSpace(s.SongID)
		if songID == "" {
			continue
		}
		songType := normalizeSongType(s.SongType)
		n, err := h.Plays.GetPlayCount(ctx, songType, songID)
		if err != nil {
			return failErr(c, err)
		}
		counts = append(counts, echo.Map{"song_id": songID, "song_type": songType, "play_count": n})
	}
	return ok(c, http.StatusOK, echo.Map{"counts": counts})
}

// AdminTop lists the most played songs.
func (h *PlayHandler) AdminTop(c echo.Context) error {
	limit := intQuery(c, "limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	songs, err := h.Plays.TopSongs(ctx, limit)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"songs": songs})
}

// AdminStats summarizes play tracking activity.
func (h *PlayHandler) AdminStats(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	stats, err := h.Plays.Stats(ctx)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"stats": stats})
}
