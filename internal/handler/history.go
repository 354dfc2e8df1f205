package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/melodix/melodix-backend/internal/model"
	"github.com/melodix/melodix-backend/internal/notify"
	"github.com/melodix/melodix-backend/internal/repository"
)

// HistoryStore is the persistence surface the history endpoints use.
// repository.HistoryRepo satisfies it.
type HistoryStore interface {
	Record(ctx context.Context, e model.HistoryEntry) (bool, error)
	List(ctx context.Context, userID uint64, limit, offset int) ([]*model.HistoryEntry, error)
	ListByDate(ctx context.Context, userID uint64, date string) ([]*model.HistoryEntry, error)
	Stats(ctx context.Context, userID uint64) (repository.HistoryStats, error)
	TopSongs(ctx context.Context, userID uint64, limit int) ([]*model.HistoryEntry, error)
	DeleteEntry(ctx context.Context, userID, id uint64) error
	Clear(ctx context.Context, userID uint64) (int64, error)
}

// HistoryHandler serves the per-user listening history.
type HistoryHandler struct {
	History HistoryStore
	Notify  notify.Notifier
}

func NewHistoryHandler(r HistoryStore, n notify.Notifier) *HistoryHandler {
	return &HistoryHandler{History: r, Notify: n}
}

type historyReq struct {
	SongType        string  `json:"song_type"`
	SongID          string  `json:"song_id"`
	SongTitle       *string `json:"song_title"`
	ArtistName      *string `json:"artist_name"`
	Thumbnail       *string `json:"thumbnail"`
	DurationSeconds int     `json:"duration_seconds"`
}

// List returns the caller's recent listens, newest first.
func (h *HistoryHandler) List(c echo.Context) error {
	page, limit, offset := pageParams(c, 50, 200)

	ctx, cancel := dbCtx(c)
	defer cancel()

	entries, err := h.History.List(ctx, currentUserID(c), limit, offset)
	if err != nil {
		return failErr(c, err)
	}
	if entries == nil {
		entries = []*model.HistoryEntry{}
	}
	return okMeta(c, http.StatusOK, echo.Map{"history": entries},
		echo.Map{"page": page, "limit": limit})
}

// Record upserts today's listen of a song, accumulating duration.
func (h *HistoryHandler) Record(c echo.Context) error {
	var req historyReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.SongID = strings.TrimSpace(req.SongID)
	if req.SongID == "" {
		return fail(c, http.StatusUnprocessableEntity, "song_id is required")
	}
	if req.DurationSeconds < 0 {
		req.DurationSeconds = 0
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	uid := currentUserID(c)
	firstToday, err := h.History.Record(ctx, model.HistoryEntry{
		UserID:           uid,
		SongType:         normalizeSongType(req.SongType),
		SongID:           req.SongID,
		SongTitle:        req.SongTitle,
		ArtistName:       req.ArtistName,
		Thumbnail:        req.Thumbnail,
		DurationListened: req.DurationSeconds,
	})
	if err != nil {
		return failErr(c, err)
	}
	if firstToday {
		title := req.SongID
		if req.SongTitle != nil && *req.SongTitle != "" {
			title = *req.SongTitle
		}
		h.Notify.NotifyAdmins(ctx, &uid, "listening_activity", "First listen of the day",
			title+" was played for the first time today", nil)
	}
	return ok(c, http.StatusOK, echo.Map{"message": "history recorded"})
}

// ByDate returns the caller's listens for one calendar day.
func (h *HistoryHandler) ByDate(c echo.Context) error {
	date := strings.TrimSpace(c.QueryParam("date"))
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fail(c, http.StatusUnprocessableEntity, "date must be YYYY-MM-DD")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	entries, err := h.History.ListByDate(ctx, currentUserID(c), date)
	if err != nil {
		return failErr(c, err)
	}
	if entries == nil {
		entries = []*model.HistoryEntry{}
	}
	return ok(c, http.StatusOK, echo.Map{"date": date, "history": entries})
}

// Stats summarizes the caller's listening activity with their most
// listened songs.
func (h *HistoryHandler) Stats(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	uid := currentUserID(c)
	stats, err := h.History.Stats(ctx, uid)
	if err != nil {
		return failErr(c, err)
	}
	top, err := h.History.TopSongs(ctx, uid, 10)
	if err != nil {
		return failErr(c, err)
	}
	if top == nil {
		top = []*model.HistoryEntry{}
	}
	return ok(c, http.StatusOK, echo.Map{"stats": stats, "top_songs": top})
}

// DeleteEntry removes a single history row owned by the caller.
func (h *HistoryHandler) DeleteEntry(c echo.Context) error {
	id, okID := paramID(c, "id")
	if !okID {
		return fail(c, http.StatusUnprocessableEntity, "invalid history id")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.History.DeleteEntry(ctx, currentUserID(c), id); err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"message": "history entry deleted"})
}

// Clear wipes the caller's entire history.
func (h *HistoryHandler) Clear(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	n, err := h.History.Clear(ctx, currentUserID(c))
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"message": "history cleared", "removed": n})
}
