package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/melodix/melodix-backend/internal/model"
	"github.com/melodix/melodix-backend/internal/repository"
)

// LyricHandler is the admin surface for curated lyrics.  Client lyric
// lookups go through SongHandler.Lyric, which consults this store first.
type LyricHandler struct {
	Lyrics *repository.LyricsRepo
}

func NewLyricHandler(r *repository.LyricsRepo) *LyricHandler {
	return &LyricHandler{Lyrics: r}
}

type lyricReq struct {
	SongID     string  `json:"song_id"`
	SongTitle  *string `json:"song_title"`
	ArtistName *string `json:"artist_name"`
	Content    string  `json:"lyrics_content"`
	StartTime  int     `json:"lyrics_start_time"`
}

// List returns stored lyrics rows, newest first.
func (h *LyricHandler) List(c echo.Context) error {
	page, limit, offset := pageParams(c, 50, 200)

	ctx, cancel := dbCtx(c)
	defer cancel()

	lyrics, err := h.Lyrics.List(ctx, limit, offset)
	if err != nil {
		return failErr(c, err)
	}
	if lyrics == nil {
		lyrics = []*model.Lyrics{}
	}
	return okMeta(c, http.StatusOK, echo.Map{"lyrics": lyrics},
		echo.Map{"page": page, "limit": limit})
}

// Upsert stores or replaces the lyrics for a song.
func (h *LyricHandler) Upsert(c echo.Context) error {
	var req lyricReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.SongID = strings.TrimSpace(req.SongID)
	req.Content = strings.TrimSpace(req.Content)
	if req.SongID == "" || req.Content == "" {
		return fail(c, http.StatusUnprocessableEntity, "song_id and lyrics_content are required")
	}
	if req.StartTime < 0 {
		req.StartTime = 0
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	err := h.Lyrics.Upsert(ctx, model.Lyrics{
		SongID:     req.SongID,
		SongTitle:  req.SongTitle,
		ArtistName: req.ArtistName,
		Content:    req.Content,
		StartTime:  req.StartTime,
	})
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"message": "lyrics saved"})
}

// Delete removes the stored lyrics for a song.
func (h *LyricHandler) Delete(c echo.Context) error {
	songID := strings.TrimSpace(c.Param("songId"))
	if songID == "" {
		return fail(c, http.StatusUnprocessableEntity, "invalid song id")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Lyrics.Delete(ctx, songID); err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"message": "lyrics deleted"})
}
