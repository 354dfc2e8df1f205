package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/melodix/melodix-backend/internal/model"
	"github.com/melodix/melodix-backend/internal/repository"
)

// PlaylistHandler serves playlist CRUD and membership.
type PlaylistHandler struct {
	Playlists *repository.PlaylistRepo
}

func NewPlaylistHandler(p *repository.PlaylistRepo) *PlaylistHandler {
	return &PlaylistHandler{Playlists: p}
}

type playlistReq struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	IsPublic    bool    `json:"is_public"`
}

type playlistSongReq struct {
	SongID     string  `json:"song_id"`
	SongTitle  string  `json:"song_title"`
	ArtistName *string `json:"artist_name"`
	Thumbnail  *string `json:"thumbnail"`
	Duration   *int    `json:"duration"`
}

func paramID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

// List returns the caller's playlists.
func (h *PlaylistHandler) List(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	lists, err := h.Playlists.ListByUser(ctx, currentUserID(c))
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"playlists": lists, "total": len(lists)})
}

// Create adds a playlist.
func (h *PlaylistHandler) Create(c echo.Context) error {
	var req playlistReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return fail(c, http.StatusUnprocessableEntity, "name is required")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	id, err := h.Playlists.Create(ctx, currentUserID(c), req.Name, req.Description, req.IsPublic)
	if err != nil {
		return failErr(c, err)
	}
	p, err := h.Playlists.GetVisible(ctx, id, currentUserID(c))
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusCreated, echo.Map{"playlist": p})
}

// Get returns one playlist the caller may see.
func (h *PlaylistHandler) Get(c echo.Context) error {
	id, okID := paramID(c, "id")
	if !okID {
		return fail(c, http.StatusUnprocessableEntity, "invalid playlist id")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	p, err := h.Playlists.GetVisible(ctx, id, currentUserID(c))
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"playlist": p})
}

// Update renames or re-describes an owned playlist.
func (h *PlaylistHandler) Update(c echo.Context) error {
	id, okID := paramID(c, "id")
	if !okID {
		return fail(c, http.StatusUnprocessableEntity, "invalid playlist id")
	}
	var req playlistReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return fail(c, http.StatusUnprocessableEntity, "name is required")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Playlists.Update(ctx, id, currentUserID(c), req.Name, req.Description, req.IsPublic); err != nil {
		return failErr(c, err)
	}
	p, err := h.Playlists.GetVisible(ctx, id, currentUserID(c))
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"playlist": p})
}

// Delete removes an owned playlist.
func (h *PlaylistHandler) Delete(c echo.Context) error {
	id, okID := paramID(c, "id")
	if !okID {
		return fail(c, http.StatusUnprocessableEntity, "invalid playlist id")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Playlists.Delete(ctx, id, currentUserID(c)); err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"message": "playlist deleted"})
}

// Songs lists a playlist's tracks in order.
func (h *PlaylistHandler) Songs(c echo.Context) error {
	id, okID := paramID(c, "id")
	if !okID {
		return fail(c, http.StatusUnprocessableEntity, "invalid playlist id")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	songs, err := h.Playlists.ListSongs(ctx, id, currentUserID(c))
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"songs": songs, "total": len(songs)})
}

// AddSong appends a track; the same song twice is a conflict.
func (h *PlaylistHandler) AddSong(c echo.Context) error {
	id, okID := paramID(c, "id")
	if !okID {
		return fail(c, http.StatusUnprocessableEntity, "invalid playlist id")
	}
	var req playlistSongReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.SongID = strings.TrimSpace(req.SongID)
	req.SongTitle = strings.TrimSpace(req.SongTitle)
	if req.SongID == "" || req.SongTitle == "" {
		return fail(c, http.StatusUnprocessableEntity, "song_id and song_title are required")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	_, err := h.Playlists.AddSong(ctx, id, currentUserID(c), model.PlaylistSong{
		SongID:     req.SongID,
		SongTitle:  req.SongTitle,
		ArtistName: req.ArtistName,
		Thumbnail:  req.Thumbnail,
		Duration:   req.Duration,
	})
	if err != nil {
		if err == repository.ErrConflict {
			return fail(c, http.StatusConflict, "song is already in the playlist")
		}
		return failErr(c, err)
	}
	return ok(c, http.StatusCreated, echo.Map{"message": "song added"})
}

// RemoveSong drops a track from an owned playlist.
func (h *PlaylistHandler) RemoveSong(c echo.Context) error {
	id, okID := paramID(c, "id")
	if !okID {
		return fail(c, http.StatusUnprocessableEntity, "invalid playlist id")
	}
	songID := strings.TrimSpace(c.Param("songId"))
	if songID == "" {
		return fail(c, http.StatusUnprocessableEntity, "song id is required")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Playlists.RemoveSong(ctx, id, currentUserID(c), songID); err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"message": "song removed"})
}
