package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/melodix/melodix-backend/internal/model"
	"github.com/melodix/melodix-backend/internal/notify"
)

// DownloadStore is the persistence surface the download endpoints use.
// repository.DownloadRepo satisfies it.
type DownloadStore interface {
	List(ctx context.Context, userID uint64) ([]*model.Download, error)
	Register(ctx context.Context, d model.Download) error
	Exists(ctx context.Context, userID uint64, songType, songID string) (bool, error)
	Remove(ctx context.Context, userID uint64, songType, songID string) error
}

// DownloadHandler tracks which songs a user saved for offline play.
type DownloadHandler struct {
	Downloads DownloadStore
	Notify    notify.Notifier
}

func NewDownloadHandler(r DownloadStore, n notify.Notifier) *DownloadHandler {
	return &DownloadHandler{Downloads: r, Notify: n}
}

type downloadReq struct {
	SongType    string  `json:"song_type"`
	SongID      string  `json:"song_id"`
	SongTitle   string  `json:"song_title"`
	ArtistName  *string `json:"artist_name"`
	ArtworkURL  *string `json:"artwork_url"`
	DownloadURL *string `json:"download_url"`
	FileSize    *int64  `json:"file_size"`
	Duration    *int    `json:"duration"`
}

// List returns the caller's downloads, newest first.
func (h *DownloadHandler) List(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	downloads, err := h.Downloads.List(ctx, currentUserID(c))
	if err != nil {
		return failErr(c, err)
	}
	if downloads == nil {
		downloads = []*model.Download{}
	}
	return ok(c, http.StatusOK, echo.Map{"downloads": downloads, "total": len(downloads)})
}

// Register marks a song as downloaded.  Re-registering refreshes the
// stored metadata instead of erroring.
func (h *DownloadHandler) Register(c echo.Context) error {
	var req downloadReq
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

	uid := currentUserID(c)
	err := h.Downloads.Register(ctx, model.Download{
		UserID:      uid,
		SongType:    normalizeSongType(req.SongType),
		SongID:      req.SongID,
		SongTitle:   req.SongTitle,
		ArtistName:  req.ArtistName,
		ArtworkURL:  req.ArtworkURL,
		DownloadURL: req.DownloadURL,
		FileSize:    req.FileSize,
		Duration:    req.Duration,
	})
	if err != nil {
		return failErr(c, err)
	}
	h.Notify.NotifyAdmins(ctx, &uid, "new_download", "New download",
		req.SongTitle+" was saved for offline playback", nil)
	return ok(c, http.StatusCreated, echo.Map{"message": "download registered"})
}

// Check reports whether the caller saved this song.
func (h *DownloadHandler) Check(c echo.Context) error {
	songID := strings.TrimSpace(c.Param("songId"))
	if songID == "" {
		return fail(c, http.StatusUnprocessableEntity, "song id is required")
	}
	songType := normalizeSongType(c.QueryParam("song_type"))

	ctx, cancel := dbCtx(c)
	defer cancel()

	exists, err := h.Downloads.Exists(ctx, currentUserID(c), songType, songID)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"downloaded": exists})
}

// Remove forgets a downloaded song.
func (h *DownloadHandler) Remove(c echo.Context) error {
	songID := strings.TrimSpace(c.Param("songId"))
	if songID == "" {
		return fail(c, http.StatusUnprocessableEntity, "song id is required")
	}
	songType := normalizeSongType(c.QueryParam("song_type"))

	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Downloads.Remove(ctx, currentUserID(c), songType, songID); err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"message": "download removed"})
}
