package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/melodix/melodix-backend/internal/model"
	"github.com/melodix/melodix-backend/internal/repository"
)

// FavoriteHandler manages the caller's liked songs.
type FavoriteHandler struct {
	Favorites *repository.FavoriteRepo
}

func NewFavoriteHandler(f *repository.FavoriteRepo) *FavoriteHandler {
	return &FavoriteHandler{Favorites: f}
}

type favoriteReq struct {
	SongID     string  `json:"song_id"`
	SongTitle  string  `json:"song_title"`
	ArtistName *string `json:"artist_name"`
	Thumbnail  *string `json:"thumbnail"`
	Duration   *int    `json:"duration"`
}

// List returns the caller's favorites, newest first.
func (h *FavoriteHandler) List(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	favs, err := h.Favorites.List(ctx, currentUserID(c))
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"favorites": favs, "total": len(favs)})
}

// Add likes a song.  Liking it twice answers 409.
func (h *FavoriteHandler) Add(c echo.Context) error {
	var req favoriteReq
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

	_, err := h.Favorites.Add(ctx, model.Favorite{
		UserID:     currentUserID(c),
		SongID:     req.SongID,
		SongTitle:  req.SongTitle,
		ArtistName: req.ArtistName,
		Thumbnail:  req.Thumbnail,
		Duration:   req.Duration,
	})
	if err != nil {
		if err == repository.ErrConflict {
			return fail(c, http.StatusConflict, "song is already a favorite")
		}
		return failErr(c, err)
	}
	return ok(c, http.StatusCreated, echo.Map{"message": "added to favorites"})
}

// Remove unlikes a song.
func (h *FavoriteHandler) Remove(c echo.Context) error {
	songID := strings.TrimSpace(c.Param("songId"))
	if songID == "" {
		return fail(c, http.StatusUnprocessableEntity, "song id is required")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Favorites.Remove(ctx, currentUserID(c), songID); err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"message": "removed from favorites"})
}

// Check reports whether a song is in the caller's favorites.
func (h *FavoriteHandler) Check(c echo.Context) error {
	songID := strings.TrimSpace(c.Param("songId"))
	if songID == "" {
		return fail(c, http.StatusUnprocessableEntity, "song id is required")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	fav, err := h.Favorites.IsFavorite(ctx, currentUserID(c), songID)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"song_id": songID, "is_favorite": fav})
}
