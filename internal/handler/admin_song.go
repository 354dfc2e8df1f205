package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/melodix/melodix-backend/internal/catalog"
	"github.com/melodix/melodix-backend/internal/model"
	"github.com/melodix/melodix-backend/internal/notify"
	"github.com/melodix/melodix-backend/internal/repository"
	"github.com/melodix/melodix-backend/internal/storage"
)

// seedCategories maps each curated category to the upstream search term
// used to fill it during a sync.
var seedCategories = map[string]string{
	"Tuyệt Phẩm Bolero": "bolero Quang Lê Cẩm Ly",
	"V-Pop Thịnh Hành":  "vpop hits",
	"Nhạc Trẻ Remix":    "vinahouse remix",
}

// AdminSongHandler manages the curated local catalog.
type AdminSongHandler struct {
	Songs   *repository.AdminSongRepo
	Users   *repository.UserRepo
	Catalog *catalog.Client
	Files   *storage.FileStore
	Notify  notify.Notifier
}

func NewAdminSongHandler(songs *repository.AdminSongRepo, users *repository.UserRepo,
	cat *catalog.Client, files *storage.FileStore, n notify.Notifier) *AdminSongHandler {
	return &AdminSongHandler{Songs: songs, Users: users, Catalog: cat, Files: files, Notify: n}
}

type adminSongReq struct {
	Title     string  `json:"title"`
	Artist    string  `json:"artist"`
	Album     *string `json:"album"`
	Thumbnail *string `json:"thumbnail"`
	Category  *string `json:"category"`
	StreamURL *string `json:"stream_url"`
	Duration  *int    `json:"duration"`
}

// List returns catalog rows with optional category and search filters.
// Public: the client home screen browses these.
func (h *AdminSongHandler) List(c echo.Context) error {
	page, limit, offset := pageParams(c, 50, 200)

	ctx, cancel := dbCtx(c)
	defer cancel()

	songs, err := h.Songs.List(ctx,
		strings.TrimSpace(c.QueryParam("category")),
		strings.TrimSpace(c.QueryParam("search")),
		limit, offset)
	if err != nil {
		return failErr(c, err)
	}
	if songs == nil {
		songs = []*model.AdminSong{}
	}
	return okMeta(c, http.StatusOK, echo.Map{"songs": songs},
		echo.Map{"page": page, "limit": limit})
}

// Get fetches one catalog row.
func (h *AdminSongHandler) Get(c echo.Context) error {
	id, okID := paramID(c, "id")
	if !okID {
		return fail(c, http.StatusUnprocessableEntity, "invalid song id")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	song, err := h.Songs.Get(ctx, id)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"song": song})
}

// Create adds a catalog row and announces it to every user.
func (h *AdminSongHandler) Create(c echo.Context) error {
	var req adminSongReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Artist = strings.TrimSpace(req.Artist)
	if req.Title == "" || req.Artist == "" {
		return fail(c, http.StatusUnprocessableEntity, "title and artist are required")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	id, err := h.Songs.Create(ctx, model.AdminSong{
		Title:     req.Title,
		Artist:    req.Artist,
		Album:     req.Album,
		Thumbnail: req.Thumbnail,
		Category:  req.Category,
		StreamURL: req.StreamURL,
		Duration:  req.Duration,
	})
	if err != nil {
		return failErr(c, err)
	}
	song, err := h.Songs.Get(ctx, id)
	if err != nil {
		return failErr(c, err)
	}

	h.announceSong(c, song)
	return ok(c, http.StatusCreated, echo.Map{"song": song})
}

// Update rewrites an existing catalog row.
func (h *AdminSongHandler) Update(c echo.Context) error {
	id, okID := paramID(c, "id")
	if !okID {
		return fail(c, http.StatusUnprocessableEntity, "invalid song id")
	}
	var req adminSongReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	existing, err := h.Songs.Get(ctx, id)
	if err != nil {
		return failErr(c, err)
	}
	// Blank fields keep their stored values so a partial edit cannot wipe
	// a stream URL.
	if t := strings.TrimSpace(req.Title); t != "" {
		existing.Title = t
	}
	if a := strings.TrimSpace(req.Artist); a != "" {
		existing.Artist = a
	}
	if req.Album != nil && strings.TrimSpace(*req.Album) != "" {
		existing.Album = req.Album
	}
	if req.Thumbnail != nil && strings.TrimSpace(*req.Thumbnail) != "" {
		existing.Thumbnail = req.Thumbnail
	}
	if req.Category != nil {
		existing.Category = req.Category
	}
	if req.StreamURL != nil && strings.TrimSpace(*req.StreamURL) != "" {
		existing.StreamURL = req.StreamURL
	}
	if req.Duration != nil {
		existing.Duration = req.Duration
	}

	if err := h.Songs.Update(ctx, id, *existing); err != nil {
		return failErr(c, err)
	}
	song, err := h.Songs.Get(ctx, id)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"song": song})
}

// Delete removes a catalog row.
func (h *AdminSongHandler) Delete(c echo.Context) error {
	id, okID := paramID(c, "id")
	if !okID {
		return fail(c, http.StatusUnprocessableEntity, "invalid song id")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Songs.Delete(ctx, id); err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"message": "song deleted"})
}

// Upload accepts a multipart audio file plus metadata fields and creates
// a catalog row streaming from local storage.
func (h *AdminSongHandler) Upload(c echo.Context) error {
	title := strings.TrimSpace(c.FormValue("title"))
	artist := strings.TrimSpace(c.FormValue("artist"))
	category := strings.TrimSpace(c.FormValue("category"))
	if title == "" || artist == "" || category == "" {
		return fail(c, http.StatusUnprocessableEntity, "title, artist and category are required")
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return fail(c, http.StatusUnprocessableEntity, "audio file is required")
	}
	streamURL, _, err := h.Files.SaveAudio(fh)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedType) {
			return fail(c, http.StatusUnprocessableEntity, "unsupported audio format")
		}
		return failErr(c, err)
	}

	song := model.AdminSong{
		Title:     title,
		Artist:    artist,
		Category:  &category,
		StreamURL: &streamURL,
	}
	if thumb := strings.TrimSpace(c.FormValue("thumbnail")); thumb != "" {
		song.Thumbnail = &thumb
	}
	if d := strings.TrimSpace(c.FormValue("duration")); d != "" {
		if sec, convErr := strconv.Atoi(d); convErr == nil && sec > 0 {
			song.Duration = &sec
		}
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	id, err := h.Songs.Create(ctx, song)
	if err != nil {
		return failErr(c, err)
	}
	created, err := h.Songs.Get(ctx, id)
	if err != nil {
		return failErr(c, err)
	}

	h.announceSong(c, created)
	return ok(c, http.StatusCreated, echo.Map{"song": created})
}

// Sync refills the curated categories from the upstream catalog.  Each
// category maps to a fixed search term; imports key on the upstream id so
// the sync is idempotent.
func (h *AdminSongHandler) Sync(c echo.Context) error {
	ctx := c.Request().Context()

	imported, updated := 0, 0
	for category, term := range seedCategories {
		songs, err := h.Catalog.Search(ctx, term, 1, 10)
		if err != nil {
			continue
		}
		cat := category
		for _, s := range songs {
			itunesID := s.ID
			row := model.AdminSong{
				ITunesID:  &itunesID,
				Title:     s.Title,
				Artist:    s.Artists,
				Thumbnail: s.Thumbnail,
				Category:  &cat,
				StreamURL: s.StreamURL,
			}
			if s.Album != "" {
				album := s.Album
				row.Album = &album
			}
			if s.DurationMillis != nil {
				sec := int(*s.DurationMillis / 1000)
				row.Duration = &sec
			}
			inserted, err := h.Songs.UpsertByITunesID(ctx, row)
			if err != nil {
				continue
			}
			if inserted {
				imported++
			} else {
				updated++
			}
		}
	}
	return ok(c, http.StatusOK, echo.Map{"imported": imported, "updated": updated})
}

// Categories lists the curated category names.
func (h *AdminSongHandler) Categories(c echo.Context) error {
	names := make([]string, 0, len(seedCategories))
	for name := range seedCategories {
		names = append(names, name)
	}
	return ok(c, http.StatusOK, echo.Map{"categories": names})
}

// Dashboard aggregates the admin landing page numbers.
func (h *AdminSongHandler) Dashboard(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	totalUsers, activeUsers, err := h.Users.CountUsers(ctx)
	if err != nil {
		return failErr(c, err)
	}
	totalSongs, err := h.Songs.Count(ctx)
	if err != nil {
		return failErr(c, err)
	}
	byCategory, err := h.Songs.CountByCategory(ctx)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{
		"total_users":  totalUsers,
		"active_users": activeUsers,
		"total_songs":  totalSongs,
		"categories":   byCategory,
	})
}

func (h *AdminSongHandler) announceSong(c echo.Context, song *model.AdminSong) {
	sender := currentUserID(c)
	related, _ := json.Marshal(echo.Map{
		"song_id":     song.ID,
		"song_title":  song.Title,
		"artist_name": song.Artist,
		"thumbnail":   song.Thumbnail,
		"category":    song.Category,
	})
	rd := string(related)
	h.Notify.NotifyAll(c.Request().Context(), &sender, "new_song",
		"New song added", `New song available: "`+song.Title+`" by `+song.Artist, &rd)
}
