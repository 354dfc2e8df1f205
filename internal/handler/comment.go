package handler

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"github.com/microcosm-cc/bluemonday"

	"github.com/melodix/melodix-backend/internal/model"
	"github.com/melodix/melodix-backend/internal/notify"
	"github.com/melodix/melodix-backend/internal/repository"
)

// maxCommentLen bounds a comment's visible length in runes.
const maxCommentLen = 500

// commentPolicy strips every tag from user comments before storage.
var commentPolicy = bluemonday.StrictPolicy()

// CommentHandler serves song comments and their moderation surface.
type CommentHandler struct {
	Comments *repository.CommentRepo
	Notify   notify.Notifier
}

func NewCommentHandler(r *repository.CommentRepo, n notify.Notifier) *CommentHandler {
	return &CommentHandler{Comments: r, Notify: n}
}

type commentReq struct {
	SongType    string  `json:"song_type"`
	SongID      string  `json:"song_id"`
	SongTitle   *string `json:"song_title"`
	ArtistName  *string `json:"artist_name"`
	CommentText string  `json:"comment_text"`
}

// ListBySong returns a song's active comments, public.
func (h *CommentHandler) ListBySong(c echo.Context) error {
	songID := strings.TrimSpace(c.QueryParam("song_id"))
	if songID == "" {
		return fail(c, http.StatusUnprocessableEntity, "song_id is required")
	}
	songType := normalizeSongType(c.QueryParam("song_type"))
	page, limit, offset := pageParams(c, 20, 100)

	ctx, cancel := dbCtx(c)
	defer cancel()

	comments, err := h.Comments.ListBySong(ctx, songType, songID, limit, offset)
	if err != nil {
		return failErr(c, err)
	}
	return okMeta(c, http.StatusOK, echo.Map{"comments": commentViews(comments)},
		echo.Map{"page": page, "limit": limit})
}

// Create posts a comment and tells the admins about it.
func (h *CommentHandler) Create(c echo.Context) error {
	var req commentReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.SongID = strings.TrimSpace(req.SongID)
	text := strings.TrimSpace(commentPolicy.Sanitize(req.CommentText))
	if req.SongID == "" || text == "" {
		return fail(c, http.StatusUnprocessableEntity, "song_id and comment_text are required")
	}
	if utf8.RuneCountInString(text) > maxCommentLen {
		return fail(c, http.StatusUnprocessableEntity, "comment must be at most 500 characters")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	uid := currentUserID(c)
	m, err := h.Comments.Create(ctx, model.Comment{
		UserID:      uid,
		SongType:    normalizeSongType(req.SongType),
		SongID:      req.SongID,
		SongTitle:   req.SongTitle,
		ArtistName:  req.ArtistName,
		CommentText: text,
	})
	if err != nil {
		return failErr(c, err)
	}

	title := "New comment"
	if req.SongTitle != nil && *req.SongTitle != "" {
		title = "New comment on " + *req.SongTitle
	}
	h.Notify.NotifyAdmins(ctx, &uid, "new_comment", title, m.UserName+": "+text, nil)

	return ok(c, http.StatusCreated, echo.Map{"comment": commentView(m)})
}

// Update rewrites a comment's text.  Only the author may edit, and only
// while the comment is still active.
func (h *CommentHandler) Update(c echo.Context) error {
	id, okID := paramID(c, "id")
	if !okID {
		return fail(c, http.StatusUnprocessableEntity, "invalid comment id")
	}
	var req struct {
		CommentText string `json:"comment_text"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	text := strings.TrimSpace(commentPolicy.Sanitize(req.CommentText))
	if text == "" {
		return fail(c, http.StatusUnprocessableEntity, "comment_text is required")
	}
	if utf8.RuneCountInString(text) > maxCommentLen {
		return fail(c, http.StatusUnprocessableEntity, "comment must be at most 500 characters")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	m, err := h.Comments.UpdateText(ctx, id, currentUserID(c), text)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"comment": commentView(m)})
}

// Delete soft-deletes a comment.  Authors remove their own; admins
// remove any.
func (h *CommentHandler) Delete(c echo.Context) error {
	id, okID := paramID(c, "id")
	if !okID {
		return fail(c, http.StatusUnprocessableEntity, "invalid comment id")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Comments.Deactivate(ctx, id, currentUserID(c), isAdmin(c)); err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"message": "comment deleted"})
}

// AdminList returns comments for moderation, including removed ones.
func (h *CommentHandler) AdminList(c echo.Context) error {
	onlyInactive := c.QueryParam("inactive") == "true"
	page, limit, offset := pageParams(c, 50, 200)

	ctx, cancel := dbCtx(c)
	defer cancel()

	comments, err := h.Comments.ListAll(ctx, onlyInactive, limit, offset)
	if err != nil {
		return failErr(c, err)
	}
	return okMeta(c, http.StatusOK, echo.Map{"comments": commentViews(comments)},
		echo.Map{"page": page, "limit": limit})
}

// AdminRestore reverses a soft delete.
func (h *CommentHandler) AdminRestore(c echo.Context) error {
	id, okID := paramID(c, "id")
	if !okID {
		return fail(c, http.StatusUnprocessableEntity, "invalid comment id")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Comments.Restore(ctx, id); err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"message": "comment restored"})
}

// AdminStats summarizes moderation state.
func (h *CommentHandler) AdminStats(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	stats, err := h.Comments.Stats(ctx)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"stats": stats})
}

type commentResp struct {
	ID          uint64  `json:"id"`
	UserID      uint64  `json:"user_id"`
	UserName    string  `json:"user_name"`
	UserAvatar  *string `json:"user_avatar"`
	SongType    string  `json:"song_type"`
	SongID      string  `json:"song_id"`
	SongTitle   *string `json:"song_title"`
	ArtistName  *string `json:"artist_name"`
	CommentText string  `json:"comment_text"`
	IsActive    bool    `json:"is_active"`
	CreatedAt   string  `json:"created_at"`
}

func commentView(m *model.Comment) commentResp {
	return commentResp{
		ID:          m.ID,
		UserID:      m.UserID,
		UserName:    m.UserName,
		UserAvatar:  m.UserAvatar,
		SongType:    m.SongType,
		SongID:      m.SongID,
		SongTitle:   m.SongTitle,
		ArtistName:  m.ArtistName,
		CommentText: m.CommentText,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func commentViews(ms []*model.Comment) []commentResp {
	out := make([]commentResp, 0, len(ms))
	for _, m := range ms {
		out = append(out, commentView(m))
	}
	return out
}

func normalizeSongType(s string) string {
	if strings.ToLower(strings.TrimSpace(s)) == "admin" {
		return "admin"
	}
	return "itunes"
}
