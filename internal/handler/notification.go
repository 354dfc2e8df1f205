package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/melodix/melodix-backend/internal/model"
	"github.com/melodix/melodix-backend/internal/notify"
)

// NotificationStore is the persistence surface the feed endpoints use.
// repository.NotificationRepo satisfies it.
type NotificationStore interface {
	ListForUser(ctx context.Context, userID uint64, isAdmin bool, limit, offset int) ([]*model.Notification, error)
	UnreadCount(ctx context.Context, userID uint64, isAdmin bool) (int64, error)
	MarkRead(ctx context.Context, userID, id uint64) error
	MarkAllRead(ctx context.Context, userID uint64) (int64, error)
	Delete(ctx context.Context, userID, id uint64) error
}

// NotificationHandler serves a user's notification feed.
type NotificationHandler struct {
	Notifications NotificationStore
	Notify        notify.Notifier
}

func NewNotificationHandler(r NotificationStore, n notify.Notifier) *NotificationHandler {
	return &NotificationHandler{Notifications: r, Notify: n}
}

// List returns notifications visible to the caller, newest first.
func (h *NotificationHandler) List(c echo.Context) error {
	page, limit, offset := pageParams(c, 20, 100)

	ctx, cancel := dbCtx(c)
	defer cancel()

	notifications, err := h.Notifications.ListForUser(ctx, currentUserID(c), isAdmin(c), limit, offset)
	if err != nil {
		return failErr(c, err)
	}
	if notifications == nil {
		notifications = []*model.Notification{}
	}
	return okMeta(c, http.StatusOK, echo.Map{"notifications": notifications},
		echo.Map{"page": page, "limit": limit})
}

// UnreadCount returns how many unread notifications the caller has.
func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	n, err := h.Notifications.UnreadCount(ctx, currentUserID(c), isAdmin(c))
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"unread_count": n})
}

// MarkRead flips one owned notification to read.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	id, okID := paramID(c, "id")
	if !okID {
		return fail(c, http.StatusUnprocessableEntity, "invalid notification id")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Notifications.MarkRead(ctx, currentUserID(c), id); err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"message": "notification marked as read"})
}

// MarkAllRead marks everything addressed to the caller as read.
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	n, err := h.Notifications.MarkAllRead(ctx, currentUserID(c))
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"marked": n})
}

// Delete removes one owned notification.
func (h *NotificationHandler) Delete(c echo.Context) error {
	id, okID := paramID(c, "id")
	if !okID {
		return fail(c, http.StatusUnprocessableEntity, "invalid notification id")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Notifications.Delete(ctx, currentUserID(c), id); err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"message": "notification deleted"})
}

type broadcastReq struct {
	Audience string `json:"audience"`
	Type     string `json:"type"`
	Title    string `json:"title"`
	Message  string `json:"message"`
}

// AdminBroadcast lets an admin push an announcement to every user or to
// the admin group.
func (h *NotificationHandler) AdminBroadcast(c echo.Context) error {
	var req broadcastReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Message = strings.TrimSpace(req.Message)
	if req.Title == "" || req.Message == "" {
		return fail(c, http.StatusUnprocessableEntity, "title and message are required")
	}
	if req.Type == "" {
		req.Type = "announcement"
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	sender := currentUserID(c)
	switch req.Audience {
	case "admins":
		h.Notify.NotifyAdmins(ctx, &sender, req.Type, req.Title, req.Message, nil)
	default:
		h.Notify.NotifyAll(ctx, &sender, req.Type, req.Title, req.Message, nil)
	}
	return ok(c, http.StatusCreated, echo.Map{"message": "notification sent"})
}
