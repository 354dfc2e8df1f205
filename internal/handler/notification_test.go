package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/melodix/melodix-backend/internal/model"
	"github.com/melodix/melodix-backend/internal/repository"
)

// notifierSpy records fan-out calls so handler tests can assert on them.
type notifierSpy struct {
	userCalls  int
	adminCalls int
	allCalls   int
	lastTitle  string
	lastMsg    string
	lastKind   string
}

func (s *notifierSpy) NotifyUser(_ context.Context, _ *uint64, _ uint64, kind, title, message string, _ *string) {
	s.userCalls++
	s.lastKind, s.lastTitle, s.lastMsg = kind, title, message
}

func (s *notifierSpy) NotifyAdmins(_ context.Context, _ *uint64, kind, title, message string, _ *string) {
	s.adminCalls++
	s.lastKind, s.lastTitle, s.lastMsg = kind, title, message
}

func (s *notifierSpy) NotifyAll(_ context.Context, _ *uint64, kind, title, message string, _ *string) {
	s.allCalls++
	s.lastKind, s.lastTitle, s.lastMsg = kind, title, message
}

// memNotifications mirrors NotificationRepo's visibility rules in memory:
// a row is visible when it targets the user directly, when it is a
// broadcast with a NULL receiver, or, for admins, when it is an admin row
// addressed to them.
type memNotifications struct {
	rows   []*model.Notification
	nextID uint64
}

func (m *memNotifications) add(receiverID *uint64, receiverType string) *model.Notification {
	m.nextID++
	n := &model.Notification{
		ID:           m.nextID,
		ReceiverID:   receiverID,
		ReceiverType: receiverType,
		Type:         "announcement",
		Title:        "t",
		Message:      "m",
	}
	m.rows = append(m.rows, n)
	return n
}

func (m *memNotifications) visible(n *model.Notification, userID uint64, isAdmin bool) bool {
	if n.ReceiverType == model.ReceiverAll {
		return true
	}
	if n.ReceiverID == nil || *n.ReceiverID != userID {
		return false
	}
	if n.ReceiverType == model.ReceiverAdmin {
		return isAdmin
	}
	return n.ReceiverType == model.ReceiverUser
}

func (m *memNotifications) ListForUser(_ context.Context, userID uint64, isAdmin bool, limit, offset int) ([]*model.Notification, error) {
	var out []*model.Notification
	for _, n := range m.rows {
		if m.visible(n, userID, isAdmin) {
			out = append(out, n)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memNotifications) UnreadCount(_ context.Context, userID uint64, isAdmin bool) (int64, error) {
	var n int64
	for _, row := range m.rows {
		if !row.IsRead && m.visible(row, userID, isAdmin) {
			n++
		}
	}
	return n, nil
}

// MarkRead matches the repository predicate: the row must target the user
// or be a broadcast.  Re-marking an already read row succeeds.
func (m *memNotifications) MarkRead(_ context.Context, userID, id uint64) error {
	for _, row := range m.rows {
		if row.ID != id {
			continue
		}
		if row.ReceiverType == model.ReceiverAll || (row.ReceiverID != nil && *row.ReceiverID == userID) {
			row.IsRead = true
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memNotifications) MarkAllRead(_ context.Context, userID uint64) (int64, error) {
	var n int64
	for _, row := range m.rows {
		if row.IsRead {
			continue
		}
		if row.ReceiverType == model.ReceiverAll || (row.ReceiverID != nil && *row.ReceiverID == userID) {
			row.IsRead = true
			n++
		}
	}
	return n, nil
}

func (m *memNotifications) Delete(_ context.Context, userID, id uint64) error {
	for i, row := range m.rows {
		if row.ID == id && row.ReceiverID != nil && *row.ReceiverID == userID {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func authedContext(method, target, body string, userID uint64, role string) (echo.Context, *httptest.ResponseRecorder) {
	c, rec := newContext(method, target, body)
	c.Set("user_id", userID)
	c.Set("role", role)
	return c, rec
}

func TestMarkAllReadClearsBroadcasts(t *testing.T) {
	uid := uint64(5)
	store := &memNotifications{}
	store.add(nil, model.ReceiverAll)
	store.add(&uid, model.ReceiverUser)
	h := NewNotificationHandler(store, &notifierSpy{})

	c, rec := authedContext(http.MethodGet, "/api/notifications/unread-count", "", uid, "user")
	if err := h.UnreadCount(c); err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"unread_count":2`) {
		t.Fatalf("before: body = %s", rec.Body.String())
	}

	c, rec = authedContext(http.MethodPut, "/api/notifications/mark-all-read", "", uid, "user")
	if err := h.MarkAllRead(c); err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"marked":2`) {
		t.Fatalf("mark all: body = %s", rec.Body.String())
	}

	c, rec = authedContext(http.MethodGet, "/api/notifications/unread-count", "", uid, "user")
	if err := h.UnreadCount(c); err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"unread_count":0`) {
		t.Errorf("after: body = %s", rec.Body.String())
	}

	// Running it again is a no-op, not an error.
	c, rec = authedContext(http.MethodPut, "/api/notifications/mark-all-read", "", uid, "user")
	if err := h.MarkAllRead(c); err != nil {
		t.Fatalf("MarkAllRead again: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"marked":0`) {
		t.Errorf("repeat: body = %s", rec.Body.String())
	}
}

func TestMarkReadRepeatSucceeds(t *testing.T) {
	uid := uint64(5)
	store := &memNotifications{}
	n := store.add(&uid, model.ReceiverUser)
	h := NewNotificationHandler(store, &notifierSpy{})

	for i := 0; i < 2; i++ {
		c, rec := authedContext(http.MethodPut, "/", "", uid, "user")
		c.SetParamNames("id")
		c.SetParamValues(strconv.FormatUint(n.ID, 10))
		if err := h.MarkRead(c); err != nil {
			t.Fatalf("MarkRead #%d: %v", i+1, err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("MarkRead #%d: status = %d, want 200", i+1, rec.Code)
		}
	}
}

func TestMarkReadBroadcastRow(t *testing.T) {
	store := &memNotifications{}
	n := store.add(nil, model.ReceiverAll)
	h := NewNotificationHandler(store, &notifierSpy{})

	c, rec := authedContext(http.MethodPut, "/", "", 5, "user")
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatUint(n.ID, 10))
	if err := h.MarkRead(c); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !n.IsRead {
		t.Error("broadcast row not marked read")
	}
}

func TestMarkReadForeignRowNotFound(t *testing.T) {
	other := uint64(9)
	store := &memNotifications{}
	n := store.add(&other, model.ReceiverUser)
	h := NewNotificationHandler(store, &notifierSpy{})

	c, rec := authedContext(http.MethodPut, "/", "", 5, "user")
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatUint(n.ID, 10))
	if err := h.MarkRead(c); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestUnreadCountHidesAdminRowsFromUsers(t *testing.T) {
	uid := uint64(5)
	store := &memNotifications{}
	store.add(&uid, model.ReceiverAdmin)
	h := NewNotificationHandler(store, &notifierSpy{})

	c, rec := authedContext(http.MethodGet, "/", "", uid, "user")
	if err := h.UnreadCount(c); err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"unread_count":0`) {
		t.Errorf("user sees admin rows: body = %s", rec.Body.String())
	}

	c, rec = authedContext(http.MethodGet, "/", "", uid, "admin")
	if err := h.UnreadCount(c); err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"unread_count":1`) {
		t.Errorf("admin: body = %s", rec.Body.String())
	}
}

func TestAdminBroadcastAudiences(t *testing.T) {
	spy := &notifierSpy{}
	h := NewNotificationHandler(&memNotifications{}, spy)

	c, rec := authedContext(http.MethodPost, "/api/admin/notifications", `{"title":"Hi","message":"all hands"}`, 1, "admin")
	if err := h.AdminBroadcast(c); err != nil {
		t.Fatalf("AdminBroadcast: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if spy.allCalls != 1 || spy.adminCalls != 0 {
		t.Errorf("calls = (all %d, admins %d), want (1, 0)", spy.allCalls, spy.adminCalls)
	}

	c, _ = authedContext(http.MethodPost, "/api/admin/notifications", `{"audience":"admins","title":"Hi","message":"ops only"}`, 1, "admin")
	if err := h.AdminBroadcast(c); err != nil {
		t.Fatalf("AdminBroadcast: %v", err)
	}
	if spy.adminCalls != 1 {
		t.Errorf("adminCalls = %d, want 1", spy.adminCalls)
	}
}
