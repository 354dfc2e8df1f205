package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/melodix/melodix-backend/internal/model"
	"github.com/melodix/melodix-backend/internal/repository"
)

type memDownloads struct {
	rows map[string]model.Download
}

func newMemDownloads() *memDownloads {
	return &memDownloads{rows: map[string]model.Download{}}
}

func downloadKey(userID uint64, songType, songID string) string {
	return songType + "/" + songID
}

func (m *memDownloads) List(context.Context, uint64) ([]*model.Download, error) {
	return nil, nil
}

func (m *memDownloads) Register(_ context.Context, d model.Download) error {
	m.rows[downloadKey(d.UserID, d.SongType, d.SongID)] = d
	return nil
}

func (m *memDownloads) Exists(_ context.Context, userID uint64, songType, songID string) (bool, error) {
	_, ok := m.rows[downloadKey(userID, songType, songID)]
	return ok, nil
}

func (m *memDownloads) Remove(_ context.Context, userID uint64, songType, songID string) error {
	key := downloadKey(userID, songType, songID)
	if _, ok := m.rows[key]; !ok {
		return repository.ErrNotFound
	}
	delete(m.rows, key)
	return nil
}

func TestDownloadRegisterNotifiesAdmins(t *testing.T) {
	spy := &notifierSpy{}
	h := NewDownloadHandler(newMemDownloads(), spy)
	body := `{"song_type":"itunes","song_id":"42","song_title":"Hit"}`

	c, rec := authedContext(http.MethodPost, "/api/downloads", body, 5, "user")
	if err := h.Register(c); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if spy.adminCalls != 1 {
		t.Fatalf("adminCalls = %d, want 1", spy.adminCalls)
	}
	if spy.lastKind != "new_download" || spy.lastMsg != "Hit was saved for offline playback" {
		t.Errorf("notification = (%q, %q)", spy.lastKind, spy.lastMsg)
	}
}

func TestDownloadCheckReflectsRegistration(t *testing.T) {
	store := newMemDownloads()
	h := NewDownloadHandler(store, &notifierSpy{})

	c, rec := authedContext(http.MethodGet, "/?song_type=itunes", "", 5, "user")
	c.SetParamNames("songId")
	c.SetParamValues("42")
	if err := h.Check(c); err != nil {
		t.Fatalf("Check: %v", err)
	}
	if got := rec.Body.String(); !strings.Contains(got, `"downloaded":false`) {
		t.Fatalf("before: body = %s", got)
	}

	c, _ = authedContext(http.MethodPost, "/api/downloads", `{"song_type":"itunes","song_id":"42","song_title":"Hit"}`, 5, "user")
	if err := h.Register(c); err != nil {
		t.Fatalf("Register: %v", err)
	}

	c, rec = authedContext(http.MethodGet, "/?song_type=itunes", "", 5, "user")
	c.SetParamNames("songId")
	c.SetParamValues("42")
	if err := h.Check(c); err != nil {
		t.Fatalf("Check: %v", err)
	}
	if got := rec.Body.String(); !strings.Contains(got, `"downloaded":true`) {
		t.Errorf("after: body = %s", got)
	}
}
