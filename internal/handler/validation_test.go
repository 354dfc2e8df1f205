package handler

import (
	"net/http"
	"strings"
	"testing"
)

// These tests exercise the request validation that runs before any
// storage access, so the handlers are constructed without dependencies.

func TestCommentCreateRejectsOverlongText(t *testing.T) {
	h := &CommentHandler{}
	body := `{"song_id":"1","comment_text":"` + strings.Repeat("a", maxCommentLen+1) + `"}`
	c, rec := newContext(http.MethodPost, "/api/comments", body)
	c.Set("user_id", uint64(1))

	if err := h.Create(c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "500 characters") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestCommentCreateRejectsMarkupOnlyText(t *testing.T) {
	h := &CommentHandler{}
	c, rec := newContext(http.MethodPost, "/api/comments", `{"song_id":"1","comment_text":"<script>x()</script>"}`)
	c.Set("user_id", uint64(1))

	if err := h.Create(c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	// Sanitization strips the markup and leaves nothing to store.
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestCommentListRequiresSongID(t *testing.T) {
	h := &CommentHandler{}
	c, rec := newContext(http.MethodGet, "/api/comments", "")
	if err := h.ListBySong(c); err != nil {
		t.Fatalf("ListBySong: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestPlayStartRequiresSongID(t *testing.T) {
	h := &PlayHandler{}
	c, rec := newContext(http.MethodPost, "/api/plays/start", `{"song_type":"itunes"}`)
	if err := h.Start(c); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestPlayEndRequiresSessionToken(t *testing.T) {
	h := &PlayHandler{}
	c, rec := newContext(http.MethodPost, "/api/plays/end", `{"duration_seconds":30}`)
	if err := h.End(c); err != nil {
		t.Fatalf("End: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestFavoriteAddRequiresFields(t *testing.T) {
	h := &FavoriteHandler{}
	c, rec := newContext(http.MethodPost, "/api/favorites", `{"song_id":"9"}`)
	c.Set("user_id", uint64(1))
	if err := h.Add(c); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestPlaylistCreateRequiresName(t *testing.T) {
	h := &PlaylistHandler{}
	c, rec := newContext(http.MethodPost, "/api/playlists", `{"name":"   "}`)
	c.Set("user_id", uint64(1))
	if err := h.Create(c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestPlaylistRejectsBadID(t *testing.T) {
	h := &PlaylistHandler{}
	c, rec := newContext(http.MethodGet, "/", "")
	c.SetParamNames("id")
	c.SetParamValues("abc")
	if err := h.Get(c); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestDownloadRegisterRequiresFields(t *testing.T) {
	h := &DownloadHandler{}
	c, rec := newContext(http.MethodPost, "/api/downloads", `{"song_type":"itunes"}`)
	c.Set("user_id", uint64(1))
	if err := h.Register(c); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestHistoryRecordRequiresSongID(t *testing.T) {
	h := &HistoryHandler{}
	c, rec := newContext(http.MethodPost, "/api/history", `{"duration_seconds":10}`)
	c.Set("user_id", uint64(1))
	if err := h.Record(c); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestLyricUpsertRequiresContent(t *testing.T) {
	h := &LyricHandler{}
	c, rec := newContext(http.MethodPost, "/api/admin/lyrics", `{"song_id":"5"}`)
	if err := h.Upsert(c); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestAdminSongCreateRequiresTitleAndArtist(t *testing.T) {
	h := &AdminSongHandler{}
	c, rec := newContext(http.MethodPost, "/api/admin/songs", `{"title":"Song"}`)
	if err := h.Create(c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestBroadcastRequiresTitleAndMessage(t *testing.T) {
	h := &NotificationHandler{}
	c, rec := newContext(http.MethodPost, "/api/admin/notifications/broadcast", `{"title":"hi"}`)
	c.Set("user_id", uint64(1))
	if err := h.AdminBroadcast(c); err != nil {
		t.Fatalf("AdminBroadcast: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestSongSearchRequiresQuery(t *testing.T) {
	h := &SongHandler{}
	c, rec := newContext(http.MethodGet, "/api/songs/search", "")
	if err := h.Search(c); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestCommentUpdateRequiresText(t *testing.T) {
	h := &CommentHandler{}
	c, rec := newContext(http.MethodPut, "/", `{"comment_text":"  "}`)
	c.SetParamNames("id")
	c.SetParamValues("5")
	c.Set("user_id", uint64(1))
	if err := h.Update(c); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestPlayCountsRejectsEmptyAndOversizedBatch(t *testing.T) {
	h := &PlayHandler{}

	c, rec := newContext(http.MethodPost, "/api/plays/counts", `{"songs":[]}`)
	if err := h.Counts(c); err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("empty batch status = %d, want 422", rec.Code)
	}

	items := make([]string, maxBatchCounts+1)
	for i := range items {
		items[i] = `{"song_type":"itunes","song_id":"1"}`
	}
	body := `{"songs":[` + strings.Join(items, ",") + `]}`
	c, rec = newContext(http.MethodPost, "/api/plays/counts", body)
	if err := h.Counts(c); err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("oversized batch status = %d, want 422", rec.Code)
	}
}

func TestHistoryByDateRequiresValidDate(t *testing.T) {
	h := &HistoryHandler{}
	c, rec := newContext(http.MethodGet, "/api/history/by-date?date=not-a-date", "")
	c.Set("user_id", uint64(1))
	if err := h.ByDate(c); err != nil {
		t.Fatalf("ByDate: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestAdminUserCreateRequiresFields(t *testing.T) {
	h := &AdminUserHandler{}
	c, rec := newContext(http.MethodPost, "/api/admin/users", `{"full_name":"A","email":"a@b.c"}`)
	if err := h.Create(c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}
