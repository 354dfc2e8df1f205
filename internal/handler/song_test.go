package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/melodix/melodix-backend/internal/catalog"
	"github.com/melodix/melodix-backend/internal/metrics"
)

func newSongHandler(t *testing.T, upstream http.HandlerFunc) *SongHandler {
	t.Helper()
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)
	return &SongHandler{
		Catalog: &catalog.Client{HTTP: http.DefaultClient, ITunesBase: srv.URL, LyricsBase: srv.URL},
		Metrics: metrics.NewCollector(prometheus.NewRegistry()),
	}
}

func TestSongSearchProxiesUpstream(t *testing.T) {
	h := newSongHandler(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"resultCount": 1,
			"results": []map[string]interface{}{{
				"trackId": 7, "trackName": "Hit", "artistName": "Star",
				"previewUrl": "https://cdn/p.m4a",
			}},
		})
	})
	c, rec := newContext(http.MethodGet, "/api/songs/search?q=hit", "")

	if err := h.Search(c); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"success":true`) || !strings.Contains(body, `"Hit"`) {
		t.Errorf("body = %s", body)
	}
}

func TestSongSearchUpstreamDownAnswers502(t *testing.T) {
	h := newSongHandler(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	c, rec := newContext(http.MethodGet, "/api/songs/search?q=hit", "")

	if err := h.Search(c); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestSongShowNotFound(t *testing.T) {
	h := newSongHandler(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"resultCount": 0, "results": []interface{}{}})
	})
	c, rec := newContext(http.MethodGet, "/", "")
	c.SetParamNames("id")
	c.SetParamValues("12345")

	if err := h.Show(c); err != nil {
		t.Fatalf("Show: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
