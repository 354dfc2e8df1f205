package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testClient(itunes, lyrics string) *Client {
	return &Client{HTTP: http.DefaultClient, ITunesBase: itunes, LyricsBase: lyrics}
}

func itunesServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestSearchNormalizesResults(t *testing.T) {
	srv := itunesServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("media") != "music" || q.Get("entity") != "song" || q.Get("country") != "us" {
			t.Errorf("query = %v", q)
		}
		if q.Get("limit") != "10" || q.Get("offset") != "10" {
			t.Errorf("paging = limit %s offset %s", q.Get("limit"), q.Get("offset"))
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"resultCount": 3,
			"results": []map[string]interface{}{
				{
					"trackId": 1, "trackName": "Song A", "artistName": "Artist",
					"collectionName": "Album", "previewUrl": "https://cdn/p.m4a",
					"artworkUrl100": "https://img/100x100bb.jpg", "trackTimeMillis": 210000,
				},
				// No preview stream: must be dropped.
				{"trackId": 2, "trackName": "Song B", "artistName": "Artist"},
				// No usable id: must be dropped.
				{"trackName": "Song C", "previewUrl": "https://cdn/c.m4a"},
			},
		})
	})

	songs, err := testClient(srv.URL, "").Search(context.Background(), "artist", 2, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(songs) != 1 {
		t.Fatalf("got %d songs, want 1", len(songs))
	}
	s := songs[0]
	if s.ID != 1 || s.Title != "Song A" || s.Artists != "Artist" {
		t.Errorf("song = %+v", s)
	}
	if s.Thumbnail == nil || *s.Thumbnail != "https://img/512x512bb.jpg" {
		t.Errorf("thumbnail = %v", s.Thumbnail)
	}
	if s.StreamURL == nil || *s.StreamURL != "https://cdn/p.m4a" {
		t.Errorf("stream = %v", s.StreamURL)
	}
}

func TestSearchEmptyTerm(t *testing.T) {
	songs, err := testClient("http://unused", "").Search(context.Background(), "  ", 1, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if songs != nil {
		t.Errorf("songs = %v, want nil", songs)
	}
}

func TestSearchUpstreamFailure(t *testing.T) {
	srv := itunesServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	_, err := testClient(srv.URL, "").Search(context.Background(), "x", 1, 10)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestSearchGarbageBody(t *testing.T) {
	srv := itunesServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	})
	_, err := testClient(srv.URL, "").Search(context.Background(), "x", 1, 10)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestDetail(t *testing.T) {
	srv := itunesServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/lookup" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("id") != "99" {
			t.Errorf("id = %s", r.URL.Query().Get("id"))
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"resultCount": 1,
			"results": []map[string]interface{}{{
				"trackId": 99, "trackName": "Song", "artistName": "Artist",
				"previewUrl": "https://cdn/p.m4a", "releaseDate": "2020-01-01",
				"primaryGenreName": "Pop",
			}},
		})
	})

	d, err := testClient(srv.URL, "").Detail(context.Background(), "99")
	if err != nil {
		t.Fatalf("Detail: %v", err)
	}
	if d.ID != 99 || d.Genre == nil || *d.Genre != "Pop" {
		t.Errorf("detail = %+v", d)
	}
}

func TestDetailNotFound(t *testing.T) {
	srv := itunesServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"resultCount": 0, "results": []interface{}{}})
	})
	_, err := testClient(srv.URL, "").Detail(context.Background(), "404")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestLyric(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/lookup", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"resultCount": 1,
			"results": []map[string]interface{}{{
				"trackId": 5, "trackName": "Song", "artistName": "Artist",
				"previewUrl": "https://cdn/p.m4a",
			}},
		})
	})
	mux.HandleFunc("/Artist/Song", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"lyrics": "la la la"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	lyric, creator, found, err := testClient(srv.URL, srv.URL).Lyric(context.Background(), "5")
	if err != nil {
		t.Fatalf("Lyric: %v", err)
	}
	if !found || lyric != "la la la" || creator != "Artist" {
		t.Errorf("lyric = (%q, %q, %v)", lyric, creator, found)
	}
}

func TestLyricNotPublished(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/lookup", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"resultCount": 1,
			"results": []map[string]interface{}{{
				"trackId": 5, "trackName": "Song", "artistName": "Artist",
				"previewUrl": "https://cdn/p.m4a",
			}},
		})
	})
	// Anything else, including the lyrics path, answers 404.
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	_, _, found, err := testClient(srv.URL, srv.URL).Lyric(context.Background(), "5")
	if err != nil {
		t.Fatalf("Lyric: %v", err)
	}
	if found {
		t.Error("a 404 from the lyrics service must read as no lyrics")
	}
}

func TestTopCapsAtTwenty(t *testing.T) {
	srv := itunesServer(t, func(w http.ResponseWriter, r *http.Request) {
		results := make([]map[string]interface{}, 5)
		for i := range results {
			results[i] = map[string]interface{}{
				"trackId": i + 1, "trackName": "Song", "artistName": r.URL.Query().Get("term"),
				"previewUrl": "https://cdn/p.m4a",
			}
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"resultCount": 5, "results": results})
	})

	songs, err := testClient(srv.URL, "").Top(context.Background())
	if err != nil {
		t.Fatalf("Top: %v", err)
	}
	if len(songs) != 2*len(popularArtists) {
		t.Errorf("got %d songs, want %d", len(songs), 2*len(popularArtists))
	}
	if len(songs) > 20 {
		t.Errorf("chart exceeds 20 songs: %d", len(songs))
	}
}

func TestTopSkipsFailingArtists(t *testing.T) {
	calls := 0
	srv := itunesServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"resultCount": 1,
			"results": []map[string]interface{}{{
				"trackId": calls, "trackName": "Song", "artistName": "A",
				"previewUrl": "https://cdn/p.m4a",
			}},
		})
	})

	songs, err := testClient(srv.URL, "").Top(context.Background())
	if err != nil {
		t.Fatalf("Top: %v", err)
	}
	if len(songs) != len(popularArtists)-1 {
		t.Errorf("got %d songs, want %d", len(songs), len(popularArtists)-1)
	}
}

func TestUpscaleArtwork(t *testing.T) {
	cases := []struct{ in, want string }{
		{"https://img/100x100bb.jpg", "https://img/512x512bb.jpg"},
		{"https://img/60x60.png", "https://img/512x512bb.png"},
		{"https://img/no-size.jpg", "https://img/no-size.jpg"},
	}
	for _, tc := range cases {
		if got := UpscaleArtwork(tc.in); got != tc.want {
			t.Errorf("UpscaleArtwork(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
