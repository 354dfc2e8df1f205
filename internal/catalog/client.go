// Package catalog proxies the upstream iTunes search API and the
// lyrics.ovh lookup service.  Responses are normalized into a compact song
// shape before they reach handlers, and artwork URLs are upscaled to 512px.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/doyensec/safeurl"
)

// ErrUnavailable reports that the upstream API could not be reached or
// answered with garbage.  Handlers translate it into HTTP 502.
var ErrUnavailable = errors.New("catalog: upstream unavailable")

// ErrNotFound reports that the upstream knows no song with the given id.
var ErrNotFound = errors.New("catalog: song not found")

// Song is the normalized search result shape returned to clients.
type Song struct {
	ID             int64   `json:"id"`
	Title          string  `json:"title"`
	Artists        string  `json:"artists"`
	Album          string  `json:"album"`
	Thumbnail      *string `json:"thumbnail"`
	DurationMillis *int64  `json:"durationMillis"`
	StreamURL      *string `json:"streamUrl"`
}

// SongDetail extends Song with the lookup-only fields.
type SongDetail struct {
	Song
	ReleaseDate *string `json:"releaseDate"`
	Genre       *string `json:"genre"`
}

// Client talks to the upstream services.  HTTP is injectable so tests can
// point it at a local server; production construction goes through
// NewClient, which wires an SSRF-guarded client.
type Client struct {
	HTTP       *http.Client
	ITunesBase string
	LyricsBase string
}

// NewClient builds a Client whose outbound requests are restricted to
// http/https on standard ports.  safeurl validates resolved IPs in the
// dialer, which also covers DNS rebinding.
func NewClient(itunesBase, lyricsBase string) *Client {
	cfg := safeurl.GetConfigBuilder().
		SetTimeout(15*time.Second).
		SetAllowedSchemes("http", "https").
		SetAllowedPorts(80, 443).
		Build()
	return &Client{
		HTTP:       safeurl.Client(cfg).Client,
		ITunesBase: strings.TrimRight(itunesBase, "/"),
		LyricsBase: strings.TrimRight(lyricsBase, "/"),
	}
}

// itunesTrack mirrors the subset of the upstream result shape we read.
type itunesTrack struct {
	TrackID          int64   `json:"trackId"`
	CollectionID     int64   `json:"collectionId"`
	TrackName        string  `json:"trackName"`
	CollectionName   string  `json:"collectionName"`
	ArtistName       string  `json:"artistName"`
	ArtworkURL100    string  `json:"artworkUrl100"`
	ArtworkURL60     string  `json:"artworkUrl60"`
	TrackTimeMillis  *int64  `json:"trackTimeMillis"`
	PreviewURL       string  `json:"previewUrl"`
	ReleaseDate      *string `json:"releaseDate"`
	PrimaryGenreName *string `json:"primaryGenreName"`
}

type itunesResponse struct {
	ResultCount int           `json:"resultCount"`
	Results     []itunesTrack `json:"results"`
}

// Search queries the upstream catalog.  Tracks without a preview stream
// are dropped because the app cannot play them.
func (c *Client) Search(ctx context.Context, term string, page, size int) ([]Song, error) {
	if strings.TrimSpace(term) == "" {
		return nil, nil
	}
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	q := url.Values{}
	q.Set("term", term)
	q.Set("media", "music")
	q.Set("entity", "song")
	q.Set("country", "us")
	q.Set("limit", strconv.Itoa(size))
	q.Set("offset", strconv.Itoa((page-1)*size))

	var resp itunesResponse
	if err := c.getJSON(ctx, c.ITunesBase+"/search?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	return normalizeTracks(resp.Results), nil
}

// Detail looks up one song by its upstream id.
func (c *Client) Detail(ctx context.Context, id string) (*SongDetail, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrNotFound
	}
	q := url.Values{}
	q.Set("id", id)
	q.Set("entity", "song")

	var resp itunesResponse
	if err := c.getJSON(ctx, c.ITunesBase+"/lookup?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, ErrNotFound
	}
	t := resp.Results[0]
	d := &SongDetail{
		Song:        normalizeTrack(t),
		ReleaseDate: t.ReleaseDate,
		Genre:       t.PrimaryGenreName,
	}
	return d, nil
}

// Lyric resolves a song to artist and title through Detail, then asks
// lyrics.ovh.  A song with no published lyrics returns ok=false, not an
// error.
func (c *Client) Lyric(ctx context.Context, id string) (lyric, creator string, ok bool, err error) {
	d, err := c.Detail(ctx, id)
	if err != nil {
		return "", "", false, err
	}
	if d.Artists == "" || d.Title == "" {
		return "", "", false, nil
	}
	u := c.LyricsBase + "/" + url.PathEscape(d.Artists) + "/" + url.PathEscape(d.Title)
	var resp struct {
		Lyrics string `json:"lyrics"`
	}
	if err := c.getJSON(ctx, u, &resp); err != nil {
		// The lyrics service answers 404 for unknown songs; treat any
		// failure here as "no lyrics" rather than degrading the request.
		return "", "", false, nil
	}
	if resp.Lyrics == "" {
		return "", "", false, nil
	}
	return resp.Lyrics, d.Artists, true, nil
}

// popularArtists seeds the home screen chart when no better signal
// exists upstream.
var popularArtists = []string{
	"Sơn Tùng MTP",
	"Đen Vâu",
	"Hoàng Thuỳ Linh",
	"Chi Pu",
	"Erik",
}

// Top assembles a twenty-song chart by sampling two tracks from each
// popular artist.  Individual artist failures are skipped so one upstream
// hiccup does not empty the chart.
func (c *Client) Top(ctx context.Context) ([]Song, error) {
	var top []Song
	var lastErr error
	for _, artist := range popularArtists {
		songs, err := c.Search(ctx, artist, 1, 5)
		if err != nil {
			lastErr = err
			continue
		}
		if len(songs) > 2 {
			songs = songs[:2]
		}
		top = append(top, songs...)
		if len(top) >= 20 {
			break
		}
	}
	if len(top) == 0 && lastErr != nil {
		return nil, lastErr
	}
	if len(top) > 20 {
		top = top[:20]
	}
	return top, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func normalizeTracks(items []itunesTrack) []Song {
	out := make([]Song, 0, len(items))
	for _, t := range items {
		if (t.TrackID == 0 && t.CollectionID == 0) || t.PreviewURL == "" {
			continue
		}
		if t.TrackName == "" && t.CollectionName == "" {
			continue
		}
		out = append(out, normalizeTrack(t))
	}
	return out
}

func normalizeTrack(t itunesTrack) Song {
	id := t.TrackID
	if id == 0 {
		id = t.CollectionID
	}
	title := t.TrackName
	if title == "" {
		title = t.CollectionName
	}
	s := Song{
		ID:             id,
		Title:          title,
		Artists:        t.ArtistName,
		Album:          t.CollectionName,
		DurationMillis: t.TrackTimeMillis,
	}
	if art := t.ArtworkURL100; art == "" {
		if t.ArtworkURL60 != "" {
			up := UpscaleArtwork(t.ArtworkURL60)
			s.Thumbnail = &up
		}
	} else {
		up := UpscaleArtwork(art)
		s.Thumbnail = &up
	}
	if t.PreviewURL != "" {
		u := t.PreviewURL
		s.StreamURL = &u
	}
	return s
}

var artworkSizeRe = regexp.MustCompile(`(\d+)x(\d+)(bb)?\.([a-zA-Z]+)`)

// UpscaleArtwork rewrites the size segment of an iTunes artwork URL to
// the 512px variant the app renders.
func UpscaleArtwork(u string) string {
	return artworkSizeRe.ReplaceAllString(u, "512x512bb.$4")
}
