package model

import "time"

// AdminSong models a row in the `admin_songs` table: the locally curated
// catalog maintained through the admin console.  ITunesID is set for rows
// imported from the upstream catalog and keeps the import idempotent.
type AdminSong struct {
	ID        uint64    `json:"id"`         // admin_songs.id
	ITunesID  *int64    `json:"itunes_id"`  // admin_songs.itunes_id (nullable for uploads)
	Title     string    `json:"title"`      // admin_songs.title
	Artist    string    `json:"artist"`     // admin_songs.artist
	Album     *string   `json:"album"`      // admin_songs.album (nullable)
	Thumbnail *string   `json:"thumbnail"`  // admin_songs.thumbnail (nullable)
	Category  *string   `json:"category"`   // admin_songs.category (nullable)
	StreamURL *string   `json:"stream_url"` // admin_songs.stream_url (nullable)
	Duration  *int      `json:"duration"`   // admin_songs.duration (nullable)
	CreatedAt time.Time `json:"created_at"` // admin_songs.created_at
	UpdatedAt time.Time `json:"updated_at"` // admin_songs.updated_at
}

// Lyrics models a row in the `song_lyrics` table.  StartTime offsets the
// first line in milliseconds for synchronized display.
type Lyrics struct {
	ID         uint64    `json:"id"`                // song_lyrics.id
	SongID     string    `json:"song_id"`           // song_lyrics.song_id
	SongTitle  *string   `json:"song_title"`        // song_lyrics.song_title (nullable)
	ArtistName *string   `json:"artist_name"`       // song_lyrics.artist_name (nullable)
	Content    string    `json:"lyrics_content"`    // song_lyrics.lyrics_content
	StartTime  int       `json:"lyrics_start_time"` // song_lyrics.lyrics_start_time
	CreatedAt  time.Time `json:"created_at"`        // song_lyrics.created_at
	UpdatedAt  time.Time `json:"updated_at"`        // song_lyrics.updated_at
}
