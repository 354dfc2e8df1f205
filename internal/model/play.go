package model

import "time"

// SongPlay models a row in the `song_plays` aggregate table, one per
// song, updated whenever a play session qualifies.
type SongPlay struct {
	ID           uint64     `json:"id"`             // song_plays.id
	SongType     string     `json:"song_type"`      // song_plays.song_type
	SongID       string     `json:"song_id"`        // song_plays.song_id
	SongTitle    *string    `json:"song_title"`     // song_plays.song_title (nullable)
	ArtistName   *string    `json:"artist_name"`    // song_plays.artist_name (nullable)
	PlayCount    int64      `json:"play_count"`     // song_plays.play_count
	LastPlayedAt *time.Time `json:"last_played_at"` // song_plays.last_played_at (nullable)
	CreatedAt    time.Time  `json:"created_at"`     // song_plays.created_at
	UpdatedAt    time.Time  `json:"updated_at"`     // song_plays.updated_at
}

// PlaySession models a row in the `play_sessions` table.  SessionToken
// is an opaque random string returned when playback starts and presented
// again when it ends.  CountedAsPlay guards against counting a session
// twice.
type PlaySession struct {
	ID            uint64     // play_sessions.id
	SessionToken  string     // play_sessions.session_token
	UserID        *uint64    // play_sessions.user_id (nullable, anonymous plays)
	SongType      string     // play_sessions.song_type
	SongID        string     // play_sessions.song_id
	SongTitle     *string    // play_sessions.song_title (nullable)
	ArtistName    *string    // play_sessions.artist_name (nullable)
	StartedAt     time.Time  // play_sessions.started_at
	EndedAt       *time.Time // play_sessions.ended_at (nullable)
	PlayDuration  *int       // play_sessions.play_duration in seconds (nullable)
	CountedAsPlay bool       // play_sessions.counted_as_play
}
