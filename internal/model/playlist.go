package model

import "time"

// Playlist models a row in the `playlists` table.  SongCount is a stored
// counter recomputed after every membership change so list queries do not
// need a join.
type Playlist struct {
	ID          uint64    `json:"id"`          // playlists.id
	UserID      uint64    `json:"user_id"`     // playlists.user_id
	Name        string    `json:"name"`        // playlists.name
	Description *string   `json:"description"` // playlists.description (nullable)
	IsPublic    bool      `json:"is_public"`   // playlists.is_public
	SongCount   int       `json:"song_count"`  // playlists.song_count
	CreatedAt   time.Time `json:"created_at"`  // playlists.created_at
	UpdatedAt   time.Time `json:"updated_at"`  // playlists.updated_at
}

// PlaylistSong models a row in the `playlist_songs` table.  The song
// metadata is denormalized at insert time because the catalog lives
// upstream and tracks may disappear from it.
type PlaylistSong struct {
	ID         uint64    `json:"id"`          // playlist_songs.id
	PlaylistID uint64    `json:"playlist_id"` // playlist_songs.playlist_id
	SongID     string    `json:"song_id"`     // playlist_songs.song_id
	SongTitle  string    `json:"song_title"`  // playlist_songs.song_title
	ArtistName *string   `json:"artist_name"` // playlist_songs.artist_name (nullable)
	Thumbnail  *string   `json:"thumbnail"`   // playlist_songs.thumbnail (nullable)
	Duration   *int      `json:"duration"`    // playlist_songs.duration in seconds (nullable)
	Position   int       `json:"position"`    // playlist_songs.position (1-based ordering)
	AddedAt    time.Time `json:"added_at"`    // playlist_songs.added_at
}

// Favorite models a row in the `user_favorites` table.
type Favorite struct {
	ID         uint64    `json:"id"`          // user_favorites.id
	UserID     uint64    `json:"user_id"`     // user_favorites.user_id
	SongID     string    `json:"song_id"`     // user_favorites.song_id
	SongTitle  string    `json:"song_title"`  // user_favorites.song_title
	ArtistName *string   `json:"artist_name"` // user_favorites.artist_name (nullable)
	Thumbnail  *string   `json:"thumbnail"`   // user_favorites.thumbnail (nullable)
	Duration   *int      `json:"duration"`    // user_favorites.duration (nullable)
	CreatedAt  time.Time `json:"created_at"`  // user_favorites.created_at
}
