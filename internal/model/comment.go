package model

import "time"

// Comment models a row in the `comments` table.  Deletion is soft: the
// row stays for moderation but is_active flips to false and the comment
// disappears from public listings.
type Comment struct {
	ID          uint64    // comments.id
	UserID      uint64    // comments.user_id
	SongType    string    // comments.song_type ("itunes" or "admin")
	SongID      string    // comments.song_id
	SongTitle   *string   // comments.song_title (nullable)
	ArtistName  *string   // comments.artist_name (nullable)
	CommentText string    // comments.comment_text
	IsActive    bool      // comments.is_active
	CreatedAt   time.Time // comments.created_at
	UpdatedAt   time.Time // comments.updated_at

	// Joined from users for listings; empty when not selected.
	UserName   string  // users.full_name
	UserAvatar *string // users.avatar
}

// HistoryEntry models a row in the `listening_history` table.  One row
// per user, song and calendar day; repeat listens on the same day update
// the row in place.
type HistoryEntry struct {
	ID               uint64    `json:"id"`                // listening_history.id
	UserID           uint64    `json:"user_id"`           // listening_history.user_id
	SongType         string    `json:"song_type"`         // listening_history.song_type
	SongID           string    `json:"song_id"`           // listening_history.song_id
	SongTitle        *string   `json:"song_title"`        // listening_history.song_title (nullable)
	ArtistName       *string   `json:"artist_name"`       // listening_history.artist_name (nullable)
	Thumbnail        *string   `json:"thumbnail"`         // listening_history.thumbnail (nullable)
	ListenDate       time.Time `json:"listen_date"`       // listening_history.listen_date (date only)
	DurationListened int       `json:"duration_listened"` // listening_history.duration_listened in seconds
	ListenedAt       time.Time `json:"listened_at"`       // listening_history.listened_at
}

// Download models a row in the `downloads` table, one per user and song.
type Download struct {
	ID          uint64    `json:"id"`           // downloads.id
	UserID      uint64    `json:"user_id"`      // downloads.user_id
	SongType    string    `json:"song_type"`    // downloads.song_type
	SongID      string    `json:"song_id"`      // downloads.song_id
	SongTitle   string    `json:"song_title"`   // downloads.song_title
	ArtistName  *string   `json:"artist_name"`  // downloads.artist_name (nullable)
	ArtworkURL  *string   `json:"artwork_url"`  // downloads.artwork_url (nullable)
	DownloadURL *string   `json:"download_url"` // downloads.download_url (nullable)
	FileSize    *int64    `json:"file_size"`    // downloads.file_size in bytes (nullable)
	Duration    *int      `json:"duration"`     // downloads.duration (nullable)
	CreatedAt   time.Time `json:"created_at"`   // downloads.created_at
}
