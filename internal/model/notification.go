package model

import "time"

// Notification receiver types.  A "user" notification targets one
// receiver_id, an "admin" notification is materialized as one row per
// admin account, and an "all" notification is a single broadcast row
// visible to every user.
const (
	ReceiverUser  = "user"
	ReceiverAdmin = "admin"
	ReceiverAll   = "all"
)

// Notification models a row in the `notifications` table.
type Notification struct {
	ID           uint64    `json:"id"`                // notifications.id
	SenderID     *uint64   `json:"sender_id"`         // notifications.sender_id (nullable, system when nil)
	ReceiverID   *uint64   `json:"receiver_id"`       // notifications.receiver_id (nullable for broadcasts)
	ReceiverType string    `json:"receiver_type"`     // notifications.receiver_type
	Type         string    `json:"notification_type"` // notifications.notification_type
	Title        string    `json:"title"`             // notifications.title
	Message      string    `json:"message"`           // notifications.message
	RelatedData  *string   `json:"related_data"`      // notifications.related_data (JSON, nullable)
	IsRead       bool      `json:"is_read"`           // notifications.is_read
	CreatedAt    time.Time `json:"created_at"`        // notifications.created_at
}
