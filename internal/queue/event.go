// Package queue defines message payloads exchanged over the message broker.
package queue

// NotificationQueueName is the durable queue notification events travel on.
const NotificationQueueName = "notification.created"

// NotificationEvent is published whenever the application wants to notify
// someone.  It carries the full row content so the consumer can persist it
// without querying back into the primary database.
type NotificationEvent struct {
	SenderID     *uint64 `json:"sender_id,omitempty"`
	ReceiverID   *uint64 `json:"receiver_id,omitempty"`
	ReceiverType string  `json:"receiver_type"`
	Type         string  `json:"notification_type"`
	Title        string  `json:"title"`
	Message      string  `json:"message"`
	RelatedData  *string `json:"related_data,omitempty"`
	CreatedAt    string  `json:"created_at"`
}
