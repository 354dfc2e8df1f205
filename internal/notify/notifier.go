// Package notify fans notifications out to users.  Notification delivery
// is strictly best effort: a failure here is logged and swallowed so the
// request that triggered it always completes normally.
package notify

import (
	"context"
	"log"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/melodix/melodix-backend/internal/model"
	"github.com/melodix/melodix-backend/internal/queue"
	queue_publisher "github.com/melodix/melodix-backend/internal/service"
)

// Store is the direct persistence path.  repository.NotificationRepo
// satisfies it.
type Store interface {
	Insert(ctx context.Context, n model.Notification) (uint64, error)
	InsertForAllAdmins(ctx context.Context, n model.Notification) (int64, error)
}

// Notifier is what handlers call.  None of the methods return an error on
// purpose; there is nothing a handler could usefully do with one.
type Notifier interface {
	// NotifyUser targets one account.
	NotifyUser(ctx context.Context, senderID *uint64, receiverID uint64, kind, title, message string, related *string)
	// NotifyAdmins creates one row per admin account.
	NotifyAdmins(ctx context.Context, senderID *uint64, kind, title, message string, related *string)
	// NotifyAll creates a single broadcast row.
	NotifyAll(ctx context.Context, senderID *uint64, kind, title, message string, related *string)
}

// strict strips all markup from titles and messages, which may embed
// user-provided text such as names or comment excerpts.
var strict = bluemonday.StrictPolicy()

// StoreNotifier writes rows straight into the notifications table.  Used
// when no message broker is configured.
type StoreNotifier struct {
	Store Store
}

func NewStoreNotifier(store Store) *StoreNotifier { return &StoreNotifier{Store: store} }

func (s *StoreNotifier) NotifyUser(ctx context.Context, senderID *uint64, receiverID uint64, kind, title, message string, related *string) {
	n := model.Notification{
		SenderID:     senderID,
		ReceiverID:   &receiverID,
		ReceiverType: model.ReceiverUser,
		Type:         kind,
		Title:        strict.Sanitize(title),
		Message:      strict.Sanitize(message),
		RelatedData:  related,
	}
	if _, err := s.Store.Insert(ctx, n); err != nil {
		log.Printf("notify: insert user notification failed: %v", err)
	}
}

func (s *StoreNotifier) NotifyAdmins(ctx context.Context, senderID *uint64, kind, title, message string, related *string) {
	n := model.Notification{
		SenderID:     senderID,
		ReceiverType: model.ReceiverAdmin,
		Type:         kind,
		Title:        strict.Sanitize(title),
		Message:      strict.Sanitize(message),
		RelatedData:  related,
	}
	if _, err := s.Store.InsertForAllAdmins(ctx, n); err != nil {
		log.Printf("notify: insert admin notifications failed: %v", err)
	}
}

func (s *StoreNotifier) NotifyAll(ctx context.Context, senderID *uint64, kind, title, message string, related *string) {
	n := model.Notification{
		SenderID:     senderID,
		ReceiverType: model.ReceiverAll,
		Type:         kind,
		Title:        strict.Sanitize(title),
		Message:      strict.Sanitize(message),
		RelatedData:  related,
	}
	if _, err := s.Store.Insert(ctx, n); err != nil {
		log.Printf("notify: insert broadcast notification failed: %v", err)
	}
}

// QueueNotifier publishes events to RabbitMQ for the background consumer
// to persist.  When the broker is unreachable it falls back to the direct
// store path so notifications are not lost with the broker down.
type QueueNotifier struct {
	URL      string
	Fallback *StoreNotifier
}

func NewQueueNotifier(url string, store Store) *QueueNotifier {
	return &QueueNotifier{URL: url, Fallback: NewStoreNotifier(store)}
}

func (qn *QueueNotifier) publish(ctx context.Context, ev queue.NotificationEvent) error {
	ev.Title = strict.Sanitize(ev.Title)
	ev.Message = strict.Sanitize(ev.Message)
	ev.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	return queue_publisher.PublishNotificationCreated(ctx, qn.URL, ev)
}

func (qn *QueueNotifier) NotifyUser(ctx context.Context, senderID *uint64, receiverID uint64, kind, title, message string, related *string) {
	ev := queue.NotificationEvent{
		SenderID:     senderID,
		ReceiverID:   &receiverID,
		ReceiverType: model.ReceiverUser,
		Type:         kind,
		Title:        title,
		Message:      message,
		RelatedData:  related,
	}
	if err := qn.publish(ctx, ev); err != nil {
		qn.Fallback.NotifyUser(ctx, senderID, receiverID, kind, title, message, related)
	}
}

func (qn *QueueNotifier) NotifyAdmins(ctx context.Context, senderID *uint64, kind, title, message string, related *string) {
	ev := queue.NotificationEvent{
		SenderID:     senderID,
		ReceiverType: model.ReceiverAdmin,
		Type:         kind,
		Title:        title,
		Message:      message,
		RelatedData:  related,
	}
	if err := qn.publish(ctx, ev); err != nil {
		qn.Fallback.NotifyAdmins(ctx, senderID, kind, title, message, related)
	}
}

func (qn *QueueNotifier) NotifyAll(ctx context.Context, senderID *uint64, kind, title, message string, related *string) {
	ev := queue.NotificationEvent{
		SenderID:     senderID,
		ReceiverType: model.ReceiverAll,
		Type:         kind,
		Title:        title,
		Message:      message,
		RelatedData:  related,
	}
	if err := qn.publish(ctx, ev); err != nil {
		qn.Fallback.NotifyAll(ctx, senderID, kind, title, message, related)
	}
}
