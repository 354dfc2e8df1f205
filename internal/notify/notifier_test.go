package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/melodix/melodix-backend/internal/model"
)

// memNotifStore records inserted notifications.
type memNotifStore struct {
	rows    []model.Notification
	fanouts []model.Notification
	fail    bool
}

func (m *memNotifStore) Insert(_ context.Context, n model.Notification) (uint64, error) {
	if m.fail {
		return 0, errors.New("insert failed")
	}
	m.rows = append(m.rows, n)
	return uint64(len(m.rows)), nil
}

func (m *memNotifStore) InsertForAllAdmins(_ context.Context, n model.Notification) (int64, error) {
	if m.fail {
		return 0, errors.New("insert failed")
	}
	m.fanouts = append(m.fanouts, n)
	return 2, nil
}

func TestNotifyUserStoresRow(t *testing.T) {
	store := &memNotifStore{}
	n := NewStoreNotifier(store)
	sender := uint64(1)

	n.NotifyUser(context.Background(), &sender, 7, "welcome", "Hello", "Glad you joined", nil)

	if len(store.rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(store.rows))
	}
	row := store.rows[0]
	if row.ReceiverType != model.ReceiverUser {
		t.Errorf("receiver type = %s", row.ReceiverType)
	}
	if row.ReceiverID == nil || *row.ReceiverID != 7 {
		t.Errorf("receiver = %v", row.ReceiverID)
	}
}

func TestNotifyAdminsFansOut(t *testing.T) {
	store := &memNotifStore{}
	NewStoreNotifier(store).NotifyAdmins(context.Background(), nil, "new_comment", "t", "m", nil)

	if len(store.fanouts) != 1 {
		t.Fatalf("got %d fanouts, want 1", len(store.fanouts))
	}
	if store.fanouts[0].ReceiverType != model.ReceiverAdmin {
		t.Errorf("receiver type = %s", store.fanouts[0].ReceiverType)
	}
}

func TestNotifyAllIsSingleBroadcastRow(t *testing.T) {
	store := &memNotifStore{}
	NewStoreNotifier(store).NotifyAll(context.Background(), nil, "new_song", "t", "m", nil)

	if len(store.rows) != 1 || len(store.fanouts) != 0 {
		t.Fatalf("rows=%d fanouts=%d, want 1/0", len(store.rows), len(store.fanouts))
	}
	row := store.rows[0]
	if row.ReceiverType != model.ReceiverAll {
		t.Errorf("receiver type = %s", row.ReceiverType)
	}
	if row.ReceiverID != nil {
		t.Error("broadcast rows carry no receiver id")
	}
}

func TestTitlesAndMessagesAreSanitized(t *testing.T) {
	store := &memNotifStore{}
	NewStoreNotifier(store).NotifyAll(context.Background(), nil, "new_song",
		`<script>alert(1)</script>Song`, `Nice <b>track</b>`, nil)

	row := store.rows[0]
	if row.Title != "Song" {
		t.Errorf("title = %q", row.Title)
	}
	if row.Message != "Nice track" {
		t.Errorf("message = %q", row.Message)
	}
}

func TestStoreFailureIsSwallowed(t *testing.T) {
	store := &memNotifStore{fail: true}
	// Must not panic or surface the error.
	NewStoreNotifier(store).NotifyUser(context.Background(), nil, 1, "k", "t", "m", nil)
}

func TestQueueNotifierFallsBackWhenBrokerUnreachable(t *testing.T) {
	store := &memNotifStore{}
	qn := NewQueueNotifier("amqp://127.0.0.1:1", store)

	qn.NotifyUser(context.Background(), nil, 4, "k", "Title", "Message", nil)

	if len(store.rows) != 1 {
		t.Fatalf("fallback did not store the notification")
	}
	if store.rows[0].ReceiverID == nil || *store.rows[0].ReceiverID != 4 {
		t.Errorf("receiver = %v", store.rows[0].ReceiverID)
	}
}
