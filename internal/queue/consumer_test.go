package queue

import (
	"context"
	"testing"

	"github.com/melodix/melodix-backend/internal/model"
)

type recordingSink struct {
	inserted []model.Notification
	fanouts  []model.Notification
}

func (s *recordingSink) Insert(_ context.Context, n model.Notification) (uint64, error) {
	s.inserted = append(s.inserted, n)
	return 1, nil
}

func (s *recordingSink) InsertForAllAdmins(_ context.Context, n model.Notification) (int64, error) {
	s.fanouts = append(s.fanouts, n)
	return 2, nil
}

func TestHandleMessageUserEvent(t *testing.T) {
	sink := &recordingSink{}
	body := []byte(`{"receiver_id":7,"receiver_type":"user","notification_type":"welcome","title":"Hi","message":"Welcome"}`)

	if err := handleMessage(body, sink); err != nil {
		t.Fatalf("handleMessage: %v", err)
	}
	if len(sink.inserted) != 1 || len(sink.fanouts) != 0 {
		t.Fatalf("inserted=%d fanouts=%d", len(sink.inserted), len(sink.fanouts))
	}
	n := sink.inserted[0]
	if n.ReceiverID == nil || *n.ReceiverID != 7 || n.Type != "welcome" {
		t.Errorf("notification = %+v", n)
	}
}

func TestHandleMessageAdminFanout(t *testing.T) {
	sink := &recordingSink{}
	body := []byte(`{"receiver_type":"admin","notification_type":"new_comment","title":"t","message":"m"}`)

	if err := handleMessage(body, sink); err != nil {
		t.Fatalf("handleMessage: %v", err)
	}
	if len(sink.fanouts) != 1 || len(sink.inserted) != 0 {
		t.Fatalf("inserted=%d fanouts=%d", len(sink.inserted), len(sink.fanouts))
	}
}

func TestHandleMessageTargetedAdminRowIsNotFannedOut(t *testing.T) {
	sink := &recordingSink{}
	body := []byte(`{"receiver_id":3,"receiver_type":"admin","notification_type":"k","title":"t","message":"m"}`)

	if err := handleMessage(body, sink); err != nil {
		t.Fatalf("handleMessage: %v", err)
	}
	if len(sink.inserted) != 1 || len(sink.fanouts) != 0 {
		t.Fatalf("inserted=%d fanouts=%d", len(sink.inserted), len(sink.fanouts))
	}
}

func TestHandleMessageRejectsGarbage(t *testing.T) {
	if err := handleMessage([]byte("not json"), &recordingSink{}); err == nil {
		t.Fatal("garbage payload must fail so it gets rejected")
	}
}
