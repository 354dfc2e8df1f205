// Package queue contains the background consumer that drains the
// notification.created queue into the notifications table.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/melodix/melodix-backend/internal/model"
)

// NotificationSink is where consumed events are persisted.  The
// repository's NotificationRepo satisfies it.
type NotificationSink interface {
	Insert(ctx context.Context, n model.Notification) (uint64, error)
	InsertForAllAdmins(ctx context.Context, n model.Notification) (int64, error)
}

// StartNotificationConsumer connects to RabbitMQ, declares the durable
// notification queue, and persists incoming events.  It runs a reconnect
// loop with exponential backoff and never returns under normal operation;
// processing errors are logged and the offending message is rejected
// without requeue so a poison message cannot wedge the queue.
func StartNotificationConsumer(url string, sink NotificationSink) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("notification-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, sink); err != nil {
			log.Printf("notification-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection, sink NotificationSink) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("notification-consumer: set QoS failed: %v", err)
	}

	_, err = ch.QueueDeclare(NotificationQueueName, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(NotificationQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(d.Body, sink); err != nil {
			log.Printf("notification-consumer: handle message failed: %v", err)
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleMessage(body []byte, sink NotificationSink) error {
	var ev NotificationEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}

	n := model.Notification{
		SenderID:     ev.SenderID,
		ReceiverID:   ev.ReceiverID,
		ReceiverType: ev.ReceiverType,
		Type:         ev.Type,
		Title:        ev.Title,
		Message:      ev.Message,
		RelatedData:  ev.RelatedData,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if ev.ReceiverType == model.ReceiverAdmin && ev.ReceiverID == nil {
		_, err := sink.InsertForAllAdmins(ctx, n)
		return err
	}
	_, err := sink.Insert(ctx, n)
	return err
}
