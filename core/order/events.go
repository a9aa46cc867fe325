package order

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// Events publishes order lifecycle events for downstream consumers
// (fulfillment, analytics). Publication is best effort: a broker
// failure is logged by the caller, never surfaced to the buyer. A nil
// *Events disables publication.
type Events struct {
	writer *kafka.Writer
}

func NewEvents(brokers []string, topic string) *Events {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}
	return &Events{writer: w}
}

type paidEvent struct {
	Type      string    `json:"type"`
	OrderID   string    `json:"orderId"`
	UserID    string    `json:"userId"`
	Total     string    `json:"total"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *Events) OrderPaid(ctx context.Context, ord Order) error {
	if e == nil {
		return nil
	}

	evt := paidEvent{
		Type:      "order.paid",
		OrderID:   ord.ID,
		UserID:    ord.UserID,
		Total:     ord.Total.StringFixed(2),
		Timestamp: time.Now().UTC(),
	}

	b, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encoding order event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(ord.ID),
		Value: b,
	}

	if err := e.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publishing order event: %w", err)
	}

	return nil
}

func (e *Events) Close() error {
	if e == nil {
		return nil
	}
	return e.writer.Close()
}
