package kafka

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// TicketEventHandler receives decoded ticket events from the
// notifications topic.
type TicketEventHandler func(context.Context, TicketEvent) error

type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(brokers []string, groupID, topic string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// ConsumeTicketEvents reads the topic until ctx is canceled, handing each
// ticket_issued event to the handler. Messages that fail to decode or
// carry another event type are skipped, not fatal: one malformed message
// must not wedge ticket delivery for everyone behind it.
func (c *Consumer) ConsumeTicketEvents(ctx context.Context, handler TicketEventHandler) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		event, ok := decodeTicketEvent(msg.Value)
		if !ok {
			continue
		}
		if err := handler(ctx, event); err != nil {
			return err
		}
	}
}

func decodeTicketEvent(value []byte) (TicketEvent, bool) {
	var event TicketEvent
	if err := json.Unmarshal(value, &event); err != nil {
		log.Printf("decode ticket event: %v", err)
		return TicketEvent{}, false
	}
	if event.Type != "ticket_issued" {
		return TicketEvent{}, false
	}
	return event, true
}
