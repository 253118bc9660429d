package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

// OrderEvent is published on every order lifecycle transition.
type OrderEvent struct {
	Type       string    `json:"type"`
	OrderToken string    `json:"order_token"`
	BuyerKind  string    `json:"buyer_kind"`
	Email      string    `json:"email,omitempty"`
	Status     string    `json:"status"`
	TotalCents int64     `json:"total_cents"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// TicketEvent is published once per issued ticket; the delivery worker
// turns it into the PDF + e-mail send.
type TicketEvent struct {
	Type       string    `json:"type"`
	OrderToken string    `json:"order_token"`
	TicketID   int64     `json:"ticket_id"`
	QRCode     string    `json:"qr_code"`
	SeatID     int64     `json:"seat_id"`
	Email      string    `json:"email,omitempty"`
	IssuedAt   time.Time `json:"issued_at"`
}

type Producer struct {
	brokers []string
}

func NewProducer(brokers []string) *Producer {
	return &Producer{brokers: brokers}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	writer := &kafka.Writer{Addr: kafka.TCP(p.brokers...), Topic: topic, Balancer: &kafka.LeastBytes{}}
	defer writer.Close()

	return writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: data})
}
