package email

import (
	"context"
	"log"

	"github.com/nicoguerrero/boleteria/internal/kafka"
)

// Sender stands in for the ticket delivery collaborator (PDF rendering +
// e-mail). Delivery failures never affect ticket issuance; the worker just
// logs and moves on.
type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event kafka.TicketEvent) error {
	log.Printf("deliver ticket %d (qr %s, seat %d) for order %s to %s",
		event.TicketID, event.QRCode, event.SeatID, event.OrderToken, event.Email)
	return nil
}
