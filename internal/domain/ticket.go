package domain

import "time"

type TicketStatus string

const (
	TicketStatusValid    TicketStatus = "VALID"
	TicketStatusRedeemed TicketStatus = "REDEEMED"
	TicketStatusVoid     TicketStatus = "VOID"
)

// IssuedTicket is created once, at order completion, from a seat-backed
// line item. The QR code is immutable and globally unique. Status only
// moves VALID -> REDEEMED here; VOID is written by order cancellation and
// refund flows, never by the redemption path.
type IssuedTicket struct {
	ID         int64
	QRCode     string
	Status     TicketStatus
	LineItemID int64
	SeatID     int64
	IssuedAt   time.Time
	UpdatedAt  time.Time
}

// RedemptionRecord is the append-only audit trail: one row per attempt
// that actually transitioned a ticket to REDEEMED. Only the Reversed flag
// is ever mutated, by administrative corrections outside this service.
type RedemptionRecord struct {
	ID         int64
	TicketID   int64
	DeviceID   string
	RedeemedAt time.Time
	Reversed   bool
}
