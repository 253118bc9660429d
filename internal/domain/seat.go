package domain

import "time"

type SeatStatus string

const (
	SeatStatusAvailable SeatStatus = "AVAILABLE"
	SeatStatusHeld      SeatStatus = "HELD"
	SeatStatusSold      SeatStatus = "SOLD"
)

type Seat struct {
	ID        int64
	ZoneID    int64
	Label     string
	Row       int
	Col       int
	Status    SeatStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Zone is a named subdivision of a venue. It owns its seats: deleting a
// zone cascades to the seats, which is only allowed while none of them is
// referenced by an order line.
type Zone struct {
	ID        int64
	Name      string
	Capacity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}
