package domain

import "errors"

var (
	ErrZoneNotFound   = errors.New("zone not found")
	ErrSeatNotFound   = errors.New("seat not found")
	ErrOrderNotFound  = errors.New("order not found")
	ErrTicketNotFound = errors.New("ticket not found")
)

var (
	ErrEmptySeatSelection = errors.New("seat selection is empty")
	ErrSeatUnavailable    = errors.New("seat is not available")
	ErrOrderNotPending    = errors.New("order is not pending")
	ErrOrderCompleted     = errors.New("completed orders cannot be cancelled")
	ErrZoneHasSales       = errors.New("zone has seats referenced by orders")
)

var (
	ErrTicketAlreadyRedeemed = errors.New("ticket already redeemed")
	ErrTicketVoid            = errors.New("ticket is void")
)

var (
	ErrInvalidBuyer      = errors.New("order must belong to exactly one account or guest")
	ErrInvalidLineItem   = errors.New("invalid line item")
	ErrInsufficientFunds = errors.New("insufficient wallet balance")
	ErrValidation        = errors.New("validation error")
)
