package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

type BuyerKind string

const (
	BuyerKindAccount BuyerKind = "ACCOUNT"
	BuyerKindGuest   BuyerKind = "GUEST"
)

// Buyer is the owning party of an order: exactly one of a registered
// account or a guest contact. Construct values through AccountBuyer or
// GuestBuyer and check them with Validate; a zero Buyer is invalid.
type Buyer struct {
	Kind       BuyerKind
	AccountID  int64
	GuestName  string
	GuestEmail string
}

func AccountBuyer(accountID int64) Buyer {
	return Buyer{Kind: BuyerKindAccount, AccountID: accountID}
}

func GuestBuyer(name, email string) Buyer {
	return Buyer{Kind: BuyerKindGuest, GuestName: name, GuestEmail: email}
}

func (b Buyer) Validate() error {
	switch b.Kind {
	case BuyerKindAccount:
		if b.AccountID <= 0 {
			return ErrInvalidBuyer
		}
		if b.GuestName != "" || b.GuestEmail != "" {
			return ErrInvalidBuyer
		}
		return nil
	case BuyerKindGuest:
		if b.GuestEmail == "" {
			return ErrInvalidBuyer
		}
		if b.AccountID != 0 {
			return ErrInvalidBuyer
		}
		return nil
	default:
		return ErrInvalidBuyer
	}
}

// Email returns the address ticket notifications go to, regardless of the
// buyer kind. Account e-mail resolution lives with the (external) profile
// service; for account buyers the caller passes it along on the event.
func (b Buyer) Email() string {
	return b.GuestEmail
}

type LineItemKind string

const (
	LineItemKindSeat     LineItemKind = "SEAT"
	LineItemKindDonation LineItemKind = "DONATION"
)

// LineItem is one priced entry of an order. Seat-backed items reference the
// seats they cover; donation items carry no seat references. All prices are
// integer cents.
type LineItem struct {
	ID             int64
	OrderID        int64
	Kind           LineItemKind
	SeatIDs        []int64
	Quantity       int
	UnitPriceCents int64
}

func (li LineItem) SubtotalCents() int64 {
	return int64(li.Quantity) * li.UnitPriceCents
}

type Order struct {
	ID         int64
	Token      string
	Buyer      Buyer
	Status     OrderStatus
	TotalCents int64
	Items      []LineItem
	PaymentRef string
	ExpiresAt  time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SeatIDs returns every seat referenced by the order's seat-backed items.
func (o *Order) SeatIDs() []int64 {
	var ids []int64
	for _, li := range o.Items {
		if li.Kind == LineItemKindSeat {
			ids = append(ids, li.SeatIDs...)
		}
	}
	return ids
}
