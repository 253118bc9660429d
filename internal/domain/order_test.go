package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuyerValidate(t *testing.T) {
	assert.NoError(t, AccountBuyer(7).Validate())
	assert.NoError(t, GuestBuyer("Ana", "ana@example.com").Validate())

	// neither set
	assert.ErrorIs(t, Buyer{}.Validate(), ErrInvalidBuyer)
	// both set
	both := Buyer{Kind: BuyerKindAccount, AccountID: 7, GuestEmail: "ana@example.com"}
	assert.ErrorIs(t, both.Validate(), ErrInvalidBuyer)
	// guest without contact address
	assert.ErrorIs(t, GuestBuyer("Ana", "").Validate(), ErrInvalidBuyer)
	// account id missing
	assert.ErrorIs(t, AccountBuyer(0).Validate(), ErrInvalidBuyer)
}

func TestLineItemSubtotal(t *testing.T) {
	li := LineItem{Kind: LineItemKindSeat, SeatIDs: []int64{1, 2, 3}, Quantity: 3, UnitPriceCents: 2599}
	assert.Equal(t, int64(7797), li.SubtotalCents())

	donation := LineItem{Kind: LineItemKindDonation, Quantity: 1, UnitPriceCents: 10000}
	assert.Equal(t, int64(10000), donation.SubtotalCents())
}

func TestOrderSeatIDs(t *testing.T) {
	order := Order{Items: []LineItem{
		{Kind: LineItemKindSeat, SeatIDs: []int64{11, 12}},
		{Kind: LineItemKindDonation, Quantity: 1, UnitPriceCents: 500},
		{Kind: LineItemKindSeat, SeatIDs: []int64{20}},
	}}
	assert.Equal(t, []int64{11, 12, 20}, order.SeatIDs())

	donationOnly := Order{Items: []LineItem{{Kind: LineItemKindDonation, Quantity: 1, UnitPriceCents: 500}}}
	assert.Empty(t, donationOnly.SeatIDs())
}
