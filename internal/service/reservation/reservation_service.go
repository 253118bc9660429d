package reservation

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/nicoguerrero/boleteria/internal/domain"
	"github.com/nicoguerrero/boleteria/internal/kafka"
	"github.com/nicoguerrero/boleteria/internal/repository"
	"github.com/nicoguerrero/boleteria/internal/wallet"
)

type ReservationUseCase interface {
	ReserveSeats(ctx context.Context, input CreateOrderInput) (*domain.Order, error)
	ConfirmPayment(ctx context.Context, token string, input PaymentInput) (*domain.Order, []domain.IssuedTicket, error)
	CancelOrder(ctx context.Context, token string) (*domain.Order, error)
	VoidOrderTickets(ctx context.Context, token string) error
	ExpirePendingOrders(ctx context.Context) ([]domain.Order, error)
	GetOrder(ctx context.Context, token string) (*domain.Order, error)
}

type Cache interface {
	InvalidateZones(ctx context.Context, zoneIDs ...int64) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

const (
	PaymentMethodWallet   = "WALLET"
	PaymentMethodExternal = "EXTERNAL"
)

type SeatSelection struct {
	SeatIDs        []int64 `json:"seat_ids"`
	UnitPriceCents int64   `json:"unit_price_cents"`
}

type Donation struct {
	Quantity       int   `json:"quantity"`
	UnitPriceCents int64 `json:"unit_price_cents"`
}

type CreateOrderInput struct {
	Buyer     domain.Buyer
	Seats     []SeatSelection
	Donations []Donation
}

type PaymentInput struct {
	Method     string `json:"method"`
	PaymentRef string `json:"payment_ref"`
}

type Service struct {
	tx                 repository.TxRunner
	seats              repository.SeatRepository
	orders             repository.OrderRepository
	tickets            repository.TicketRepository
	wallet             wallet.Wallet
	cache              Cache
	producer           Producer
	orderTopic         string
	notificationsTopic string
	holdTTL            time.Duration
}

type ServiceOption func(*Service)

func WithNotificationsTopic(topic string) ServiceOption {
	return func(s *Service) {
		s.notificationsTopic = topic
	}
}

func NewService(
	tx repository.TxRunner,
	seats repository.SeatRepository,
	orders repository.OrderRepository,
	tickets repository.TicketRepository,
	w wallet.Wallet,
	cache Cache,
	producer Producer,
	orderTopic string,
	holdTTL time.Duration,
	opts ...ServiceOption,
) *Service {
	service := &Service{
		tx:         tx,
		seats:      seats,
		orders:     orders,
		tickets:    tickets,
		wallet:     w,
		cache:      cache,
		producer:   producer,
		orderTopic: orderTopic,
		holdTTL:    holdTTL,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (in CreateOrderInput) validate() error {
	if err := in.Buyer.Validate(); err != nil {
		return err
	}
	if len(in.Seats) == 0 && len(in.Donations) == 0 {
		return fmt.Errorf("%w: order has no line items", domain.ErrValidation)
	}
	for _, sel := range in.Seats {
		if len(sel.SeatIDs) == 0 {
			return domain.ErrEmptySeatSelection
		}
		if sel.UnitPriceCents <= 0 {
			return fmt.Errorf("%w: seat price must be positive", domain.ErrInvalidLineItem)
		}
	}
	for _, d := range in.Donations {
		if d.Quantity <= 0 || d.UnitPriceCents <= 0 {
			return fmt.Errorf("%w: donation quantity and amount must be positive", domain.ErrInvalidLineItem)
		}
	}
	return nil
}

// ReserveSeats moves the requested seats from AVAILABLE to HELD and creates
// the PENDING order, atomically. Every requested seat row is locked for the
// duration of the transaction; if any seat is missing or not AVAILABLE the
// whole transaction rolls back and nothing is held. Conflicts are terminal
// for this attempt, the buyer has to reselect; nothing is retried here.
func (s *Service) ReserveSeats(ctx context.Context, input CreateOrderInput) (*domain.Order, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	var allSeatIDs []int64
	for _, sel := range input.Seats {
		allSeatIDs = append(allSeatIDs, sel.SeatIDs...)
	}

	order := &domain.Order{
		Token:     uuid.NewString(),
		Buyer:     input.Buyer,
		Status:    domain.OrderStatusPending,
		ExpiresAt: time.Now().UTC().Add(s.holdTTL),
	}
	for _, sel := range input.Seats {
		order.Items = append(order.Items, domain.LineItem{
			Kind:           domain.LineItemKindSeat,
			SeatIDs:        sel.SeatIDs,
			Quantity:       len(sel.SeatIDs),
			UnitPriceCents: sel.UnitPriceCents,
		})
	}
	for _, d := range input.Donations {
		order.Items = append(order.Items, domain.LineItem{
			Kind:           domain.LineItemKindDonation,
			Quantity:       d.Quantity,
			UnitPriceCents: d.UnitPriceCents,
		})
	}
	for _, li := range order.Items {
		order.TotalCents += li.SubtotalCents()
	}

	var zoneIDs []int64
	err := s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		if len(allSeatIDs) == 0 {
			return s.orders.Create(ctx, tx, order)
		}
		seats, err := s.seats.LockSeats(ctx, tx, allSeatIDs)
		if err != nil {
			return err
		}
		for _, seat := range seats {
			if seat.Status != domain.SeatStatusAvailable {
				return fmt.Errorf("%w: seat %d is %s", domain.ErrSeatUnavailable, seat.ID, seat.Status)
			}
			zoneIDs = append(zoneIDs, seat.ZoneID)
		}
		if err := s.seats.UpdateStatus(ctx, tx, allSeatIDs, domain.SeatStatusHeld); err != nil {
			return err
		}
		return s.orders.Create(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateZones(ctx, zoneIDs)
	s.publishOrder(ctx, "order_created", order)
	return order, nil
}

// ConfirmPayment is the entry point for the external payment confirmation
// signal. It completes a PENDING order: held seats become SOLD and one
// ticket is issued per seat, in one transaction. Ticket delivery events go
// out after commit; a delivery failure never rolls back issuance.
func (s *Service) ConfirmPayment(ctx context.Context, token string, input PaymentInput) (*domain.Order, []domain.IssuedTicket, error) {
	current, err := s.orders.GetByToken(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	if current.Status != domain.OrderStatusPending {
		return nil, nil, domain.ErrOrderNotPending
	}

	// A wallet payment is debited up front: completing an order that was
	// never paid is worse than refunding a payment whose completion failed.
	debited := false
	if input.Method == PaymentMethodWallet {
		if current.Buyer.Kind != domain.BuyerKindAccount {
			return nil, nil, fmt.Errorf("%w: wallet payment requires an account buyer", domain.ErrValidation)
		}
		if err := s.wallet.Debit(ctx, current.Buyer.AccountID, current.TotalCents); err != nil {
			return nil, nil, err
		}
		debited = true
	}

	var (
		order   *domain.Order
		tickets []domain.IssuedTicket
		zoneIDs []int64
	)
	err = s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		var err error
		order, err = s.orders.GetByTokenForUpdate(ctx, tx, token)
		if err != nil {
			return err
		}
		if order.Status != domain.OrderStatusPending {
			return domain.ErrOrderNotPending
		}

		seatIDs := order.SeatIDs()
		if len(seatIDs) > 0 {
			seats, err := s.seats.LockSeats(ctx, tx, seatIDs)
			if err != nil {
				return err
			}
			for _, seat := range seats {
				if seat.Status != domain.SeatStatusHeld {
					return fmt.Errorf("%w: seat %d is %s, expected HELD", domain.ErrSeatUnavailable, seat.ID, seat.Status)
				}
				zoneIDs = append(zoneIDs, seat.ZoneID)
			}
			if err := s.seats.UpdateStatus(ctx, tx, seatIDs, domain.SeatStatusSold); err != nil {
				return err
			}
		}

		if err := s.orders.UpdateStatus(ctx, tx, order.ID, domain.OrderStatusCompleted, input.PaymentRef); err != nil {
			return err
		}
		order.Status = domain.OrderStatusCompleted

		var toIssue []domain.IssuedTicket
		for _, li := range order.Items {
			if li.Kind != domain.LineItemKindSeat {
				continue
			}
			for _, seatID := range li.SeatIDs {
				toIssue = append(toIssue, domain.IssuedTicket{
					QRCode:     uuid.NewString(),
					LineItemID: li.ID,
					SeatID:     seatID,
				})
			}
		}
		if len(toIssue) > 0 {
			tickets, err = s.tickets.CreateBatch(ctx, tx, toIssue)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if debited {
			if refundErr := s.wallet.Credit(ctx, current.Buyer.AccountID, current.TotalCents); refundErr != nil {
				log.Printf("refund wallet account %d for order %s: %v", current.Buyer.AccountID, token, refundErr)
			}
		}
		return nil, nil, err
	}

	s.invalidateZones(ctx, zoneIDs)
	s.publishOrder(ctx, "order_completed", order)
	for _, t := range tickets {
		s.publishTicket(ctx, order, t)
	}
	return order, tickets, nil
}

// CancelOrder releases a PENDING order's held seats and marks it CANCELLED.
// COMPLETED orders are immutable; cancelling an already CANCELLED order is
// a no-op returning the current state.
func (s *Service) CancelOrder(ctx context.Context, token string) (*domain.Order, error) {
	var (
		order     *domain.Order
		zoneIDs   []int64
		cancelled bool
	)
	err := s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		var err error
		order, err = s.orders.GetByTokenForUpdate(ctx, tx, token)
		if err != nil {
			return err
		}
		switch order.Status {
		case domain.OrderStatusCompleted:
			return domain.ErrOrderCompleted
		case domain.OrderStatusCancelled:
			return nil
		case domain.OrderStatusPending:
		default:
			return fmt.Errorf("unknown order status %q", order.Status)
		}

		seatIDs := order.SeatIDs()
		if len(seatIDs) > 0 {
			seats, err := s.seats.LockSeats(ctx, tx, seatIDs)
			if err != nil {
				return err
			}
			for _, seat := range seats {
				zoneIDs = append(zoneIDs, seat.ZoneID)
			}
			if err := s.seats.UpdateStatus(ctx, tx, seatIDs, domain.SeatStatusAvailable); err != nil {
				return err
			}
		}
		if err := s.orders.UpdateStatus(ctx, tx, order.ID, domain.OrderStatusCancelled, ""); err != nil {
			return err
		}
		order.Status = domain.OrderStatusCancelled
		cancelled = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Cancelling an order that is already CANCELLED changed nothing, so
	// no event goes out and no cache entry is touched.
	if cancelled {
		s.invalidateZones(ctx, zoneIDs)
		s.publishOrder(ctx, "order_cancelled", order)
	}
	return order, nil
}

// VoidOrderTickets voids every still-valid ticket of a completed order,
// for administrative corrections after an out-of-band refund. The order
// status itself stays COMPLETED.
func (s *Service) VoidOrderTickets(ctx context.Context, token string) error {
	return s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		order, err := s.orders.GetByTokenForUpdate(ctx, tx, token)
		if err != nil {
			return err
		}
		if order.Status != domain.OrderStatusCompleted {
			return domain.ErrOrderNotPending
		}
		return s.tickets.VoidByOrder(ctx, tx, order.ID)
	})
}

// ExpirePendingOrders cancels PENDING orders whose hold window passed and
// releases their seats. Seat-map cache entries are left to age out on TTL
// here; the sweep does not know the affected zones.
func (s *Service) ExpirePendingOrders(ctx context.Context) ([]domain.Order, error) {
	expired, err := s.orders.ExpirePendingBefore(ctx, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	for i := range expired {
		s.publishOrder(ctx, "order_expired", &expired[i])
	}
	return expired, nil
}

func (s *Service) GetOrder(ctx context.Context, token string) (*domain.Order, error) {
	return s.orders.GetByToken(ctx, token)
}

func (s *Service) invalidateZones(ctx context.Context, zoneIDs []int64) {
	if s.cache == nil || len(zoneIDs) == 0 {
		return
	}
	if err := s.cache.InvalidateZones(ctx, zoneIDs...); err != nil {
		log.Printf("invalidate seat map cache: %v", err)
	}
}

func (s *Service) publishOrder(ctx context.Context, eventType string, order *domain.Order) {
	if s.producer == nil || s.orderTopic == "" {
		return
	}
	event := kafka.OrderEvent{
		Type:       eventType,
		OrderToken: order.Token,
		BuyerKind:  string(order.Buyer.Kind),
		Email:      order.Buyer.Email(),
		Status:     string(order.Status),
		TotalCents: order.TotalCents,
		ExpiresAt:  order.ExpiresAt,
	}
	if err := s.producer.Publish(ctx, s.orderTopic, order.Token, event); err != nil {
		log.Printf("publish %s event for order %s: %v", eventType, order.Token, err)
	}
}

func (s *Service) publishTicket(ctx context.Context, order *domain.Order, t domain.IssuedTicket) {
	if s.producer == nil || s.notificationsTopic == "" {
		return
	}
	event := kafka.TicketEvent{
		Type:       "ticket_issued",
		OrderToken: order.Token,
		TicketID:   t.ID,
		QRCode:     t.QRCode,
		SeatID:     t.SeatID,
		Email:      order.Buyer.Email(),
		IssuedAt:   t.IssuedAt,
	}
	if err := s.producer.Publish(ctx, s.notificationsTopic, t.QRCode, event); err != nil {
		log.Printf("publish ticket_issued event for ticket %d: %v", t.ID, err)
	}
}

var _ ReservationUseCase = (*Service)(nil)
