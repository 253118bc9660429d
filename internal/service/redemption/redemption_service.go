package redemption

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/nicoguerrero/boleteria/internal/domain"
	"github.com/nicoguerrero/boleteria/internal/repository"
)

type RedemptionUseCase interface {
	Redeem(ctx context.Context, qrCode, deviceID string) (*Result, error)
	Inspect(ctx context.Context, qrCode string) (*domain.IssuedTicket, int, error)
}

// Result reports a redemption attempt. On ErrTicketAlreadyRedeemed and
// ErrTicketVoid it is still populated, so the scanning operator sees the
// previous and current state instead of a bare rejection.
type Result struct {
	TicketID       int64
	PreviousStatus domain.TicketStatus
	CurrentStatus  domain.TicketStatus
	RedeemedAt     time.Time
}

type Service struct {
	tx      repository.TxRunner
	tickets repository.TicketRepository
}

func NewService(tx repository.TxRunner, tickets repository.TicketRepository) *Service {
	return &Service{tx: tx, tickets: tickets}
}

// Redeem advances a ticket from VALID to REDEEMED exactly once and appends
// one audit record for the transition. The ticket row is locked for the
// whole check-and-set, so of N concurrent calls on one QR code exactly one
// succeeds and the rest observe ErrTicketAlreadyRedeemed. Every rejection
// rolls back having written nothing.
func (s *Service) Redeem(ctx context.Context, qrCode, deviceID string) (*Result, error) {
	if qrCode == "" {
		return nil, fmt.Errorf("%w: qr code is required", domain.ErrValidation)
	}
	if deviceID == "" {
		return nil, fmt.Errorf("%w: device id is required", domain.ErrValidation)
	}

	var result *Result
	err := s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		ticket, err := s.tickets.LockByQR(ctx, tx, qrCode)
		if err != nil {
			return err
		}

		switch ticket.Status {
		case domain.TicketStatusValid:
			now := time.Now().UTC()
			if err := s.tickets.MarkRedeemed(ctx, tx, ticket.ID, now); err != nil {
				return err
			}
			rec := &domain.RedemptionRecord{
				TicketID:   ticket.ID,
				DeviceID:   deviceID,
				RedeemedAt: now,
			}
			if err := s.tickets.AppendRedemption(ctx, tx, rec); err != nil {
				return err
			}
			result = &Result{
				TicketID:       ticket.ID,
				PreviousStatus: domain.TicketStatusValid,
				CurrentStatus:  domain.TicketStatusRedeemed,
				RedeemedAt:     now,
			}
			return nil
		case domain.TicketStatusRedeemed:
			result = &Result{
				TicketID:       ticket.ID,
				PreviousStatus: domain.TicketStatusRedeemed,
				CurrentStatus:  domain.TicketStatusRedeemed,
				RedeemedAt:     ticket.UpdatedAt,
			}
			return domain.ErrTicketAlreadyRedeemed
		case domain.TicketStatusVoid:
			result = &Result{
				TicketID:       ticket.ID,
				PreviousStatus: domain.TicketStatusVoid,
				CurrentStatus:  domain.TicketStatusVoid,
			}
			return domain.ErrTicketVoid
		default:
			return fmt.Errorf("unknown ticket status %q", ticket.Status)
		}
	})
	if err != nil {
		return result, err
	}
	return result, nil
}

// Inspect returns the ticket's current status and how many redemption
// records it has accumulated, without locking or mutating anything;
// scanners use it to preview before redeeming.
func (s *Service) Inspect(ctx context.Context, qrCode string) (*domain.IssuedTicket, int, error) {
	if qrCode == "" {
		return nil, 0, fmt.Errorf("%w: qr code is required", domain.ErrValidation)
	}
	ticket, err := s.tickets.GetByQR(ctx, qrCode)
	if err != nil {
		return nil, 0, err
	}
	count, err := s.tickets.CountRedemptions(ctx, ticket.ID)
	if err != nil {
		return nil, 0, err
	}
	return ticket, count, nil
}

var _ RedemptionUseCase = (*Service)(nil)
