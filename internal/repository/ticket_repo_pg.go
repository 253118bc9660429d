package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nicoguerrero/boleteria/internal/domain"
)

type TicketRepository interface {
	CreateBatch(ctx context.Context, tx pgx.Tx, tickets []domain.IssuedTicket) ([]domain.IssuedTicket, error)
	GetByQR(ctx context.Context, qrCode string) (*domain.IssuedTicket, error)
	LockByQR(ctx context.Context, tx pgx.Tx, qrCode string) (*domain.IssuedTicket, error)
	MarkRedeemed(ctx context.Context, tx pgx.Tx, ticketID int64, at time.Time) error
	VoidByOrder(ctx context.Context, tx pgx.Tx, orderID int64) error
	AppendRedemption(ctx context.Context, tx pgx.Tx, rec *domain.RedemptionRecord) error
	CountRedemptions(ctx context.Context, ticketID int64) (int, error)
}

type PGTicketRepository struct {
	db *pgxpool.Pool
}

func NewTicketRepository(db *pgxpool.Pool) TicketRepository {
	return &PGTicketRepository{db: db}
}

const ticketColumns = `id, qr_code, status, line_item_id, seat_id, issued_at, updated_at`

func scanTicket(row pgx.Row) (*domain.IssuedTicket, error) {
	var t domain.IssuedTicket
	if err := row.Scan(&t.ID, &t.QRCode, &t.Status, &t.LineItemID, &t.SeatID, &t.IssuedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *PGTicketRepository) CreateBatch(ctx context.Context, tx pgx.Tx, tickets []domain.IssuedTicket) ([]domain.IssuedTicket, error) {
	for i := range tickets {
		t := &tickets[i]
		t.Status = domain.TicketStatusValid
		if err := tx.QueryRow(ctx, `INSERT INTO issued_tickets (qr_code, status, line_item_id, seat_id)
			VALUES ($1, $2, $3, $4) RETURNING id, issued_at, updated_at`,
			t.QRCode, t.Status, t.LineItemID, t.SeatID).
			Scan(&t.ID, &t.IssuedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
	}
	return tickets, nil
}

// GetByQR is the read-only lookup behind inspect: no lock, no mutation.
func (r *PGTicketRepository) GetByQR(ctx context.Context, qrCode string) (*domain.IssuedTicket, error) {
	return scanTicket(r.db.QueryRow(ctx, `SELECT `+ticketColumns+` FROM issued_tickets WHERE qr_code=$1`, qrCode))
}

// LockByQR locks the ticket row until tx ends. Concurrent redeem calls on
// the same QR serialize here, so the status check-and-set that follows can
// never race.
func (r *PGTicketRepository) LockByQR(ctx context.Context, tx pgx.Tx, qrCode string) (*domain.IssuedTicket, error) {
	return scanTicket(tx.QueryRow(ctx, `SELECT `+ticketColumns+` FROM issued_tickets WHERE qr_code=$1 FOR UPDATE`, qrCode))
}

func (r *PGTicketRepository) MarkRedeemed(ctx context.Context, tx pgx.Tx, ticketID int64, at time.Time) error {
	cmd, err := tx.Exec(ctx, `UPDATE issued_tickets SET status=$1, updated_at=$2 WHERE id=$3 AND status=$4`,
		domain.TicketStatusRedeemed, at, ticketID, domain.TicketStatusValid)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrTicketAlreadyRedeemed
	}
	return nil
}

// VoidByOrder voids every still-valid ticket of an order. Called by refund
// and cancellation flows; the redemption path never writes VOID.
func (r *PGTicketRepository) VoidByOrder(ctx context.Context, tx pgx.Tx, orderID int64) error {
	_, err := tx.Exec(ctx, `UPDATE issued_tickets SET status=$1, updated_at=now()
		WHERE status=$2 AND line_item_id IN (SELECT id FROM line_items WHERE order_id=$3)`,
		domain.TicketStatusVoid, domain.TicketStatusValid, orderID)
	return err
}

func (r *PGTicketRepository) AppendRedemption(ctx context.Context, tx pgx.Tx, rec *domain.RedemptionRecord) error {
	return tx.QueryRow(ctx, `INSERT INTO redemption_records (ticket_id, device_id, redeemed_at, reversed)
		VALUES ($1, $2, $3, false) RETURNING id`,
		rec.TicketID, rec.DeviceID, rec.RedeemedAt).Scan(&rec.ID)
}

func (r *PGTicketRepository) CountRedemptions(ctx context.Context, ticketID int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM redemption_records WHERE ticket_id=$1`, ticketID).Scan(&n)
	return n, err
}

var _ TicketRepository = (*PGTicketRepository)(nil)
