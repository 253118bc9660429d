package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nicoguerrero/boleteria/internal/domain"
)

type OrderRepository interface {
	Create(ctx context.Context, tx pgx.Tx, order *domain.Order) error
	GetByToken(ctx context.Context, token string) (*domain.Order, error)
	GetByTokenForUpdate(ctx context.Context, tx pgx.Tx, token string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, orderID int64, status domain.OrderStatus, paymentRef string) error
	ExpirePendingBefore(ctx context.Context, deadline time.Time) ([]domain.Order, error)
}

type PGOrderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) OrderRepository {
	return &PGOrderRepository{db: db}
}

// Create inserts the order, its line items and the seat references of
// seat-backed items, all inside the caller's transaction. The caller holds
// the seat row locks already, so no separate locking is needed here.
func (r *PGOrderRepository) Create(ctx context.Context, tx pgx.Tx, order *domain.Order) error {
	var accountID *int64
	var guestName, guestEmail *string
	switch order.Buyer.Kind {
	case domain.BuyerKindAccount:
		accountID = &order.Buyer.AccountID
	case domain.BuyerKindGuest:
		guestName, guestEmail = &order.Buyer.GuestName, &order.Buyer.GuestEmail
	default:
		return domain.ErrInvalidBuyer
	}

	if err := tx.QueryRow(ctx, `INSERT INTO orders (token, buyer_kind, account_id, guest_name, guest_email, status, total_cents, payment_ref, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`,
		order.Token, order.Buyer.Kind, accountID, guestName, guestEmail,
		order.Status, order.TotalCents, order.PaymentRef, order.ExpiresAt).
		Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt); err != nil {
		return err
	}

	for i := range order.Items {
		li := &order.Items[i]
		li.OrderID = order.ID
		if err := tx.QueryRow(ctx, `INSERT INTO line_items (order_id, kind, quantity, unit_price_cents)
			VALUES ($1, $2, $3, $4) RETURNING id`,
			li.OrderID, li.Kind, li.Quantity, li.UnitPriceCents).Scan(&li.ID); err != nil {
			return err
		}
		for _, seatID := range li.SeatIDs {
			if _, err := tx.Exec(ctx, `INSERT INTO line_item_seats (line_item_id, seat_id) VALUES ($1, $2)`,
				li.ID, seatID); err != nil {
				return err
			}
		}
	}

	return nil
}

const orderColumns = `id, token, buyer_kind, account_id, guest_name, guest_email, status, total_cents, payment_ref, expires_at, created_at, updated_at`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	var accountID *int64
	var guestName, guestEmail *string
	if err := row.Scan(&o.ID, &o.Token, &o.Buyer.Kind, &accountID, &guestName, &guestEmail,
		&o.Status, &o.TotalCents, &o.PaymentRef, &o.ExpiresAt, &o.CreatedAt, &o.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	if accountID != nil {
		o.Buyer.AccountID = *accountID
	}
	if guestName != nil {
		o.Buyer.GuestName = *guestName
	}
	if guestEmail != nil {
		o.Buyer.GuestEmail = *guestEmail
	}
	return &o, nil
}

func (r *PGOrderRepository) loadItems(ctx context.Context, q interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}, order *domain.Order) error {
	rows, err := q.Query(ctx, `SELECT li.id, li.kind, li.quantity, li.unit_price_cents,
		COALESCE(array_agg(lis.seat_id ORDER BY lis.seat_id) FILTER (WHERE lis.seat_id IS NOT NULL), '{}')
		FROM line_items li
		LEFT JOIN line_item_seats lis ON lis.line_item_id = li.id
		WHERE li.order_id=$1
		GROUP BY li.id
		ORDER BY li.id`, order.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		li := domain.LineItem{OrderID: order.ID}
		if err := rows.Scan(&li.ID, &li.Kind, &li.Quantity, &li.UnitPriceCents, &li.SeatIDs); err != nil {
			return err
		}
		order.Items = append(order.Items, li)
	}
	return rows.Err()
}

func (r *PGOrderRepository) GetByToken(ctx context.Context, token string) (*domain.Order, error) {
	order, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE token=$1`, token))
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, r.db, order); err != nil {
		return nil, err
	}
	return order, nil
}

// GetByTokenForUpdate locks the order row for the lifetime of tx, so only
// one payment confirmation or cancellation can act on it at a time.
func (r *PGOrderRepository) GetByTokenForUpdate(ctx context.Context, tx pgx.Tx, token string) (*domain.Order, error) {
	order, err := scanOrder(tx.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE token=$1 FOR UPDATE`, token))
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, tx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *PGOrderRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, orderID int64, status domain.OrderStatus, paymentRef string) error {
	cmd, err := tx.Exec(ctx, `UPDATE orders SET status=$1, payment_ref=COALESCE(NULLIF($2,''), payment_ref), updated_at=now() WHERE id=$3`,
		status, paymentRef, orderID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// ExpirePendingBefore cancels every PENDING order whose hold expired and
// releases its held seats, in one transaction. Returns the cancelled orders
// with their items loaded so the caller can publish events per order.
func (r *PGOrderRepository) ExpirePendingBefore(ctx context.Context, deadline time.Time) ([]domain.Order, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `UPDATE orders SET status=$1, updated_at=now()
		WHERE status=$2 AND expires_at <= $3
		RETURNING `+orderColumns, domain.OrderStatusCancelled, domain.OrderStatusPending, deadline)
	if err != nil {
		return nil, err
	}

	var expired []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		expired = append(expired, *order)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range expired {
		if err := r.loadItems(ctx, tx, &expired[i]); err != nil {
			return nil, err
		}
		seatIDs := expired[i].SeatIDs()
		if len(seatIDs) == 0 {
			continue
		}
		if _, err := tx.Exec(ctx, `UPDATE seats SET status=$1, updated_at=now()
			WHERE id = ANY($2) AND status=$3`,
			domain.SeatStatusAvailable, seatIDs, domain.SeatStatusHeld); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return expired, nil
}

var _ OrderRepository = (*PGOrderRepository)(nil)
