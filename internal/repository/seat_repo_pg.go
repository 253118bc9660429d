package repository

import (
	"context"
	"fmt"
	"slices"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nicoguerrero/boleteria/internal/domain"
)

type SeatRepository interface {
	LockSeats(ctx context.Context, tx pgx.Tx, seatIDs []int64) ([]domain.Seat, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, seatIDs []int64, status domain.SeatStatus) error
	ListByZone(ctx context.Context, zoneID int64) ([]domain.Seat, error)
	CreateZone(ctx context.Context, zone *domain.Zone, seats []domain.Seat) error
	DeleteZone(ctx context.Context, zoneID int64) error
}

type PGSeatRepository struct {
	db *pgxpool.Pool
}

func NewSeatRepository(db *pgxpool.Pool) SeatRepository {
	return &PGSeatRepository{db: db}
}

// sortSeatIDs deduplicates and sorts ascending. Every caller that locks a
// seat set goes through this, so two overlapping reservations always take
// their row locks in the same order and cannot deadlock each other.
func sortSeatIDs(seatIDs []int64) []int64 {
	ids := make([]int64, 0, len(seatIDs))
	seen := make(map[int64]struct{}, len(seatIDs))
	for _, id := range seatIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// LockSeats acquires exclusive row locks on exactly the given seats and
// returns their in-transaction state. All-or-nothing: if any id does not
// resolve to a seat the call fails with ErrSeatNotFound and the caller is
// expected to roll back, releasing whatever was locked. The locks are held
// until tx commits or rolls back.
func (r *PGSeatRepository) LockSeats(ctx context.Context, tx pgx.Tx, seatIDs []int64) ([]domain.Seat, error) {
	if len(seatIDs) == 0 {
		return nil, domain.ErrEmptySeatSelection
	}
	ids := sortSeatIDs(seatIDs)

	rows, err := tx.Query(ctx, `SELECT id, zone_id, label, seat_row, seat_col, status, created_at, updated_at
		FROM seats WHERE id = ANY($1) ORDER BY id FOR UPDATE`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]domain.Seat, 0, len(ids))
	for rows.Next() {
		var s domain.Seat
		if err := rows.Scan(&s.ID, &s.ZoneID, &s.Label, &s.Row, &s.Col, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(seats) != len(ids) {
		locked := make(map[int64]struct{}, len(seats))
		for _, s := range seats {
			locked[s.ID] = struct{}{}
		}
		for _, id := range ids {
			if _, ok := locked[id]; !ok {
				return nil, fmt.Errorf("%w: seat %d", domain.ErrSeatNotFound, id)
			}
		}
	}
	return seats, nil
}

func (r *PGSeatRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, seatIDs []int64, status domain.SeatStatus) error {
	ids := sortSeatIDs(seatIDs)
	cmd, err := tx.Exec(ctx, `UPDATE seats SET status=$1, updated_at=now() WHERE id = ANY($2)`, status, ids)
	if err != nil {
		return err
	}
	if int(cmd.RowsAffected()) != len(ids) {
		return domain.ErrSeatNotFound
	}
	return nil
}

func (r *PGSeatRepository) ListByZone(ctx context.Context, zoneID int64) ([]domain.Seat, error) {
	rows, err := r.db.Query(ctx, `SELECT id, zone_id, label, seat_row, seat_col, status, created_at, updated_at
		FROM seats WHERE zone_id=$1 ORDER BY seat_row, seat_col`, zoneID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]domain.Seat, 0)
	for rows.Next() {
		var s domain.Seat
		if err := rows.Scan(&s.ID, &s.ZoneID, &s.Label, &s.Row, &s.Col, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}

// CreateZone inserts a zone and its seat grid in one transaction. Seats are
// created once, at layout time; after that only the reservation pipeline
// touches their status.
func (r *PGSeatRepository) CreateZone(ctx context.Context, zone *domain.Zone, seats []domain.Seat) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := tx.QueryRow(ctx, `INSERT INTO zones (name, capacity) VALUES ($1, $2)
		RETURNING id, created_at, updated_at`, zone.Name, zone.Capacity).
		Scan(&zone.ID, &zone.CreatedAt, &zone.UpdatedAt); err != nil {
		return err
	}

	for i := range seats {
		seats[i].ZoneID = zone.ID
		seats[i].Status = domain.SeatStatusAvailable
		if err := tx.QueryRow(ctx, `INSERT INTO seats (zone_id, label, seat_row, seat_col, status)
			VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at, updated_at`,
			seats[i].ZoneID, seats[i].Label, seats[i].Row, seats[i].Col, seats[i].Status).
			Scan(&seats[i].ID, &seats[i].CreatedAt, &seats[i].UpdatedAt); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// DeleteZone removes a zone and its seats. Refused once any seat is
// referenced by an order line: the cascade is a layout-authoring operation
// only, never a post-sale one.
func (r *PGSeatRepository) DeleteZone(ctx context.Context, zoneID int64) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var referenced int
	if err := tx.QueryRow(ctx, `SELECT count(*) FROM line_item_seats lis
		JOIN seats s ON s.id = lis.seat_id WHERE s.zone_id=$1`, zoneID).Scan(&referenced); err != nil {
		return err
	}
	if referenced > 0 {
		return domain.ErrZoneHasSales
	}

	if _, err := tx.Exec(ctx, `DELETE FROM seats WHERE zone_id=$1`, zoneID); err != nil {
		return err
	}
	cmd, err := tx.Exec(ctx, `DELETE FROM zones WHERE id=$1`, zoneID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrZoneNotFound
	}

	return tx.Commit(ctx)
}

var _ SeatRepository = (*PGSeatRepository)(nil)
