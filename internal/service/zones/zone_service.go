package zones

import (
	"context"

	"github.com/nicoguerrero/boleteria/internal/domain"
	"github.com/nicoguerrero/boleteria/internal/repository"
)

type ZoneUseCase interface {
	ListSeats(ctx context.Context, zoneID int64) ([]domain.Seat, error)
	CreateZone(ctx context.Context, zone *domain.Zone, seats []domain.Seat) error
	DeleteZone(ctx context.Context, zoneID int64) error
}

type SeatMapCache interface {
	GetZoneSeats(ctx context.Context, zoneID int64) ([]domain.Seat, error)
	SetZoneSeats(ctx context.Context, zoneID int64, seats []domain.Seat) error
	InvalidateZones(ctx context.Context, zoneIDs ...int64) error
}

type Service struct {
	repo  repository.SeatRepository
	cache SeatMapCache
}

func NewService(repo repository.SeatRepository, cache SeatMapCache) *Service {
	return &Service{repo: repo, cache: cache}
}

// ListSeats serves the seat map read-through: cache hit wins, misses are
// filled from the database. Statuses may lag the store by up to the cache
// TTL; checkout never reads the cache.
func (s *Service) ListSeats(ctx context.Context, zoneID int64) ([]domain.Seat, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetZoneSeats(ctx, zoneID); err == nil && cached != nil {
			return cached, nil
		}
	}

	seats, err := s.repo.ListByZone(ctx, zoneID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetZoneSeats(ctx, zoneID, seats)
	}
	return seats, nil
}

func (s *Service) CreateZone(ctx context.Context, zone *domain.Zone, seats []domain.Seat) error {
	return s.repo.CreateZone(ctx, zone, seats)
}

func (s *Service) DeleteZone(ctx context.Context, zoneID int64) error {
	if err := s.repo.DeleteZone(ctx, zoneID); err != nil {
		return err
	}
	if s.cache != nil {
		_ = s.cache.InvalidateZones(ctx, zoneID)
	}
	return nil
}

var _ ZoneUseCase = (*Service)(nil)
