package zones

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/nicoguerrero/boleteria/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockSeatRepository struct {
	mock.Mock
}

func (m *MockSeatRepository) LockSeats(ctx context.Context, tx pgx.Tx, seatIDs []int64) ([]domain.Seat, error) {
	args := m.Called(ctx, tx, seatIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Seat), args.Error(1)
}

func (m *MockSeatRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, seatIDs []int64, status domain.SeatStatus) error {
	args := m.Called(ctx, tx, seatIDs, status)
	return args.Error(0)
}

func (m *MockSeatRepository) ListByZone(ctx context.Context, zoneID int64) ([]domain.Seat, error) {
	args := m.Called(ctx, zoneID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Seat), args.Error(1)
}

func (m *MockSeatRepository) CreateZone(ctx context.Context, zone *domain.Zone, seats []domain.Seat) error {
	args := m.Called(ctx, zone, seats)
	return args.Error(0)
}

func (m *MockSeatRepository) DeleteZone(ctx context.Context, zoneID int64) error {
	args := m.Called(ctx, zoneID)
	return args.Error(0)
}

type MockSeatMapCache struct {
	mock.Mock
}

func (m *MockSeatMapCache) GetZoneSeats(ctx context.Context, zoneID int64) ([]domain.Seat, error) {
	args := m.Called(ctx, zoneID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Seat), args.Error(1)
}

func (m *MockSeatMapCache) SetZoneSeats(ctx context.Context, zoneID int64, seats []domain.Seat) error {
	args := m.Called(ctx, zoneID, seats)
	return args.Error(0)
}

func (m *MockSeatMapCache) InvalidateZones(ctx context.Context, zoneIDs ...int64) error {
	args := m.Called(ctx, zoneIDs)
	return args.Error(0)
}

func TestListSeats_CacheHit(t *testing.T) {
	repo := &MockSeatRepository{}
	cache := &MockSeatMapCache{}
	svc := NewService(repo, cache)

	cached := []domain.Seat{{ID: 11, ZoneID: 1, Status: domain.SeatStatusAvailable}}
	cache.On("GetZoneSeats", mock.Anything, int64(1)).Return(cached, nil)

	seats, err := svc.ListSeats(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, cached, seats)
	repo.AssertNotCalled(t, "ListByZone", mock.Anything, mock.Anything)
}

func TestListSeats_CacheMissFillsCache(t *testing.T) {
	repo := &MockSeatRepository{}
	cache := &MockSeatMapCache{}
	svc := NewService(repo, cache)

	fromDB := []domain.Seat{{ID: 11, ZoneID: 1, Status: domain.SeatStatusHeld}}
	cache.On("GetZoneSeats", mock.Anything, int64(1)).Return(nil, nil)
	repo.On("ListByZone", mock.Anything, int64(1)).Return(fromDB, nil)
	cache.On("SetZoneSeats", mock.Anything, int64(1), fromDB).Return(nil)

	seats, err := svc.ListSeats(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, fromDB, seats)
	cache.AssertExpectations(t)
}

func TestListSeats_NoCache(t *testing.T) {
	repo := &MockSeatRepository{}
	svc := NewService(repo, nil)

	fromDB := []domain.Seat{{ID: 11, ZoneID: 1, Status: domain.SeatStatusSold}}
	repo.On("ListByZone", mock.Anything, int64(1)).Return(fromDB, nil)

	seats, err := svc.ListSeats(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, fromDB, seats)
}

func TestDeleteZone_InvalidatesCache(t *testing.T) {
	repo := &MockSeatRepository{}
	cache := &MockSeatMapCache{}
	svc := NewService(repo, cache)

	repo.On("DeleteZone", mock.Anything, int64(1)).Return(nil)
	cache.On("InvalidateZones", mock.Anything, []int64{1}).Return(nil)

	assert.NoError(t, svc.DeleteZone(context.Background(), 1))
	cache.AssertExpectations(t)
}

func TestDeleteZone_RefusedWithSales(t *testing.T) {
	repo := &MockSeatRepository{}
	cache := &MockSeatMapCache{}
	svc := NewService(repo, cache)

	repo.On("DeleteZone", mock.Anything, int64(1)).Return(domain.ErrZoneHasSales)

	err := svc.DeleteZone(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrZoneHasSales)
	cache.AssertNotCalled(t, "InvalidateZones", mock.Anything, mock.Anything)
}

func TestListSeats_RepoError(t *testing.T) {
	repo := &MockSeatRepository{}
	svc := NewService(repo, nil)

	repo.On("ListByZone", mock.Anything, int64(9)).Return(nil, errors.New("connection refused"))

	_, err := svc.ListSeats(context.Background(), 9)
	assert.Error(t, err)
}
