package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nicoguerrero/boleteria/config"
	"github.com/nicoguerrero/boleteria/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisCache is a read-through cache for zone seat maps. It is never used
// for locking: seat and ticket exclusivity belongs to the database row
// locks alone.
type RedisCache struct {
	client     *redis.Client
	seatMapTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, seatMapTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		seatMapTTL: seatMapTTL,
	}
}

func (c *RedisCache) GetZoneSeats(ctx context.Context, zoneID int64) ([]domain.Seat, error) {
	data, err := c.client.Get(ctx, seatMapKey(zoneID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var seats []domain.Seat
	if err := json.Unmarshal(data, &seats); err != nil {
		return nil, err
	}
	return seats, nil
}

func (c *RedisCache) SetZoneSeats(ctx context.Context, zoneID int64, seats []domain.Seat) error {
	payload, err := json.Marshal(seats)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, seatMapKey(zoneID), payload, c.seatMapTTL).Err()
}

func (c *RedisCache) InvalidateZones(ctx context.Context, zoneIDs ...int64) error {
	if len(zoneIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(zoneIDs))
	for _, id := range zoneIDs {
		keys = append(keys, seatMapKey(id))
	}
	return c.client.Del(ctx, keys...).Err()
}

func seatMapKey(zoneID int64) string {
	return fmt.Sprintf("seatmap:zone:%d", zoneID)
}
