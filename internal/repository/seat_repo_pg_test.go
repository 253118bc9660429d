package repository

import (
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
)

func TestNewSeatRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewSeatRepository(pool)
	assert.NotNil(t, repo)
}

// Lock ordering must be a deterministic function of the id set, or two
// overlapping reservations could deadlock each other.
func TestSortSeatIDs(t *testing.T) {
	assert.Equal(t, []int64{1, 2, 5, 9}, sortSeatIDs([]int64{9, 1, 5, 2}))
	assert.Equal(t, []int64{3, 7}, sortSeatIDs([]int64{7, 3, 7, 3, 3}))
	assert.Equal(t, sortSeatIDs([]int64{4, 8, 2}), sortSeatIDs([]int64{8, 2, 4}))
	assert.Empty(t, sortSeatIDs(nil))
}
