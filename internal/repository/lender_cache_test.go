package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mca-workers/internal/common/logger"
	"mca-workers/internal/models"
)

type countingLenderStore struct {
	LenderStore
	lenders   []models.Lender
	listCalls int
}

func (s *countingLenderStore) List(ctx context.Context) ([]models.Lender, error) {
	s.listCalls++
	return s.lenders, nil
}

func (s *countingLenderStore) Delete(ctx context.Context, id string) error { return nil }

// racingLenderStore simulates a lender write landing while List reads the
// database.
type racingLenderStore struct {
	countingLenderStore
	onList func()
}

func (s *racingLenderStore) List(ctx context.Context) ([]models.Lender, error) {
	lenders, err := s.countingLenderStore.List(ctx)
	if s.onList != nil {
		s.onList()
		s.onList = nil
	}
	return lenders, err
}

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestCachedLenderRepository_ReadThroughAndInvalidate(t *testing.T) {
	mr, rdb := newMiniredis(t)
	next := &countingLenderStore{lenders: []models.Lender{{ID: "l-1", Name: "Apex"}}}
	repo := NewCachedLenderRepository(next, rdb, time.Minute, logger.NewTestLogger(t))
	ctx := context.Background()

	first, err := repo.List(ctx)
	require.NoError(t, err)
	second, err := repo.List(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, next.listCalls)
	assert.True(t, mr.Exists(lenderListKey))
	assert.Equal(t, time.Minute, mr.TTL(lenderListKey))

	require.NoError(t, repo.Delete(ctx, "l-1"))
	assert.False(t, mr.Exists(lenderListKey))

	_, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, next.listCalls)
}

func TestCachedLenderRepository_CorruptEntryFallsThrough(t *testing.T) {
	mr, rdb := newMiniredis(t)
	require.NoError(t, mr.Set(lenderListKey, "{not json"))

	next := &countingLenderStore{lenders: []models.Lender{{ID: "l-1"}}}
	repo := NewCachedLenderRepository(next, rdb, time.Minute, logger.NewTestLogger(t))

	lenders, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, lenders, 1)
	assert.Equal(t, 1, next.listCalls)
}

func TestCachedLenderRepository_RedisDownFallsThrough(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.ExpectGet(lenderListKey).SetErr(redis.ErrClosed)

	next := &countingLenderStore{lenders: []models.Lender{{ID: "l-1"}}}
	repo := NewCachedLenderRepository(next, rdb, time.Minute, logger.NewTestLogger(t))

	lenders, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, lenders, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedLenderRepository_InvalidateDuringListSkipsFill(t *testing.T) {
	mr, rdb := newMiniredis(t)
	next := &racingLenderStore{countingLenderStore: countingLenderStore{lenders: []models.Lender{{ID: "l-1", Name: "Apex"}}}}
	repo := NewCachedLenderRepository(next, rdb, time.Minute, logger.NewTestLogger(t))
	ctx := context.Background()
	next.onList = func() { repo.Invalidate(ctx) }

	lenders, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, lenders, 1)
	assert.False(t, mr.Exists(lenderListKey), "stale list must not be cached")

	version, err := mr.Get(lenderVersionKey)
	require.NoError(t, err)
	assert.Equal(t, "1", version)

	_, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, next.listCalls)
	assert.True(t, mr.Exists(lenderListKey))
}

func TestCachedLenderRepository_WriteBumpsVersion(t *testing.T) {
	mr, rdb := newMiniredis(t)
	next := &countingLenderStore{lenders: []models.Lender{{ID: "l-1"}}}
	repo := NewCachedLenderRepository(next, rdb, time.Minute, logger.NewTestLogger(t))
	ctx := context.Background()

	require.NoError(t, repo.Delete(ctx, "l-1"))
	require.NoError(t, repo.Delete(ctx, "l-1"))

	version, err := mr.Get(lenderVersionKey)
	require.NoError(t, err)
	assert.Equal(t, "2", version)
}
