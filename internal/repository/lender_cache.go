package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"mca-workers/internal/common/logger"
	"mca-workers/internal/common/metrics"
	"mca-workers/internal/models"
)

const (
	lenderListKey    = "mca:lenders:all"
	lenderVersionKey = "mca:lenders:version"
)

// errStaleLenderList aborts a cache fill that raced with an invalidation.
var errStaleLenderList = errors.New("lender list changed while loading")

// CachedLenderRepository serves List from redis and drops the cached list
// on every write. Redis failures fall through to the database.
//
// Every invalidation bumps a version counter. A fill only lands if the
// version is unchanged since before the database read, so a slow List can
// not write back a list that a concurrent write already invalidated.
type CachedLenderRepository struct {
	next   LenderStore
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedLenderRepository(next LenderStore, rdb *redis.Client, ttl time.Duration, log logger.Logger) *CachedLenderRepository {
	return &CachedLenderRepository{next: next, redis: rdb, ttl: ttl, logger: log}
}

func (c *CachedLenderRepository) List(ctx context.Context) ([]models.Lender, error) {
	raw, err := c.redis.Get(ctx, lenderListKey).Bytes()
	switch {
	case err == nil:
		var lenders []models.Lender
		if jsonErr := json.Unmarshal(raw, &lenders); jsonErr == nil {
			metrics.LenderCacheRequests.WithLabelValues("hit").Inc()
			return lenders, nil
		}
		c.logger.Warn("discarding corrupt lender cache entry", nil)
	case errors.Is(err, redis.Nil):
		metrics.LenderCacheRequests.WithLabelValues("miss").Inc()
	default:
		metrics.LenderCacheRequests.WithLabelValues("error").Inc()
		c.logger.Warn("lender cache unavailable", map[string]interface{}{"error": err.Error()})
		return c.next.List(ctx)
	}

	version, err := c.version(ctx, c.redis)
	if err != nil {
		c.logger.Warn("lender cache unavailable", map[string]interface{}{"error": err.Error()})
		return c.next.List(ctx)
	}

	lenders, err := c.next.List(ctx)
	if err != nil {
		return nil, err
	}
	c.fill(ctx, version, lenders)
	return lenders, nil
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (c *CachedLenderRepository) version(ctx context.Context, cmd stringGetter) (int64, error) {
	v, err := cmd.Get(ctx, lenderVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

func (c *CachedLenderRepository) fill(ctx context.Context, version int64, lenders []models.Lender) {
	payload, err := json.Marshal(lenders)
	if err != nil {
		return
	}
	err = c.redis.Watch(ctx, func(tx *redis.Tx) error {
		current, err := c.version(ctx, tx)
		if err != nil {
			return err
		}
		if current != version {
			return errStaleLenderList
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, lenderListKey, payload, c.ttl)
			return nil
		})
		return err
	}, lenderVersionKey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleLenderList), errors.Is(err, redis.TxFailedErr):
		c.logger.Debug("skipping stale lender cache fill", nil)
	default:
		c.logger.Warn("failed to populate lender cache", map[string]interface{}{"error": err.Error()})
	}
}

func (c *CachedLenderRepository) Get(ctx context.Context, id string) (*models.Lender, error) {
	return c.next.Get(ctx, id)
}

func (c *CachedLenderRepository) Create(ctx context.Context, l models.Lender) (*models.Lender, error) {
	created, err := c.next.Create(ctx, l)
	if err == nil {
		c.Invalidate(ctx)
	}
	return created, err
}

func (c *CachedLenderRepository) Update(ctx context.Context, id string, l models.Lender) (*models.Lender, error) {
	updated, err := c.next.Update(ctx, id, l)
	if err == nil {
		c.Invalidate(ctx)
	}
	return updated, err
}

func (c *CachedLenderRepository) Delete(ctx context.Context, id string) error {
	err := c.next.Delete(ctx, id)
	if err == nil {
		c.Invalidate(ctx)
	}
	return err
}

func (c *CachedLenderRepository) Invalidate(ctx context.Context) {
	_, err := c.redis.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, lenderVersionKey)
		p.Del(ctx, lenderListKey)
		return nil
	})
	if err != nil {
		c.logger.Warn("failed to invalidate lender cache", map[string]interface{}{"error": err.Error()})
	}
}
