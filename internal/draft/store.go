package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrDraftConflict = errors.New("DRAFT_CONFLICT")

const keyPrefix = "mca:draft:"

type Store interface {
	// Load returns the stored draft, or an empty one when id is unknown.
	Load(ctx context.Context, id string) (*Draft, error)
	Save(ctx context.Context, d *Draft) error
	// Update loads the draft, applies fn and saves the result atomically
	// with respect to other Update calls on the same id.
	Update(ctx context.Context, id string, fn func(*Draft) error) (*Draft, error)
}

type RedisStore struct {
	redis    *redis.Client
	ttl      time.Duration
	attempts int
	now      func() time.Time
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{redis: rdb, ttl: ttl, attempts: 3, now: time.Now}
}

func key(id string) string { return keyPrefix + id }

func (s *RedisStore) Load(ctx context.Context, id string) (*Draft, error) {
	return load(ctx, s.redis, id)
}

func (s *RedisStore) Save(ctx context.Context, d *Draft) error {
	d.UpdatedAt = s.now().UTC()
	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal draft %s: %w", d.ID, err)
	}
	if err := s.redis.Set(ctx, key(d.ID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("save draft %s: %w", d.ID, err)
	}
	return nil
}

func (s *RedisStore) Update(ctx context.Context, id string, fn func(*Draft) error) (*Draft, error) {
	var result *Draft
	txf := func(tx *redis.Tx) error {
		d, err := load(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := fn(d); err != nil {
			return err
		}
		d.UpdatedAt = s.now().UTC()
		payload, err := json.Marshal(d)
		if err != nil {
			return fmt.Errorf("marshal draft %s: %w", id, err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key(id), payload, s.ttl)
			return nil
		})
		if err == nil {
			result = d
		}
		return err
	}

	for i := 0; i < s.attempts; i++ {
		err := s.redis.Watch(ctx, txf, key(id))
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrDraftConflict, id)
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func load(ctx context.Context, c getter, id string) (*Draft, error) {
	raw, err := c.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return New(id), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load draft %s: %w", id, err)
	}

	d := New(id)
	if err := json.Unmarshal(raw, d); err != nil {
		return nil, fmt.Errorf("decode draft %s: %w", id, err)
	}
	if d.Values == nil {
		d.Values = map[string]string{}
	}
	if d.Provenance == nil {
		d.Provenance = map[string]Provenance{}
	}
	return d, nil
}
