package templates

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"mca-workers/internal/common/logger"
	"mca-workers/internal/repository"
)

const maxTemplateLength = 20000

var ErrInvalidTemplate = errors.New("TEMPLATE_INVALID")

type Store interface {
	// Load returns the saved template, or DefaultTemplate with isDefault set.
	Load(ctx context.Context) (tmpl string, isDefault bool, err error)
	Set(ctx context.Context, tmpl string) error
	Reset(ctx context.Context) error
}

// SettingsStore keeps the template in the settings table under key and
// caches it in redis.
type SettingsStore struct {
	settings repository.SettingsStore
	redis    *redis.Client
	key      string
	ttl      time.Duration
	logger   logger.Logger
}

func NewSettingsStore(settings repository.SettingsStore, rdb *redis.Client, key string, ttl time.Duration, log logger.Logger) *SettingsStore {
	return &SettingsStore{settings: settings, redis: rdb, key: key, ttl: ttl, logger: log}
}

func (s *SettingsStore) cacheKey() string { return "mca:settings:" + s.key }

func (s *SettingsStore) Load(ctx context.Context) (string, bool, error) {
	if s.redis != nil {
		cached, err := s.redis.Get(ctx, s.cacheKey()).Result()
		if err == nil {
			return cached, false, nil
		}
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("template cache unavailable", map[string]interface{}{"error": err.Error()})
		}
	}

	tmpl, err := s.settings.Get(ctx, s.key)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && strings.TrimSpace(tmpl) == "") {
		return DefaultTemplate, true, nil
	}
	if err != nil {
		return "", false, err
	}

	s.cache(ctx, tmpl)
	return tmpl, false, nil
}

func (s *SettingsStore) Set(ctx context.Context, tmpl string) error {
	if err := Validate(tmpl); err != nil {
		return err
	}
	if err := s.settings.Set(ctx, s.key, tmpl); err != nil {
		return err
	}
	s.cache(ctx, tmpl)
	return nil
}

func (s *SettingsStore) Reset(ctx context.Context) error {
	if err := s.settings.Delete(ctx, s.key); err != nil {
		return err
	}
	if s.redis != nil {
		if err := s.redis.Del(ctx, s.cacheKey()).Err(); err != nil {
			s.logger.Warn("failed to drop cached template", map[string]interface{}{"error": err.Error()})
		}
	}
	return nil
}

func (s *SettingsStore) cache(ctx context.Context, tmpl string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Set(ctx, s.cacheKey(), tmpl, s.ttl).Err(); err != nil {
		s.logger.Warn("failed to cache template", map[string]interface{}{"error": err.Error()})
	}
}

// Validate rejects blank or oversized templates.
func Validate(tmpl string) error {
	if strings.TrimSpace(tmpl) == "" {
		return fmt.Errorf("%w: template is empty", ErrInvalidTemplate)
	}
	if len(tmpl) > maxTemplateLength {
		return fmt.Errorf("%w: template exceeds %d characters", ErrInvalidTemplate, maxTemplateLength)
	}
	return nil
}
