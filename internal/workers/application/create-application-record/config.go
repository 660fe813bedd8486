// internal/workers/application/create-application-record/config.go
package createapplicationrecord

import (
	"time"

	"mca-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
	// NotifyTimeout bounds the background new-deal notification, which
	// outlives the job.
	NotifyTimeout time.Duration
}

func NewConfig(cfg *config.Config) *Config {
	return &Config{
		Timeout:       config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout),
		NotifyTimeout: config.GetDuration(cfg.Webhooks.Timeout) * time.Duration(cfg.Webhooks.MaxAttempts+1),
	}
}
