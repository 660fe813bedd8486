package normalizewebhookpayload

import (
	"time"

	"mca-workers/internal/common/config"
)

type Config struct {
	Timeout        time.Duration
	AllowedOrigins []string
}

func NewConfig(cfg *config.Config) *Config {
	wc := config.GetWorkerConfig(cfg, TaskType)
	return &Config{
		Timeout:        config.GetDuration(wc.Timeout),
		AllowedOrigins: cfg.Webhooks.AllowedOrigins,
	}
}
