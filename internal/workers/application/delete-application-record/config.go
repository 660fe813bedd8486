// internal/workers/application/delete-application-record/config.go
package deleteapplicationrecord

import (
	"time"

	"mca-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func NewConfig(cfg *config.Config) *Config {
	return &Config{Timeout: config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout)}
}
