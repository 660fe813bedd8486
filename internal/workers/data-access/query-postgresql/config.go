// internal/workers/data-access/query-postgresql/config.go
package querypostgresql

import (
	"time"

	"mca-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
	// MaxRows caps list queries when the job does not pass a limit.
	MaxRows int
}

func NewConfig(cfg *config.Config) *Config {
	return &Config{
		Timeout: config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout),
		MaxRows: 500,
	}
}
