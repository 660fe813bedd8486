// internal/workers/lender/rank-lender-matches/config.go
package ranklendermatches

import (
	"time"

	"mca-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
	// MaxItems caps the result when the job does not set a limit.
	MaxItems int
	// KeyFeatures is how many feature tags are listed before "+N more".
	KeyFeatures int
}

func NewConfig(cfg *config.Config) *Config {
	return &Config{
		Timeout:     config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout),
		MaxItems:    100,
		KeyFeatures: 4,
	}
}
