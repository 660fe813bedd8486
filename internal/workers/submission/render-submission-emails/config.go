// internal/workers/submission/render-submission-emails/config.go
package rendersubmissionemails

import (
	"time"

	"mca-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
	// Concurrency bounds parallel lender lookups.
	Concurrency   int
	SubjectPrefix string
}

func NewConfig(cfg *config.Config) *Config {
	wc := config.GetWorkerConfig(cfg, TaskType)
	concurrency := wc.MaxJobsActive
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Config{
		Timeout:       config.GetDuration(wc.Timeout),
		Concurrency:   concurrency,
		SubjectPrefix: cfg.Templates.SubjectPrefix,
	}
}
