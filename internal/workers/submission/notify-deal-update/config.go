// internal/workers/submission/notify-deal-update/config.go
package notifydealupdate

import (
	"time"

	"mca-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

// NewConfig never lets the job timeout undercut the notifier's own retry
// budget.
func NewConfig(cfg *config.Config) *Config {
	timeout := config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout)
	budget := config.GetDuration(cfg.Webhooks.Timeout)*time.Duration(cfg.Webhooks.MaxAttempts) +
		config.GetDuration(cfg.Webhooks.RetryDelay)*time.Duration(cfg.Webhooks.MaxAttempts)
	if budget > timeout {
		timeout = budget
	}
	return &Config{Timeout: timeout}
}
