package extractdocumentfields

import (
	"time"

	"mca-workers/internal/common/config"
)

type Config struct {
	Timeout  time.Duration
	MaxPages int
	// MaxDocumentBytes bounds the decoded document size.
	MaxDocumentBytes int
}

func NewConfig(cfg *config.Config) *Config {
	wc := config.GetWorkerConfig(cfg, TaskType)
	return &Config{
		Timeout:          config.GetDuration(wc.Timeout),
		MaxPages:         50,
		MaxDocumentBytes: 20 << 20,
	}
}
