// internal/workers/matching/rank-companies/config.go
package rankcompanies

import (
	"time"

	"renovation-matching/internal/common/camunda"
	"renovation-matching/internal/common/config"
)

const maxLimit = 500

type Config struct {
	Timeout      time.Duration
	DefaultLimit int
	// CompleteRetry governs resending the complete-job command.
	CompleteRetry *camunda.RetryConfig
}

func NewConfig(wcfg config.WorkerConfig, mcfg config.MatchingConfig) *Config {
	cfg := &Config{
		Timeout:       config.GetDuration(wcfg.Timeout),
		DefaultLimit:  mcfg.DefaultLimit,
		CompleteRetry: completeRetry(wcfg.MaxRetries),
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 50
	}
	return cfg
}

func completeRetry(maxRetries int) *camunda.RetryConfig {
	retry := *camunda.DefaultRetryConfig
	if maxRetries > 0 {
		retry.MaxRetries = maxRetries
	}
	return &retry
}
