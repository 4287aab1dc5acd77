// internal/workers/matching/notify-companies/config.go
package notifycompanies

import (
	"time"

	"renovation-matching/internal/common/camunda"
	"renovation-matching/internal/common/config"
)

type Config struct {
	Timeout       time.Duration
	CompleteRetry *camunda.RetryConfig
}

func NewConfig(wcfg config.WorkerConfig) *Config {
	timeout := config.GetDuration(wcfg.Timeout)
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	retry := *camunda.DefaultRetryConfig
	if wcfg.MaxRetries > 0 {
		retry.MaxRetries = wcfg.MaxRetries
	}
	return &Config{Timeout: timeout, CompleteRetry: &retry}
}
