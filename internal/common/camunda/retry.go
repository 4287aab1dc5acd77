// internal/common/camunda/retry.go
package camunda

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"renovation-matching/internal/common/errors"
)

// RetryConfig controls how gateway commands are retried.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// DefaultRetryConfig is used when a nil RetryConfig is passed.
var DefaultRetryConfig = &RetryConfig{
	MaxRetries: 3,
	BaseDelay:  500 * time.Millisecond,
	MaxDelay:   5 * time.Second,
}

// ExecuteWithRetry sends a gateway command, retrying with exponential backoff
// while the gateway reports a transient failure. The returned error is a
// *errors.StandardError.
func ExecuteWithRetry(ctx context.Context, retry *RetryConfig, operation string, command func(context.Context) error) error {
	if retry == nil {
		retry = DefaultRetryConfig
	}

	var lastErr error
	for attempt := 0; attempt <= retry.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return errors.NewTimeoutError("zeebe", fmt.Errorf("%s: %w (last error: %v)", operation, ctx.Err(), lastErr))
			case <-time.After(backoff(retry, attempt)):
			}
		}

		lastErr = command(ctx)
		if lastErr == nil {
			return nil
		}
		if !isTransientGatewayError(lastErr) {
			break
		}
	}
	return classifyGatewayError(lastErr, operation)
}

func backoff(retry *RetryConfig, attempt int) time.Duration {
	delay := retry.BaseDelay << (attempt - 1)
	if delay <= 0 || delay > retry.MaxDelay {
		return retry.MaxDelay
	}
	return delay
}

var transientMessages = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"no route to host",
	"deadline exceeded",
}

func isTransientGatewayError(err error) bool {
	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted:
			return true
		case codes.Unknown:
		default:
			return false
		}
	}
	msg := strings.ToLower(err.Error())
	for _, m := range transientMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

func classifyGatewayError(err error, operation string) error {
	wrapped := fmt.Errorf("%s: %w", operation, err)
	switch status.Code(err) {
	case codes.NotFound:
		// the job was completed elsewhere or timed out and was reassigned
		return errors.NewResourceNotFoundError("zeebe", wrapped.Error())
	case codes.DeadlineExceeded:
		return errors.NewTimeoutError("zeebe", wrapped)
	case codes.Unauthenticated, codes.PermissionDenied:
		return errors.NewAuthenticationError(wrapped.Error())
	case codes.InvalidArgument, codes.FailedPrecondition, codes.AlreadyExists:
		return errors.NewBusinessRuleError("Zeebe rejected "+operation, wrapped.Error())
	}
	if strings.Contains(strings.ToLower(err.Error()), "deadline exceeded") {
		return errors.NewTimeoutError("zeebe", wrapped)
	}
	return errors.NewExternalServiceError("zeebe", wrapped)
}
