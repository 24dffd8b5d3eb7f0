package retry

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	defaultAttempts = 3
	defaultDelay    = 500 * time.Millisecond
	defaultMaxDelay = 5 * time.Second
	defaultTimeout  = 45 * time.Second
)

type RetryConfig struct {
	Attempts uint          `env:"ATTEMPTS" envDefault:"3"`
	Delay    time.Duration `env:"DELAY" envDefault:"500ms"`
	MaxDelay time.Duration `env:"MAX_DELAY" envDefault:"5s"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"45s"`
}

// ToRetryOptions returns exponential backoff options bounded by MaxDelay
func (rc *RetryConfig) ToRetryOptions() []retry.Option {
	return []retry.Option{
		retry.Attempts(rc.Attempts),
		retry.Delay(rc.Delay),
		retry.MaxDelay(rc.MaxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	}
}

func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		Attempts: defaultAttempts,
		Delay:    defaultDelay,
		MaxDelay: defaultMaxDelay,
		Timeout:  defaultTimeout,
	}
}

// Do runs fn with the configured backoff, retrying only errors accepted by retryIf.
// Timeout bounds all attempts together when set.
func Do[T any](ctx context.Context, rc *RetryConfig, retryIf func(error) bool, fn func(context.Context) (T, error)) (T, error) {
	if rc == nil {
		rc = DefaultRetryConfig()
	}
	if retryIf == nil {
		retryIf = func(error) bool { return true }
	}
	if rc.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, rc.Timeout)
		defer cancel()
	}

	opts := append(rc.ToRetryOptions(),
		retry.Context(ctx),
		retry.RetryIf(retryIf),
		retry.OnRetry(func(n uint, err error) {
			ctxzap.Warn(ctx, "retrying request",
				zap.Uint("attempt", n+1),
				zap.Error(err),
			)
		}),
	)

	return retry.DoWithData(func() (T, error) {
		return fn(ctx)
	}, opts...)
}
