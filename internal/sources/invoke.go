package sources

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"github.com/contentpilot/cps/internal/ledger"
)

// maxAttempts is the total number of tries for one invocation, counting the first.
const maxAttempts = 3

// InvokeOption adjusts the retry behavior of Invoke.
type InvokeOption func(*invokeSettings)

type invokeSettings struct {
	initialInterval time.Duration
}

// WithInitialBackoff overrides the initial retry delay.
func WithInitialBackoff(interval time.Duration) InvokeOption {
	return func(s *invokeSettings) {
		s.initialInterval = interval
	}
}

// Invoke runs one adapter call with bounded retry and records the final outcome
// on the quota ledger exactly once. Transient failures are retried with
// exponential backoff starting at one second; permanent failures and context
// cancellation stop immediately.
func Invoke(ctx context.Context, client Client, req Request, quotas *ledger.Ledger, options ...InvokeOption) (*Result, error) {
	log := log.WithFields(logrus.Fields{"context": "invoke", "service": client.Name()})

	settings := invokeSettings{initialInterval: time.Second}
	for _, option := range options {
		option(&settings)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = settings.initialInterval
	policy.MaxInterval = 10 * settings.initialInterval

	var result *Result
	operation := func() error {
		res, err := client.Invoke(ctx, req)
		if err != nil {
			if !Transient(err) {
				return backoff.Permanent(err)
			}
			log.Debugf("transient failure, will retry: %s", err)
			return err
		}
		result = res
		return nil
	}

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, maxAttempts-1), ctx))
	if err != nil {
		quotas.RecordAttempt(ctx, client.Name(), false, err.Error())
		return nil, err
	}

	quotas.RecordAttempt(ctx, client.Name(), true, "")
	return result, nil
}
