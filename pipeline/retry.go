package pipeline

import (
	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy decides how a pipeline responds when a pass fails. Each Run
// calls the policy once to obtain a fresh backoff; backoff.Stop from
// NextBackOff means give up and surface the error to the caller.
type RetryPolicy func() backoff.BackOff

// FailFast surfaces the first failure to the caller. This is the default for
// the split pipeline, where a dead task must end the whole run.
func FailFast() RetryPolicy {
	return func() backoff.BackOff {
		return &backoff.StopBackOff{}
	}
}

// RetryForever keeps the pipeline alive through any failure, waiting with
// exponential backoff between attempts. Offsets never advance past a failed
// batch, so recovered passes refetch and reprocess it.
func RetryForever() RetryPolicy {
	return func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		b.MaxElapsedTime = 0
		return b
	}
}

// RetryWithBackoff retries up to maxAttempts times with exponential backoff,
// then surfaces the error.
func RetryWithBackoff(maxAttempts uint64) RetryPolicy {
	return func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		b.MaxElapsedTime = 0
		return backoff.WithMaxRetries(b, maxAttempts)
	}
}
