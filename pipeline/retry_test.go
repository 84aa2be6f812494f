//go:build unit

package pipeline

import (
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailFast_StopsImmediately(t *testing.T) {
	b := FailFast()()
	assert.Equal(t, backoff.Stop, b.NextBackOff())
}

func TestRetryForever_NeverStops(t *testing.T) {
	b := RetryForever()()
	for i := 0; i < 100; i++ {
		wait := b.NextBackOff()
		require.NotEqual(t, backoff.Stop, wait, "attempt %d must not stop", i)
		require.GreaterOrEqual(t, wait, time.Duration(0))
	}
}

func TestRetryWithBackoff_StopsAfterMaxAttempts(t *testing.T) {
	b := RetryWithBackoff(3)()

	for i := 0; i < 3; i++ {
		require.NotEqual(t, backoff.Stop, b.NextBackOff(), "attempt %d should still retry", i)
	}
	assert.Equal(t, backoff.Stop, b.NextBackOff())
}

func TestRetryPolicy_FreshBackoffPerCall(t *testing.T) {
	policy := RetryWithBackoff(1)

	first := policy()
	require.NotEqual(t, backoff.Stop, first.NextBackOff())
	require.Equal(t, backoff.Stop, first.NextBackOff())

	// A second run starts the attempt count over.
	second := policy()
	assert.NotEqual(t, backoff.Stop, second.NextBackOff())
}

// constantPolicy keeps retry waits negligible so pipeline tests stay fast.
func constantPolicy(wait time.Duration) RetryPolicy {
	return func() backoff.BackOff {
		return backoff.NewConstantBackOff(wait)
	}
}

// boundedPolicy retries a fixed number of times with a negligible wait.
func boundedPolicy(wait time.Duration, maxAttempts uint64) RetryPolicy {
	return func() backoff.BackOff {
		return backoff.WithMaxRetries(backoff.NewConstantBackOff(wait), maxAttempts)
	}
}
