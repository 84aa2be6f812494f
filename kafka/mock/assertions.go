package mockkafka

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kbridge-io/kbridge/kafka"
)

// AssertCommitted fails the test unless the latest committed offset for the
// topic-partition equals want.
func AssertCommitted(t *testing.T, c *Client, tp kafka.TopicPartition, want int64) {
	t.Helper()

	commit, ok := c.CommittedOffset(tp)
	require.True(t, ok, "no offset committed for %s", tp)
	require.Equal(t, want, commit.Offset, "committed offset for %s", tp)
}

// AssertNothingCommitted fails the test if any offset was committed for the
// topic-partition.
func AssertNothingCommitted(t *testing.T, c *Client, tp kafka.TopicPartition) {
	t.Helper()

	commit, ok := c.CommittedOffset(tp)
	require.False(t, ok, "unexpected commit for %s at offset %d", tp, commit.Offset)
}

// AssertCommitMonotonic fails the test if the commit history for the
// topic-partition ever decreased.
func AssertCommitMonotonic(t *testing.T, c *Client, tp kafka.TopicPartition) {
	t.Helper()

	history := c.CommitHistory(tp)
	for i := 1; i < len(history); i++ {
		require.GreaterOrEqual(
			t, history[i], history[i-1],
			"commit history for %s regressed at index %d: %v", tp, i, history,
		)
	}
}

// AssertProduced fails the test unless exactly want records were sent.
func AssertProduced(t *testing.T, c *Client, want int) {
	t.Helper()

	require.Len(t, c.ProducedRecords(), want)
}
