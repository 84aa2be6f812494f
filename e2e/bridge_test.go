//go:build e2e

package e2e

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kbridge-io/kbridge/kafka"
	"github.com/kbridge-io/kbridge/pipeline"
	"github.com/kbridge-io/kbridge/processor"
)

// TestE2E_SequentialBridge_ForwardsRecords runs the sequential pipeline with
// a forwarding processor against a live broker and verifies that records
// reach the downstream topic and that group offsets advance past them.
func TestE2E_SequentialBridge_ForwardsRecords(t *testing.T) {
	broker := ensureContainer(t)

	inputTopic := testTopicName(t, "input")
	outputTopic := testTopicName(t, "output")
	groupID := testGroupID(t, "seq")

	createTopics(t, broker, 1, inputTopic, outputTopic)

	client, err := kafka.NewKgoClient(
		kafka.WithBootstrapServers([]string{broker}),
		kafka.WithGroupID(groupID),
		kafka.WithPollMaxWait(time.Second),
	)
	require.NoError(t, err)
	defer client.Close()

	fwd := processor.NewForwarder(client, outputTopic, nil)
	p := pipeline.NewSequential(client, fwd, []string{inputTopic})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- p.Run(ctx)
	}()

	// Give the consumer time to join the group and get assignments
	time.Sleep(2 * time.Second)

	testData := map[string]string{
		"key1": "hello",
		"key2": "world",
		"key3": "kafka",
	}
	produceRecords(t, broker, inputTopic, testData)

	records := consumeRecords(t, broker, outputTopic, testGroupID(t, "verifier"), len(testData), consumeWait)
	require.Len(t, records, len(testData))

	forwarded := make(map[string]string)
	for _, r := range records {
		forwarded[r.Key] = r.Value
	}
	require.Equal(t, testData, forwarded)

	// The committed position is the offset after the last forwarded record.
	require.Eventually(
		t, func() bool {
			return committedOffset(t, broker, groupID, inputTopic, 0) == int64(len(testData))
		}, 15*time.Second, 500*time.Millisecond, "group offset should advance past the batch",
	)

	cancel()

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(shutdownWait):
		t.Fatal("timeout waiting for pipeline to stop")
	}
}

// TestE2E_SplitBridge_ForwardsRecords runs the split pipeline end to end:
// fetching and committing happen on separate tasks over the shared guarded
// consumer, and offsets still only advance after the downstream publish.
func TestE2E_SplitBridge_ForwardsRecords(t *testing.T) {
	broker := ensureContainer(t)

	inputTopic := testTopicName(t, "input")
	outputTopic := testTopicName(t, "output")
	groupID := testGroupID(t, "split")

	createTopics(t, broker, 1, inputTopic, outputTopic)

	client, err := kafka.NewKgoClient(
		kafka.WithBootstrapServers([]string{broker}),
		kafka.WithGroupID(groupID),
		kafka.WithPollMaxWait(time.Second),
	)
	require.NoError(t, err)
	defer client.Close()

	fwd := processor.NewForwarder(client, outputTopic, nil)
	p := pipeline.NewSplit(
		client, fwd, []string{inputTopic},
		pipeline.WithQueueCapacity(10),
		pipeline.WithCommitBatchSize(2),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- p.Run(ctx)
	}()

	time.Sleep(2 * time.Second)

	testData := map[string]string{
		"a": "1",
		"b": "2",
		"c": "3",
		"d": "4",
		"e": "5",
	}
	produceRecords(t, broker, inputTopic, testData)

	records := consumeRecords(t, broker, outputTopic, testGroupID(t, "verifier"), len(testData), consumeWait)
	require.Len(t, records, len(testData))

	require.Eventually(
		t, func() bool {
			return committedOffset(t, broker, groupID, inputTopic, 0) == int64(len(testData))
		}, 15*time.Second, 500*time.Millisecond,
	)

	cancel()

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(shutdownWait):
		t.Fatal("timeout waiting for pipeline to stop")
	}
}

// TestE2E_Restart_RedeliversUncommitted verifies at-least-once delivery: a
// group that never committed re-reads the topic from the start after its
// pipeline is restarted.
func TestE2E_Restart_RedeliversUncommitted(t *testing.T) {
	broker := ensureContainer(t)

	inputTopic := testTopicName(t, "input")
	groupID := testGroupID(t, "restart")

	createTopics(t, broker, 1, inputTopic)
	produceRecords(t, broker, inputTopic, map[string]string{"k1": "v1", "k2": "v2"})

	run := func(p processor.Processor) error {
		client, err := kafka.NewKgoClient(
			kafka.WithBootstrapServers([]string{broker}),
			kafka.WithGroupID(groupID),
			kafka.WithPollMaxWait(time.Second),
		)
		if err != nil {
			return err
		}
		defer client.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		pl := pipeline.NewSequential(client, p, []string{inputTopic}, pipeline.WithRetryPolicy(pipeline.FailFast()))
		return pl.Run(ctx)
	}

	// First session sees the records but fails before committing.
	var firstSeen int
	err := run(
		processor.Func(
			func(context.Context, []kafka.ConsumerRecord) ([]kafka.OffsetCommit, error) {
				firstSeen++
				return nil, errors.New("forced failure before commit")
			},
		),
	)
	require.Error(t, err)
	require.Positive(t, firstSeen)
	require.Equal(t, int64(-1), committedOffset(t, broker, groupID, inputTopic, 0))

	// Second session gets the same records again and commits them.
	redelivered := make(chan struct{})
	go func() {
		_ = run(
			processor.Func(
				func(ctx context.Context, records []kafka.ConsumerRecord) ([]kafka.OffsetCommit, error) {
					commits := make([]kafka.OffsetCommit, 0, len(records))
					for _, rec := range records {
						commits = append(commits, kafka.CommitFor(rec, ""))
					}
					select {
					case <-redelivered:
					default:
						close(redelivered)
					}
					return commits, nil
				},
			),
		)
	}()

	select {
	case <-redelivered:
	case <-time.After(consumeWait):
		t.Fatal("timeout waiting for redelivery")
	}

	require.Eventually(
		t, func() bool {
			return committedOffset(t, broker, groupID, inputTopic, 0) == 2
		}, 15*time.Second, 500*time.Millisecond,
	)
}
