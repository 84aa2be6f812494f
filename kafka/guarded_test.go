//go:build unit

package kafka

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// overlapConsumer records whether two operations ever ran concurrently.
type overlapConsumer struct {
	active     atomic.Int32
	overlapped atomic.Bool
}

func (c *overlapConsumer) enter() {
	if c.active.Add(1) > 1 {
		c.overlapped.Store(true)
	}
	time.Sleep(time.Millisecond)
	c.active.Add(-1)
}

func (c *overlapConsumer) Subscribe([]string) error {
	c.enter()
	return nil
}

func (c *overlapConsumer) Poll(context.Context) (map[TopicPartition][]ConsumerRecord, error) {
	c.enter()
	return nil, nil
}

func (c *overlapConsumer) Commit(context.Context, map[TopicPartition]OffsetCommit) error {
	c.enter()
	return nil
}

func (c *overlapConsumer) Close() {
	c.enter()
}

func TestGuardedConsumer_SerializesOperations(t *testing.T) {
	inner := &overlapConsumer{}
	guarded := NewGuardedConsumer(inner)

	ctx := context.Background()
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				_, _ = guarded.Poll(ctx)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				_ = guarded.Commit(ctx, nil)
			}
		}()
	}

	wg.Wait()

	assert.False(t, inner.overlapped.Load(), "poll and commit must never overlap")
}

func TestGuardedConsumer_DelegatesResults(t *testing.T) {
	inner := &fakeConsumer{
		records: map[TopicPartition][]ConsumerRecord{
			{Topic: "input", Partition: 0}: {{Topic: "input", Offset: 7}},
		},
	}
	guarded := NewGuardedConsumer(inner)

	require.NoError(t, guarded.Subscribe([]string{"input"}))
	assert.Equal(t, []string{"input"}, inner.topics)

	byPartition, err := guarded.Poll(context.Background())
	require.NoError(t, err)
	require.Len(t, byPartition, 1)

	commits := map[TopicPartition]OffsetCommit{
		{Topic: "input", Partition: 0}: {Offset: 7},
	}
	require.NoError(t, guarded.Commit(context.Background(), commits))
	assert.Equal(t, commits, inner.committed)

	guarded.Close()
	assert.True(t, inner.closed)
}

type fakeConsumer struct {
	topics    []string
	records   map[TopicPartition][]ConsumerRecord
	committed map[TopicPartition]OffsetCommit
	closed    bool
}

func (f *fakeConsumer) Subscribe(topics []string) error {
	f.topics = topics
	return nil
}

func (f *fakeConsumer) Poll(context.Context) (map[TopicPartition][]ConsumerRecord, error) {
	return f.records, nil
}

func (f *fakeConsumer) Commit(_ context.Context, offsets map[TopicPartition]OffsetCommit) error {
	f.committed = offsets
	return nil
}

func (f *fakeConsumer) Close() {
	f.closed = true
}
