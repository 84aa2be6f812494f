package kafka

import (
	"context"
	"sync"
)

var _ Consumer = (*GuardedConsumer)(nil)

// GuardedConsumer serializes access to a Consumer whose subscribe, poll and
// commit operations are not safe to call from more than one goroutine. The
// wrapped handle is never exposed; every operation holds the guard for its
// full duration, so at most one of poll or commit is in flight at a time.
//
// A poll holds the guard until it returns, so commits can be delayed by up
// to the consumer's poll max wait. Keep that wait short when commit latency
// matters.
type GuardedConsumer struct {
	mu sync.Mutex
	c  Consumer
}

func NewGuardedConsumer(c Consumer) *GuardedConsumer {
	return &GuardedConsumer{c: c}
}

func (g *GuardedConsumer) Subscribe(topics []string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.c.Subscribe(topics)
}

func (g *GuardedConsumer) Poll(ctx context.Context) (map[TopicPartition][]ConsumerRecord, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.c.Poll(ctx)
}

func (g *GuardedConsumer) Commit(ctx context.Context, offsets map[TopicPartition]OffsetCommit) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.c.Commit(ctx, offsets)
}

func (g *GuardedConsumer) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.c.Close()
}
