package kafka

import (
	"context"
	"errors"
)

// ErrClientClosed is returned by Poll when the underlying client has been
// closed while a fetch was outstanding.
var ErrClientClosed = errors.New("kafka: client closed")

type Client interface {
	Producer
	Consumer

	Ping(ctx context.Context) error
}

type Producer interface {
	// Send publishes a single record and waits for the broker to acknowledge
	// it. There is no batching and no retry; the caller decides what a failed
	// publish means.
	Send(ctx context.Context, topic string, key, value []byte, headers []Header) error
	Flush(ctx context.Context) error
	Close()
}

type Consumer interface {
	Subscribe(topics []string) error

	// Poll blocks until records are available, the configured max wait
	// elapses, or ctx is cancelled. An empty map means no data arrived within
	// the wait window; callers that need an unbounded wait poll again.
	// Records within each partition's slice are in fetch order.
	Poll(ctx context.Context) (map[TopicPartition][]ConsumerRecord, error)

	// Commit durably records one offset per partition. The offset names the
	// last processed record; the committed position the broker stores is the
	// next record to deliver.
	Commit(ctx context.Context, offsets map[TopicPartition]OffsetCommit) error

	Close()
}
