package processor

import (
	"context"
	"fmt"

	"github.com/kbridge-io/kbridge/kafka"
	"github.com/kbridge-io/kbridge/logger"
)

var _ Processor = (*Forwarder)(nil)

// Forwarder republishes every record to a downstream topic and emits one
// commit candidate per forwarded record. A failed publish aborts the batch
// so none of its offsets advance; already-forwarded records will be
// delivered downstream again after the batch is refetched.
type Forwarder struct {
	producer kafka.Producer
	topic    string
	logger   logger.Logger
}

func NewForwarder(producer kafka.Producer, topic string, l logger.Logger) *Forwarder {
	if l == nil {
		l = logger.NewNoopLogger()
	}
	return &Forwarder{
		producer: producer,
		topic:    topic,
		logger:   l.With("component", "forwarder", "topic", topic),
	}
}

func (f *Forwarder) ProcessRecords(ctx context.Context, records []kafka.ConsumerRecord) ([]kafka.OffsetCommit, error) {
	commits := make([]kafka.OffsetCommit, 0, len(records))
	for _, rec := range records {
		if err := f.producer.Send(ctx, f.topic, rec.Key, rec.Value, rec.Headers); err != nil {
			return nil, fmt.Errorf("forward record %s@%d: %w", rec.TopicPartition(), rec.Offset, err)
		}
		commits = append(commits, kafka.CommitFor(rec, ""))
	}

	f.logger.Debug("Forwarded batch", "count", len(records))
	return commits, nil
}
