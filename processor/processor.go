// Package processor defines the collaborator that consumes fetched batches
// and decides which offsets are safe to commit.
package processor

import (
	"context"

	"github.com/kbridge-io/kbridge/kafka"
)

// Processor consumes one batch of records and returns commit candidates for
// the records it fully handled. Implementations may have side effects
// (forwarding to downstream sinks, writing stores). A returned error means
// the batch must not be committed; the pipeline's retry policy decides what
// happens next. Multiple candidates per partition are fine, the pipeline
// reduces them before committing.
type Processor interface {
	ProcessRecords(ctx context.Context, records []kafka.ConsumerRecord) ([]kafka.OffsetCommit, error)
}

type Func func(ctx context.Context, records []kafka.ConsumerRecord) ([]kafka.OffsetCommit, error)

func (f Func) ProcessRecords(ctx context.Context, records []kafka.ConsumerRecord) ([]kafka.OffsetCommit, error) {
	return f(ctx, records)
}
