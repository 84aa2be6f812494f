package pipeline

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/kbridge-io/kbridge/kafka"
	"github.com/kbridge-io/kbridge/logger"
	"github.com/kbridge-io/kbridge/offsets"
	"github.com/kbridge-io/kbridge/processor"
	"github.com/kbridge-io/kbridge/telemetry"
)

// batchCommitter is the PROCESS -> COMMIT half shared by both pipelines.
// A batch is retried in place until it commits or the policy gives up;
// moving on from an uncommitted batch is never an option, because a later
// commit would advance the group position past records that were never
// handled.
type batchCommitter struct {
	consumer  kafka.Consumer
	processor processor.Processor
	logger    logger.Logger
}

// processBatch retries the same batch until it commits, the policy gives up
// or ctx is cancelled. Reprocessing an uncommitted batch is safe: offsets
// only advance after the whole batch succeeded.
func (c *batchCommitter) processBatch(ctx context.Context, b backoff.BackOff, batch []kafka.ConsumerRecord) error {
	for {
		err := c.processAndCommit(ctx, batch)
		if err == nil {
			b.Reset()
			return nil
		}

		if ctx.Err() != nil {
			return nil
		}

		telemetry.Errors.WithLabelValues(Stage(err)).Inc()

		wait := b.NextBackOff()
		if wait == backoff.Stop {
			c.logger.Error("Batch failed, giving up", "error", err, "stage", Stage(err))
			return err
		}

		c.logger.Warn("Batch failed, retrying", "error", err, "stage", Stage(err), "backoff", wait)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}
	}
}

func (c *batchCommitter) processAndCommit(ctx context.Context, batch []kafka.ConsumerRecord) error {
	commits, err := c.processor.ProcessRecords(ctx, batch)
	if err != nil {
		return NewProcessError(err)
	}

	telemetry.BatchesProcessed.Inc()

	reduced := offsets.Reduce(commits)
	if len(reduced) == 0 {
		return nil
	}

	if err := c.consumer.Commit(ctx, reduced); err != nil {
		return NewCommitError(err)
	}

	telemetry.OffsetsCommitted.Add(float64(len(reduced)))
	c.logger.Debug("Committed batch", "records", len(batch), "partitions", len(reduced))

	return nil
}
