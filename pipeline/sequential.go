package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/kbridge-io/kbridge/kafka"
	"github.com/kbridge-io/kbridge/logger"
	"github.com/kbridge-io/kbridge/processor"
	"github.com/kbridge-io/kbridge/telemetry"
)

// Sequential drives poll, process and commit in one loop over a consumer it
// owns exclusively. The default retry policy keeps the loop alive through
// any failure. A failed batch is retried in place rather than re-polled:
// the consumer only moves forward, so abandoning an uncommitted batch would
// let a later commit skip it.
type Sequential struct {
	consumer kafka.Consumer
	topics   []string
	config   SequentialConfig

	committer batchCommitter
	logger    logger.Logger
}

func NewSequential(
	consumer kafka.Consumer, p processor.Processor, topics []string, opts ...SequentialOption,
) *Sequential {
	config := defaultSequentialConfig()
	for _, opt := range opts {
		opt.applySequential(&config)
	}

	l := config.Logger.With("component", "pipeline", "mode", "sequential")

	return &Sequential{
		consumer: consumer,
		topics:   topics,
		config:   config,
		committer: batchCommitter{
			consumer:  consumer,
			processor: p,
			logger:    l,
		},
		logger: l,
	}
}

// Run subscribes once and loops until ctx is cancelled or the retry policy
// gives up on a failure. Cancellation returns nil.
func (s *Sequential) Run(ctx context.Context) error {
	if err := s.consumer.Subscribe(s.topics); err != nil {
		return fmt.Errorf("failed to subscribe to topics: %w", err)
	}

	s.logger.Info("Sequential pipeline started", "topics", s.topics)

	b := s.config.RetryPolicy()
	for {
		if ctx.Err() != nil {
			s.logger.Info("Context cancelled, stopping")
			return nil
		}

		records, err := PollBatch(ctx, s.consumer, 1)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}

			telemetry.Errors.WithLabelValues(Stage(err)).Inc()

			wait := b.NextBackOff()
			if wait == backoff.Stop {
				s.logger.Error("Poll failed, giving up", "error", err)
				return err
			}

			s.logger.Warn("Poll failed, retrying", "error", err, "backoff", wait)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(wait):
			}
			continue
		}

		if len(records) == 0 {
			continue
		}

		telemetry.RecordsFetched.Add(float64(len(records)))

		if err := s.committer.processBatch(ctx, b, records); err != nil {
			return err
		}
	}
}
