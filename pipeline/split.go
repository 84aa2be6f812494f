package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"

	"github.com/kbridge-io/kbridge/kafka"
	"github.com/kbridge-io/kbridge/logger"
	"github.com/kbridge-io/kbridge/processor"
	"github.com/kbridge-io/kbridge/telemetry"
)

// Split decouples fetching from processing: a fetch task and a commit task
// run for the lifetime of the run, handing records over a bounded queue.
// Slow processing applies backpressure by filling the queue instead of
// stalling the broker session, and processing happens without holding the
// consumer guard.
//
// The consumer handle is shared by both tasks, so Split wraps it in a
// GuardedConsumer; poll and commit are never in flight together.
//
// Unlike Sequential's default, a failure in either task ends the whole run
// and surfaces to the caller, who decides whether to restart or alert.
type Split struct {
	consumer kafka.Consumer
	topics   []string
	config   SplitConfig

	committer batchCommitter
	logger    logger.Logger
}

func NewSplit(consumer kafka.Consumer, p processor.Processor, topics []string, opts ...SplitOption) *Split {
	config := defaultSplitConfig()
	for _, opt := range opts {
		opt.applySplit(&config)
	}

	l := config.Logger.With("component", "pipeline", "mode", "split")
	guarded := kafka.NewGuardedConsumer(consumer)

	return &Split{
		consumer: guarded,
		topics:   topics,
		config:   config,
		committer: batchCommitter{
			consumer:  guarded,
			processor: p,
			logger:    l,
		},
		logger: l,
	}
}

// Run subscribes once, starts both tasks and blocks until both have
// finished. The first task error cancels the other; cancellation of ctx
// returns nil.
func (s *Split) Run(ctx context.Context) error {
	if err := s.consumer.Subscribe(s.topics); err != nil {
		return fmt.Errorf("failed to subscribe to topics: %w", err)
	}

	s.logger.Info(
		"Split pipeline started",
		"topics", s.topics,
		"queue_capacity", s.config.QueueCapacity,
		"commit_batch_size", s.config.CommitBatchSize,
	)

	queue := make(chan kafka.ConsumerRecord, s.config.QueueCapacity)

	// Task errors are captured separately because the fetch task closes the
	// queue on its way out: the commit task can observe the closed queue and
	// fail before the group records the fetch error, and the fetch error is
	// the one worth reporting.
	var fetchErr, commitErr error

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(queue)
		fetchErr = s.fetch(gctx, queue)
		return fetchErr
	})
	g.Go(func() error {
		commitErr = s.commit(gctx, queue)
		return commitErr
	})

	_ = g.Wait()

	if fetchErr != nil {
		return fetchErr
	}
	return commitErr
}

// fetch polls under the consumer guard and enqueues every record. The
// enqueue blocks when the queue is full; that is the backpressure that slows
// fetching down to processing speed.
func (s *Split) fetch(ctx context.Context, out chan<- kafka.ConsumerRecord) error {
	b := s.config.RetryPolicy()

	for {
		if ctx.Err() != nil {
			s.logger.Debug("Fetch task stopping, context cancelled")
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
				s.logger.Error("Fetch task failed, giving up", "error", err)
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

		b.Reset()

		if len(records) == 0 {
			continue
		}

		telemetry.RecordsFetched.Add(float64(len(records)))

		for _, rec := range records {
			select {
			case out <- rec:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

// commit drains the queue in batches, processes each batch and commits the
// reduced offsets under the consumer guard. Records are only ever processed
// after they left the queue, so nothing is processed twice concurrently.
func (s *Split) commit(ctx context.Context, in <-chan kafka.ConsumerRecord) error {
	b := s.config.RetryPolicy()

	for {
		batch, closed := s.nextBatch(ctx, in)

		if len(batch) > 0 {
			if err := s.committer.processBatch(ctx, b, batch); err != nil {
				return err
			}
		}

		if ctx.Err() != nil {
			s.logger.Debug("Commit task stopping, context cancelled")
			return nil
		}
		if closed {
			return ErrQueueClosed
		}
	}
}

// nextBatch blocks until at least one record is available, then drains up to
// the configured batch size without blocking further. closed reports that
// the queue was closed by the fetch task.
func (s *Split) nextBatch(ctx context.Context, in <-chan kafka.ConsumerRecord) (batch []kafka.ConsumerRecord, closed bool) {
	var first kafka.ConsumerRecord
	select {
	case <-ctx.Done():
		return nil, false
	case rec, ok := <-in:
		if !ok {
			return nil, true
		}
		first = rec
	}

	batch = make([]kafka.ConsumerRecord, 0, s.config.CommitBatchSize)
	batch = append(batch, first)

	for len(batch) < s.config.CommitBatchSize {
		select {
		case rec, ok := <-in:
			if !ok {
				return batch, true
			}
			batch = append(batch, rec)
		default:
			return batch, false
		}
	}

	return batch, false
}
