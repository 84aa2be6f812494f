package pipeline

import (
	"context"

	"github.com/kbridge-io/kbridge/kafka"
)

// PollBatch runs the given number of sequential fetches against the consumer
// and flattens everything into one slice. An empty fetch is not a result: the
// batcher keeps polling until records arrive or ctx is cancelled, so callers
// see the effectively-unbounded wait of a classic poll while each underlying
// call stays cancellable.
//
// Per-partition order is preserved and polls are concatenated in poll order.
// Order across different partitions is unspecified.
func PollBatch(ctx context.Context, consumer kafka.Consumer, polls int) ([]kafka.ConsumerRecord, error) {
	var flattened []kafka.ConsumerRecord

	for i := 0; i < polls; i++ {
		for {
			byPartition, err := consumer.Poll(ctx)
			if err != nil {
				return nil, NewPollError(err)
			}

			if len(byPartition) == 0 {
				if err := ctx.Err(); err != nil {
					return nil, NewPollError(err)
				}
				continue
			}

			for _, records := range byPartition {
				flattened = append(flattened, records...)
			}
			break
		}
	}

	return flattened, nil
}
