// Package offsets turns per-record commit candidates into the single
// safe-to-commit offset per partition.
package offsets

import (
	"github.com/kbridge-io/kbridge/kafka"
)

// Reduce groups commit candidates by partition and keeps the highest offset
// in each group. The result is the only shape ever handed to a consumer's
// commit call: committing anything less than the per-partition maximum would
// regress the group's position.
//
// Reduce is pure. Monotonicity across batches is the caller's concern; it
// holds as long as each batch's candidates come from records fetched after
// the previous commit.
func Reduce(commits []kafka.OffsetCommit) map[kafka.TopicPartition]kafka.OffsetCommit {
	reduced := make(map[kafka.TopicPartition]kafka.OffsetCommit, len(commits))
	for _, c := range commits {
		if current, ok := reduced[c.TopicPartition]; !ok || c.Offset > current.Offset {
			reduced[c.TopicPartition] = c
		}
	}
	return reduced
}
