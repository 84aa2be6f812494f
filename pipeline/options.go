package pipeline

import (
	"github.com/kbridge-io/kbridge/logger"
)

type SequentialOption interface {
	applySequential(*SequentialConfig)
}

type SplitOption interface {
	applySplit(*SplitConfig)
}

type loggerOption struct {
	logger logger.Logger
}

func (o loggerOption) applySequential(c *SequentialConfig) {
	c.Logger = o.logger
}

func (o loggerOption) applySplit(c *SplitConfig) {
	c.Logger = o.logger
}

func WithLogger(l logger.Logger) loggerOption {
	return loggerOption{logger: l}
}

type retryPolicyOption struct {
	policy RetryPolicy
}

func (o retryPolicyOption) applySequential(c *SequentialConfig) {
	if o.policy != nil {
		c.RetryPolicy = o.policy
	}
}

func (o retryPolicyOption) applySplit(c *SplitConfig) {
	if o.policy != nil {
		c.RetryPolicy = o.policy
	}
}

// WithRetryPolicy sets how a pipeline responds to failed passes
func WithRetryPolicy(p RetryPolicy) retryPolicyOption {
	return retryPolicyOption{policy: p}
}

type queueCapacityOption int

func (o queueCapacityOption) applySplit(c *SplitConfig) {
	if o > 0 {
		c.QueueCapacity = int(o)
	}
}

// WithQueueCapacity sets the bounded queue size between the fetch and commit
// tasks; the fetch task blocks when it is full
func WithQueueCapacity(n int) queueCapacityOption {
	return queueCapacityOption(n)
}

type commitBatchSizeOption int

func (o commitBatchSizeOption) applySplit(c *SplitConfig) {
	if o > 0 {
		c.CommitBatchSize = int(o)
	}
}

// WithCommitBatchSize caps how many queued records the commit task takes per pass
func WithCommitBatchSize(n int) commitBatchSizeOption {
	return commitBatchSizeOption(n)
}
