package pipeline

import (
	"github.com/kbridge-io/kbridge/logger"
)

// BaseConfig is shared by both pipelines
type BaseConfig struct {
	Logger      logger.Logger
	RetryPolicy RetryPolicy
}

func defaultBaseConfig() BaseConfig {
	return BaseConfig{
		Logger:      logger.NewNoopLogger(),
		RetryPolicy: RetryForever(),
	}
}

type SequentialConfig struct {
	BaseConfig
}

func defaultSequentialConfig() SequentialConfig {
	return SequentialConfig{
		BaseConfig: defaultBaseConfig(),
	}
}

type SplitConfig struct {
	BaseConfig
	QueueCapacity   int
	CommitBatchSize int
}

func defaultSplitConfig() SplitConfig {
	base := defaultBaseConfig()
	// a failed task ends the run; restarting is the caller's call
	base.RetryPolicy = FailFast()

	return SplitConfig{
		BaseConfig:      base,
		QueueCapacity:   1000,
		CommitBatchSize: 20,
	}
}
