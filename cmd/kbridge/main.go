package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbridge-io/kbridge/config"
	"github.com/kbridge-io/kbridge/kafka"
	"github.com/kbridge-io/kbridge/pipeline"
	"github.com/kbridge-io/kbridge/plugins/zaplogger"
	"github.com/kbridge-io/kbridge/processor"
	"github.com/kbridge-io/kbridge/telemetry"
	"go.uber.org/zap"
)

func main() {
	cfgPath := flag.String("config", "kbridge.yml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	l := zaplogger.New(zl)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := kafka.NewKgoClient(
		kafka.WithBootstrapServers(cfg.Brokers),
		kafka.WithGroupID(cfg.GroupID),
		kafka.WithClientID(cfg.ClientID),
		kafka.WithSessionTimeout(cfg.SessionTimeout),
		kafka.WithPollMaxWait(cfg.PollMaxWait),
		kafka.WithMaxPollRecords(cfg.MaxPollRecords),
		kafka.WithExtra(cfg.Extra),
		kafka.WithLogger(l),
	)
	if err != nil {
		zl.Fatal("create kafka client", zap.Error(err))
	}
	defer client.Close()

	if err := client.Ping(ctx); err != nil {
		zl.Fatal("broker unreachable", zap.Error(err))
	}

	telemetry.Expose(cfg.MetricsAddr, l)

	proc := processor.NewForwarder(client, cfg.ForwardTopic, l)

	var run func(context.Context) error
	switch cfg.Mode {
	case config.ModeSplit:
		run = pipeline.NewSplit(
			client, proc, cfg.Topics,
			pipeline.WithLogger(l),
			pipeline.WithQueueCapacity(cfg.QueueCapacity),
			pipeline.WithCommitBatchSize(cfg.CommitBatchSize),
		).Run
	default:
		run = pipeline.NewSequential(client, proc, cfg.Topics, pipeline.WithLogger(l)).Run
	}

	if err := run(ctx); err != nil {
		zl.Fatal("pipeline failed", zap.Error(err))
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Flush(flushCtx); err != nil {
		zl.Warn("flush on shutdown", zap.Error(err))
	}
}
