// Package config loads gateway configuration from YAML with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Mode string

const (
	// ModeSequential runs poll, process and commit in one loop.
	ModeSequential Mode = "sequential"
	// ModeSplit decouples fetching from processing over a bounded queue.
	ModeSplit Mode = "split"
)

type Config struct {
	Brokers  []string `koanf:"brokers"`
	Topics   []string `koanf:"topics"`
	GroupID  string   `koanf:"group_id"`
	ClientID string   `koanf:"client_id"`

	SessionTimeout time.Duration `koanf:"session_timeout"`
	PollMaxWait    time.Duration `koanf:"poll_max_wait"`
	MaxPollRecords int           `koanf:"max_poll_records"`

	Mode            Mode `koanf:"mode"`
	QueueCapacity   int  `koanf:"queue_capacity"`
	CommitBatchSize int  `koanf:"commit_batch_size"`

	ForwardTopic string `koanf:"forward_topic"`
	MetricsAddr  string `koanf:"metrics_addr"`

	// Extra holds free-form broker client settings. The client applies the
	// keys it knows (currently "rack" and "fetch_max_bytes") and warns on
	// anything else; unknown keys are dropped, not fatal.
	Extra map[string]string `koanf:"extra"`
}

// Load merges YAML (if present) with env-vars
// (prefix `KBRIDGE__`, delimiter `__`).
func Load(path string) (Config, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil &&
			!errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}

	_ = k.Load(
		env.Provider(
			"KBRIDGE__", "__", func(s string) string {
				return strings.ToLower(strings.TrimPrefix(s, "KBRIDGE__"))
			},
		), nil,
	)

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, err
	}

	applyDefaults(&cfg)

	if cfg.Mode != ModeSequential && cfg.Mode != ModeSplit {
		return cfg, fmt.Errorf("unknown pipeline mode %q", cfg.Mode)
	}
	return cfg, nil
}

func applyDefaults(c *Config) {
	if len(c.Brokers) == 0 {
		c.Brokers = []string{"localhost:9092"}
	}
	if c.GroupID == "" {
		c.GroupID = "kbridge"
	}
	if c.ClientID == "" {
		c.ClientID = "kbridge"
	}
	if c.SessionTimeout == 0 {
		c.SessionTimeout = 45 * time.Second
	}
	if c.PollMaxWait == 0 {
		c.PollMaxWait = 5 * time.Second
	}
	if c.MaxPollRecords == 0 {
		c.MaxPollRecords = 100
	}
	if c.Mode == "" {
		c.Mode = ModeSequential
	}
	if c.QueueCapacity == 0 {
		c.QueueCapacity = 1000
	}
	if c.CommitBatchSize == 0 {
		c.CommitBatchSize = 20
	}
	if c.MetricsAddr == "" {
		c.MetricsAddr = ":9100"
	}
}
