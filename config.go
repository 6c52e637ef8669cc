// Copyright 2016 Aleksandr Demakin. All rights reserved.

package bufferpool

import (
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

const (
	// DefaultQueueCapacity is the number of records in status and invalidation queues.
	DefaultQueueCapacity = 1024 * 16
	// DefaultMinElementsToSync is the backlog size, above which a status channel needs a sync.
	DefaultMinElementsToSync = 128

	envPrefix = "BUFFERPOOL"
)

// Config holds settings of the channels.
// It can be read from BUFFERPOOL_* environment variables with LoadConfig.
type Config struct {
	QueueCapacity     int    `envconfig:"QUEUE_CAPACITY" default:"16384"`
	MinElementsToSync int    `envconfig:"MIN_ELEMENTS_TO_SYNC" default:"128"`
	ShmPrefix         string `envconfig:"SHM_PREFIX" default:"bufferpool"`
	StampStatus       bool   `envconfig:"STAMP_STATUS" default:"false"`
	LogLevel          string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat         string `envconfig:"LOG_FORMAT" default:"text"`
}

// DefaultConfig returns the default settings.
func DefaultConfig() Config {
	return Config{
		QueueCapacity:     DefaultQueueCapacity,
		MinElementsToSync: DefaultMinElementsToSync,
		ShmPrefix:         "bufferpool",
		LogLevel:          "info",
		LogFormat:         "text",
	}
}

// LoadConfig reads the settings from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to process environment")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings for consistency.
func (cfg Config) Validate() error {
	if cfg.QueueCapacity <= 0 {
		return errors.Errorf("invalid queue capacity %d", cfg.QueueCapacity)
	}
	if cfg.MinElementsToSync < 0 || cfg.MinElementsToSync >= cfg.QueueCapacity {
		return errors.Errorf("min elements to sync %d must be in [0, %d)", cfg.MinElementsToSync, cfg.QueueCapacity)
	}
	return nil
}
