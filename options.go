// Copyright 2016 Aleksandr Demakin. All rights reserved.

package bufferpool

import (
	"time"

	"github.com/nxgtw/go-bufferpool/fmq"
	"github.com/nxgtw/go-bufferpool/internal/logging"

	"github.com/rs/zerolog"
)

type options struct {
	capacity  int
	minToSync int
	shmPrefix string
	logger    zerolog.Logger
	clock     func() time.Time
}

func defaultOptions() options {
	return options{
		capacity:  DefaultQueueCapacity,
		minToSync: DefaultMinElementsToSync,
		shmPrefix: fmq.DefaultNamePrefix,
		logger:    logging.Default(),
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Option configures observers, channels and listeners.
type Option func(*options)

// WithConfig applies queue capacity, sync threshold, shm prefix and timestamping from cfg.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		if cfg.QueueCapacity > 0 {
			o.capacity = cfg.QueueCapacity
		}
		if cfg.MinElementsToSync >= 0 {
			o.minToSync = cfg.MinElementsToSync
		}
		if len(cfg.ShmPrefix) > 0 {
			o.shmPrefix = cfg.ShmPrefix
		}
		if cfg.StampStatus {
			o.clock = time.Now
		}
	}
}

// WithCapacity sets the number of records in the queues created by a component.
func WithCapacity(capacity int) Option {
	return func(o *options) {
		o.capacity = capacity
	}
}

// WithLogger sets the logger of a component.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithTimestamps makes status channels stamp status messages with the clock's time.
// By default the timestamp is zero.
func WithTimestamps(clock func() time.Time) Option {
	return func(o *options) {
		o.clock = clock
	}
}

func (o options) queueOptions() []fmq.Option {
	return []fmq.Option{fmq.WithNamePrefix(o.shmPrefix)}
}
