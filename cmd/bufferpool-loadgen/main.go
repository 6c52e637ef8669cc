// Copyright 2016 Aleksandr Demakin. All rights reserved.

// Command bufferpool-loadgen runs status and invalidation traffic through
// shared memory queues and prints what the observer and the listeners received.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/nxgtw/go-bufferpool"
	"github.com/nxgtw/go-bufferpool/internal/logging"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	envFile     = flag.String("env", ".env", "optional file with BUFFERPOOL_* settings")
	connections = flag.Int("connections", 4, "number of status connections")
	releases    = flag.Int("releases", 64, "buffers released by every connection")
	listeners   = flag.Int("listeners", 2, "number of invalidation listeners")
	rounds      = flag.Int("rounds", 3, "number of post/drain rounds")
	listen      = flag.String("metrics", "", "address to serve prometheus metrics on, like ':9090'")
	linger      = flag.Duration("linger", 0, "time to keep serving metrics after the rounds")
)

type stats struct {
	posted        int
	pending       int
	drained       int
	statuses      int
	invalidations int
	overflows     uint64
}

func run(cfg bufferpool.Config, logger zerolog.Logger) (stats, error) {
	var st stats
	opts := []bufferpool.Option{bufferpool.WithConfig(cfg), bufferpool.WithLogger(logger)}
	obs := bufferpool.NewBufferStatusObserver(opts...)
	defer obs.Shutdown()

	inv, err := bufferpool.NewBufferInvalidationChannel(opts...)
	if err != nil {
		return st, err
	}
	defer inv.Close()
	invDesc, _ := inv.Descriptor()

	type conn struct {
		id       bufferpool.ConnectionID
		ch       *bufferpool.BufferStatusChannel
		listener *bufferpool.BufferInvalidationListener
		pending  bufferpool.BufferIDList
		posted   bufferpool.BufferIDList
	}
	conns := make([]*conn, *connections)
	for i := range conns {
		c := &conn{id: bufferpool.ConnectionID(i + 1)}
		desc, err := obs.Open(c.id)
		if err != nil {
			return st, err
		}
		if c.ch, err = bufferpool.NewBufferStatusChannel(desc, opts...); err != nil {
			return st, err
		}
		defer c.ch.Close()
		if i < *listeners {
			if c.listener, err = bufferpool.NewBufferInvalidationListener(invDesc, opts...); err != nil {
				return st, err
			}
			defer c.listener.Close()
		}
		conns[i] = c
	}

	var nextBuffer bufferpool.BufferID
	var nextMessage uint32
	for round := 0; round < *rounds; round++ {
		for _, c := range conns {
			for j := 0; j < *releases; j++ {
				c.pending.PushBack(nextBuffer)
				nextBuffer++
			}
			if c.ch.PostBufferStatusMessage(bufferpool.TransactionID(round), nextBuffer, bufferpool.Used,
				c.id, 0, &c.pending, &c.posted) {
				st.statuses++
			} else {
				c.ch.PostBufferRelease(c.id, &c.pending, &c.posted)
			}
		}
		inv.PostInvalidation(nextMessage, nextBuffer-bufferpool.BufferID(*releases), nextBuffer)
		nextMessage++

		messages := obs.GetBufferStatusChanges()
		st.drained += len(messages)
		for _, c := range conns {
			if c.listener != nil {
				st.invalidations += len(c.listener.GetInvalidations())
			}
		}
		logger.Info().Int("round", round).Int("drained", len(messages)).Msg("round completed")
	}
	for _, c := range conns {
		st.posted += c.posted.Len()
		st.pending += c.pending.Len()
		if c.listener != nil {
			st.overflows += c.listener.Overflows()
		}
	}
	return st, nil
}

func serveMetrics(logger zerolog.Logger) {
	if len(*listen) == 0 {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(*listen, mux); err != nil {
			logger.Error().Err(err).Str("addr", *listen).Msg("metrics server failed")
		}
	}()
}

func main() {
	flag.Parse()
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load %s: %v\n", *envFile, err)
		os.Exit(1)
	}
	cfg, err := bufferpool.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.LogLevel
	logCfg.Format = cfg.LogFormat
	logger, err := logging.NewLogger(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)
	serveMetrics(logger)

	st, err := run(cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("load run failed")
		os.Exit(1)
	}
	fmt.Printf("releases posted:       %d\n", st.posted)
	fmt.Printf("releases pending:      %d\n", st.pending)
	fmt.Printf("status messages:       %d\n", st.statuses)
	fmt.Printf("messages drained:      %d\n", st.drained)
	fmt.Printf("invalidations read:    %d\n", st.invalidations)
	fmt.Printf("invalidation overflow: %d\n", st.overflows)
	if *linger > 0 {
		time.Sleep(*linger)
	}
}
