// Copyright 2016 Aleksandr Demakin. All rights reserved.

// Package metrics holds prometheus collectors of the bufferpool channels.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StatusMessagesPosted counts buffer status messages written by connections, by status.
	StatusMessagesPosted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bufferpool_status_messages_posted_total",
			Help: "Total number of buffer status messages written to status queues",
		},
		[]string{"status"},
	)

	// StatusMessagesDrained counts buffer status messages read by the observer.
	StatusMessagesDrained = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bufferpool_status_messages_drained_total",
			Help: "Total number of buffer status messages drained by the observer",
		},
	)

	// CapacityExceeded counts posts, which were deferred or refused due to a full queue.
	CapacityExceeded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bufferpool_capacity_exceeded_total",
			Help: "Total number of posts, which could not be completed due to queue capacity",
		},
		[]string{"op"},
	)

	// SpuriousReads counts failed reads of records, which were reported available.
	SpuriousReads = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bufferpool_spurious_reads_total",
			Help: "Total number of reads, which failed despite confirmed availability",
		},
	)

	// UnexpectedWriteFailures counts failed writes after capacity was confirmed.
	UnexpectedWriteFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bufferpool_unexpected_write_failures_total",
			Help: "Total number of writes, which failed despite confirmed capacity",
		},
		[]string{"op"},
	)

	// InvalidationsPosted counts broadcast invalidation messages.
	InvalidationsPosted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bufferpool_invalidations_posted_total",
			Help: "Total number of invalidation messages broadcast",
		},
	)

	// InvalidationsReceived counts invalidation messages drained by listeners.
	InvalidationsReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bufferpool_invalidations_received_total",
			Help: "Total number of invalidation messages drained by listeners",
		},
	)

	// InvalidationOverflows counts listeners overrun by the invalidation writer.
	InvalidationOverflows = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bufferpool_invalidation_overflows_total",
			Help: "Total number of times a listener was overrun and lost invalidations",
		},
	)

	// OpenConnections tracks status queues registered in observers.
	OpenConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bufferpool_open_connections",
			Help: "Number of connections with a registered status queue",
		},
	)
)
