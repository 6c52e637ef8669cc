// Copyright 2016 Aleksandr Demakin. All rights reserved.

package bufferpool

import (
	"sort"
	"sync"
	"time"

	"github.com/nxgtw/go-bufferpool/fmq"
	"github.com/nxgtw/go-bufferpool/internal/metrics"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// BufferStatusObserver owns a status queue per connection and
// collects buffer status changes from all of them.
// It is safe for concurrent use.
type BufferStatusObserver struct {
	mu      sync.Mutex
	queues  map[ConnectionID]*fmq.Queue
	ids     []ConnectionID // sorted keys of queues
	opts    options
	logger  zerolog.Logger
	readBuf []byte
}

// NewBufferStatusObserver returns an observer without registered connections.
func NewBufferStatusObserver(opts ...Option) *BufferStatusObserver {
	o := buildOptions(opts)
	return &BufferStatusObserver{
		queues: make(map[ConnectionID]*fmq.Queue),
		opts:   o,
		logger: o.logger.With().Str("component", "status_observer").Logger(),
	}
}

// Open creates a status queue for the connection and returns its descriptor.
// The remote side attaches a BufferStatusChannel to the descriptor.
// It fails with ErrCriticalError, if id is already open, and with ErrNoMemory,
// if the queue can not be created.
func (obs *BufferStatusObserver) Open(id ConnectionID) (fmq.Descriptor, error) {
	obs.mu.Lock()
	defer obs.mu.Unlock()
	if _, ok := obs.queues[id]; ok {
		obs.logger.Error().Int64("connection_id", int64(id)).Msg("connection id collision")
		return fmq.Descriptor{}, errors.Wrapf(ErrCriticalError, "connection id %d is already open", id)
	}
	queue, err := fmq.New(fmq.Synchronized, obs.opts.capacity, BufferStatusMessageSize, obs.opts.queueOptions()...)
	if err != nil || !queue.IsValid() {
		obs.logger.Error().Err(err).Int64("connection_id", int64(id)).Msg("failed to create status queue")
		return fmq.Descriptor{}, errors.Wrapf(ErrNoMemory, "status queue for connection %d: %v", id, err)
	}
	obs.queues[id] = queue
	idx := sort.Search(len(obs.ids), func(i int) bool { return obs.ids[i] >= id })
	obs.ids = append(obs.ids, 0)
	copy(obs.ids[idx+1:], obs.ids[idx:])
	obs.ids[idx] = id
	metrics.OpenConnections.Inc()
	obs.logger.Debug().Int64("connection_id", int64(id)).Str("queue", queue.Descriptor().Name).Msg("status queue opened")
	return queue.Descriptor(), nil
}

// Close deregisters the connection and releases its queue.
// It fails with ErrCriticalError, if id is not open.
func (obs *BufferStatusObserver) Close(id ConnectionID) error {
	obs.mu.Lock()
	defer obs.mu.Unlock()
	queue, ok := obs.queues[id]
	if !ok {
		return errors.Wrapf(ErrCriticalError, "connection id %d is not open", id)
	}
	return obs.remove(id, queue)
}

func (obs *BufferStatusObserver) remove(id ConnectionID, queue *fmq.Queue) error {
	delete(obs.queues, id)
	idx := sort.Search(len(obs.ids), func(i int) bool { return obs.ids[i] >= id })
	obs.ids = append(obs.ids[:idx], obs.ids[idx+1:]...)
	metrics.OpenConnections.Dec()
	if err := queue.Close(); err != nil {
		obs.logger.Warn().Err(err).Int64("connection_id", int64(id)).Msg("failed to release status queue")
		return err
	}
	obs.logger.Debug().Int64("connection_id", int64(id)).Msg("status queue closed")
	return nil
}

// Len returns the number of open connections.
func (obs *BufferStatusObserver) Len() int {
	obs.mu.Lock()
	defer obs.mu.Unlock()
	return len(obs.queues)
}

// Shutdown closes all the connections.
// It returns the first error of releasing a queue.
func (obs *BufferStatusObserver) Shutdown() error {
	obs.mu.Lock()
	defer obs.mu.Unlock()
	var result error
	for _, id := range append([]ConnectionID(nil), obs.ids...) {
		if err := obs.remove(id, obs.queues[id]); err != nil && result == nil {
			result = err
		}
	}
	return result
}

// GetBufferStatusChanges drains all the available messages from all the connections.
// See AppendBufferStatusChanges.
func (obs *BufferStatusObserver) GetBufferStatusChanges() []BufferStatusMessage {
	return obs.AppendBufferStatusChanges(nil)
}

// AppendBufferStatusChanges drains all the available messages from all the connections
// and appends them to messages. Messages of a connection keep their order, connections
// are visited in ascending id order. Every message is tagged with the id of the
// connection it was read from.
// If a queue fails to deliver the messages it reported, or reports more messages,
// than it can hold, draining stops and the messages collected so far are returned.
// The connection stays open.
func (obs *BufferStatusObserver) AppendBufferStatusChanges(messages []BufferStatusMessage) []BufferStatusMessage {
	obs.mu.Lock()
	defer obs.mu.Unlock()
	before := len(messages)
	defer func() {
		metrics.StatusMessagesDrained.Add(float64(len(messages) - before))
	}()
	for _, id := range obs.ids {
		queue := obs.queues[id]
		avail := queue.AvailableToRead()
		if avail <= 0 {
			continue
		}
		var err error
		data := obs.readBuf[:0]
		if avail > queue.Capacity() {
			err = errors.Wrapf(fmq.ErrCorruptQueue, "%d records reported by a %d-record queue", avail, queue.Capacity())
		} else {
			data = obs.buffer(avail)
			err = queue.Read(data)
		}
		if err != nil {
			// availability is already confirmed, so the peer misbehaves.
			metrics.SpuriousReads.Inc()
			obs.logger.Warn().Err(err).Int64("connection_id", int64(id)).Int("available", avail).
				Msg("status messages cannot be read")
			return messages
		}
		for off := 0; off < len(data); off += BufferStatusMessageSize {
			var msg BufferStatusMessage
			msg.UnmarshalFrom(data[off:])
			msg.ConnectionID = id
			messages = append(messages, msg)
		}
	}
	return messages
}

func (obs *BufferStatusObserver) buffer(records int) []byte {
	size := records * BufferStatusMessageSize
	if cap(obs.readBuf) < size {
		obs.readBuf = make([]byte, size)
	}
	return obs.readBuf[:size]
}

// BufferStatusChannel is the writing side of a connection's status queue.
// It is not safe for concurrent use.
type BufferStatusChannel struct {
	queue     *fmq.Queue
	valid     bool
	minToSync int
	clock     func() time.Time
	logger    zerolog.Logger
	writeBuf  []byte
}

// NewBufferStatusChannel attaches to a status queue created by BufferStatusObserver.Open.
// It always returns a channel. If the queue can't be attached, the channel
// is invalid and every post is a no-op; the error wraps ErrInvalidChannel.
func NewBufferStatusChannel(desc fmq.Descriptor, opts ...Option) (*BufferStatusChannel, error) {
	o := buildOptions(opts)
	ch := &BufferStatusChannel{
		minToSync: o.minToSync,
		clock:     o.clock,
		logger:    o.logger.With().Str("component", "status_channel").Str("queue", desc.Name).Logger(),
	}
	if desc.Flavor != fmq.Synchronized || desc.Stride != BufferStatusMessageSize {
		ch.logger.Error().Stringer("descriptor", desc).Msg("not a status queue descriptor")
		return ch, errors.Wrapf(ErrInvalidChannel, "not a status queue: %v", desc)
	}
	queue, err := fmq.Attach(desc)
	if err != nil {
		ch.logger.Error().Err(err).Msg("failed to attach status queue")
		return ch, errors.Wrapf(ErrInvalidChannel, "%v", err)
	}
	ch.queue = queue
	ch.valid = true
	return ch, nil
}

// IsValid returns true, if the channel is attached to its queue.
func (ch *BufferStatusChannel) IsValid() bool {
	return ch.valid
}

// NeedsSync returns true, if the observer has a noticeable backlog
// of messages from this channel.
func (ch *BufferStatusChannel) NeedsSync() bool {
	if !ch.valid {
		return false
	}
	return ch.queue.AvailableToWrite()+ch.minToSync < ch.queue.Capacity()
}

// PostBufferRelease posts NOT_USED messages for as many pending buffers, as the queue
// can take now. Posted ids are moved from the front of pending to the end of posted,
// the rest stays pending for a later call.
func (ch *BufferStatusChannel) PostBufferRelease(connectionID ConnectionID, pending, posted *BufferIDList) {
	if !ch.valid || pending.Len() == 0 {
		return
	}
	count := min(ch.queue.AvailableToWrite(), pending.Len())
	if count < pending.Len() {
		metrics.CapacityExceeded.WithLabelValues("release").Inc()
	}
	if count <= 0 {
		return
	}
	data := ch.buffer(count)
	ts := ch.timestamp()
	for i, id := range (*pending)[:count] {
		msg := BufferStatusMessage{BufferID: id, Status: NotUsed, ConnectionID: connectionID, TimestampUs: ts}
		msg.MarshalTo(data[i*BufferStatusMessageSize:])
	}
	if err := ch.queue.Write(data); err != nil {
		// available # of writes is already confirmed, so this should not happen.
		ch.writeFailed("release", connectionID, err)
		return
	}
	pending.moveFront(count, posted)
	metrics.StatusMessagesPosted.WithLabelValues(NotUsed.String()).Add(float64(count))
}

// PostBufferInvalidateAck acknowledges the invalidation message invalidateID.
// If *acked is already set, it does nothing. Otherwise it sets *acked
// once the acknowledgement is written; if the queue is full, *acked stays false,
// so that a later call retries.
func (ch *BufferStatusChannel) PostBufferInvalidateAck(connectionID ConnectionID, invalidateID uint32, acked *bool) {
	if !ch.valid || *acked {
		return
	}
	if ch.queue.AvailableToWrite() <= 0 {
		metrics.CapacityExceeded.WithLabelValues("invalidation_ack").Inc()
		return
	}
	data := ch.buffer(1)
	msg := BufferStatusMessage{
		BufferID:     BufferID(invalidateID),
		Status:       InvalidationAck,
		ConnectionID: connectionID,
		TimestampUs:  ch.timestamp(),
	}
	msg.MarshalTo(data)
	if err := ch.queue.Write(data); err != nil {
		ch.writeFailed("invalidation_ack", connectionID, err)
		return
	}
	*acked = true
	metrics.StatusMessagesPosted.WithLabelValues(InvalidationAck.String()).Inc()
}

// PostBufferStatusMessage posts all the pending releases followed by a status message
// as one batch. If the queue can't take all of them, nothing is written and it returns false.
// On success all pending ids are moved to posted.
func (ch *BufferStatusChannel) PostBufferStatusMessage(transactionID TransactionID, bufferID BufferID,
	status BufferStatus, connectionID, targetID ConnectionID, pending, posted *BufferIDList) bool {
	if !ch.valid {
		return false
	}
	numPending := pending.Len()
	if ch.queue.AvailableToWrite() < numPending+1 {
		metrics.CapacityExceeded.WithLabelValues("status").Inc()
		return false
	}
	data := ch.buffer(numPending + 1)
	ts := ch.timestamp()
	for i, id := range *pending {
		release := BufferStatusMessage{BufferID: id, Status: NotUsed, ConnectionID: connectionID, TimestampUs: ts}
		release.MarshalTo(data[i*BufferStatusMessageSize:])
	}
	msg := BufferStatusMessage{
		BufferID:           bufferID,
		Status:             status,
		ConnectionID:       connectionID,
		TargetConnectionID: targetID,
		TransactionID:      transactionID,
		TimestampUs:        ts,
	}
	msg.MarshalTo(data[numPending*BufferStatusMessageSize:])
	if err := ch.queue.Write(data); err != nil {
		ch.writeFailed("status", connectionID, err)
		return false
	}
	pending.moveFront(numPending, posted)
	if numPending > 0 {
		metrics.StatusMessagesPosted.WithLabelValues(NotUsed.String()).Add(float64(numPending))
	}
	metrics.StatusMessagesPosted.WithLabelValues(status.String()).Inc()
	return true
}

// Close detaches the channel from its queue.
func (ch *BufferStatusChannel) Close() error {
	if !ch.valid {
		return nil
	}
	ch.valid = false
	return ch.queue.Close()
}

func (ch *BufferStatusChannel) timestamp() int64 {
	if ch.clock == nil {
		return 0
	}
	return ch.clock().UnixMicro()
}

func (ch *BufferStatusChannel) buffer(records int) []byte {
	size := records * BufferStatusMessageSize
	if cap(ch.writeBuf) < size {
		ch.writeBuf = make([]byte, size)
	}
	return ch.writeBuf[:size]
}

func (ch *BufferStatusChannel) writeFailed(op string, connectionID ConnectionID, err error) {
	metrics.UnexpectedWriteFailures.WithLabelValues(op).Inc()
	ch.logger.Warn().Err(err).Str("op", op).Int64("connection_id", int64(connectionID)).
		Msg("status message cannot be sent")
}
