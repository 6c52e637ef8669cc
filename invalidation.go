// Copyright 2016 Aleksandr Demakin. All rights reserved.

package bufferpool

import (
	"github.com/nxgtw/go-bufferpool/fmq"
	"github.com/nxgtw/go-bufferpool/internal/metrics"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// BufferInvalidationChannel broadcasts invalidation messages to all the listeners
// attached to its queue. It is not safe for concurrent use.
type BufferInvalidationChannel struct {
	queue  *fmq.Queue
	logger zerolog.Logger
	record [BufferInvalidationMessageSize]byte
}

// NewBufferInvalidationChannel creates the broadcast queue.
// It always returns a channel. If the queue can't be created, the channel
// is invalid and the error wraps ErrNoMemory.
func NewBufferInvalidationChannel(opts ...Option) (*BufferInvalidationChannel, error) {
	o := buildOptions(opts)
	ch := &BufferInvalidationChannel{
		logger: o.logger.With().Str("component", "invalidation_channel").Logger(),
	}
	queue, err := fmq.New(fmq.Unsynchronized, o.capacity, BufferInvalidationMessageSize, o.queueOptions()...)
	if err != nil {
		ch.logger.Error().Err(err).Msg("failed to create invalidation queue")
		return ch, errors.Wrapf(ErrNoMemory, "invalidation queue: %v", err)
	}
	ch.queue = queue
	ch.logger = ch.logger.With().Str("queue", queue.Descriptor().Name).Logger()
	return ch, nil
}

// IsValid returns true, if the channel owns a queue.
func (ch *BufferInvalidationChannel) IsValid() bool {
	return ch.queue.IsValid()
}

// Descriptor returns the descriptor listeners attach to.
// ok is false, if the channel is invalid.
func (ch *BufferInvalidationChannel) Descriptor() (desc fmq.Descriptor, ok bool) {
	if !ch.IsValid() {
		return fmq.Descriptor{}, false
	}
	return ch.queue.Descriptor(), true
}

// PostInvalidation posts the invalidation of buffers [from, to).
// Listeners, which are too slow, lose the oldest messages.
func (ch *BufferInvalidationChannel) PostInvalidation(messageID uint32, from, to BufferID) {
	if !ch.IsValid() {
		return
	}
	msg := BufferInvalidationMessage{MessageID: messageID, FromBufferID: from, ToBufferID: to}
	msg.MarshalTo(ch.record[:])
	if err := ch.queue.Write(ch.record[:]); err != nil {
		metrics.UnexpectedWriteFailures.WithLabelValues("invalidation").Inc()
		ch.logger.Warn().Err(err).Uint32("message_id", messageID).Msg("invalidation cannot be posted")
		return
	}
	metrics.InvalidationsPosted.Inc()
}

// Close removes the broadcast queue. Attached listeners keep their mappings.
func (ch *BufferInvalidationChannel) Close() error {
	return ch.queue.Close()
}

// BufferInvalidationListener reads invalidation messages of a connection.
// Every listener has its own read position. It is not safe for concurrent use.
type BufferInvalidationListener struct {
	queue   *fmq.Queue
	logger  zerolog.Logger
	readBuf []byte
}

// NewBufferInvalidationListener attaches to the broadcast queue and drops
// the messages it already holds. It always returns a listener. If the queue
// can't be attached, the listener is invalid and the error wraps ErrInvalidChannel.
func NewBufferInvalidationListener(desc fmq.Descriptor, opts ...Option) (*BufferInvalidationListener, error) {
	o := buildOptions(opts)
	l := &BufferInvalidationListener{
		logger: o.logger.With().Str("component", "invalidation_listener").Str("queue", desc.Name).Logger(),
	}
	if desc.Flavor != fmq.Unsynchronized || desc.Stride != BufferInvalidationMessageSize {
		l.logger.Error().Stringer("descriptor", desc).Msg("not an invalidation queue descriptor")
		return l, errors.Wrapf(ErrInvalidChannel, "not an invalidation queue: %v", desc)
	}
	queue, err := fmq.Attach(desc)
	if err != nil {
		l.logger.Error().Err(err).Msg("failed to attach invalidation queue")
		return l, errors.Wrapf(ErrInvalidChannel, "%v", err)
	}
	l.queue = queue
	l.dropBacklog()
	return l, nil
}

func (l *BufferInvalidationListener) dropBacklog() {
	avail := min(l.queue.AvailableToRead(), l.queue.Capacity())
	if avail <= 0 {
		return
	}
	if err := l.queue.Read(l.buffer(avail)); err != nil {
		// an overflow also moves the reader to the write position.
		l.logger.Debug().Err(err).Msg("invalidation backlog lost")
		return
	}
	l.logger.Debug().Int("dropped", avail).Msg("invalidation backlog dropped")
}

// IsValid returns true, if the listener is attached to the broadcast queue.
func (l *BufferInvalidationListener) IsValid() bool {
	return l.queue.IsValid()
}

// Overflows returns how many times the listener lost messages because
// the channel overwrote them before they were read.
func (l *BufferInvalidationListener) Overflows() uint64 {
	if !l.IsValid() {
		return 0
	}
	return l.queue.Overflows()
}

// GetInvalidations returns the messages posted since the previous call.
// See AppendInvalidations.
func (l *BufferInvalidationListener) GetInvalidations() []BufferInvalidationMessage {
	return l.AppendInvalidations(nil)
}

// AppendInvalidations reads the posted messages in order and appends them to messages.
// The queue is read twice, so that messages posted during the first read,
// or right after an overflow, are also returned.
func (l *BufferInvalidationListener) AppendInvalidations(messages []BufferInvalidationMessage) []BufferInvalidationMessage {
	if !l.IsValid() {
		return messages
	}
	for pass := 0; pass < 2; pass++ {
		avail := min(l.queue.AvailableToRead(), l.queue.Capacity())
		if avail <= 0 {
			continue
		}
		data := l.buffer(avail)
		if err := l.queue.Read(data); err != nil {
			if errors.Cause(err) == fmq.ErrOverflow {
				metrics.InvalidationOverflows.Inc()
				l.logger.Warn().Err(err).Uint64("overflows", l.queue.Overflows()).Msg("invalidations lost")
				continue
			}
			l.logger.Warn().Err(err).Int("available", avail).Msg("invalidations cannot be read")
			break
		}
		for off := 0; off < len(data); off += BufferInvalidationMessageSize {
			var msg BufferInvalidationMessage
			msg.UnmarshalFrom(data[off:])
			messages = append(messages, msg)
		}
		metrics.InvalidationsReceived.Add(float64(avail))
	}
	return messages
}

// Close detaches the listener.
func (l *BufferInvalidationListener) Close() error {
	return l.queue.Close()
}

func (l *BufferInvalidationListener) buffer(records int) []byte {
	size := records * BufferInvalidationMessageSize
	if cap(l.readBuf) < size {
		l.readBuf = make([]byte, size)
	}
	return l.readBuf[:size]
}
