// Copyright 2016 Aleksandr Demakin. All rights reserved.

package fmq

import "github.com/pkg/errors"

var (
	// ErrInvalidQueue is returned by operations on a queue, which is closed or was not set up.
	ErrInvalidQueue = errors.New("invalid queue")
	// ErrNotEnoughSpace is returned by Write, if the queue can't accept all the records.
	ErrNotEnoughSpace = errors.New("not enough space in the queue")
	// ErrNotEnoughData is returned by Read, if the queue has less records, than requested.
	ErrNotEnoughData = errors.New("not enough data in the queue")
	// ErrOverflow is returned by Read on an unsynchronized queue, if the writer has overrun the reader.
	// The reader skips all the unread records.
	ErrOverflow = errors.New("the queue has been overrun by the writer")
	// ErrCorruptQueue is returned by Read on a synchronized queue, whose positions
	// claim more records, than the queue can hold.
	ErrCorruptQueue = errors.New("queue positions are corrupt")
	// ErrBadDescriptor is returned, if a descriptor does not match a queue.
	ErrBadDescriptor = errors.New("bad queue descriptor")
	// ErrBadRecordSize is returned, if a buffer is not a multiple of the queue's record size.
	ErrBadRecordSize = errors.New("buffer size is not a multiple of the record size")
)
