// Copyright 2016 Aleksandr Demakin. All rights reserved.

package bufferpool

// ConnectionID identifies a client connection of a buffer pool.
type ConnectionID int64

// BufferID identifies a buffer slot. IDs are allocated monotonically and wrap around.
type BufferID uint32

// TransactionID correlates a buffer transfer between two connections.
type TransactionID uint64

type unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint
}

// IsMessageLater returns true, if cur is a sequence number strictly after prev
// in a wrapping sequence space: the forward distance from prev to cur must be less,
// than the backward one. For numbers exactly half the space apart the result is
// false in both directions and should not be relied upon.
func IsMessageLater[T unsigned](cur, prev T) bool {
	return cur != prev && cur-prev < prev-cur
}

// IsBufferInRange returns true, if id lies in the half-open range [from, to)
// of a wrapping ID space. If from >= to the range is treated as wrapped
// around the end of the space.
func IsBufferInRange[T unsigned](from, to, id T) bool {
	if from < to {
		return from <= id && id < to
	}
	return from <= id || id < to
}
