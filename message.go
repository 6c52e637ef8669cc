// Copyright 2016 Aleksandr Demakin. All rights reserved.

package bufferpool

import (
	"encoding/binary"
	"fmt"
)

// BufferStatus is a state of a buffer reported by a connection.
type BufferStatus int32

// Buffer statuses. The values are a part of the wire format.
const (
	// NotUsed means, that the buffer was released by the connection.
	NotUsed BufferStatus = iota
	// Used means, that the buffer is in use; with a target it's a transfer request.
	Used
	// TransferTo is sent by the source of a transfer.
	TransferTo
	// TransferFrom is sent by the target of a transfer.
	TransferFrom
	// TransferTimeout means, that the transfer was not fetched in time.
	TransferTimeout
	// TransferLost means, that the target connection is gone.
	TransferLost
	// TransferFetch is sent, when the target fetches the buffer.
	TransferFetch
	// TransferOk means, that the transfer succeeded.
	TransferOk
	// TransferError means, that the transfer failed.
	TransferError
	// InvalidationAck acknowledges an invalidation message.
	InvalidationAck
)

var statusNames = [...]string{
	NotUsed:         "NOT_USED",
	Used:            "USED",
	TransferTo:      "TRANSFER_TO",
	TransferFrom:    "TRANSFER_FROM",
	TransferTimeout: "TRANSFER_TIMEOUT",
	TransferLost:    "TRANSFER_LOST",
	TransferFetch:   "TRANSFER_FETCH",
	TransferOk:      "TRANSFER_OK",
	TransferError:   "TRANSFER_ERROR",
	InvalidationAck: "INVALIDATION_ACK",
}

func (s BufferStatus) String() string {
	if s >= 0 && int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("BufferStatus(%d)", int32(s))
}

const (
	// BufferStatusMessageSize is the size of an encoded BufferStatusMessage.
	BufferStatusMessageSize = 40
	// BufferInvalidationMessageSize is the size of an encoded BufferInvalidationMessage.
	BufferInvalidationMessageSize = 12
)

// BufferStatusMessage reports a change of a buffer's status.
// Encoded layout, little-endian:
//	bufferId u32 | status i32 | connectionId i64 | targetConnectionId i64 | transactionId u64 | timestampUs i64
type BufferStatusMessage struct {
	BufferID           BufferID
	Status             BufferStatus
	ConnectionID       ConnectionID
	TargetConnectionID ConnectionID
	TransactionID      TransactionID
	TimestampUs        int64
}

// MarshalTo encodes the message into slot, which must be at least BufferStatusMessageSize long.
func (m *BufferStatusMessage) MarshalTo(slot []byte) {
	_ = slot[BufferStatusMessageSize-1]
	binary.LittleEndian.PutUint32(slot[0:], uint32(m.BufferID))
	binary.LittleEndian.PutUint32(slot[4:], uint32(m.Status))
	binary.LittleEndian.PutUint64(slot[8:], uint64(m.ConnectionID))
	binary.LittleEndian.PutUint64(slot[16:], uint64(m.TargetConnectionID))
	binary.LittleEndian.PutUint64(slot[24:], uint64(m.TransactionID))
	binary.LittleEndian.PutUint64(slot[32:], uint64(m.TimestampUs))
}

// UnmarshalFrom decodes the message from slot.
func (m *BufferStatusMessage) UnmarshalFrom(slot []byte) {
	_ = slot[BufferStatusMessageSize-1]
	m.BufferID = BufferID(binary.LittleEndian.Uint32(slot[0:]))
	m.Status = BufferStatus(binary.LittleEndian.Uint32(slot[4:]))
	m.ConnectionID = ConnectionID(binary.LittleEndian.Uint64(slot[8:]))
	m.TargetConnectionID = ConnectionID(binary.LittleEndian.Uint64(slot[16:]))
	m.TransactionID = TransactionID(binary.LittleEndian.Uint64(slot[24:]))
	m.TimestampUs = int64(binary.LittleEndian.Uint64(slot[32:]))
}

// BufferInvalidationMessage invalidates buffers in the range [FromBufferID, ToBufferID).
// MessageID is a wrapping sequence number, compare it with IsMessageLater.
// Encoded layout, little-endian:
//	messageId u32 | fromBufferId u32 | toBufferId u32
type BufferInvalidationMessage struct {
	MessageID    uint32
	FromBufferID BufferID
	ToBufferID   BufferID
}

// MarshalTo encodes the message into slot, which must be at least BufferInvalidationMessageSize long.
func (m *BufferInvalidationMessage) MarshalTo(slot []byte) {
	_ = slot[BufferInvalidationMessageSize-1]
	binary.LittleEndian.PutUint32(slot[0:], m.MessageID)
	binary.LittleEndian.PutUint32(slot[4:], uint32(m.FromBufferID))
	binary.LittleEndian.PutUint32(slot[8:], uint32(m.ToBufferID))
}

// UnmarshalFrom decodes the message from slot.
func (m *BufferInvalidationMessage) UnmarshalFrom(slot []byte) {
	_ = slot[BufferInvalidationMessageSize-1]
	m.MessageID = binary.LittleEndian.Uint32(slot[0:])
	m.FromBufferID = BufferID(binary.LittleEndian.Uint32(slot[4:]))
	m.ToBufferID = BufferID(binary.LittleEndian.Uint32(slot[8:]))
}

// Contains returns true, if the message invalidates id.
func (m *BufferInvalidationMessage) Contains(id BufferID) bool {
	return IsBufferInRange(m.FromBufferID, m.ToBufferID, id)
}

// BufferIDList is a FIFO list of buffer ids owned by a connection.
// Status channels move ids from a pending list to a posted one.
type BufferIDList []BufferID

// Len returns the number of ids in the list.
func (l *BufferIDList) Len() int {
	return len(*l)
}

// PushBack appends ids to the end of the list.
func (l *BufferIDList) PushBack(ids ...BufferID) {
	*l = append(*l, ids...)
}

// Front returns the first id. The list must not be empty.
func (l *BufferIDList) Front() BufferID {
	return (*l)[0]
}

// PopFront removes the first id and returns it. The list must not be empty.
func (l *BufferIDList) PopFront() BufferID {
	id := (*l)[0]
	*l = (*l)[1:]
	return id
}

// Slice returns the ids in list order. The result shares memory with the list.
func (l *BufferIDList) Slice() []BufferID {
	return *l
}

// moveFront moves n first ids to the end of dst.
func (l *BufferIDList) moveFront(n int, dst *BufferIDList) {
	dst.PushBack((*l)[:n]...)
	*l = (*l)[n:]
}
