// Copyright 2016 Aleksandr Demakin. All rights reserved.

package bufferpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBufferStatusMessageLayout(t *testing.T) {
	a := assert.New(t)
	msg := BufferStatusMessage{
		BufferID:           0x01020304,
		Status:             TransferTo,
		ConnectionID:       0x1122334455667788,
		TargetConnectionID: -2,
		TransactionID:      0xA1A2A3A4A5A6A7A8,
		TimestampUs:        1,
	}
	slot := make([]byte, BufferStatusMessageSize)
	msg.MarshalTo(slot)
	a.Equal([]byte{
		0x04, 0x03, 0x02, 0x01,
		0x02, 0x00, 0x00, 0x00,
		0x88, 0x77, 0x66, 0x55, 0x44, 0x33, 0x22, 0x11,
		0xFE, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
		0xA8, 0xA7, 0xA6, 0xA5, 0xA4, 0xA3, 0xA2, 0xA1,
		0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}, slot)
	var decoded BufferStatusMessage
	decoded.UnmarshalFrom(slot)
	a.Equal(msg, decoded)
	a.Panics(func() {
		msg.MarshalTo(make([]byte, BufferStatusMessageSize-1))
	})
}

func TestBufferInvalidationMessageLayout(t *testing.T) {
	a := assert.New(t)
	msg := BufferInvalidationMessage{MessageID: 7, FromBufferID: 0xFFFFFFF0, ToBufferID: 0x10}
	slot := make([]byte, BufferInvalidationMessageSize)
	msg.MarshalTo(slot)
	a.Equal([]byte{
		0x07, 0x00, 0x00, 0x00,
		0xF0, 0xFF, 0xFF, 0xFF,
		0x10, 0x00, 0x00, 0x00,
	}, slot)
	var decoded BufferInvalidationMessage
	decoded.UnmarshalFrom(slot)
	a.Equal(msg, decoded)
	a.True(decoded.Contains(0xFFFFFFFF))
	a.True(decoded.Contains(0))
	a.False(decoded.Contains(0x10))
}

func TestBufferStatusString(t *testing.T) {
	a := assert.New(t)
	a.Equal("NOT_USED", NotUsed.String())
	a.Equal("INVALIDATION_ACK", InvalidationAck.String())
	a.Equal(BufferStatus(9), InvalidationAck)
	a.Equal("BufferStatus(42)", BufferStatus(42).String())
	a.Equal("BufferStatus(-1)", BufferStatus(-1).String())
}

func TestBufferIDList(t *testing.T) {
	a := assert.New(t)
	var pending, posted BufferIDList
	pending.PushBack(1, 2, 3)
	a.Equal(3, pending.Len())
	a.Equal(BufferID(1), pending.Front())
	a.Equal(BufferID(1), pending.PopFront())
	pending.moveFront(1, &posted)
	a.Equal(BufferIDList{3}, pending)
	a.Equal(BufferIDList{2}, posted)
}
