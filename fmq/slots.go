// Copyright 2016 Aleksandr Demakin. All rights reserved.

package fmq

import (
	"unsafe"

	"github.com/nxgtw/go-bufferpool/internal/allocator"
)

// slots is a ring of fixed-size records following the queue header.
// It never moves records in memory.
type slots struct {
	data     unsafe.Pointer
	capacity uint64
	stride   int
}

func newSlots(raw unsafe.Pointer, capacity, stride int) slots {
	return slots{
		data:     allocator.AdvancePointer(raw, headerSize),
		capacity: uint64(capacity),
		stride:   stride,
	}
}

func (s slots) atPointer(pos uint64) unsafe.Pointer {
	return allocator.AdvancePointer(s.data, uintptr(pos%s.capacity)*uintptr(s.stride))
}

func (s slots) at(pos uint64) []byte {
	return allocator.ByteSliceFromUnsafePointer(s.atPointer(pos), s.stride, s.stride)
}

// put copies records from src into the slots starting at pos.
func (s slots) put(pos uint64, src []byte) {
	for off := 0; off < len(src); off += s.stride {
		copy(s.at(pos), src[off:off+s.stride])
		pos++
	}
}

// get copies records starting at pos into dst.
func (s slots) get(pos uint64, dst []byte) {
	for off := 0; off < len(dst); off += s.stride {
		copy(dst[off:off+s.stride], s.at(pos))
		pos++
	}
}
