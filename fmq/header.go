// Copyright 2016 Aleksandr Demakin. All rights reserved.

package fmq

import (
	"sync/atomic"
	"unsafe"

	"github.com/pkg/errors"
)

const (
	queueMagic   = "BPFMQ\x00\x00\x00"
	queueVersion = uint32(1)

	headerSize = 64
)

// ensure the header occupies exactly headerSize bytes.
var (
	_ [headerSize - unsafe.Sizeof(queueHeader{})]byte
	_ [unsafe.Sizeof(queueHeader{}) - headerSize]byte
)

// queueHeader is placed at the beginning of the shared memory object.
// writePos and readPos are monotonic record counters.
// writeReserve is advanced before the writer copies records, so that
// an unsynchronized reader can tell, whether the slots it has just copied
// could have been overwritten.
type queueHeader struct {
	magic        [8]byte
	version      uint32
	flavor       uint32
	capacity     uint32
	stride       uint32
	writePos     uint64
	writeReserve uint64
	readPos      uint64
	reserved     [16]byte
}

func headerAt(p unsafe.Pointer) *queueHeader {
	return (*queueHeader)(p)
}

func (hdr *queueHeader) init(flavor Flavor, capacity, stride int) {
	hdr.version = queueVersion
	hdr.flavor = uint32(flavor)
	hdr.capacity = uint32(capacity)
	hdr.stride = uint32(stride)
	atomic.StoreUint64(&hdr.writePos, 0)
	atomic.StoreUint64(&hdr.writeReserve, 0)
	atomic.StoreUint64(&hdr.readPos, 0)
	copy(hdr.magic[:], queueMagic)
}

func (hdr *queueHeader) check(desc Descriptor) error {
	if string(hdr.magic[:]) != queueMagic {
		return errors.Wrap(ErrBadDescriptor, "not a queue object")
	}
	if hdr.version != queueVersion {
		return errors.Wrapf(ErrBadDescriptor, "unsupported queue version %d", hdr.version)
	}
	if Flavor(hdr.flavor) != desc.Flavor {
		return errors.Wrapf(ErrBadDescriptor, "flavor mismatch: queue is %v", Flavor(hdr.flavor))
	}
	if int(hdr.capacity) != desc.Capacity || int(hdr.stride) != desc.Stride {
		return errors.Wrapf(ErrBadDescriptor, "geometry mismatch: queue is %dx%d", hdr.capacity, hdr.stride)
	}
	return nil
}

func (hdr *queueHeader) loadWrite() uint64 {
	return atomic.LoadUint64(&hdr.writePos)
}

func (hdr *queueHeader) storeWrite(pos uint64) {
	atomic.StoreUint64(&hdr.writePos, pos)
}

func (hdr *queueHeader) loadReserve() uint64 {
	return atomic.LoadUint64(&hdr.writeReserve)
}

func (hdr *queueHeader) storeReserve(pos uint64) {
	atomic.StoreUint64(&hdr.writeReserve, pos)
}

func (hdr *queueHeader) loadRead() uint64 {
	return atomic.LoadUint64(&hdr.readPos)
}

func (hdr *queueHeader) storeRead(pos uint64) {
	atomic.StoreUint64(&hdr.readPos, pos)
}

// calcQueueSize returns the size, needed to place a queue in memory.
func calcQueueSize(capacity, stride int) int {
	return headerSize + // queue header
		capacity*stride // records
}
