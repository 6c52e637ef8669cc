// Copyright 2016 Aleksandr Demakin. All rights reserved.

package fmq

import (
	"os"
	"sync/atomic"

	"github.com/nxgtw/go-bufferpool/internal/allocator"
	"github.com/nxgtw/go-bufferpool/internal/helper"
	"github.com/nxgtw/go-bufferpool/mmf"
	"github.com/nxgtw/go-bufferpool/shm"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	// DefaultNamePrefix is the default prefix of shared memory object names.
	DefaultNamePrefix = "bufferpool-fmq"

	maxCapacity = 1 << 24
	maxStride   = 1 << 16
)

// State is a snapshot of queue positions for diagnostics.
type State struct {
	Capacity  int
	Stride    int
	WritePos  uint64 // records ever written
	ReadPos   uint64 // shared read position for synchronized queues, own position otherwise
	Overflows uint64 // times this reader was overrun
}

type options struct {
	prefix string
	perm   os.FileMode
}

// Option configures queue creation.
type Option func(*options)

// WithNamePrefix sets a prefix for the name of the shared memory object.
func WithNamePrefix(prefix string) Option {
	return func(o *options) {
		if len(prefix) > 0 {
			o.prefix = prefix
		}
	}
}

// WithPerm sets permission bits of the shared memory object.
func WithPerm(perm os.FileMode) Option {
	return func(o *options) {
		o.perm = perm
	}
}

// Queue is a fixed-capacity ring of fixed-size records in shared memory.
type Queue struct {
	desc      Descriptor
	region    *mmf.MemoryRegion
	hdr       *queueHeader
	slots     slots
	owner     bool
	readOnly  bool   // unsynchronized readers map the queue read-only
	readPos   uint64 // own read position of an unsynchronized reader
	overflows atomic.Uint64
}

// New creates a new queue with a uniquely named shared memory object.
// The queue owns the object and removes it on Close.
//	flavor - Synchronized or Unsynchronized.
//	capacity - max number of records in the queue.
//	stride - size of a record in bytes.
func New(flavor Flavor, capacity, stride int, opts ...Option) (*Queue, error) {
	o := options{prefix: DefaultNamePrefix, perm: 0600}
	for _, opt := range opts {
		opt(&o)
	}
	desc := Descriptor{
		Name:     o.prefix + "-" + uuid.NewString(),
		Flavor:   flavor,
		Capacity: capacity,
		Stride:   stride,
	}
	if err := desc.validate(); err != nil {
		return nil, err
	}
	region, _, err := helper.CreateWritableRegion(desc.Name, os.O_CREATE|os.O_EXCL|os.O_RDWR, o.perm, desc.Size())
	if err != nil {
		return nil, errors.Wrap(err, "fmq: failed to create queue memory")
	}
	q, err := newQueue(desc, region, true)
	if err != nil {
		region.Close()
		shm.DestroyMemoryObject(desc.Name)
		return nil, err
	}
	q.hdr.init(flavor, capacity, stride)
	return q, nil
}

// Attach opens an existing queue described by desc.
// A reader of an unsynchronized queue maps the memory read-only and starts
// at the oldest record the queue still holds. It can not write.
func Attach(desc Descriptor) (*Queue, error) {
	if err := desc.validate(); err != nil {
		return nil, err
	}
	mode := mmf.MEM_READWRITE
	if desc.Flavor == Unsynchronized {
		mode = mmf.MEM_READ_ONLY
	}
	region, size, err := helper.OpenRegion(desc.Name, mode)
	if err != nil {
		return nil, errors.Wrapf(err, "fmq: failed to attach to %q", desc.Name)
	}
	if size < int64(desc.Size()) {
		region.Close()
		return nil, errors.Wrapf(ErrBadDescriptor, "queue object has %d bytes, need %d", size, desc.Size())
	}
	q, err := newQueue(desc, region, false)
	if err != nil {
		region.Close()
		return nil, err
	}
	q.readOnly = mode == mmf.MEM_READ_ONLY
	if err = q.hdr.check(desc); err != nil {
		region.Close()
		return nil, err
	}
	if desc.Flavor == Unsynchronized {
		w := q.hdr.loadWrite()
		if w > uint64(desc.Capacity) {
			q.readPos = w - uint64(desc.Capacity)
		}
	}
	return q, nil
}

func newQueue(desc Descriptor, region *mmf.MemoryRegion, owner bool) (*Queue, error) {
	raw := allocator.ByteSliceData(region.Data())
	if raw == nil || !allocator.IsAligned(raw, 8) {
		return nil, errors.New("fmq: queue memory is not aligned")
	}
	return &Queue{
		desc:   desc,
		region: region,
		hdr:    headerAt(raw),
		slots:  newSlots(raw, desc.Capacity, desc.Stride),
		owner:  owner,
	}, nil
}

// IsValid returns true, if the queue is set up and not closed.
func (q *Queue) IsValid() bool {
	return q != nil && q.hdr != nil
}

// Descriptor returns a descriptor, which can be used to attach to the queue.
func (q *Queue) Descriptor() Descriptor {
	return q.desc.Dup()
}

// Capacity returns max number of records in the queue.
func (q *Queue) Capacity() int {
	return q.desc.Capacity
}

// Stride returns the size of a record.
func (q *Queue) Stride() int {
	return q.desc.Stride
}

// Overflows returns how many times this reader was overrun by the writer.
func (q *Queue) Overflows() uint64 {
	return q.overflows.Load()
}

// AvailableToWrite returns the number of records, that can be written without failing.
// For an unsynchronized queue it is always the capacity.
func (q *Queue) AvailableToWrite() int {
	if !q.IsValid() {
		return 0
	}
	if q.desc.Flavor == Unsynchronized {
		return q.desc.Capacity
	}
	used := q.hdr.loadWrite() - q.hdr.loadRead()
	if used > uint64(q.desc.Capacity) {
		return 0
	}
	return q.desc.Capacity - int(used)
}

// AvailableToRead returns the number of unread records.
// The result may exceed the capacity. For an unsynchronized queue it means,
// that the reader has been overrun, for a synchronized one, that the positions are corrupt.
func (q *Queue) AvailableToRead() int {
	if !q.IsValid() {
		return 0
	}
	return int(q.hdr.loadWrite() - q.readStart())
}

func (q *Queue) readStart() uint64 {
	if q.desc.Flavor == Unsynchronized {
		return q.readPos
	}
	return q.hdr.loadRead()
}

func (q *Queue) recordCount(data []byte) (int, error) {
	if len(data)%q.desc.Stride != 0 {
		return 0, errors.Wrapf(ErrBadRecordSize, "%d bytes for %d-byte records", len(data), q.desc.Stride)
	}
	return len(data) / q.desc.Stride, nil
}

// Write writes all the records from src or nothing.
// len(src) must be a multiple of the record size.
func (q *Queue) Write(src []byte) error {
	if !q.IsValid() {
		return ErrInvalidQueue
	}
	if q.readOnly {
		return errors.Wrap(ErrInvalidQueue, "queue is attached for reading")
	}
	n, err := q.recordCount(src)
	if err != nil || n == 0 {
		return err
	}
	if avail := q.AvailableToWrite(); n > avail {
		return errors.Wrapf(ErrNotEnoughSpace, "%d records requested, %d available", n, avail)
	}
	w := q.hdr.loadWrite()
	end := w + uint64(n)
	if q.desc.Flavor == Unsynchronized {
		q.hdr.storeReserve(end)
	}
	q.slots.put(w, src)
	q.hdr.storeWrite(end)
	return nil
}

// Read reads exactly len(dst)/stride records into dst.
// If there are less records available, it reads nothing.
// An unsynchronized reader, which has been overrun, gets ErrOverflow
// and continues from the most recent write position.
func (q *Queue) Read(dst []byte) error {
	if !q.IsValid() {
		return ErrInvalidQueue
	}
	n, err := q.recordCount(dst)
	if err != nil || n == 0 {
		return err
	}
	if q.desc.Flavor == Synchronized {
		r, w := q.hdr.loadRead(), q.hdr.loadWrite()
		if w-r > uint64(q.desc.Capacity) {
			return errors.Wrapf(ErrCorruptQueue, "read position %d, write position %d", r, w)
		}
		if uint64(n) > w-r {
			return errors.Wrapf(ErrNotEnoughData, "%d records requested, %d available", n, w-r)
		}
		q.slots.get(r, dst)
		q.hdr.storeRead(r + uint64(n))
		return nil
	}
	r, w := q.readPos, q.hdr.loadWrite()
	if w-r > uint64(q.desc.Capacity) {
		return q.overflow()
	}
	if uint64(n) > w-r {
		return errors.Wrapf(ErrNotEnoughData, "%d records requested, %d available", n, w-r)
	}
	q.slots.get(r, dst)
	// the writer may have started to overwrite the oldest copied slot.
	if q.hdr.loadReserve()-r > uint64(q.desc.Capacity) {
		return q.overflow()
	}
	q.readPos = r + uint64(n)
	return nil
}

func (q *Queue) overflow() error {
	lost := q.hdr.loadWrite() - q.readPos
	q.readPos = q.hdr.loadWrite()
	q.overflows.Add(1)
	return errors.Wrapf(ErrOverflow, "%d records lost", lost)
}

// State returns a snapshot of the queue positions.
func (q *Queue) State() State {
	if !q.IsValid() {
		return State{}
	}
	return State{
		Capacity:  q.desc.Capacity,
		Stride:    q.desc.Stride,
		WritePos:  q.hdr.loadWrite(),
		ReadPos:   q.readStart(),
		Overflows: q.Overflows(),
	}
}

// Close unmaps the queue memory. If the queue was created by New,
// the shared memory object is removed. Peers, which are still attached,
// keep their mappings.
func (q *Queue) Close() error {
	if !q.IsValid() {
		return nil
	}
	q.hdr = nil
	q.slots = slots{}
	err := q.region.Close()
	if q.owner {
		if errDestroy := shm.DestroyMemoryObject(q.desc.Name); errDestroy != nil {
			return errors.Wrap(errDestroy, "fmq: failed to destroy queue memory")
		}
	}
	if err != nil {
		return errors.Wrap(err, "fmq: failed to close queue memory")
	}
	return nil
}
