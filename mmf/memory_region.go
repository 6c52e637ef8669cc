// Copyright 2015 Aleksandr Demakin. All rights reserved.

package mmf

import (
	"os"
	"runtime"

	"github.com/pkg/errors"
)

// memory region access modes.
const (
	MEM_READ_ONLY = 0x00000001
	MEM_READWRITE = 0x00000004
)

// invalidFd is returned by Fd() of a closed *os.File.
const invalidFd = ^uintptr(0)

// mmap offsets must be multiples of this value, typically the page size.
var mmapOffsetMultiple int64

// MemoryRegion is a mapped area of a memory object.
// The region is unmapped by a finalizer, when it becomes unreachable,
// so keep a reference to it while its Data is in use.
type MemoryRegion struct {
	*memoryRegion
}

// Mappable is an object, whose handle can be passed to mmap.
type Mappable interface {
	Fd() uintptr
}

// NewMemoryRegion maps a part of object.
//	object - an object to map.
//	mode - access mode, one of MEM_* constants.
//	offset - offset in bytes from the beginning of the object. it need not be page aligned.
//	size - mapping size. if 0, the size of the object is used.
func NewMemoryRegion(object Mappable, mode int, offset int64, size int) (*MemoryRegion, error) {
	if offset < 0 {
		return nil, errors.Errorf("invalid mapping offset %d", offset)
	}
	impl, err := newMemoryRegion(object, mode, offset, size)
	if err != nil {
		return nil, err
	}
	runtime.SetFinalizer(impl, func(region *memoryRegion) {
		region.Close()
	})
	return &MemoryRegion{impl}, nil
}

// calcMmapOffsetFixup returns the distance from the closest valid mmap offset
// at or before offset.
func calcMmapOffsetFixup(offset int64) int64 {
	return offset % mmapOffsetMultiple
}

func fileSizeFromFd(f Mappable) (int64, error) {
	if f.Fd() == invalidFd {
		return 0, nil
	}
	switch typed := f.(type) {
	case interface{ Stat() (os.FileInfo, error) }:
		fi, err := typed.Stat()
		if err != nil {
			return 0, err
		}
		return fi.Size(), nil
	case interface{ Size() int64 }:
		return typed.Size(), nil
	}
	return 0, nil
}

func checkMmapSize(f Mappable, size int) (int, error) {
	switch {
	case size < 0:
		return 0, errors.Errorf("invalid mapping size %d", size)
	case size > 0:
		return size, nil
	case f.Fd() == invalidFd:
		return 0, errors.New("must provide a valid file size")
	}
	sz, err := fileSizeFromFd(f)
	if err != nil {
		return 0, err
	}
	if sz == 0 {
		return 0, errors.New("cannot map an empty object")
	}
	return int(sz), nil
}
