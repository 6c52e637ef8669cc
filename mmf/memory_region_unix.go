// Copyright 2015 Aleksandr Demakin. All rights reserved.

//go:build darwin || freebsd || linux

package mmf

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

func init() {
	mmapOffsetMultiple = int64(os.Getpagesize())
}

type mmapMode struct {
	prot, flags int
}

var mmapModes = map[int]mmapMode{
	MEM_READ_ONLY: {prot: unix.PROT_READ, flags: unix.MAP_SHARED},
	MEM_READWRITE: {prot: unix.PROT_READ | unix.PROT_WRITE, flags: unix.MAP_SHARED},
}

// memoryRegion keeps the whole mapping, which starts at the page boundary
// at or before the requested offset.
type memoryRegion struct {
	mapping    []byte
	size       int
	pageOffset int
}

func newMemoryRegion(obj Mappable, flag int, offset int64, size int) (*memoryRegion, error) {
	mode, ok := mmapModes[flag]
	if !ok {
		return nil, errors.Errorf("invalid memory region flags %d", flag)
	}
	size, err := checkMmapSize(obj, size)
	if err != nil {
		return nil, errors.Wrap(err, "size check failed")
	}
	objSize, err := fileSizeFromFd(obj)
	if err != nil {
		return nil, errors.Wrap(err, "file size check failed")
	}
	// mmap allows mapping past the end of the object, and touching those pages raises SIGBUS.
	if objSize > 0 && offset+int64(size) > objSize {
		return nil, errors.Errorf("mapping [%d, %d) exceeds object size %d", offset, offset+int64(size), objSize)
	}
	fixup := calcMmapOffsetFixup(offset)
	mapping, err := unix.Mmap(int(obj.Fd()), offset-fixup, size+int(fixup), mode.prot, mode.flags)
	if err != nil {
		return nil, errors.Wrap(err, "mmap failed")
	}
	return &memoryRegion{mapping: mapping, size: size, pageOffset: int(fixup)}, nil
}

func (region *memoryRegion) Close() error {
	if region.mapping == nil {
		return nil
	}
	mapping := region.mapping
	*region = memoryRegion{}
	return errors.Wrap(unix.Munmap(mapping), "munmap failed")
}

func (region *memoryRegion) Data() []byte {
	if region.mapping == nil {
		return nil
	}
	return region.mapping[region.pageOffset:]
}

func (region *memoryRegion) Size() int {
	return region.size
}
