// Copyright 2015 Aleksandr Demakin. All rights reserved.

package shm

import (
	"github.com/nxgtw/go-bufferpool/mmf"
)

// this is to ensure, that all implementations of shm-related objects
// satisfy the same minimal interface
var _ iSharedMemoryObject = (*MemoryObject)(nil)

type iSharedMemoryObject interface {
	Name() string
	Size() int64
	Truncate(size int64) error
	Close() error
	Destroy() error
	mmf.Mappable
}
