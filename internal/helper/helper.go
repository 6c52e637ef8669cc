// Copyright 2016 Aleksandr Demakin. All rights reserved.

// Package helper contains shm setup routines shared by the queue implementations.
package helper

import (
	"os"

	"github.com/nxgtw/go-bufferpool/mmf"
	"github.com/nxgtw/go-bufferpool/shm"

	"github.com/pkg/errors"
)

// CreateWritableRegion is a helper, which:
//	- creates a shared memory object with given parameters.
//	- creates a mapping for the entire region with mmf.MEM_READWRITE flag.
//	- closes memory object and returns memory region and a flag whether the object was created.
func CreateWritableRegion(name string, flag int, perm os.FileMode, size int) (*mmf.MemoryRegion, bool, error) {
	obj, created, resultErr := shm.NewMemoryObjectSize(name, flag, perm, int64(size))
	if resultErr != nil {
		return nil, false, errors.Wrap(resultErr, "failed to create shm object")
	}
	var region *mmf.MemoryRegion
	defer func() {
		obj.Close()
		if resultErr == nil {
			return
		}
		if region != nil {
			region.Close()
		}
		if created {
			obj.Destroy()
		}
	}()
	if region, resultErr = mmf.NewMemoryRegion(obj, mmf.MEM_READWRITE, 0, size); resultErr != nil {
		return nil, false, errors.Wrap(resultErr, "failed to create shm region")
	}
	return region, created, nil
}

// OpenRegion maps an existing shared memory object entirely.
// mode is mmf.MEM_READWRITE or mmf.MEM_READ_ONLY.
// It returns the region and the size of the object.
func OpenRegion(name string, mode int) (*mmf.MemoryRegion, int64, error) {
	flag := os.O_RDWR
	if mode == mmf.MEM_READ_ONLY {
		flag = os.O_RDONLY
	}
	obj, err := shm.NewMemoryObject(name, flag, 0666)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to open shm object")
	}
	defer obj.Close()
	size := obj.Size()
	if size == 0 {
		return nil, 0, errors.Errorf("shm object %q is empty", name)
	}
	region, err := mmf.NewMemoryRegion(obj, mode, 0, int(size))
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to create shm region")
	}
	return region, size, nil
}
