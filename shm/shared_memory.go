// Copyright 2015 Aleksandr Demakin. All rights reserved.

// Package shm provides named shared memory objects, which can be mapped
// into the address space of several processes.
package shm

import (
	"os"
	"runtime"

	"github.com/pkg/errors"
)

// MemoryObject represents an object which can be used to
// map shared memory regions into the process' address space.
type MemoryObject struct {
	*memoryObject
}

// NewMemoryObject creates a new shared memory object.
// name - a name of the object. should not contain '/' and exceed 255 symbols.
// flag - open flags. see os.O_* constants.
// perm - file's mode and permission bits.
func NewMemoryObject(name string, flag int, perm os.FileMode) (*MemoryObject, error) {
	impl, err := newMemoryObject(name, flag, perm)
	if err != nil {
		return nil, err
	}
	result := &MemoryObject{impl}
	runtime.SetFinalizer(impl, func(memObject *memoryObject) {
		memObject.Close()
	})
	return result, nil
}

// NewMemoryObjectSize opens or creates a shared memory object with the given size.
// If the object was created, it is truncated to size.
// If an existing object was opened, its size must be at least size.
// It returns the object and a flag whether it was created.
func NewMemoryObjectSize(name string, flag int, perm os.FileMode, size int64) (*MemoryObject, bool, error) {
	if size <= 0 {
		return nil, false, errors.Errorf("invalid shm object size %d", size)
	}
	created := false
	obj, err := NewMemoryObject(name, flag&^os.O_CREATE, perm)
	if err != nil {
		if !os.IsNotExist(err) || flag&os.O_CREATE == 0 {
			return nil, false, errors.Wrap(err, "failed to open shm object")
		}
		if obj, err = NewMemoryObject(name, flag|os.O_EXCL, perm); err != nil {
			return nil, false, errors.Wrap(err, "failed to create shm object")
		}
		created = true
	} else if flag&os.O_EXCL != 0 {
		obj.Close()
		return nil, false, errors.Errorf("shm object %q already exists", name)
	}
	if created {
		if err = obj.Truncate(size); err != nil {
			obj.Destroy()
			return nil, false, errors.Wrap(err, "failed to truncate shm object")
		}
	} else if obj.Size() < size {
		obj.Close()
		return nil, false, errors.Errorf("shm object %q is smaller than %d bytes", name, size)
	}
	return obj, created, nil
}

// DestroyMemoryObject permanently removes given memory object.
// It is not an error to destroy an object, which does not exist.
func DestroyMemoryObject(name string) error {
	return destroyMemoryObject(name)
}
