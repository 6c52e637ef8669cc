// Copyright 2015 Aleksandr Demakin. All rights reserved.

//go:build darwin || freebsd || linux

package shm

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

const maxNameLen = 255

type memoryObject struct {
	file *os.File
}

// objectPath validates name and returns the path of the object's file.
func objectPath(name string) (string, error) {
	name = strings.TrimLeft(name, "/")
	if len(name) == 0 || len(name) >= maxNameLen || strings.ContainsRune(name, '/') {
		return "", errors.Errorf("invalid shm name %q", name)
	}
	dir, err := shmDirectory()
	if err != nil {
		return "", errors.Wrap(err, "error building shared memory name")
	}
	return filepath.Join(dir, name), nil
}

func removeObjectFile(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func newMemoryObject(name string, flag int, perm os.FileMode) (*memoryObject, error) {
	path, err := objectPath(name)
	if err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, flag, perm)
	if err != nil {
		return nil, err
	}
	return &memoryObject{file: file}, nil
}

func (obj *memoryObject) Destroy() error {
	if err := obj.Close(); err != nil {
		return err
	}
	return removeObjectFile(obj.file.Name())
}

func (obj *memoryObject) Name() string {
	return filepath.Base(obj.file.Name())
}

// Close closes the object's descriptor. Closing it twice is not an error.
func (obj *memoryObject) Close() error {
	if err := obj.file.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		return err
	}
	return nil
}

func (obj *memoryObject) Truncate(size int64) error {
	return obj.file.Truncate(size)
}

// Size returns current size of the object, or 0, if it can't be determined.
func (obj *memoryObject) Size() int64 {
	if fi, err := obj.file.Stat(); err == nil {
		return fi.Size()
	}
	return 0
}

func (obj *memoryObject) Fd() uintptr {
	return obj.file.Fd()
}

func destroyMemoryObject(name string) error {
	path, err := objectPath(name)
	if err != nil {
		return err
	}
	return removeObjectFile(path)
}
