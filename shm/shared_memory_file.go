// Copyright 2016 Aleksandr Demakin. All rights reserved.

//go:build darwin || freebsd

package shm

import "os"

// on these platforms shm objects are emulated with files in the temp directory,
// as shm_open is not reachable without cgo.
func shmDirectory() (string, error) {
	return os.TempDir(), nil
}
