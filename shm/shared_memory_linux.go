// Copyright 2015 Aleksandr Demakin. All rights reserved.

//go:build linux

package shm

import (
	"bufio"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

const (
	defaultShmPath = "/dev/shm"
	tmpfsMagic     = 0x01021994
	ramfsMagic     = 0x858458f6
)

// shmDirectory returns a tmpfs mount point for shm objects,
// like glibc's shm-directory.c does.
var shmDirectory = sync.OnceValues(func() (string, error) {
	if isShmPath(defaultShmPath) {
		return defaultShmPath, nil
	}
	for _, table := range []string{"/proc/mounts", "/etc/fstab"} {
		file, err := os.Open(table)
		if err != nil {
			continue
		}
		dir := shmFsFromReader(file)
		file.Close()
		if len(dir) > 0 {
			return dir, nil
		}
	}
	return "", errors.New("error locating the shared memory path")
})

func isShmPath(path string) bool {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return false
	}
	// statfs.Type has different types on different platforms.
	fsType := int64(st.Type)
	return fsType == tmpfsMagic || fsType == ramfsMagic
}

// shmFsFromReader scans a mount table in fstab format
// and returns the first mounted tmpfs directory.
func shmFsFromReader(r io.Reader) string {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		dir, fsType, ok := parseMountLine(scanner.Text())
		if !ok || (fsType != "tmpfs" && fsType != "shm") {
			continue
		}
		if isShmPath(dir) {
			return strings.TrimSuffix(dir, "/")
		}
	}
	return ""
}

// parseMountLine returns the directory and the fs type of a mount table line.
// The line must have all 6 fields.
func parseMountLine(line string) (dir, fsType string, ok bool) {
	fields := strings.Fields(line)
	if len(fields) != 6 || strings.HasPrefix(fields[0], "#") {
		return "", "", false
	}
	return fields[1], fields[2], true
}
